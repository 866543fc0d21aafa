package script

// SectionID 规范章节ID
type SectionID string

const (
	SectionHook       SectionID = "HOOK"
	SectionProblem    SectionID = "PROBLEM"
	SectionBackground SectionID = "BACKGROUND"
	SectionAnalysis1  SectionID = "ANALYSIS_1"
	SectionAnalysis2  SectionID = "ANALYSIS_2"
	SectionAnalysis3  SectionID = "ANALYSIS_3"
	SectionTwist      SectionID = "TWIST"
	SectionSummary    SectionID = "SUMMARY"
	SectionOutro      SectionID = "OUTRO"
)

// CanonicalSections 规范章节顺序，文档中的章节集合必须与之完全一致
var CanonicalSections = []SectionID{
	SectionHook,
	SectionProblem,
	SectionBackground,
	SectionAnalysis1,
	SectionAnalysis2,
	SectionAnalysis3,
	SectionTwist,
	SectionSummary,
	SectionOutro,
}

var sectionLabels = map[SectionID]string{
	SectionHook:       "🔥 후킹",
	SectionProblem:    "😰 문제 제기",
	SectionBackground: "📚 배경 설명",
	SectionAnalysis1:  "🔍 분석 1",
	SectionAnalysis2:  "🔍 분석 2",
	SectionAnalysis3:  "🔍 분석 3",
	SectionTwist:      "🔄 반전",
	SectionSummary:    "📋 정리",
	SectionOutro:      "👋 아웃트로",
}

// Label 返回章节的默认显示标签
func (s SectionID) Label() string {
	if l, ok := sectionLabels[s]; ok {
		return l
	}
	return string(s)
}

// IsCanonical 是否为规范章节ID
func (s SectionID) IsCanonical() bool {
	_, ok := sectionLabels[s]
	return ok
}

// SceneType 子场景渲染类型（封闭集合）
type SceneType string

const (
	SceneTitleImpact      SceneType = "title-impact"
	SceneStatCounter      SceneType = "stat-counter"
	SceneChartBar         SceneType = "chart-bar"
	SceneChartLine        SceneType = "chart-line"
	SceneChartPie         SceneType = "chart-pie"
	SceneQuoteHighlight   SceneType = "quote-highlight"
	SceneKeywordExplosion SceneType = "keyword-explosion"
	SceneComparisonSplit  SceneType = "comparison-split"
	SceneListReveal       SceneType = "list-reveal"
	SceneFullscreenText   SceneType = "fullscreen-text"
	SceneImageKenburns    SceneType = "image-kenburns"
	SceneBreakingBanner   SceneType = "breaking-banner"
	SceneDataCardStack    SceneType = "data-card-stack"
	SceneTransitionSwoosh SceneType = "transition-swoosh"
	SceneCTASubscribe     SceneType = "cta-subscribe"
	SceneEmojiRain        SceneType = "emoji-rain"
	SceneMapHighlight     SceneType = "map-highlight"
	SceneTimelineProgress SceneType = "timeline-progress"
	SceneVerdictStamp     SceneType = "verdict-stamp"
	SceneRecapScroll      SceneType = "recap-scroll"
	SceneGaugeMeter       SceneType = "gauge-meter"
	SceneDonutChart       SceneType = "donut-chart"
	SceneNumberCounter    SceneType = "number-counter"
	SceneProgressBarMulti SceneType = "progress-bar-multi"
	ScenePyramidChart     SceneType = "pyramid-chart"
)

// SceneTypes 全部可渲染类型
var SceneTypes = []SceneType{
	SceneTitleImpact, SceneStatCounter, SceneChartBar, SceneChartLine, SceneChartPie,
	SceneQuoteHighlight, SceneKeywordExplosion, SceneComparisonSplit, SceneListReveal,
	SceneFullscreenText, SceneImageKenburns, SceneBreakingBanner, SceneDataCardStack,
	SceneTransitionSwoosh, SceneCTASubscribe, SceneEmojiRain, SceneMapHighlight,
	SceneTimelineProgress, SceneVerdictStamp, SceneRecapScroll, SceneGaugeMeter,
	SceneDonutChart, SceneNumberCounter, SceneProgressBarMulti, ScenePyramidChart,
}

var sceneTypeSet = func() map[SceneType]bool {
	m := make(map[SceneType]bool, len(SceneTypes))
	for _, t := range SceneTypes {
		m[t] = true
	}
	return m
}()

// IsValid 是否为已知类型
func (t SceneType) IsValid() bool {
	return sceneTypeSet[t]
}

// SfxType 音效提示
type SfxType string

const (
	SfxWhoosh   SfxType = "whoosh"
	SfxImpact   SfxType = "impact"
	SfxPop      SfxType = "pop"
	SfxDing     SfxType = "ding"
	SfxSwoosh   SfxType = "swoosh"
	SfxBassDrop SfxType = "bass-drop"
	SfxClick    SfxType = "click"
	SfxReveal   SfxType = "reveal"
	SfxAlarm    SfxType = "alarm"
	SfxSuccess  SfxType = "success"
	SfxTyping   SfxType = "typing"
	SfxNone     SfxType = "none"
)

var sfxSet = map[SfxType]bool{
	SfxWhoosh: true, SfxImpact: true, SfxPop: true, SfxDing: true, SfxSwoosh: true,
	SfxBassDrop: true, SfxClick: true, SfxReveal: true, SfxAlarm: true, SfxSuccess: true,
	SfxTyping: true, SfxNone: true,
}

// IsValid 是否为已知音效
func (s SfxType) IsValid() bool {
	return sfxSet[s]
}

// PayloadKind 类型所需的附加数据
type PayloadKind int

const (
	PayloadNone PayloadKind = iota
	PayloadNumbers
	PayloadChart
	PayloadSlices
	PayloadLevels
	PayloadKeywords
	PayloadComparison
	PayloadListItems
)

// Payload 返回该类型渲染时必须具备的数据
func (t SceneType) Payload() PayloadKind {
	switch t {
	case SceneStatCounter, SceneNumberCounter, SceneGaugeMeter, SceneDataCardStack:
		return PayloadNumbers
	case SceneChartBar, SceneChartLine, SceneChartPie:
		return PayloadChart
	case SceneDonutChart, SceneProgressBarMulti:
		return PayloadSlices
	case ScenePyramidChart:
		return PayloadLevels
	case SceneKeywordExplosion, SceneEmojiRain:
		return PayloadKeywords
	case SceneComparisonSplit:
		return PayloadComparison
	case SceneListReveal, SceneTimelineProgress:
		return PayloadListItems
	default:
		return PayloadNone
	}
}
