package scripttools

import (
	"regexp"
	"strings"

	"reel/internal/model/script"
)

// 句子特征的关键词模式（韩语）
var (
	numericPattern     = regexp.MustCompile(`\d+[%만억원조달러]|\d+\.\d+`)
	comparePattern     = regexp.MustCompile(`비교|대비|반면|차이|vs|높고|낮고|증가|감소|상승|하락`)
	listPattern        = regexp.MustCompile(`첫째|둘째|셋째|첫 번째|두 번째|세 번째|하나|둘|셋`)
	quotePattern       = regexp.MustCompile(`라고|따르면|의하면|말했|밝혔|강조|주장`)
	keywordPattern     = regexp.MustCompile(`핵심|중요|포인트|키워드|요약|정리`)
	questionPattern    = regexp.MustCompile(`\?|일까|할까|는가|인가`)
	ratioPattern       = regexp.MustCompile(`비율|비중|점유율|구성|분포`)
	trendPattern       = regexp.MustCompile(`추이|변화|흐름|동향|추세|전망`)
	levelPattern       = regexp.MustCompile(`단계|레벨|수준|계층|등급|순위`)
	progressPattern    = regexp.MustCompile(`진행|달성|목표|현황|상태|지수`)
	gaugePattern       = regexp.MustCompile(`수치|측정|평가|점수|등급|위험`)
	superlativePattern = regexp.MustCompile(`큰|높은|최고|최대|역대`)
)

// 数值句的轮换类型
var numericRotation = []script.SceneType{
	script.SceneStatCounter,
	script.SceneChartBar,
	script.SceneGaugeMeter,
	script.SceneNumberCounter,
	script.SceneProgressBarMulti,
}

// 无特征句的轮换类型
var fallbackRotation = []script.SceneType{
	script.SceneDataCardStack,
	script.SceneKeywordExplosion,
	script.SceneQuoteHighlight,
	script.SceneListReveal,
	script.SceneChartBar,
	script.SceneDonutChart,
	script.SceneGaugeMeter,
	script.SceneProgressBarMulti,
	script.SceneNumberCounter,
	script.ScenePyramidChart,
}

// Unit 待分类的句子及其上下文
type Unit struct {
	Text    string
	Ordinal int // 在章节内的序号（从0开始）
	Total   int // 章节内句子总数
	Section script.SectionID
}

// Features 句子的词法特征
type Features struct {
	Numeric     bool
	Compare     bool
	List        bool
	Quote       bool
	Keyword     bool
	Question    bool
	Ratio       bool
	Trend       bool
	Level       bool
	Progress    bool
	Gauge       bool
	Superlative bool
}

// ExtractFeatures 提取句子特征
func ExtractFeatures(text string) Features {
	lower := strings.ToLower(text)
	return Features{
		Numeric:     numericPattern.MatchString(text),
		Compare:     comparePattern.MatchString(lower),
		List:        listPattern.MatchString(text),
		Quote:       quotePattern.MatchString(text),
		Keyword:     keywordPattern.MatchString(text),
		Question:    questionPattern.MatchString(text),
		Ratio:       ratioPattern.MatchString(text),
		Trend:       trendPattern.MatchString(text),
		Level:       levelPattern.MatchString(text),
		Progress:    progressPattern.MatchString(text),
		Gauge:       gaugePattern.MatchString(text),
		Superlative: superlativePattern.MatchString(text),
	}
}

// Rule 一条分类规则
type Rule struct {
	Name  string
	Match func(u Unit, f Features) bool
	Pick  func(u Unit) script.SceneType
}

func fixed(t script.SceneType) func(Unit) script.SceneType {
	return func(Unit) script.SceneType { return t }
}

func isLast(u Unit) bool { return u.Total > 0 && u.Ordinal == u.Total-1 }

// defaultRules 按优先级排列，首个命中的规则生效
var defaultRules = []Rule{
	{Name: "opening", Match: func(u Unit, _ Features) bool { return u.Ordinal == 0 }, Pick: fixed(script.SceneTitleImpact)},
	{Name: "outro-closing", Match: func(u Unit, _ Features) bool {
		return isLast(u) && u.Section == script.SectionOutro
	}, Pick: fixed(script.SceneCTASubscribe)},
	{Name: "verdict-closing", Match: func(u Unit, _ Features) bool {
		return isLast(u) && (u.Section == script.SectionSummary || u.Section == script.SectionTwist)
	}, Pick: fixed(script.SceneVerdictStamp)},
	{Name: "gauge", Match: func(_ Unit, f Features) bool { return f.Gauge && f.Numeric }, Pick: fixed(script.SceneGaugeMeter)},
	{Name: "ratio", Match: func(_ Unit, f Features) bool { return f.Ratio }, Pick: fixed(script.SceneDonutChart)},
	{Name: "numeric-compare", Match: func(_ Unit, f Features) bool { return f.Numeric && f.Compare }, Pick: fixed(script.SceneComparisonSplit)},
	{Name: "trend", Match: func(_ Unit, f Features) bool { return f.Trend }, Pick: fixed(script.SceneChartLine)},
	{Name: "level", Match: func(_ Unit, f Features) bool { return f.Level }, Pick: fixed(script.ScenePyramidChart)},
	{Name: "progress", Match: func(_ Unit, f Features) bool { return f.Progress && f.Numeric }, Pick: fixed(script.SceneProgressBarMulti)},
	{Name: "superlative", Match: func(_ Unit, f Features) bool { return f.Superlative && f.Numeric }, Pick: fixed(script.SceneNumberCounter)},
	{Name: "numeric", Match: func(_ Unit, f Features) bool { return f.Numeric }, Pick: func(u Unit) script.SceneType {
		return numericRotation[u.Ordinal%len(numericRotation)]
	}},
	{Name: "compare", Match: func(_ Unit, f Features) bool { return f.Compare }, Pick: fixed(script.SceneComparisonSplit)},
	{Name: "list", Match: func(_ Unit, f Features) bool { return f.List }, Pick: fixed(script.SceneListReveal)},
	{Name: "quote", Match: func(_ Unit, f Features) bool { return f.Quote }, Pick: fixed(script.SceneQuoteHighlight)},
	{Name: "keyword", Match: func(_ Unit, f Features) bool { return f.Keyword }, Pick: fixed(script.SceneKeywordExplosion)},
	{Name: "question", Match: func(_ Unit, f Features) bool { return f.Question }, Pick: fixed(script.SceneBreakingBanner)},
}

// Classifier 句子到场景类型的分类器
type Classifier struct {
	rules []Rule
}

// NewClassifier 使用默认规则表创建分类器
func NewClassifier() *Classifier {
	return &Classifier{rules: defaultRules}
}

// Rules 返回规则表（只读）
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Classify 返回句子对应的场景类型
//
// 规则按顺序匹配，首个命中者决定类型；都不命中时按序号在兜底列表中轮换。
// 相同输入总是得到相同结果。
func (c *Classifier) Classify(u Unit) script.SceneType {
	t, _ := c.ClassifyWithRule(u)
	return t
}

// ClassifyWithRule 同 Classify，并返回命中的规则名（兜底为 "fallback"）
func (c *Classifier) ClassifyWithRule(u Unit) (script.SceneType, string) {
	f := ExtractFeatures(u.Text)
	for _, r := range c.rules {
		if r.Match(u, f) {
			return r.Pick(u), r.Name
		}
	}
	ord := u.Ordinal
	if ord < 0 {
		ord = -ord
	}
	return fallbackRotation[ord%len(fallbackRotation)], "fallback"
}
