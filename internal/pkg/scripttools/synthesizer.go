package scripttools

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"reel/internal/model/script"
)

const (
	// SynthesizedSegmentFrames 生成场景的初始帧数，之后由时长对齐重新分配
	SynthesizedSegmentFrames = 150
	// MinSynthesisRunes 旁白短于该长度的章节不生成场景
	MinSynthesisRunes = 10

	headlineRunes = 30
	maxKeywords   = 3
)

var (
	headlineStrip = regexp.MustCompile(`[.!?。,]`)
	firstNumber   = regexp.MustCompile(`\d+(?:\.\d+)?`)
	clauseSplit   = regexp.MustCompile(`\s*[,，]\s*`)
)

// Synthesizer 从旁白文本生成子场景
type Synthesizer struct {
	classifier *Classifier
	tokenizer  Tokenizer
	palette    Palette
}

// NewSynthesizer 创建场景生成器，tok 为 nil 时按空白分词
func NewSynthesizer(tok Tokenizer) *Synthesizer {
	if tok == nil {
		tok = FieldsTokenizer{}
	}
	return &Synthesizer{
		classifier: NewClassifier(),
		tokenizer:  tok,
		palette:    SynthesisPalette,
	}
}

// CanSynthesize 章节旁白是否足够生成场景
func CanSynthesize(sec *script.Section) bool {
	return utf8.RuneCountInString(strings.TrimSpace(sec.NarrationText)) >= MinSynthesisRunes
}

// Synthesize 根据章节旁白生成子场景列表
//
// 结果只取决于 (章节, paletteIndex)：先生成一张章节标题卡，再为每个句子生成一个子场景。
// 配色按 paletteIndex 起的运行计数在色板中循环，返回下一个可用计数，
// 调用方据此在多个章节间延续配色。
//
// Args:
//   - sec: 章节（只读）
//   - paletteIndex: 配色运行计数
//
// Returns:
//   - []script.Segment: 子场景；旁白过短时为 nil
//   - int: 下一个配色计数
func (s *Synthesizer) Synthesize(sec *script.Section, paletteIndex int) ([]script.Segment, int) {
	if !CanSynthesize(sec) {
		return nil, paletteIndex
	}
	text := strings.TrimSpace(sec.NarrationText)
	units := SplitSentences(text)

	label := sec.Label
	if label == "" {
		label = sec.ID.Label()
	}

	segments := make([]script.Segment, 0, len(units)+1)
	ci := paletteIndex

	title := script.Segment{
		ID:             segmentID(sec.ID, 1),
		Type:           script.SceneTitleImpact,
		DurationFrames: SynthesizedSegmentFrames,
		Headline:       label,
		Body:           units[0],
		BgColor:        s.palette.Background(ci),
		AccentColor:    s.palette.Accent(ci),
		TextColor:      DefaultTextColor,
		Sfx:            DefaultSfx(script.SceneTitleImpact),
	}
	segments = append(segments, title)
	ci++

	for i, unit := range units {
		t := s.classifier.Classify(Unit{Text: unit, Ordinal: i, Total: len(units), Section: sec.ID})
		seg := script.Segment{
			ID:             segmentID(sec.ID, len(segments)+1),
			Type:           t,
			DurationFrames: SynthesizedSegmentFrames,
			Headline:       headlineStrip.ReplaceAllString(truncateRunes(unit, headlineRunes), ""),
			Body:           unit,
			Caption:        unit,
			BgColor:        s.palette.Background(ci),
			AccentColor:    s.palette.Accent(ci),
			TextColor:      DefaultTextColor,
			Sfx:            DefaultSfx(t),
		}
		s.fillFromSentence(&seg, unit)
		EnsurePayload(&seg)
		segments = append(segments, seg)
		ci++
	}

	return segments, ci
}

// fillFromSentence 从句子本身提取类型数据
func (s *Synthesizer) fillFromSentence(seg *script.Segment, sentence string) {
	switch seg.Type {
	case script.SceneGaugeMeter, script.SceneNumberCounter, script.SceneStatCounter:
		if m := firstNumber.FindString(sentence); m != "" {
			v, err := strconv.ParseFloat(m, 64)
			if err == nil {
				label := seg.Headline
				if label == "" {
					label = "지표"
				}
				seg.Numbers = []script.NumberItem{{Label: label, Value: v, Unit: "%", Color: seg.AccentColor}}
			}
		}
	case script.SceneDonutChart, script.SceneProgressBarMulti:
		seg.ChartData = &script.ChartData{Type: chartKind(seg.Type), Title: seg.Headline, Data: defaultSlices(), Unit: "%"}
	case script.ScenePyramidChart:
		seg.Items = defaultLevels()
	case script.SceneKeywordExplosion:
		if kw := ExtractKeywords(s.tokenizer, sentence, maxKeywords); len(kw) > 0 {
			seg.Keywords = kw
		}
	case script.SceneListReveal:
		var items []string
		for _, c := range clauseSplit.Split(strings.TrimRight(sentence, ".!?。"), -1) {
			if c = strings.TrimSpace(c); c != "" {
				items = append(items, c)
			}
		}
		if len(items) >= 2 {
			seg.ListItems = items
		}
	}
}

func segmentID(sec script.SectionID, n int) string {
	return fmt.Sprintf("%s-%d", sec, n)
}
