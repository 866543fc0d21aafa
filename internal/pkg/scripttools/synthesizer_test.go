package scripttools

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"reel/internal/model/script"
)

func TestSynthesizer(t *testing.T) {
	Convey("Synthesizer 从旁白生成子场景", t, func() {
		s := NewSynthesizer(FieldsTokenizer{})

		Convey("旁白过短时不生成", func() {
			sec := &script.Section{ID: script.SectionHook, NarrationText: "짧은 문장"}
			segs, next := s.Synthesize(sec, 4)
			So(segs, ShouldBeNil)
			So(next, ShouldEqual, 4)
		})

		Convey("标题卡加每句一个子场景", func() {
			sec := &script.Section{
				ID:            script.SectionAnalysis1,
				Label:         "🔍 분석 1",
				NarrationText: "첫 번째 문장은 소개입니다. 매출이 30% 증가했습니다. 핵심은 바로 이것입니다.",
			}
			segs, next := s.Synthesize(sec, 5)
			So(len(segs), ShouldEqual, 4)
			So(next, ShouldEqual, 9)

			So(segs[0].ID, ShouldEqual, "ANALYSIS_1-1")
			So(segs[0].Type, ShouldEqual, script.SceneTitleImpact)
			So(segs[0].Headline, ShouldEqual, "🔍 분석 1")
			So(segs[0].Body, ShouldEqual, "첫 번째 문장은 소개입니다.")
			So(segs[0].BgColor, ShouldEqual, SynthesisPalette.Background(5))
			So(segs[0].AccentColor, ShouldEqual, SynthesisPalette.Accent(5))

			So(segs[1].Type, ShouldEqual, script.SceneTitleImpact)
			So(segs[1].BgColor, ShouldEqual, SynthesisPalette.Background(6))

			So(segs[2].ID, ShouldEqual, "ANALYSIS_1-3")
			So(segs[2].Type, ShouldEqual, script.SceneComparisonSplit)
			So(segs[2].Headline, ShouldEqual, "매출이 30% 증가했습니다")
			So(segs[2].Caption, ShouldEqual, "매출이 30% 증가했습니다.")
			So(segs[2].ComparisonLeft, ShouldNotBeNil)
			So(segs[2].ComparisonRight, ShouldNotBeNil)

			So(segs[3].Type, ShouldEqual, script.SceneKeywordExplosion)
			So(segs[3].Keywords, ShouldResemble, []string{"핵심은", "바로", "이것입니다"})

			for _, seg := range segs {
				So(seg.DurationFrames, ShouldEqual, SynthesizedSegmentFrames)
				So(seg.TextColor, ShouldEqual, DefaultTextColor)
				So(HasPayload(&seg), ShouldBeTrue)
				So(seg.Sfx.IsValid(), ShouldBeTrue)
			}
		})

		Convey("数值类场景从句子中提取数值", func() {
			sec := &script.Section{
				ID:            script.SectionProblem,
				NarrationText: "도입 문장입니다. 위험 점수가 80% 수준이다.",
			}
			segs, _ := s.Synthesize(sec, 0)
			So(len(segs), ShouldEqual, 3)
			So(segs[0].Headline, ShouldEqual, script.SectionProblem.Label())
			So(segs[2].Type, ShouldEqual, script.SceneGaugeMeter)
			So(len(segs[2].Numbers), ShouldEqual, 1)
			So(segs[2].Numbers[0].Value, ShouldEqual, 80)
			So(segs[2].Numbers[0].Unit, ShouldEqual, "%")
		})

		Convey("列表句按逗号拆出条目", func() {
			sec := &script.Section{
				ID:            script.SectionBackground,
				NarrationText: "배경을 살펴봅시다. 첫째 금리, 둘째 환율, 셋째 물가입니다.",
			}
			segs, _ := s.Synthesize(sec, 0)
			So(segs[2].Type, ShouldEqual, script.SceneListReveal)
			So(segs[2].ListItems, ShouldResemble, []string{"첫째 금리", "둘째 환율", "셋째 물가입니다"})
		})

		Convey("相同输入结果相同", func() {
			sec := &script.Section{
				ID:            script.SectionTwist,
				NarrationText: "하지만 반전이 있습니다. 전문가에 따르면 상황이 다릅니다. 결국 정리하면 이렇습니다.",
			}
			a, na := s.Synthesize(sec, 2)
			b, nb := s.Synthesize(sec, 2)
			So(a, ShouldResemble, b)
			So(na, ShouldEqual, nb)
			So(a[len(a)-1].Type, ShouldEqual, script.SceneVerdictStamp)
		})
	})
}

func TestExtractKeywords(t *testing.T) {
	Convey("ExtractKeywords 去重并跳过单字和数字", t, func() {
		kw := ExtractKeywords(FieldsTokenizer{}, "금리 금리 3 A 인상, 물가! 환율", 3)
		So(kw, ShouldResemble, []string{"금리", "인상", "물가"})
		So(ExtractKeywords(nil, "금리", 3), ShouldBeNil)
	})
}
