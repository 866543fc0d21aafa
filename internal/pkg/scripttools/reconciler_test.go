package scripttools

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"reel/internal/model/script"
)

func voiceFrames(frames map[script.SectionID]int) []VoiceEstimate {
	out := make([]VoiceEstimate, 0, len(script.CanonicalSections))
	for _, id := range script.CanonicalSections {
		out = append(out, VoiceEstimate{SectionID: id, Frames: frames[id], Source: VoiceSourceAudioSize})
	}
	return out
}

// docWithSegments 每个章节的子场景数由 counts 指定，缺省为 3
func docWithSegments(counts map[script.SectionID]int) *script.Document {
	var b strings.Builder
	b.WriteString(`{"sections":[`)
	for i, id := range script.CanonicalSections {
		if i > 0 {
			b.WriteString(",")
		}
		n, ok := counts[id]
		if !ok {
			n = 3
		}
		fmt.Fprintf(&b, `{"id":"%s","narrationText":"%s 나레이션","subScenes":[`, id, id)
		for j := 0; j < n; j++ {
			if j > 0 {
				b.WriteString(",")
			}
			b.WriteString(`{"durationFrames":150}`)
		}
		b.WriteString("]}")
	}
	b.WriteString("]}")
	doc, _ := NewNormalizer(30).NormalizeJSON([]byte(b.String()), 0)
	return doc
}

func assertFloor(doc *script.Document, floor int) {
	for _, sec := range doc.Sections {
		for _, seg := range sec.SubScenes {
			So(seg.DurationFrames, ShouldBeGreaterThanOrEqualTo, floor)
		}
	}
}

func TestReconciler(t *testing.T) {
	Convey("Reconciler 按语音时长分配帧数", t, func() {
		r := NewReconciler(NewEstimator(30, 16000, 5))

		Convey("语音短于目标时富余帧均分到各章节", func() {
			doc := docWithSegments(nil)
			frames := map[script.SectionID]int{}
			for _, id := range script.CanonicalSections {
				frames[id] = 1000
			}
			frames[script.SectionOutro] = 4000

			out, report := r.Reconcile(doc, 18000, voiceFrames(frames))
			So(report.TotalVoiceFrames, ShouldEqual, 12000)
			So(report.ExtraFrames, ShouldEqual, 6000)
			So(report.Sections[0].Target, ShouldEqual, 1667)
			So(report.Sections[5].Target, ShouldEqual, 1667)
			So(report.Sections[6].Target, ShouldEqual, 1666)
			So(report.Sections[8].Target, ShouldEqual, 4666)
			So(report.Correction, ShouldEqual, 0)

			hook := out.Sections[0].SubScenes
			So(hook[0].DurationFrames, ShouldEqual, 556)
			So(hook[1].DurationFrames, ShouldEqual, 556)
			So(hook[2].DurationFrames, ShouldEqual, 555)

			for i, sec := range out.Sections {
				So(sec.SumFrames(), ShouldEqual, report.Sections[i].Target)
			}
			So(out.TotalDurationFrames, ShouldEqual, 18000)
			So(out.Status, ShouldEqual, script.StatusFinalized)
			So(Verify(out, 18000, script.MinFloorFrames), ShouldBeEmpty)
		})

		Convey("语音长于目标时不分配富余帧，由末尾修正收回", func() {
			doc := docWithSegments(nil)
			frames := map[script.SectionID]int{}
			for _, id := range script.CanonicalSections {
				frames[id] = 2100
			}
			out, report := r.Reconcile(doc, 18000, voiceFrames(frames))
			So(report.ExtraFrames, ShouldEqual, 0)
			So(report.Correction, ShouldEqual, -640)
			So(report.CarriedFrames, ShouldEqual, 260)
			So(out.SumFrames(), ShouldEqual, 18000)
			assertFloor(out, script.MinFloorFrames)
		})

		Convey("子场景过多时下限抬高总数，差值由最后一个子场景吸收", func() {
			doc := docWithSegments(map[script.SectionID]int{script.SectionAnalysis1: 37})
			out, report := r.Reconcile(doc, 18000, voiceFrames(map[script.SectionID]int{
				script.SectionOutro: 12600,
			}))
			So(report.ExtraFrames, ShouldEqual, 5400)
			So(report.Sections[3].Target, ShouldEqual, 600)
			for _, seg := range out.Section(script.SectionAnalysis1).SubScenes {
				So(seg.DurationFrames, ShouldEqual, 90)
			}
			So(report.Correction, ShouldEqual, -2730)
			So(report.CarriedFrames, ShouldEqual, 0)
			outro := out.Section(script.SectionOutro).SubScenes
			So(outro[len(outro)-1].DurationFrames, ShouldEqual, 1670)
			So(out.SumFrames(), ShouldEqual, 18000)
			So(out.TotalDurationFrames, ShouldEqual, 18000)
		})

		Convey("单个章节语音很长时章节目标不小于语音，其余章节分摊富余", func() {
			doc := docWithSegments(nil)
			out, report := r.Reconcile(doc, 18000, voiceFrames(map[script.SectionID]int{
				script.SectionProblem: 9000,
			}))
			So(report.TotalVoiceFrames, ShouldEqual, 9000)
			So(report.ExtraFrames, ShouldEqual, 9000)
			So(report.Correction, ShouldEqual, 0)

			problem := report.Sections[1]
			So(problem.SectionID, ShouldEqual, script.SectionProblem)
			So(problem.Target, ShouldEqual, 10000)
			So(problem.Allocated, ShouldBeGreaterThanOrEqualTo, 9000)
			So(out.Sections[1].SumFrames(), ShouldEqual, 10000)
			for i, alloc := range report.Sections {
				if i == 1 {
					continue
				}
				So(alloc.SlackFrames, ShouldEqual, 1000)
				So(alloc.Allocated, ShouldEqual, 1000)
			}
			So(out.SumFrames(), ShouldEqual, 18000)
			So(Verify(out, 18000, script.MinFloorFrames), ShouldBeEmpty)
		})

		Convey("最后一个子场景触及下限时向前分摊", func() {
			doc := docWithSegments(map[script.SectionID]int{script.SectionAnalysis1: 37})
			out, report := r.Reconcile(doc, 18000, voiceFrames(map[script.SectionID]int{
				script.SectionHook: 12600,
			}))
			So(report.Correction, ShouldEqual, -140)
			So(report.CarriedFrames, ShouldEqual, 2590)
			So(report.BelowFloor, ShouldBeFalse)
			So(out.SumFrames(), ShouldEqual, 18000)
			assertFloor(out, script.MinFloorFrames)
			So(Verify(out, 18000, script.MinFloorFrames), ShouldBeEmpty)
		})

		Convey("目标过小无法满足下限时总数仍然精确", func() {
			doc := docWithSegments(nil)
			out, report := r.Reconcile(doc, 900, voiceFrames(nil))
			So(out.SumFrames(), ShouldEqual, 900)
			So(report.BelowFloor, ShouldBeTrue)
		})

		Convey("目标小于子场景下限总和时不产生非正帧数", func() {
			doc := docWithSegments(nil)
			out, report := r.Reconcile(doc, 300, voiceFrames(nil))
			So(out.SumFrames(), ShouldEqual, 300)
			So(report.BelowFloor, ShouldBeTrue)
			assertFloor(out, 1)
		})

		Convey("没有子场景的章节生成整段占位卡", func() {
			doc := docWithSegments(nil)
			doc.Sections[2].SubScenes = nil
			out, report := r.Reconcile(doc, 18000, voiceFrames(nil))
			bg := out.Sections[2]
			So(len(bg.SubScenes), ShouldEqual, 1)
			So(bg.SubScenes[0].Type, ShouldEqual, script.SceneFullscreenText)
			So(bg.SubScenes[0].DurationFrames, ShouldEqual, 2000)
			So(bg.SubScenes[0].BgColor, ShouldEqual, "#1a1a2e")
			So(bg.SubScenes[0].AccentColor, ShouldEqual, "#e94560")
			So(report.Sections[2].Placeholder, ShouldBeTrue)
			So(out.SumFrames(), ShouldEqual, 18000)
		})

		Convey("缺失的语音估算按旁白字数补齐", func() {
			doc := docWithSegments(nil)
			_, report := r.Reconcile(doc, 18000, nil)
			So(report.Sections[0].VoiceSource, ShouldEqual, VoiceSourceText)
			So(report.Sections[0].VoiceFrames, ShouldEqual, r.estimator.FramesFromText(doc.Sections[0].NarrationText))
		})

		Convey("不修改输入文档", func() {
			doc := docWithSegments(nil)
			before := doc.Clone()
			_, _ = r.Reconcile(doc, 18000, voiceFrames(map[script.SectionID]int{script.SectionHook: 5000}))
			So(doc, ShouldResemble, before)
		})

		Convey("相同输入结果相同", func() {
			doc := docWithSegments(map[script.SectionID]int{script.SectionTwist: 7})
			voices := voiceFrames(map[script.SectionID]int{script.SectionHook: 777, script.SectionTwist: 3333})
			a, ra := r.Reconcile(doc, 17777, voices)
			b, rb := r.Reconcile(doc, 17777, voices)
			So(a, ShouldResemble, b)
			So(ra, ShouldResemble, rb)
		})

		Convey("随机输入下总数精确且满足下限", func() {
			rng := rand.New(rand.NewSource(42))
			for i := 0; i < 200; i++ {
				counts := map[script.SectionID]int{}
				frames := map[script.SectionID]int{}
				segments := 0
				for _, id := range script.CanonicalSections {
					counts[id] = 1 + rng.Intn(8)
					frames[id] = rng.Intn(5000)
					segments += counts[id]
				}
				doc := docWithSegments(counts)
				target := 150*segments + rng.Intn(30000)
				out, report := r.Reconcile(doc, target, voiceFrames(frames))
				So(out.SumFrames(), ShouldEqual, target)
				So(out.TotalDurationFrames, ShouldEqual, target)
				So(report.BelowFloor, ShouldBeFalse)
				assertFloor(out, script.MinFloorFrames)
			}
		})
	})
}
