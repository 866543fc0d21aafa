package scripttools

import (
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func linearAlignment(text string) Alignment {
	var a Alignment
	for i, r := range []rune(text) {
		a.Characters = append(a.Characters, string(r))
		a.StartTimes = append(a.StartTimes, float64(i)*0.1)
		a.EndTimes = append(a.EndTimes, float64(i+1)*0.1)
	}
	return a
}

func TestCaptions(t *testing.T) {
	Convey("字幕生成", t, func() {
		Convey("按时间轴生成句级字幕", func() {
			text := "가나다. 라마바."
			caps := BuildCaptionsFromAlignment(linearAlignment(text), text)
			So(len(caps), ShouldEqual, 2)
			So(caps[0], ShouldResemble, Caption{Text: "가나다.", StartMs: 0, EndMs: 400})
			So(caps[1].Text, ShouldEqual, "라마바.")
			So(caps[1].StartMs, ShouldEqual, 400)
			So(caps[1].EndMs, ShouldEqual, 800)
		})

		Convey("长句在逗号处拆成两行", func() {
			text := strings.Repeat("a", 20) + ", " + strings.Repeat("b", 20) + "."
			caps := BuildCaptionsFromAlignment(linearAlignment(text), text)
			So(len(caps), ShouldEqual, 2)
			So(caps[0].Text, ShouldEqual, strings.Repeat("a", 20)+",")
			So(caps[0].StartMs, ShouldEqual, 0)
			So(caps[0].EndMs, ShouldEqual, 2100)
			So(caps[1].Text, ShouldEqual, strings.Repeat("b", 20)+".")
			So(caps[1].EndMs, ShouldEqual, 4300)
		})

		Convey("无时间轴时按字数比例分配", func() {
			caps := BuildFallbackCaptions("안녕하세요, 반갑습니다. 좋은 하루!", 1800)
			So(caps, ShouldResemble, []Caption{
				{Text: "안녕하세요,", StartMs: 0, EndMs: 600},
				{Text: "반갑습니다.", StartMs: 600, EndMs: 1200},
				{Text: "좋은 하루!", StartMs: 1200, EndMs: 1800},
			})
		})

		Convey("时长未知时默认 10 秒", func() {
			caps := BuildFallbackCaptions("하나의 문장", 0)
			So(len(caps), ShouldEqual, 1)
			So(caps[0].EndMs, ShouldEqual, 10000)
		})

		Convey("空文本没有字幕", func() {
			So(BuildFallbackCaptions("", 1000), ShouldBeEmpty)
		})
	})
}
