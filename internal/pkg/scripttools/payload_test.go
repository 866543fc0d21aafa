package scripttools

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"reel/internal/model/script"
)

func TestEnsurePayload(t *testing.T) {
	Convey("EnsurePayload 为每种类型补全渲染数据", t, func() {
		for _, typ := range script.SceneTypes {
			seg := script.Segment{Type: typ, Headline: "제목", AccentColor: "#ffd600"}
			EnsurePayload(&seg)
			So(HasPayload(&seg), ShouldBeTrue)
		}

		Convey("不覆盖已有数据", func() {
			seg := script.Segment{Type: script.SceneKeywordExplosion, Keywords: []string{"금리"}}
			So(EnsurePayload(&seg), ShouldBeFalse)
			So(seg.Keywords, ShouldResemble, []string{"금리"})
		})

		Convey("图表默认数据", func() {
			seg := script.Segment{Type: script.SceneChartLine}
			So(EnsurePayload(&seg), ShouldBeTrue)
			So(seg.ChartData.Type, ShouldEqual, "line")
			So(seg.ChartData.Title, ShouldEqual, "차트")
			So(len(seg.ChartData.Data), ShouldEqual, 3)
			So(seg.ChartData.Data[1].Value, ShouldEqual, 70)
		})

		Convey("金字塔默认五层", func() {
			seg := script.Segment{Type: script.ScenePyramidChart}
			EnsurePayload(&seg)
			So(seg.Items, ShouldResemble, []string{"최상위", "상위", "중간", "하위", "기반"})
		})

		Convey("环形图默认四块", func() {
			seg := script.Segment{Type: script.SceneDonutChart}
			EnsurePayload(&seg)
			So(len(seg.ChartData.Data), ShouldEqual, 4)
		})

		Convey("数值默认一项并使用强调色", func() {
			seg := script.Segment{Type: script.SceneStatCounter, AccentColor: "#ff0033"}
			EnsurePayload(&seg)
			So(seg.Numbers, ShouldResemble, []script.NumberItem{{Label: "수치", Value: 0, Unit: "%", Color: "#ff0033"}})
		})
	})
}
