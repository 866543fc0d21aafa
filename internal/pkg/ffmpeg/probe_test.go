package ffmpeg

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParseDuration(t *testing.T) {
	Convey("解析 ffprobe 输出", t, func() {
		d, err := parseDuration([]byte(`{"format":{"duration":"20.064000"}}`))
		So(err, ShouldBeNil)
		So(d, ShouldAlmostEqual, 20.064, 1e-9)
	})

	Convey("缺少或无效的时长", t, func() {
		for _, out := range []string{`{"format":{}}`, `{"format":{"duration":"N/A"}}`, `{"format":{"duration":"0"}}`, `not json`} {
			_, err := parseDuration([]byte(out))
			So(err, ShouldNotBeNil)
		}
	})

	Convey("可执行文件不存在时报错", t, func() {
		p := &Prober{ffprobePath: "/nonexistent/ffprobe"}
		So(p.Available(), ShouldBeFalse)
		_, err := p.Duration(context.Background(), "a.mp3")
		So(err, ShouldNotBeNil)
	})
}
