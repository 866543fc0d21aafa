package ctxutil

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRequestID(t *testing.T) {
	Convey("注入并读取请求 ID", t, func() {
		ctx := WithRequestID(context.Background(), "r-1")
		id, ok := GetRequestID(ctx)
		So(ok, ShouldBeTrue)
		So(id, ShouldEqual, "r-1")
		So(Logger(ctx), ShouldNotBeNil)
	})

	Convey("没有请求 ID", t, func() {
		_, ok := GetRequestID(context.Background())
		So(ok, ShouldBeFalse)
		_, ok = GetRequestID(WithRequestID(context.Background(), ""))
		So(ok, ShouldBeFalse)
	})
}
