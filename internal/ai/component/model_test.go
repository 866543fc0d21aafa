package component

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"reel/internal/config"
)

func TestNewChatModel(t *testing.T) {
	ctx := context.Background()

	Convey("缺少配置或 API Key 时返回错误", t, func() {
		_, err := NewChatModel(ctx, nil)
		So(err, ShouldNotBeNil)

		_, err = NewChatModel(ctx, &config.AIConfig{Provider: "openai"})
		So(err, ShouldNotBeNil)
	})

	Convey("不支持的 Provider", t, func() {
		_, err := NewChatModel(ctx, &config.AIConfig{Provider: "anthropic", APIKey: "k"})
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "anthropic")
	})

	Convey("azure 需要 base_url", t, func() {
		_, err := NewChatModel(ctx, &config.AIConfig{Provider: "azure", APIKey: "k", Model: "gpt-4o"})
		So(err, ShouldNotBeNil)
	})

	Convey("采样参数只在大于零时设置", t, func() {
		s := samplingFrom(config.AIOptionsConfig{Temperature: 0.5})
		So(*s.temperature, ShouldEqual, float32(0.5))
		So(s.maxTokens, ShouldBeNil)
		So(s.topP, ShouldBeNil)
	})
}
