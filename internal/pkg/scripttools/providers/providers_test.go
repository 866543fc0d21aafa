package providers

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	. "github.com/smartystreets/goconvey/convey"
)

type stubChatModel struct {
	got     []*schema.Message
	content string
	err     error
}

func (m *stubChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.got = input
	if m.err != nil {
		return nil, m.err
	}
	return schema.AssistantMessage(m.content, nil), nil
}

func (m *stubChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not supported")
}

func (m *stubChatModel) BindTools(tools []*schema.ToolInfo) error { return nil }

func TestEinoProvider(t *testing.T) {
	ctx := context.Background()

	Convey("发送 system 与 user 消息", t, func() {
		m := &stubChatModel{content: "  {\"sections\":[]}  "}
		out, err := NewEinoProvider(m).Generate(ctx, "주제")
		So(err, ShouldBeNil)
		So(out, ShouldEqual, `{"sections":[]}`)
		So(len(m.got), ShouldEqual, 2)
		So(m.got[0].Role, ShouldEqual, schema.System)
		So(m.got[1].Content, ShouldEqual, "주제")
	})

	Convey("空回复和错误", t, func() {
		_, err := NewEinoProvider(&stubChatModel{content: " "}).Generate(ctx, "p")
		So(err, ShouldNotBeNil)

		_, err = NewEinoProvider(&stubChatModel{err: errors.New("boom")}).Generate(ctx, "p")
		So(err, ShouldNotBeNil)

		_, err = NewEinoProvider(nil).Generate(ctx, "p")
		So(err, ShouldNotBeNil)
	})

	Convey("未配置客户端时报错", t, func() {
		_, err := NewArkProvider(nil).Generate(ctx, "p")
		So(err, ShouldNotBeNil)
		_, err = NewElevenLabsProvider(nil).Synthesize(ctx, "p")
		So(err, ShouldNotBeNil)
	})
}
