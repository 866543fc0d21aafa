package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// scriptSystemPrompt 约束模型只输出 JSON
const scriptSystemPrompt = "당신은 한국어 유튜브 경제 채널의 대본 작가입니다. 요청된 JSON 객체만 출력하고 다른 설명은 붙이지 마세요."

// EinoProvider 基于 eino ChatModel 的 LLM 提供者（默认使用）
// 实现了 scripttools.LLMProvider 接口
type EinoProvider struct {
	chatModel model.ChatModel
}

// NewEinoProvider 创建基于 Eino 的 LLM 提供者
//
// Args:
//   - chatModel: 通过 ai/component.NewChatModel 创建的 ChatModel 实例
func NewEinoProvider(chatModel model.ChatModel) *EinoProvider {
	return &EinoProvider{chatModel: chatModel}
}

// Generate 根据提示词生成脚本文本
func (p *EinoProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if p.chatModel == nil {
		return "", errors.New("chatModel is required")
	}

	messages := []*schema.Message{
		schema.SystemMessage(scriptSystemPrompt),
		schema.UserMessage(prompt),
	}

	response, err := p.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to generate script: %w", err)
	}

	content := strings.TrimSpace(response.Content)
	if content == "" {
		return "", errors.New("empty response from chat model")
	}
	return content, nil
}
