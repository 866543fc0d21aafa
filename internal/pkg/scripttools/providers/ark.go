package providers

import (
	"context"
	"errors"

	"reel/internal/pkg/ark"
)

// ArkProvider 直接使用火山引擎 SDK 的 LLM 提供者（ai.client = ark-native）
// 实现了 scripttools.LLMProvider 接口
type ArkProvider struct {
	client *ark.Client
}

// NewArkProvider 创建基于 Ark 的 LLM 提供者
func NewArkProvider(client *ark.Client) *ArkProvider {
	return &ArkProvider{client: client}
}

// Generate 根据提示词生成脚本文本
func (p *ArkProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if p.client == nil {
		return "", errors.New("ark client is required")
	}
	return p.client.Complete(ctx, scriptSystemPrompt, prompt)
}
