package ark

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/volcengine/volcengine-go-sdk/service/arkruntime"
	"github.com/volcengine/volcengine-go-sdk/service/arkruntime/model"

	"reel/internal/config"
)

const (
	DefaultBaseURL = "https://ark.cn-beijing.volces.com/api/v3"
	DefaultModel   = "doubao-seed-1-6-flash-250615"

	// 脚本 JSON 较长，一次输出需要足够的 token
	defaultMaxTokens   = 16 * 1024
	defaultTemperature = 0.7
)

// Client 火山引擎 Ark 对话客户端（官方 volcengine-go-sdk）
type Client struct {
	client      *arkruntime.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewClient 创建 Ark 客户端
func NewClient(cfg *config.AIConfig) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("ark api key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	modelName := cfg.Model
	if modelName == "" {
		modelName = DefaultModel
	}

	c := &Client{
		client:      arkruntime.NewClientWithApiKey(cfg.APIKey, arkruntime.WithBaseUrl(baseURL)),
		model:       modelName,
		maxTokens:   defaultMaxTokens,
		temperature: defaultTemperature,
	}
	if cfg.Options.MaxTokens > 0 {
		c.maxTokens = cfg.Options.MaxTokens
	}
	if cfg.Options.Temperature > 0 {
		c.temperature = float32(cfg.Options.Temperature)
	}
	return c, nil
}

// Model 当前使用的模型名
func (c *Client) Model() string {
	return c.model
}

// Complete 发送 system + user 两条消息，返回第一条回复的文本
func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	messages := make([]*model.ChatCompletionMessage, 0, 2)
	if system != "" {
		messages = append(messages, textMessage("system", system))
	}
	messages = append(messages, textMessage("user", prompt))

	req := &model.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		log.Error().Err(err).Str("model", c.model).Msg("ark chat completion failed")
		return "", fmt.Errorf("ark api call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("ark response has no choices")
	}

	content := resp.Choices[0].Message.Content
	if content == nil || content.StringValue == nil || *content.StringValue == "" {
		return "", errors.New("ark response content is empty")
	}

	log.Debug().
		Str("model", c.model).
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Msg("ark chat completion done")

	return *content.StringValue, nil
}

func textMessage(role, text string) *model.ChatCompletionMessage {
	return &model.ChatCompletionMessage{
		Role:    role,
		Content: &model.ChatCompletionMessageContent{StringValue: &text},
	}
}
