package component

import (
	"context"
	"errors"
	"fmt"

	arkext "github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"reel/internal/config"
	"reel/internal/pkg/ark"
)

// sampling 三家 Provider 共用的采样参数，零值表示沿用模型默认
type sampling struct {
	temperature *float32
	maxTokens   *int
	topP        *float32
}

func samplingFrom(opts config.AIOptionsConfig) sampling {
	var s sampling
	if opts.Temperature > 0 {
		t := float32(opts.Temperature)
		s.temperature = &t
	}
	if opts.MaxTokens > 0 {
		n := opts.MaxTokens
		s.maxTokens = &n
	}
	if opts.TopP > 0 {
		p := float32(opts.TopP)
		s.topP = &p
	}
	return s
}

// NewChatModel 按 Provider 创建脚本生成用的 ChatModel
// 支持 openai（默认）、azure、ark
func NewChatModel(ctx context.Context, cfg *config.AIConfig) (model.ChatModel, error) {
	if cfg == nil {
		return nil, errors.New("ai config is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required for provider %q", cfg.Provider)
	}

	s := samplingFrom(cfg.Options)
	switch cfg.Provider {
	case "openai", "":
		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			Model:       cfg.Model,
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Temperature: s.temperature,
			MaxTokens:   s.maxTokens,
			TopP:        s.topP,
		})
	case "azure":
		if cfg.BaseURL == "" {
			return nil, errors.New("azure provider requires base_url")
		}
		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			Model:       cfg.Model,
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			ByAzure:     true,
			Temperature: s.temperature,
			MaxTokens:   s.maxTokens,
		})
	case "ark":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = ark.DefaultBaseURL
		}
		modelName := cfg.Model
		if modelName == "" {
			modelName = ark.DefaultModel
		}
		return arkext.NewChatModel(ctx, &arkext.ChatModelConfig{
			Model:       modelName,
			APIKey:      cfg.APIKey,
			BaseURL:     baseURL,
			Temperature: s.temperature,
			MaxTokens:   s.maxTokens,
			TopP:        s.topP,
		})
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", cfg.Provider)
	}
}
