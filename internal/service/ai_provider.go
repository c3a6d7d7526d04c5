package service

import (
	"context"
	"fmt"

	"jobprep_backend/internal/config"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
)

// Completion 一次生成请求
type Completion struct {
	Operation string
	Model     string
	Prompt    string
	MaxTokens int
}

// Provider 生成服务的最小接口，返回模型输出的原始文本
type Provider interface {
	Complete(ctx context.Context, req Completion) (string, error)
}

// NewProvider 按 ai.provider 选择实现
func NewProvider(ctx context.Context, cfg config.AIConfig) (Provider, error) {
	switch cfg.Provider {
	case ProviderAnthropic, "":
		return NewAnthropicProvider(cfg), nil
	case ProviderGemini:
		return NewGeminiProvider(ctx, cfg)
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
}
