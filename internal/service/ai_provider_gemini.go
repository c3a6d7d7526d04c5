package service

import (
	"context"
	"errors"
	"fmt"

	"jobprep_backend/internal/config"

	"google.golang.org/genai"
)

// GeminiProvider 通过 genai SDK 调用 Gemini
type GeminiProvider struct {
	client *genai.Client
}

func NewGeminiProvider(ctx context.Context, cfg config.AIConfig) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiProvider{client: client}, nil
}

func (p *GeminiProvider) Complete(ctx context.Context, req Completion) (string, error) {
	resp, err := p.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), &genai.GenerateContentConfig{
		MaxOutputTokens: int32(req.MaxTokens),
	})
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", errors.New("nil response")
	}

	text := resp.Text()
	if text == "" {
		return "", errors.New("no text content in response")
	}
	return text, nil
}
