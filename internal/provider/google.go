package provider

import (
	"context"
	"time"

	"google.golang.org/genai"

	"github.com/qs3c/aiseo_go_server/config"
	"github.com/qs3c/aiseo_go_server/internal/model"
)

// GoogleAdapter Google Gemini 适配器
type GoogleAdapter struct {
	client      *genai.Client
	initErr     error
	model       string
	maxTokens   int32
	temperature float32
	timeout     time.Duration
}

func NewGoogle(cfg config.LLMConfig) *GoogleAdapter {
	a := &GoogleAdapter{
		model:       cfg.Model,
		maxTokens:   int32(cfg.MaxTokens),
		temperature: float32(cfg.Temperature),
		timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
	// 客户端创建失败不在这里报错，推迟到 Call 转成 Failure 结果
	a.client, a.initErr = genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	return a
}

func (a *GoogleAdapter) Name() string        { return ProviderGoogle }
func (a *GoogleAdapter) DisplayName() string { return "Google" }
func (a *GoogleAdapter) Model() string       { return a.model }
func (a *GoogleAdapter) IsSearch() bool      { return false }

func (a *GoogleAdapter) Call(ctx context.Context, prompt string) *model.ProviderResult {
	if a.initErr != nil {
		return model.NewErrorResult(ProviderGoogle, a.initErr.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.client.Models.GenerateContent(ctx, a.model, genai.Text(prompt), &genai.GenerateContentConfig{
		MaxOutputTokens: a.maxTokens,
		Temperature:     genai.Ptr(a.temperature),
	})
	if err != nil {
		return model.NewErrorResult(ProviderGoogle, err.Error())
	}

	text := resp.Text()
	if text == "" {
		return model.NewErrorResult(ProviderGoogle, "empty generation response")
	}

	return model.NewTextResult(ProviderGoogle, a.model, text)
}
