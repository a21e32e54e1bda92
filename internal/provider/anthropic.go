package provider

import (
	"context"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/qs3c/aiseo_go_server/config"
	"github.com/qs3c/aiseo_go_server/internal/model"
)

// AnthropicAdapter Anthropic messages API 适配器
type AnthropicAdapter struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	timeout   time.Duration
}

func NewAnthropic(cfg config.LLMConfig) *AnthropicAdapter {
	return &AnthropicAdapter{
		client:    anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:     cfg.Model,
		maxTokens: int64(cfg.MaxTokens),
		timeout:   time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
}

func (a *AnthropicAdapter) Name() string        { return ProviderAnthropic }
func (a *AnthropicAdapter) DisplayName() string { return "Anthropic" }
func (a *AnthropicAdapter) Model() string       { return a.model }
func (a *AnthropicAdapter) IsSearch() bool      { return false }

func (a *AnthropicAdapter) Call(ctx context.Context, prompt string) *model.ProviderResult {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return model.NewErrorResult(ProviderAnthropic, err.Error())
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return model.NewErrorResult(ProviderAnthropic, "empty message response")
	}

	return model.NewTextResult(ProviderAnthropic, string(msg.Model), sb.String())
}
