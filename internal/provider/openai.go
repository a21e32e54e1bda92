package provider

import (
	"context"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"

	"github.com/qs3c/aiseo_go_server/config"
	"github.com/qs3c/aiseo_go_server/internal/model"
)

const perplexityBaseURL = "https://api.perplexity.ai"

// OpenAIAdapter OpenAI 兼容的 chat completion 适配器。
// Perplexity 走同一套 API，仅 base URL 不同。
type OpenAIAdapter struct {
	client      openai.Client
	name        string
	displayName string
	model       string
	maxTokens   int64
	temperature float64
	timeout     time.Duration
}

func NewOpenAI(cfg config.LLMConfig) *OpenAIAdapter {
	return newChatAdapter(ProviderOpenAI, "OpenAI", cfg,
		openai.NewClient(option.WithAPIKey(cfg.APIKey)))
}

func NewPerplexity(cfg config.LLMConfig) *OpenAIAdapter {
	return newChatAdapter(ProviderPerplexity, "Perplexity", cfg,
		openai.NewClient(
			option.WithAPIKey(cfg.APIKey),
			option.WithBaseURL(perplexityBaseURL),
		))
}

func newChatAdapter(name, displayName string, cfg config.LLMConfig, client openai.Client) *OpenAIAdapter {
	return &OpenAIAdapter{
		client:      client,
		name:        name,
		displayName: displayName,
		model:       cfg.Model,
		maxTokens:   int64(cfg.MaxTokens),
		temperature: cfg.Temperature,
		timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
}

func (a *OpenAIAdapter) Name() string        { return a.name }
func (a *OpenAIAdapter) DisplayName() string { return a.displayName }
func (a *OpenAIAdapter) Model() string       { return a.model }
func (a *OpenAIAdapter) IsSearch() bool      { return false }

func (a *OpenAIAdapter) Call(ctx context.Context, prompt string) *model.ProviderResult {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(a.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxTokens:   openai.Int(a.maxTokens),
		Temperature: openai.Float(a.temperature),
	})
	if err != nil {
		return model.NewErrorResult(a.name, err.Error())
	}
	if len(resp.Choices) == 0 {
		return model.NewErrorResult(a.name, "empty completion response")
	}

	return model.NewTextResult(a.name, resp.Model, resp.Choices[0].Message.Content)
}
