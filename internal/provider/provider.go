package provider

import (
	"context"

	"github.com/qs3c/aiseo_go_server/internal/model"
)

// 服务商标识（稳定的字符串 key，与展示名区分）
const (
	ProviderOpenAI       = "openai"
	ProviderAnthropic    = "anthropic"
	ProviderPerplexity   = "perplexity"
	ProviderGoogle       = "google"
	ProviderGoogleSearch = "google_search"
)

// Adapter 把单个服务商的原生 API 归一成统一的结果契约。
// Call 绝不向外抛错：任何传输、鉴权、SDK 错误都转成 Failure 结果，
// 这是扇出隔离的关键约定。适配器无状态，可跨任务复用。
type Adapter interface {
	// Name 稳定标识
	Name() string
	// DisplayName 展示名
	DisplayName() string
	// Model 配置的模型名（搜索型返回空串）
	Model() string
	// IsSearch 搜索型服务商不参与二次分析
	IsSearch() bool
	Call(ctx context.Context, prompt string) *model.ProviderResult
}
