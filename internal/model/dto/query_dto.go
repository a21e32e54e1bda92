package dto

// SubmitQueryRequest 提交查询请求
type SubmitQueryRequest struct {
	Prompt    string   `json:"prompt" binding:"required"`
	Providers []string `json:"providers,omitempty"`
}

// SubmitQueryResponse 提交查询响应，channel 为增量事件的订阅房间名
type SubmitQueryResponse struct {
	JobID   string `json:"job_id"`
	Message string `json:"message"`
	Channel string `json:"channel"`
}

// ProviderInfo 已启用服务商的描述信息
type ProviderInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
	Model   string `json:"model,omitempty"`
}

// ProvidersResponse GET /providers 响应
type ProvidersResponse struct {
	Providers       []ProviderInfo `json:"providers"`
	AnalysisEnabled bool           `json:"analysis_enabled"`
}

// HealthResponse GET /health 响应
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}
