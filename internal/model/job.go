package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

const (
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusError      = "error"
)

// QueryJob 一次多服务商查询任务
type QueryJob struct {
	ID          string            `gorm:"primaryKey;size:36" json:"id"`
	Prompt      string            `gorm:"type:text;not null" json:"prompt"`
	Status      string            `gorm:"size:20;default:processing;index" json:"status"` // processing, completed, error
	Results     ProviderResultMap `gorm:"type:json" json:"provider_results"`
	Analysis    AnalysisResultMap `gorm:"type:json" json:"analysis_results,omitempty"`
	Error       string            `gorm:"type:text" json:"error,omitempty"`
	CreatedAt   time.Time         `gorm:"index" json:"created_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
}

func (QueryJob) TableName() string {
	return "query_jobs"
}

// Clone 深拷贝，读取侧拿到的快照与编排协程互不影响
func (j *QueryJob) Clone() *QueryJob {
	if j == nil {
		return nil
	}
	c := *j
	if j.Results != nil {
		c.Results = make(ProviderResultMap, len(j.Results))
		for k, v := range j.Results {
			c.Results[k] = v
		}
	}
	if j.Analysis != nil {
		c.Analysis = make(AnalysisResultMap, len(j.Analysis))
		for k, v := range j.Analysis {
			c.Analysis[k] = v
		}
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

// Terminal 是否已进入终态（completed/error 之后状态不再变化）
func (j *QueryJob) Terminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusError
}

// SearchHit 搜索型服务商的单条结果
type SearchHit struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// ProviderResult 单个服务商的调用结果。成功时携带文本回复或搜索结果，
// 失败时只携带错误信息；一经产生不再修改。
type ProviderResult struct {
	Provider     string
	Success      bool
	Model        string
	Text         string
	Hits         []SearchHit
	TotalResults string
	Error        string
}

// NewTextResult 对话型服务商的成功结果
func NewTextResult(provider, model, text string) *ProviderResult {
	return &ProviderResult{Provider: provider, Success: true, Model: model, Text: text}
}

// NewSearchResult 搜索型服务商的成功结果
func NewSearchResult(provider string, hits []SearchHit, totalResults string) *ProviderResult {
	if hits == nil {
		hits = []SearchHit{}
	}
	return &ProviderResult{Provider: provider, Success: true, Hits: hits, TotalResults: totalResults}
}

// NewErrorResult 失败结果，错误只作为值记录，不向上抛出
func NewErrorResult(provider, errMsg string) *ProviderResult {
	return &ProviderResult{Provider: provider, Success: false, Error: errMsg}
}

// providerResultJSON 线上格式：response 字段既可能是字符串（对话回复）
// 也可能是数组（搜索结果），与前端约定保持一致
type providerResultJSON struct {
	Provider     string          `json:"provider"`
	Success      bool            `json:"success"`
	Model        string          `json:"model,omitempty"`
	Response     json.RawMessage `json:"response,omitempty"`
	TotalResults string          `json:"total_results,omitempty"`
	Error        string          `json:"error,omitempty"`
}

func (r ProviderResult) MarshalJSON() ([]byte, error) {
	out := providerResultJSON{
		Provider:     r.Provider,
		Success:      r.Success,
		Model:        r.Model,
		TotalResults: r.TotalResults,
		Error:        r.Error,
	}
	var err error
	if r.Hits != nil {
		out.Response, err = json.Marshal(r.Hits)
	} else if r.Text != "" {
		out.Response, err = json.Marshal(r.Text)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

func (r *ProviderResult) UnmarshalJSON(data []byte) error {
	var in providerResultJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*r = ProviderResult{
		Provider:     in.Provider,
		Success:      in.Success,
		Model:        in.Model,
		TotalResults: in.TotalResults,
		Error:        in.Error,
	}
	if len(in.Response) == 0 {
		return nil
	}
	trimmed := skipSpace(in.Response)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(in.Response, &r.Hits)
	}
	return json.Unmarshal(in.Response, &r.Text)
}

func skipSpace(data []byte) []byte {
	i := 0
	for i < len(data) {
		switch data[i] {
		case ' ', '\t', '\r', '\n':
			i++
		default:
			return data[i:]
		}
	}
	return nil
}

// ProviderResultMap 服务商标识 -> 结果，作为 JSON 列存储
type ProviderResultMap map[string]ProviderResult

func (m ProviderResultMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	return json.Marshal(m)
}

func (m *ProviderResultMap) Scan(value interface{}) error {
	if value == nil {
		*m = ProviderResultMap{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return errors.New("unsupported column type for ProviderResultMap")
		}
	}
	return json.Unmarshal(bytes, m)
}

// AnalysisResultMap 服务商标识 -> 分析结果，作为 JSON 列存储
type AnalysisResultMap map[string]AnalysisResult

func (m AnalysisResultMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	return json.Marshal(m)
}

func (m *AnalysisResultMap) Scan(value interface{}) error {
	if value == nil {
		*m = AnalysisResultMap{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return errors.New("unsupported column type for AnalysisResultMap")
		}
	}
	return json.Unmarshal(bytes, m)
}
