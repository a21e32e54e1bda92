package pubsub

import (
	"context"

	"github.com/qs3c/aiseo_go_server/internal/model"
)

// 事件类型。同一 (job, provider) 内 start < complete < analysis，
// query_complete / query_error 一定是该任务的最后一条事件。
const (
	EventProviderStart    = "provider_start"
	EventProviderComplete = "provider_complete"
	EventAnalysisComplete = "analysis_complete"
	EventQueryComplete    = "query_complete"
	EventQueryError       = "query_error"
)

// Event 任务进度事件，job_id 即订阅主题
type Event struct {
	Type     string                `json:"type"`
	JobID    string                `json:"job_id"`
	Provider string                `json:"provider,omitempty"`
	Result   *model.ProviderResult `json:"result,omitempty"`
	Analysis *model.AnalysisResult `json:"analysis,omitempty"`
	Job      *model.QueryJob       `json:"job,omitempty"`
	Error    string                `json:"error,omitempty"`
}

// Broker 事件广播。只向当前在线的订阅者尽力投递，不保证送达，
// 迟到的订阅者错过的事件需要回查 JobStore。
type Broker interface {
	Publish(ctx context.Context, ev *Event) error
	// Subscribe 订阅指定任务的事件；jobID 为空表示订阅全部任务。
	// 返回的取消函数释放订阅。
	Subscribe(ctx context.Context, jobID string) (<-chan *Event, func(), error)
}
