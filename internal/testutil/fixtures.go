package testutil

import (
	"context"
	"time"

	"github.com/qs3c/aiseo_go_server/internal/model"
)

// NewTestJob 构造一个处理中的查询任务
func NewTestJob(id, prompt string) *model.QueryJob {
	return &model.QueryJob{
		ID:        id,
		Prompt:    prompt,
		Status:    model.JobStatusProcessing,
		Results:   model.ProviderResultMap{},
		Analysis:  model.AnalysisResultMap{},
		CreatedAt: time.Now(),
	}
}

// StubAdapter 可编程的服务商适配器，测试里替代真实 SDK 调用
type StubAdapter struct {
	AdapterName string
	Display     string
	ModelName   string
	Search      bool
	Result      *model.ProviderResult
	Delay       time.Duration
	CallFn      func(ctx context.Context, prompt string) *model.ProviderResult
}

func (s *StubAdapter) Name() string {
	return s.AdapterName
}

func (s *StubAdapter) DisplayName() string {
	if s.Display != "" {
		return s.Display
	}
	return s.AdapterName
}

func (s *StubAdapter) Model() string {
	return s.ModelName
}

func (s *StubAdapter) IsSearch() bool {
	return s.Search
}

func (s *StubAdapter) Call(ctx context.Context, prompt string) *model.ProviderResult {
	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return model.NewErrorResult(s.AdapterName, ctx.Err().Error())
		}
	}
	if s.CallFn != nil {
		return s.CallFn(ctx, prompt)
	}
	if s.Result != nil {
		return s.Result
	}
	return model.NewTextResult(s.AdapterName, s.ModelName, "stub response")
}
