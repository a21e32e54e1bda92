package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/qs3c/aiseo_go_server/internal/model"
	"github.com/qs3c/aiseo_go_server/internal/pkg/pubsub"
	"github.com/qs3c/aiseo_go_server/internal/provider"
	"github.com/qs3c/aiseo_go_server/internal/store"
)

var (
	ErrEmptyQuery = errors.New("查询内容不能为空")
	ErrNoAnalysis = errors.New("分析结果不存在")
)

// 历史列表默认返回的任务数
const historyLimit = 20

// ResultAnalyzer 二次分析依赖。实现方永不返回 nil，内部自带降级。
type ResultAnalyzer interface {
	Enabled() bool
	Analyze(ctx context.Context, responseText, query, provider string) *model.AnalysisResult
}

// ResultArchiver 结果快照归档（OSS）
type ResultArchiver interface {
	UploadResult(jobID string, data []byte) (string, error)
}

// QueryService 查询编排核心：接收提示词，逐个调用启用的服务商，
// 对话型成功结果再送二次分析，全程通过 Broker 推送进度事件。
// 单个服务商失败只记录失败结果，不影响任务完成。
type QueryService struct {
	jobStore   store.JobStore
	registry   provider.Source
	analyzer   ResultAnalyzer
	broker     pubsub.Broker
	archiver   ResultArchiver // 可为 nil
	resultsDir string         // 本地结果目录，空串关闭
}

func NewQueryService(
	jobStore store.JobStore,
	registry provider.Source,
	analyzer ResultAnalyzer,
	broker pubsub.Broker,
	archiver ResultArchiver,
	resultsDir string,
) *QueryService {
	return &QueryService{
		jobStore:   jobStore,
		registry:   registry,
		analyzer:   analyzer,
		broker:     broker,
		archiver:   archiver,
		resultsDir: resultsDir,
	}
}

// Submit 创建查询任务并启动后台编排，立即返回任务句柄。
// providers 为空表示使用全部启用的服务商。每次提交重新评估注册表，
// 凭证变更即时生效；任务运行期间服务商集合不再变化。
func (s *QueryService) Submit(prompt string, providers []string) (*model.QueryJob, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrEmptyQuery
	}

	job := &model.QueryJob{
		ID:        uuid.New().String(),
		Prompt:    prompt,
		Status:    model.JobStatusProcessing,
		Results:   model.ProviderResultMap{},
		Analysis:  model.AnalysisResultMap{},
		CreatedAt: time.Now(),
	}
	if err := s.jobStore.Create(job); err != nil {
		return nil, err
	}

	adapters := s.registry().Select(providers)
	go s.process(context.Background(), job.ID, prompt, adapters)
	return job.Clone(), nil
}

// process 后台编排协程，任务状态的唯一写入方
func (s *QueryService) process(ctx context.Context, jobID, prompt string, adapters []provider.Adapter) {
	for _, adapter := range adapters {
		name := adapter.Name()
		s.publish(ctx, &pubsub.Event{Type: pubsub.EventProviderStart, JobID: jobID, Provider: name})

		result := adapter.Call(ctx, prompt)
		err := s.jobStore.Update(jobID, func(job *model.QueryJob) {
			if job.Results == nil {
				job.Results = model.ProviderResultMap{}
			}
			job.Results[name] = *result
		})
		if err != nil {
			s.fail(ctx, jobID, err)
			return
		}
		s.publish(ctx, &pubsub.Event{
			Type:     pubsub.EventProviderComplete,
			JobID:    jobID,
			Provider: name,
			Result:   result,
		})

		// 搜索型结果是结构化列表，不做文本分析
		if !result.Success || adapter.IsSearch() || s.analyzer == nil || !s.analyzer.Enabled() {
			continue
		}
		analysis := s.analyzer.Analyze(ctx, result.Text, prompt, name)
		err = s.jobStore.Update(jobID, func(job *model.QueryJob) {
			if job.Analysis == nil {
				job.Analysis = model.AnalysisResultMap{}
			}
			job.Analysis[name] = *analysis
		})
		if err != nil {
			s.fail(ctx, jobID, err)
			return
		}
		s.publish(ctx, &pubsub.Event{
			Type:     pubsub.EventAnalysisComplete,
			JobID:    jobID,
			Provider: name,
			Analysis: analysis,
		})
	}

	var snapshot *model.QueryJob
	err := s.jobStore.Update(jobID, func(job *model.QueryJob) {
		job.Status = model.JobStatusCompleted
		now := time.Now()
		job.CompletedAt = &now
		snapshot = job.Clone()
	})
	if err != nil {
		s.fail(ctx, jobID, err)
		return
	}

	s.publish(ctx, &pubsub.Event{Type: pubsub.EventQueryComplete, JobID: jobID, Job: snapshot})
	s.archive(snapshot)
}

// fail 编排自身出错（存储故障等）才会走到这里；服务商失败不算
func (s *QueryService) fail(ctx context.Context, jobID string, cause error) {
	log.Printf("Query job %s failed: %v", jobID, cause)

	err := s.jobStore.Update(jobID, func(job *model.QueryJob) {
		job.Status = model.JobStatusError
		job.Error = cause.Error()
		now := time.Now()
		job.CompletedAt = &now
	})
	if err != nil {
		log.Printf("Failed to mark job %s as error: %v", jobID, err)
	}

	s.publish(ctx, &pubsub.Event{Type: pubsub.EventQueryError, JobID: jobID, Error: cause.Error()})
}

func (s *QueryService) publish(ctx context.Context, ev *pubsub.Event) {
	if err := s.broker.Publish(ctx, ev); err != nil {
		log.Printf("Failed to publish %s event for job %s: %v", ev.Type, ev.JobID, err)
	}
}

// archive 终态快照落地：本地目录 + 可选 OSS
func (s *QueryService) archive(job *model.QueryJob) {
	if s.resultsDir == "" && s.archiver == nil {
		return
	}

	data, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		log.Printf("Failed to marshal job %s for archive: %v", job.ID, err)
		return
	}

	if s.resultsDir != "" {
		if err := os.MkdirAll(s.resultsDir, 0755); err != nil {
			log.Printf("Failed to create results dir: %v", err)
		} else {
			path := filepath.Join(s.resultsDir, job.ID+".json")
			if err := os.WriteFile(path, data, 0644); err != nil {
				log.Printf("Failed to write result file %s: %v", path, err)
			}
		}
	}

	if s.archiver != nil {
		url, err := s.archiver.UploadResult(job.ID, data)
		if err != nil {
			log.Printf("Failed to upload result for job %s: %v", job.ID, err)
		} else {
			log.Printf("Result for job %s archived to %s", job.ID, url)
		}
	}
}

// Get 按 ID 取任务快照
func (s *QueryService) Get(id string) (*model.QueryJob, error) {
	return s.jobStore.Get(id)
}

// Analysis 取任务的分析结果；任务存在但尚无分析时返回 ErrNoAnalysis
func (s *QueryService) Analysis(id string) (model.AnalysisResultMap, error) {
	job, err := s.jobStore.Get(id)
	if err != nil {
		return nil, err
	}
	if len(job.Analysis) == 0 {
		return nil, ErrNoAnalysis
	}
	return job.Analysis, nil
}

// History 最近的查询任务，创建时间倒序
func (s *QueryService) History() ([]*model.QueryJob, error) {
	return s.jobStore.List(historyLimit)
}
