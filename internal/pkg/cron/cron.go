package cron

import (
	"log"
	"time"

	"github.com/qs3c/aiseo_go_server/internal/store"
)

// Service 定时回收过期任务，给长期运行的进程限制内存占用。
// 只回收已终态的任务，进行中的查询不受影响。
type Service struct {
	jobStore store.JobStore
	maxAge   time.Duration
	interval time.Duration
	stopChan chan struct{}
}

func NewService(jobStore store.JobStore, maxAge, interval time.Duration) *Service {
	return &Service{
		jobStore: jobStore,
		maxAge:   maxAge,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start 启动定时任务
func (s *Service) Start() {
	go s.runSweep()
	log.Println("Cron service started (job retention sweep)")
}

// Stop 停止定时任务
func (s *Service) Stop() {
	close(s.stopChan)
	log.Println("Cron service stopped")
}

func (s *Service) runSweep() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Service) sweep() {
	pruned, err := s.jobStore.Prune(time.Now().Add(-s.maxAge))
	if err != nil {
		log.Printf("Retention sweep failed: %v", err)
		return
	}
	if pruned > 0 {
		log.Printf("Retention sweep removed %d jobs", pruned)
	}
}

// RunNow 立即执行一次回收（用于测试或手动触发）
func (s *Service) RunNow() {
	s.sweep()
}
