package store

import (
	"errors"
	"time"

	"github.com/qs3c/aiseo_go_server/internal/model"
)

var (
	ErrJobNotFound = errors.New("查询任务不存在")
	ErrJobExists   = errors.New("任务ID冲突")
)

// JobStore 任务存储。编排协程是任务的唯一写入方，读取方拿到的是快照；
// Update 的修改函数对同一 ID 的并发读取是原子的。
type JobStore interface {
	Create(job *model.QueryJob) error
	Get(id string) (*model.QueryJob, error)
	Update(id string, mutate func(job *model.QueryJob)) error
	// List 按创建时间倒序返回最近的任务
	List(limit int) ([]*model.QueryJob, error)
	// Prune 删除 before 之前创建且已终态的任务，返回删除数量
	Prune(before time.Time) (int, error)
}
