package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/aiseo_go_server/internal/model"
	"github.com/qs3c/aiseo_go_server/internal/store"
)

// JobRepository 基于数据库的任务存储，实现 store.JobStore。
// 用于需要跨重启保留查询历史的部署，接口与内存实现完全一致。
type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Create(job *model.QueryJob) error {
	err := r.db.Create(job).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return store.ErrJobExists
	}
	return err
}

func (r *JobRepository) Get(id string) (*model.QueryJob, error) {
	var job model.QueryJob
	err := r.db.Where("id = ?", id).First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrJobNotFound
		}
		return nil, err
	}
	return &job, nil
}

// Update 在事务里读改写，保证并发读取只会看到修改前或修改后的完整记录
func (r *JobRepository) Update(id string, mutate func(job *model.QueryJob)) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var job model.QueryJob
		if err := tx.Where("id = ?", id).First(&job).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return store.ErrJobNotFound
			}
			return err
		}
		mutate(&job)
		return tx.Save(&job).Error
	})
}

func (r *JobRepository) List(limit int) ([]*model.QueryJob, error) {
	var jobs []*model.QueryJob
	q := r.db.Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&jobs).Error
	return jobs, err
}

func (r *JobRepository) Prune(before time.Time) (int, error) {
	res := r.db.Where("status IN ? AND created_at < ?",
		[]string{model.JobStatusCompleted, model.JobStatusError}, before).
		Delete(&model.QueryJob{})
	return int(res.RowsAffected), res.Error
}
