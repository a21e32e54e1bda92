package cron

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/aiseo_go_server/internal/model"
	"github.com/qs3c/aiseo_go_server/internal/store"
)

func TestService_RunNow(t *testing.T) {
	s := store.NewMemoryStore()

	old := &model.QueryJob{
		ID:        "old",
		Prompt:    "p",
		Status:    model.JobStatusCompleted,
		Results:   model.ProviderResultMap{},
		CreatedAt: time.Now().Add(-2 * time.Hour),
	}
	require.NoError(t, s.Create(old))

	fresh := &model.QueryJob{
		ID:        "fresh",
		Prompt:    "p",
		Status:    model.JobStatusCompleted,
		Results:   model.ProviderResultMap{},
		CreatedAt: time.Now(),
	}
	require.NoError(t, s.Create(fresh))

	svc := NewService(s, time.Hour, time.Minute)
	svc.RunNow()

	_, err := s.Get("old")
	assert.ErrorIs(t, err, store.ErrJobNotFound)
	_, err = s.Get("fresh")
	assert.NoError(t, err)
}

func TestService_StartStop(t *testing.T) {
	s := store.NewMemoryStore()
	svc := NewService(s, time.Hour, 10*time.Millisecond)

	svc.Start()
	time.Sleep(30 * time.Millisecond)
	svc.Stop()
}
