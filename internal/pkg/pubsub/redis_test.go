package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/aiseo_go_server/internal/model"
)

func setupRedisBroker(t *testing.T) (*RedisBroker, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	broker := NewRedisBroker(client)

	return broker, func() {
		client.Close()
		mr.Close()
	}
}

func TestRedisBroker_PublishSubscribe(t *testing.T) {
	broker, teardown := setupRedisBroker(t)
	defer teardown()

	ctx, cancelCtx := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelCtx()

	ch, cancel, err := broker.Subscribe(ctx, "job-1")
	require.NoError(t, err)
	defer cancel()

	ev := &Event{
		Type:     EventProviderComplete,
		JobID:    "job-1",
		Provider: "anthropic",
		Result:   model.NewTextResult("anthropic", "claude-3-5-sonnet-20241022", "hi"),
	}
	require.NoError(t, broker.Publish(ctx, ev))

	select {
	case got := <-ch:
		assert.Equal(t, EventProviderComplete, got.Type)
		assert.Equal(t, "anthropic", got.Provider)
		require.NotNil(t, got.Result)
		assert.Equal(t, "hi", got.Result.Text)
	case <-time.After(3 * time.Second):
		t.Fatal("expected event from redis broker")
	}
}

func TestRedisBroker_FiltersOtherJobs(t *testing.T) {
	broker, teardown := setupRedisBroker(t)
	defer teardown()

	ctx, cancelCtx := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelCtx()

	ch, cancel, err := broker.Subscribe(ctx, "job-1")
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, broker.Publish(ctx, &Event{Type: EventProviderStart, JobID: "job-2"}))
	require.NoError(t, broker.Publish(ctx, &Event{Type: EventProviderStart, JobID: "job-1"}))

	select {
	case got := <-ch:
		assert.Equal(t, "job-1", got.JobID)
	case <-time.After(3 * time.Second):
		t.Fatal("expected event for job-1")
	}

	select {
	case got := <-ch:
		t.Fatalf("unexpected extra event: %+v", got)
	case <-time.After(100 * time.Millisecond):
	}
}
