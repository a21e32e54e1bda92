package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const channelQueryEvents = "query_events"

// RedisBroker 基于 Redis Pub/Sub 的事件广播，多实例部署时让所有
// 节点的 WebSocket 客户端都能收到进度。单通道 + job_id 过滤。
type RedisBroker struct {
	client *redis.Client
}

func NewRedisBroker(client *redis.Client) *RedisBroker {
	return &RedisBroker{client: client}
}

func (b *RedisBroker) Publish(ctx context.Context, ev *Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return b.client.Publish(ctx, channelQueryEvents, data).Err()
}

func (b *RedisBroker) Subscribe(ctx context.Context, jobID string) (<-chan *Event, func(), error) {
	sub := b.client.Subscribe(ctx, channelQueryEvents)

	// 确认订阅建立，避免错过紧随其后的事件
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, nil, err
	}

	out := make(chan *Event, subscriberBuffer)
	go func() {
		defer close(out)
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					continue // 忽略解析错误
				}
				if jobID != "" && ev.JobID != jobID {
					continue
				}
				select {
				case out <- &ev:
				default:
				}
			}
		}
	}()

	cancel := func() {
		sub.Close()
	}
	return out, cancel, nil
}
