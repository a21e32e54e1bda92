package pubsub

import (
	"context"
	"sync"
)

const subscriberBuffer = 64

// Bus 进程内广播（默认实现）。缓冲写满时丢弃事件，符合尽力投递语义。
type Bus struct {
	mu     sync.RWMutex
	nextID int64
	subs   map[int64]*busSubscription
}

type busSubscription struct {
	jobID string // 空串 = 全部任务
	ch    chan *Event
}

func NewBus() *Bus {
	return &Bus{
		subs: make(map[int64]*busSubscription),
	}
}

func (b *Bus) Publish(ctx context.Context, ev *Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs {
		if sub.jobID != "" && sub.jobID != ev.JobID {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			// 订阅者消费太慢，丢弃
		}
	}
	return nil
}

func (b *Bus) Subscribe(ctx context.Context, jobID string) (<-chan *Event, func(), error) {
	sub := &busSubscription{
		jobID: jobID,
		ch:    make(chan *Event, subscriberBuffer),
	}

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = sub
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(sub.ch)
		})
	}

	if ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			cancel()
		}()
	}

	return sub.ch, cancel, nil
}
