package xruntime

import (
	"container/list"
	"context"
	"sync"
)

// Channel FIFO队列, 单消费者场景下保证顺序
type Channel interface {
	Put(ctx context.Context, v any) error // 有界队列满时阻塞
	Get(ctx context.Context) (any, error) // 队列为空时阻塞
	TryGet() (any, bool)
	Len() int
}

// 有界队列, 直接使用chan
type boundedChannel struct {
	ch chan any
}

func newBoundedChannel(capacity int) *boundedChannel {
	return &boundedChannel{ch: make(chan any, capacity)}
}

func (c *boundedChannel) Put(ctx context.Context, v any) error {
	select {
	case c.ch <- v:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *boundedChannel) Get(ctx context.Context) (any, error) {
	select {
	case v := <-c.ch:
		return v, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *boundedChannel) TryGet() (any, bool) {
	select {
	case v := <-c.ch:
		return v, true
	default:
		return nil, false
	}
}

func (c *boundedChannel) Len() int {
	return len(c.ch)
}

// 无界队列: list + 通知chan(容量1)
type unboundedChannel struct {
	mu     sync.Mutex
	items  *list.List
	notify chan struct{}
}

func newUnboundedChannel() *unboundedChannel {
	return &unboundedChannel{items: list.New(), notify: make(chan struct{}, 1)}
}

func (c *unboundedChannel) Put(ctx context.Context, v any) error {
	c.mu.Lock()
	c.items.PushBack(v)
	c.mu.Unlock()

	select {
	case c.notify <- struct{}{}:
	default:
	}
	return nil
}

func (c *unboundedChannel) Get(ctx context.Context) (any, error) {
	for {
		if v, ok := c.TryGet(); ok {
			return v, nil
		}
		select {
		case <-c.notify:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (c *unboundedChannel) TryGet() (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	front := c.items.Front()
	if front == nil {
		return nil, false
	}
	return c.items.Remove(front), true
}

func (c *unboundedChannel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items.Len()
}
