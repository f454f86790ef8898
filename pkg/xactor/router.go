package xactor

import (
	"context"
	"hash/fnv"
	"sync/atomic"

	"github.com/pkg/errors"
)

// Router 从固定worker集合中选出一个, 直接投递到其Receive, 不做缓冲
type Router interface {
	Receiver
}

type RouterFactory func(workers []Actor) Router

// Selector 内置router提供的选择接口, pool用于统计投递分布
type Selector interface {
	Select(msg *Message) int
}

type selectRouter struct {
	workers []Actor
	pick    func(msg *Message) int
}

func (r *selectRouter) Select(msg *Message) int {
	return r.pick(msg)
}

func (r *selectRouter) Receive(ctx context.Context, msg *Message) error {
	if len(r.workers) == 0 {
		return errors.WithStack(ErrNoWorkers)
	}
	return r.workers[r.pick(msg)].Receive(ctx, msg)
}

// 轮询: 每次调用游标前进一位, 与消息内容无关
func NewRoundRobinRouter(workers []Actor) Router {
	var cursor atomic.Uint64
	n := uint64(len(workers))
	return &selectRouter{workers: workers, pick: func(*Message) int {
		if n == 0 {
			return 0
		}
		return int((cursor.Add(1) - 1) % n)
	}}
}

// 按key哈希, 相同key固定到同一worker
func NewHashRouter(key func(payload any) string) RouterFactory {
	return func(workers []Actor) Router {
		n := uint32(len(workers))
		return &selectRouter{workers: workers, pick: func(msg *Message) int {
			if n == 0 {
				return 0
			}
			h := fnv.New32a()
			_, _ = h.Write([]byte(key(msg.Payload)))
			return int(h.Sum32() % n)
		}}
	}
}

// 选inbox最短的worker, 相同时取下标最小; 不提供Len()的worker视为0
func NewLeastLoadedRouter(workers []Actor) Router {
	return &selectRouter{workers: workers, pick: func(*Message) int {
		best, bestLen := 0, -1
		for i, w := range workers {
			n := 0
			if l, ok := w.(interface{ Len() int }); ok {
				n = l.Len()
			}
			if bestLen < 0 || n < bestLen {
				best, bestLen = i, n
			}
		}
		return best
	}}
}
