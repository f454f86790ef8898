package xruntime

import (
	"context"
	"sync"
)

type futureState int

const (
	futurePending futureState = iota
	futureResolved
	futureFailed
	futureCancelled
)

// Future 单次赋值结果
// Resolve/Fail/Cancel 只有第一次生效, 之后的调用返回false且不报错
type Future struct {
	mu    sync.Mutex
	state futureState
	value any
	err   error
	done  chan struct{}
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) complete(state futureState, value any, err error) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != futurePending {
		return false
	}
	f.state = state
	f.value = value
	f.err = err
	close(f.done)
	return true
}

func (f *Future) Resolve(value any) bool {
	return f.complete(futureResolved, value, nil)
}

func (f *Future) Fail(err error) bool {
	return f.complete(futureFailed, nil, err)
}

func (f *Future) Cancel() bool {
	return f.complete(futureCancelled, nil, ErrCancelled)
}

func (f *Future) Done() <-chan struct{} {
	return f.done
}

// 已完成(包括取消)
func (f *Future) IsDone() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state != futurePending
}

func (f *Future) Cancelled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state == futureCancelled
}

// 等待结果, ctx结束时返回ctx.Err(), 不修改future状态
func (f *Future) Wait(ctx context.Context) (any, error) {
	select {
	case <-f.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value, f.err
}
