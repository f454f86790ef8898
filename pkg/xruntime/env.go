// Package xruntime 并发原语工厂: 信号, 单次赋值future, FIFO队列, 阻塞任务执行器, 并行等待
// actor层只通过Environment创建这些原语, 不直接持有全局状态
package xruntime

import (
	"context"
	"runtime/debug"
	"sync"
	"time"

	"gactor/pkg/xlog"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const defaultExecutorWorkers = 8

type Environment interface {
	NewSignal() *Signal
	NewFuture() *Future
	NewChannel(capacity int) Channel // capacity 0: 无界
	RunInExecutor(ctx context.Context, fn func(ctx context.Context) (any, error)) *Future
	RunParallel(ctx context.Context, fns []func(ctx context.Context) error, timeout time.Duration) error
}

type EnvArgs struct {
	ExecutorWorkers int // 阻塞任务并发上限(默认8)
}

type environment struct {
	slots chan struct{}
}

func New(arg EnvArgs) Environment {
	workers := arg.ExecutorWorkers
	if workers <= 0 {
		workers = defaultExecutorWorkers
	}
	return &environment{slots: make(chan struct{}, workers)}
}

func (env *environment) NewSignal() *Signal {
	return newSignal()
}

func (env *environment) NewFuture() *Future {
	return newFuture()
}

func (env *environment) NewChannel(capacity int) Channel {
	if capacity <= 0 {
		return newUnboundedChannel()
	}
	return newBoundedChannel(capacity)
}

// 阻塞任务放到执行器中, 受slots限制并发
func (env *environment) RunInExecutor(ctx context.Context, fn func(ctx context.Context) (any, error)) *Future {
	f := newFuture()
	go func() {
		select {
		case env.slots <- struct{}{}:
		case <-ctx.Done():
			f.Fail(ctx.Err())
			return
		}
		defer func() { <-env.slots }()

		defer func() {
			if r := recover(); r != nil {
				xlog.Get(ctx).Error("Executor task panic", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				f.Fail(errors.WithMessagef(ErrPanic, "%v", r))
			}
		}()
		v, err := fn(ctx)
		if err != nil {
			f.Fail(err)
			return
		}
		f.Resolve(v)
	}()
	return f
}

// 并行执行, 等待全部完成; timeout>0时超时返回ErrTimeout, 未完成的任务继续运行
func (env *environment) RunParallel(ctx context.Context, fns []func(ctx context.Context) error, timeout time.Duration) error {
	var (
		mu   sync.Mutex
		errs error
		wg   sync.WaitGroup
	)
	wg.Add(len(fns))
	for _, fn := range fns {
		go func(fn func(ctx context.Context) error) {
			defer wg.Done()
			if err := fn(ctx); err != nil {
				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
			}
		}(fn)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	var timer <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		timer = t.C
	}

	select {
	case <-done:
		mu.Lock()
		defer mu.Unlock()
		return errs
	case <-timer:
		return errors.WithStack(ErrTimeout)
	}
}
