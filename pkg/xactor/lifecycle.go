package xactor

import (
	"context"
	"reflect"
	"sync"
	"sync/atomic"

	"gactor/pkg/xruntime"

	"github.com/pkg/errors"
)

// Behavior 由Lifecycle驱动的具体actor行为
type Behavior interface {
	Receive(ctx context.Context, msg *Message) error
	// 处理一条消息; 取到BeforeStop注入的停止哨兵时返回true
	Step(ctx context.Context) (bool, error)
	AfterStart(ctx context.Context) error
	BeforeStop(ctx context.Context) error
	// 循环退出后调用, cause为循环退出原因
	AfterStop(ctx context.Context, cause error)
}

// Lifecycle 通用run/stop状态机: idle -> running -> stopping -> stopped
type Lifecycle struct {
	env      xruntime.Environment
	behavior Behavior

	state     atomic.Int32
	completed *xruntime.Signal

	readyOnce sync.Once
	ready     chan struct{}
}

func NewLifecycle(env xruntime.Environment, behavior Behavior) *Lifecycle {
	return &Lifecycle{
		env:       env,
		behavior:  behavior,
		completed: env.NewSignal(),
		ready:     make(chan struct{}),
	}
}

func (c *Lifecycle) Env() xruntime.Environment {
	return c.env
}

func (c *Lifecycle) State() State {
	return State(c.state.Load())
}

func (c *Lifecycle) Ready() <-chan struct{} {
	return c.ready
}

func (c *Lifecycle) markReady() {
	c.readyOnce.Do(func() { close(c.ready) })
}

// 运行直到停止哨兵被处理, 或Step返回错误
func (c *Lifecycle) Run(ctx context.Context) (err error) {
	if !c.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return errors.Wrapf(ErrAlreadyStarted, "state %v", c.State())
	}
	c.completed.Clear()
	defer func() {
		c.behavior.AfterStop(ctx, err)
		c.state.Store(int32(StateStopped))
		c.markReady()
		c.completed.Set()
	}()

	if err := c.behavior.AfterStart(ctx); err != nil {
		return err
	}
	c.markReady()

	for {
		stopSeen, err := c.behavior.Step(ctx)
		if err != nil {
			return err
		}
		if stopSeen && c.State() != StateRunning {
			return nil
		}
	}
}

// 优雅停止: 停止哨兵排在已入队消息之后, 等待循环退出
// 重复调用直接返回
func (c *Lifecycle) Stop(ctx context.Context) error {
	for {
		switch c.State() {
		case StateIdle:
			if !c.state.CompareAndSwap(int32(StateIdle), int32(StateStopped)) {
				continue
			}
			c.behavior.AfterStop(ctx, ErrActorStopped)
			c.markReady()
			c.completed.Set()
			return nil
		case StateRunning:
			if !c.state.CompareAndSwap(int32(StateRunning), int32(StateStopping)) {
				continue
			}
			if err := c.beforeStop(ctx); err != nil {
				return err
			}
			return c.completed.Wait(ctx)
		case StateStopping:
			return c.completed.Wait(ctx)
		default:
			return nil
		}
	}
}

// 循环已退出(如handler panic)时, 不再阻塞在投递哨兵上
func (c *Lifecycle) beforeStop(ctx context.Context) error {
	bctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if c.completed.Wait(bctx) == nil {
			cancel()
		}
	}()

	err := c.behavior.BeforeStop(bctx)
	if err != nil && c.completed.IsSet() {
		return nil
	}
	return err
}

func (c *Lifecycle) Tell(ctx context.Context, payload any, sender Actor) error {
	if c.State() >= StateStopping {
		return errors.WithStack(ErrActorStopped)
	}
	return tell(ctx, c.behavior, payload, sender)
}

func (c *Lifecycle) Ask(ctx context.Context, payload any, sender Actor) (any, error) {
	if c.State() >= StateStopping {
		return nil, errors.WithStack(ErrActorStopped)
	}
	return ask(ctx, c.env, c.behavior, payload, sender)
}

func tell(ctx context.Context, r Receiver, payload any, sender Actor) error {
	return r.Receive(ctx, NewMessage(payload, sender))
}

// 只等待结果; ctx结束时取消future, handler之后的赋值被忽略
func ask(ctx context.Context, env xruntime.Environment, r Receiver, payload any, sender Actor) (any, error) {
	result := env.NewFuture()
	if err := r.Receive(ctx, NewQuery(result, payload, sender)); err != nil {
		// 已入队的消息可能已被处理或清理, 以future为准
		if result.Cancel() {
			return nil, err
		}
		return result.Wait(ctx)
	}
	v, err := result.Wait(ctx)
	if err != nil && !result.IsDone() {
		result.Cancel()
	}
	return v, err
}

// 同步请求(模板), 结果类型不匹配时返回错误
func AskAs[R any](ctx context.Context, actor Actor, payload any, sender Actor) (R, error) {
	var zero R
	result, err := actor.Ask(ctx, payload, sender)
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}
	resp, ok := result.(R)
	if !ok {
		return zero, errors.Errorf("result [%v] not type [%v]", reflect.TypeOf(result), reflect.TypeOf((*R)(nil)).Elem())
	}
	return resp, nil
}
