package xactor

import (
	"context"
	"runtime/debug"
	"sync/atomic"
	"time"

	"gactor/pkg/xcommon"
	"gactor/pkg/xlog"
	"gactor/pkg/xmetrics"
	"gactor/pkg/xruntime"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// mailbox actor
// 特性:
//   1.单协程消费inbox, handler内无需加锁
//   2.按payload类型分发, 接口handler兜底
//   3.停止时先处理完已入队消息
type BaseActor struct {
	*Lifecycle

	name      string
	inbox     xruntime.Channel
	handlers  *handlerTable
	unhandled UnhandledPolicy
	metrics   xmetrics.ActorMetrics
	tick      time.Duration
	onTick    func(ctx context.Context)
	nextTick  time.Time // 只在actor协程内访问

	closed    atomic.Bool // AfterStop之后置位, 不再接收消息
	processed atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
	cost      atomic.Int64
}

type ActorArgs struct {
	Name      string
	InboxSize int // 0: 无界
	Handlers  []HandlerArgs
	Unhandled UnhandledPolicy
	Metrics   xmetrics.ActorMetrics

	// 定时任务, 在actor协程内执行; Tick<=0或OnTick为nil时关闭
	Tick   time.Duration
	OnTick func(ctx context.Context)
}

// 运行统计
type Stats struct {
	Name      string
	Processed int64
	Failed    int64
	Dropped   int64
	Pending   int
	AvgCost   time.Duration
}

func NewActor(env xruntime.Environment, arg ActorArgs) (*BaseActor, error) {
	handlers, err := newHandlerTable(arg.Handlers)
	if err != nil {
		return nil, errors.WithMessagef(err, "actor[%v]", arg.Name)
	}
	if arg.Metrics == nil {
		arg.Metrics = xmetrics.Nop()
	}
	a := &BaseActor{
		name:      arg.Name,
		inbox:     env.NewChannel(arg.InboxSize),
		handlers:  handlers,
		unhandled: arg.Unhandled,
		metrics:   arg.Metrics,
	}
	if arg.Tick > 0 && arg.OnTick != nil {
		a.tick, a.onTick = arg.Tick, arg.OnTick
	}
	a.Lifecycle = NewLifecycle(env, a)
	return a, nil
}

func (a *BaseActor) Name() string {
	return a.name
}

func (a *BaseActor) Len() int {
	return a.inbox.Len()
}

func (a *BaseActor) Stats() Stats {
	processed := a.processed.Load()
	return Stats{
		Name:      a.name,
		Processed: processed,
		Failed:    a.failed.Load(),
		Dropped:   a.dropped.Load(),
		Pending:   a.inbox.Len(),
		AvgCost:   time.Duration(xcommon.SafeDivision(a.cost.Load(), processed)),
	}
}

// 已停止的actor直接拒绝; 投递与AfterStop并发时, 落在清理之后的消息由这里补充清理
func (a *BaseActor) Receive(ctx context.Context, msg *Message) error {
	if a.closed.Load() {
		return errors.WithStack(ErrActorStopped)
	}
	if err := a.inbox.Put(ctx, msg); err != nil {
		return err
	}
	if a.closed.Load() {
		a.drain()
		return errors.WithStack(ErrActorStopped)
	}
	return nil
}

func (a *BaseActor) AfterStart(ctx context.Context) error {
	xlog.Get(ctx).Debug("Actor start", zap.String("name", a.name))
	return nil
}

// 停止哨兵走同一个inbox, 排在已入队消息之后
func (a *BaseActor) BeforeStop(ctx context.Context) error {
	return a.inbox.Put(ctx, stopSentinel)
}

// 循环退出后残留的query直接失败, 避免ask永久阻塞
func (a *BaseActor) AfterStop(ctx context.Context, cause error) {
	a.closed.Store(true)
	a.drain()
	a.metrics.MailboxDepth(a.name, 0)
	if cause != nil && !errors.Is(cause, ErrActorStopped) {
		xlog.Get(ctx).Warn("Actor stopped", zap.String("name", a.name), zap.Error(cause))
		return
	}
	xlog.Get(ctx).Debug("Actor stopped", zap.String("name", a.name))
}

func (a *BaseActor) drain() {
	for {
		item, ok := a.inbox.TryGet()
		if !ok {
			return
		}
		if msg := item.(*Message); msg != stopSentinel {
			msg.fulfill(nil, errors.WithStack(ErrActorStopped))
		}
	}
}

func (a *BaseActor) Step(ctx context.Context) (bool, error) {
	item, err := a.next(ctx)
	if err != nil {
		return false, err
	}
	if item == nil {
		a.onTick(ctx)
		return false, nil
	}
	msg := item.(*Message)
	if msg == stopSentinel {
		return true, nil
	}
	a.metrics.MailboxDepth(a.name, a.inbox.Len())
	return false, a.dispatch(ctx, msg)
}

// 取下一条消息; 开启定时任务时, 到点返回nil
func (a *BaseActor) next(ctx context.Context) (any, error) {
	if a.onTick == nil {
		return a.inbox.Get(ctx)
	}
	if a.nextTick.IsZero() {
		a.nextTick = time.Now().Add(a.tick)
	}
	gctx, cancel := context.WithDeadline(ctx, a.nextTick)
	defer cancel()
	item, err := a.inbox.Get(gctx)
	if err == nil {
		return item, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}
	a.nextTick = a.nextTick.Add(a.tick)
	if now := time.Now(); a.nextTick.Before(now) {
		a.nextTick = now.Add(a.tick)
	}
	return nil, nil
}

func (a *BaseActor) dispatch(ctx context.Context, msg *Message) error {
	msgType := typeName(msg.Payload)
	handler := a.handlers.lookup(msg.Payload)
	if handler == nil {
		a.dropped.Add(1)
		a.metrics.MessageDropped(a.name, msgType)
		xlog.Get(ctx).Debug("Handler not found, drop message", zap.String("name", a.name), zap.String("type", msgType))
		if a.unhandled == UnhandledFail {
			msg.fulfill(nil, errors.Wrapf(ErrNoHandler, "payload type %v", msgType))
		}
		return nil
	}

	now := time.Now()
	result, panicked, err := a.invoke(ctx, handler, msg)
	cost := time.Since(now)

	a.processed.Add(1)
	a.cost.Add(int64(cost))
	a.metrics.MessageDuration(a.name, msgType, cost)
	a.metrics.MessageProcessed(a.name, msgType, err == nil)

	if panicked {
		a.failed.Add(1)
		a.metrics.HandlerPanic(a.name, msgType)
		msg.fulfill(nil, err)
		return err
	}
	if err != nil {
		a.failed.Add(1)
		if !msg.IsQuery() {
			xlog.Get(ctx).Warn("Handler failed", zap.String("name", a.name), zap.String("type", msgType), zap.Error(err))
		}
	}
	msg.fulfill(result, err)
	return nil
}

func (a *BaseActor) invoke(ctx context.Context, handler Handler, msg *Message) (result any, panicked bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			xlog.Get(ctx).Error("Handler panic, actor exit", zap.String("name", a.name),
				zap.String("type", typeName(msg.Payload)), zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
			result, panicked = nil, true
			err = errors.WithMessagef(ErrHandlerPanic, "%v", r)
		}
	}()
	result, err = handler(ctx, msg.Payload, msg.Sender)
	return result, false, err
}

var _ Actor = (*BaseActor)(nil)
