package xactor

import (
	"context"
	"sync"
	"sync/atomic"

	"gactor/pkg/xlog"
	"gactor/pkg/xmetrics"
	"gactor/pkg/xruntime"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// 构造一个actor, 构造参数由闭包绑定
type Constructor func(env xruntime.Environment) (Actor, error)

// 批量构造worker
type ActorFactory func(env xruntime.Environment, ctor Constructor, size int) ([]Actor, error)

func SimpleFactory(env xruntime.Environment, ctor Constructor, size int) ([]Actor, error) {
	workers := make([]Actor, 0, size)
	for i := 0; i < size; i++ {
		w, err := ctor(env)
		if err != nil {
			return nil, errors.WithMessagef(err, "create worker %d", i)
		}
		workers = append(workers, w)
	}
	return workers, nil
}

type PoolArgs struct {
	Name    string
	Size    int
	New     Constructor
	Factory ActorFactory  // 默认SimpleFactory
	Router  RouterFactory // 默认NewRoundRobinRouter
	Metrics xmetrics.ActorMetrics
}

// Pool N个worker对外表现为一个actor, 自身不持有inbox
type Pool struct {
	env     xruntime.Environment
	name    string
	workers []Actor
	router  Router
	metrics xmetrics.ActorMetrics

	state     atomic.Int32
	readyOnce sync.Once
	ready     chan struct{}
}

func NewPool(env xruntime.Environment, arg PoolArgs) (*Pool, error) {
	if arg.Size <= 0 {
		return nil, errors.Errorf("pool[%v] size %d invalid", arg.Name, arg.Size)
	}
	if arg.New == nil {
		return nil, errors.Wrapf(ErrInvalidHandler, "pool[%v] constructor is nil", arg.Name)
	}
	if arg.Factory == nil {
		arg.Factory = SimpleFactory
	}
	if arg.Router == nil {
		arg.Router = NewRoundRobinRouter
	}
	if arg.Metrics == nil {
		arg.Metrics = xmetrics.Nop()
	}

	workers, err := arg.Factory(env, arg.New, arg.Size)
	if err != nil {
		return nil, errors.WithMessagef(err, "pool[%v]", arg.Name)
	}
	return &Pool{
		env:     env,
		name:    arg.Name,
		workers: workers,
		router:  arg.Router(workers),
		metrics: arg.Metrics,
		ready:   make(chan struct{}),
	}, nil
}

// 轮询pool
func NewRoundRobinPool(env xruntime.Environment, name string, ctor Constructor, size int) (*Pool, error) {
	return NewPool(env, PoolArgs{Name: name, Size: size, New: ctor, Router: NewRoundRobinRouter})
}

// 通过System创建pool
func PoolOf(arg PoolArgs) Constructor {
	return func(env xruntime.Environment) (Actor, error) {
		return NewPool(env, arg)
	}
}

func (p *Pool) Name() string {
	return p.name
}

func (p *Pool) Workers() []Actor {
	return p.workers
}

func (p *Pool) State() State {
	return State(p.state.Load())
}

func (p *Pool) Ready() <-chan struct{} {
	return p.ready
}

func (p *Pool) markReady() {
	p.readyOnce.Do(func() { close(p.ready) })
}

// 各worker统计
func (p *Pool) Stats() []Stats {
	stats := make([]Stats, 0, len(p.workers))
	for _, w := range p.workers {
		if s, ok := w.(interface{ Stats() Stats }); ok {
			stats = append(stats, s.Stats())
		}
	}
	return stats
}

func (p *Pool) Receive(ctx context.Context, msg *Message) error {
	if s, ok := p.router.(Selector); ok && len(p.workers) > 0 {
		i := s.Select(msg)
		p.metrics.RouterDispatch(p.name, i)
		return p.workers[i].Receive(ctx, msg)
	}
	return p.router.Receive(ctx, msg)
}

func (p *Pool) Tell(ctx context.Context, payload any, sender Actor) error {
	if p.State() >= StateStopping {
		return errors.WithStack(ErrActorStopped)
	}
	return tell(ctx, p, payload, sender)
}

func (p *Pool) Ask(ctx context.Context, payload any, sender Actor) (any, error) {
	if p.State() >= StateStopping {
		return nil, errors.WithStack(ErrActorStopped)
	}
	return ask(ctx, p.env, p, payload, sender)
}

// 并行运行全部worker, 所有worker循环退出后返回
func (p *Pool) Run(ctx context.Context) error {
	if !p.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return errors.Wrapf(ErrAlreadyStarted, "pool[%v] state %v", p.name, p.State())
	}
	defer p.markReady()

	go func() {
		for _, w := range p.workers {
			select {
			case <-w.Ready():
			case <-ctx.Done():
				return
			}
		}
		p.markReady()
	}()

	fns := make([]func(ctx context.Context) error, 0, len(p.workers))
	for i, w := range p.workers {
		fns = append(fns, func(ctx context.Context) error {
			return w.Run(xlog.NewContext(ctx, zap.String("pool", p.name), zap.Int("worker", i)))
		})
	}
	err := p.env.RunParallel(ctx, fns, 0)
	p.state.CompareAndSwap(int32(StateRunning), int32(StateStopped))
	return err
}

// 逐个停止并等待; 全部worker停止后才置为stopped
func (p *Pool) Stop(ctx context.Context) error {
loop:
	for {
		switch p.State() {
		case StateIdle:
			if p.state.CompareAndSwap(int32(StateIdle), int32(StateStopping)) {
				break loop
			}
		case StateRunning:
			if p.state.CompareAndSwap(int32(StateRunning), int32(StateStopping)) {
				break loop
			}
		case StateStopping:
			break loop
		default:
			return nil
		}
	}

	var errs error
	for _, w := range p.workers {
		errs = multierr.Append(errs, w.Stop(ctx))
	}
	if errs != nil {
		return errs
	}
	p.state.Store(int32(StateStopped))
	p.markReady()
	xlog.Get(ctx).Debug("Pool stopped", zap.String("name", p.name), zap.Int("size", len(p.workers)))
	return nil
}

var _ Actor = (*Pool)(nil)
