package xactor

import (
	"context"
	"sort"
	"sync"
	"time"

	"gactor/pkg/xcommon"
	"gactor/pkg/xlog"
	"gactor/pkg/xruntime"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type SystemArgs struct {
	Name string
	Env  xruntime.Environment // 默认xruntime.New
}

type runEntry struct {
	actor Actor
	done  chan struct{}
}

// System 负责创建/调度/停止actor
type System struct {
	name string
	env  xruntime.Environment
	ctx  context.Context

	mu     sync.RWMutex
	actors map[string]*runEntry
	wg     xcommon.WaitGroup
}

// ctx为所有actor运行循环的父context
func NewSystem(ctx context.Context, arg SystemArgs) *System {
	if arg.Env == nil {
		arg.Env = xruntime.New(xruntime.EnvArgs{})
	}
	return &System{
		name:   arg.Name,
		env:    arg.Env,
		ctx:    xlog.NewContext(ctx, zap.String("system", arg.Name)),
		actors: make(map[string]*runEntry),
	}
}

func (s *System) Name() string {
	return s.name
}

func (s *System) Env() xruntime.Environment {
	return s.env
}

// 创建并调度actor, actor就绪后返回; name为空时生成uuid
func (s *System) Create(ctx context.Context, name string, ctor Constructor) (Actor, error) {
	if name == "" {
		name = uuid.NewString()
	}
	actor, err := ctor(s.env)
	if err != nil {
		return nil, err
	}

	entry := &runEntry{actor: actor, done: make(chan struct{})}
	s.mu.Lock()
	if _, ok := s.actors[name]; ok {
		s.mu.Unlock()
		return nil, errors.Wrapf(ErrDuplicateActor, "name %v", name)
	}
	s.actors[name] = entry
	s.mu.Unlock()

	runCtx := xlog.NewContext(s.ctx, zap.String("actor", name))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done(runCtx)
		defer close(entry.done)
		if err := actor.Run(runCtx); err != nil {
			xlog.Get(runCtx).Warn("Actor run exit", zap.Error(err))
		}
	}()

	select {
	case <-actor.Ready():
		return actor, nil
	case <-ctx.Done():
		return actor, ctx.Err()
	}
}

func (s *System) Get(name string) (Actor, error) {
	s.mu.RLock()
	entry := s.actors[name]
	s.mu.RUnlock()
	if entry == nil {
		return nil, errors.Wrapf(ErrActorNotFound, "name %v", name)
	}
	return entry.actor, nil
}

func (s *System) Names() []string {
	s.mu.RLock()
	names := make([]string, 0, len(s.actors))
	for name := range s.actors {
		names = append(names, name)
	}
	s.mu.RUnlock()
	sort.Strings(names)
	return names
}

// 停止并删除单个actor
func (s *System) Stop(ctx context.Context, name string) error {
	actor, err := s.Get(name)
	if err != nil {
		return err
	}
	if err := actor.Stop(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.actors, name)
	s.mu.Unlock()
	return nil
}

func (s *System) entries() []*runEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]*runEntry, 0, len(s.actors))
	for _, entry := range s.actors {
		entries = append(entries, entry)
	}
	return entries
}

// 并行停止全部actor
func (s *System) Shutdown(ctx context.Context) error {
	entries := s.entries()
	fns := make([]func(ctx context.Context) error, 0, len(entries))
	for _, entry := range entries {
		fns = append(fns, entry.actor.Stop)
	}
	err := s.env.RunParallel(ctx, fns, 0)

	s.mu.Lock()
	s.actors = make(map[string]*runEntry)
	s.mu.Unlock()

	xlog.Get(s.ctx).Info("Actor system shutdown", zap.Int("actors", len(entries)), zap.Error(err))
	return err
}

// 等待actor自行退出(最多timeout), 然后Shutdown
func (s *System) AwaitTermination(ctx context.Context, timeout time.Duration) error {
	entries := s.entries()
	fns := make([]func(ctx context.Context) error, 0, len(entries))
	for _, entry := range entries {
		done := entry.done
		fns = append(fns, func(ctx context.Context) error {
			select {
			case <-done:
			case <-ctx.Done():
			}
			return nil
		})
	}
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := s.env.RunParallel(wctx, fns, timeout); err != nil && !errors.Is(err, xruntime.ErrTimeout) {
		return err
	}
	cancel()
	return s.Shutdown(ctx)
}

// 等待所有运行循环退出
func (s *System) Wait() {
	s.wg.Wait()
}
