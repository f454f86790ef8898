package xruntime

import (
	"context"
	"sync"
)

// Signal 可复位事件, Set后所有Wait返回, Clear后重新阻塞
type Signal struct {
	mu  sync.Mutex
	ch  chan struct{}
	set bool
}

func newSignal() *Signal {
	return &Signal{ch: make(chan struct{})}
}

func (s *Signal) Set() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		s.set = true
		close(s.ch)
	}
}

func (s *Signal) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.set {
		s.set = false
		s.ch = make(chan struct{})
	}
}

func (s *Signal) IsSet() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set
}

// 等待信号
func (s *Signal) Wait(ctx context.Context) error {
	s.mu.Lock()
	ch := s.ch
	s.mu.Unlock()
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
