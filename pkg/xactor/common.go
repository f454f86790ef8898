package xactor

import (
	"context"
	"errors"
	"fmt"
	"reflect"
)

// 哨兵错误不带堆栈, 调用处用pkg/errors包装
var (
	ErrAlreadyStarted   = errors.New("actor already started")
	ErrActorStopped     = errors.New("actor stopped")
	ErrInvalidHandler   = errors.New("invalid handler")
	ErrDuplicateHandler = errors.New("handler is repeated")
	ErrNoHandler        = errors.New("handler not found")
	ErrHandlerPanic     = errors.New("handler panic")
	ErrNoWorkers        = errors.New("router has no workers")
	ErrDuplicateActor   = errors.New("actor is repeated")
	ErrActorNotFound    = errors.New("actor not found")
)

// 生命周期状态
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// 无handler时的处理方式
type UnhandledPolicy int

const (
	UnhandledDrop UnhandledPolicy = iota // 丢弃, ask不会返回直到ctx结束
	UnhandledFail                        // query结果置为ErrNoHandler
)

// 消息入口, router直接投递到这里
type Receiver interface {
	Receive(ctx context.Context, msg *Message) error
}

// Actor 叶子actor和pool共用的能力集合
type Actor interface {
	Receiver
	Tell(ctx context.Context, payload any, sender Actor) error
	Ask(ctx context.Context, payload any, sender Actor) (any, error)
	Run(ctx context.Context) error
	Stop(ctx context.Context) error
	State() State
	Ready() <-chan struct{} // AfterStart完成(或Run提前失败)后关闭
}

func typeName(payload any) string {
	if payload == nil {
		return "nil"
	}
	return reflect.TypeOf(payload).String()
}
