package xactor

import (
	"context"
	"reflect"

	"github.com/pkg/errors"
)

// 统一handler签名, sender可能为nil
type Handler func(ctx context.Context, payload any, sender Actor) (any, error)

type HandlerArgs struct {
	T     reflect.Type
	H     Handler
	match func(payload any) bool // 接口类型: 按类型断言匹配
}

// M 请求
// R 响应
// M为接口类型时注册为兜底handler, 按注册顺序匹配
func Handle[M any, R any](fn func(ctx context.Context, payload M, sender Actor) (R, error)) HandlerArgs {
	t := reflect.TypeOf((*M)(nil)).Elem()
	args := HandlerArgs{T: t}
	if fn == nil {
		return args
	}
	args.H = func(ctx context.Context, payload any, sender Actor) (any, error) {
		m, ok := payload.(M)
		if !ok {
			return nil, errors.Errorf("handler payload[%v] not type %v", reflect.TypeOf(payload), t)
		}
		return fn(ctx, m, sender)
	}
	if t.Kind() == reflect.Interface {
		args.match = func(payload any) bool {
			_, ok := payload.(M)
			return ok
		}
	}
	return args
}

// 无返回值handler, ask得到nil
func HandleTell[M any](fn func(ctx context.Context, payload M, sender Actor) error) HandlerArgs {
	if fn == nil {
		return Handle[M, any](nil)
	}
	return Handle(func(ctx context.Context, payload M, sender Actor) (any, error) {
		return nil, fn(ctx, payload, sender)
	})
}

// handler管理
type handlerTable struct {
	exact    map[reflect.Type]Handler
	fallback []HandlerArgs
}

func newHandlerTable(args []HandlerArgs) (*handlerTable, error) {
	t := &handlerTable{
		exact:    make(map[reflect.Type]Handler),
		fallback: make([]HandlerArgs, 0),
	}
	seen := make(map[reflect.Type]bool)
	for _, arg := range args {
		if arg.H == nil || arg.T == nil {
			return nil, errors.Wrapf(ErrInvalidHandler, "handler[%v] is nil", arg.T)
		}
		if seen[arg.T] {
			return nil, errors.Wrapf(ErrDuplicateHandler, "request[%v]", arg.T)
		}
		seen[arg.T] = true

		if arg.match != nil {
			t.fallback = append(t.fallback, arg)
		} else {
			t.exact[arg.T] = arg.H
		}
	}
	return t, nil
}

// 精确类型优先, 其次按注册顺序匹配接口
func (t *handlerTable) lookup(payload any) Handler {
	if payload == nil {
		return nil
	}
	if h, ok := t.exact[reflect.TypeOf(payload)]; ok {
		return h
	}
	for _, arg := range t.fallback {
		if arg.match(payload) {
			return arg.H
		}
	}
	return nil
}
