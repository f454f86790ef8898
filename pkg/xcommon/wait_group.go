package xcommon

import (
	"context"
	"runtime/debug"
	"sync"

	"gactor/pkg/xlog"

	"go.uber.org/zap"
)

// 通过waitGroup控制协程, panic时先记录堆栈再继续抛出
// defer wg.Done(ctx) 必须直接defer, recover不能跨越多层defer函数
type WaitGroup struct {
	wg sync.WaitGroup
}

func (wg *WaitGroup) Add(n int) {
	wg.wg.Add(n)
}

func (wg *WaitGroup) Done(ctx context.Context) {
	defer wg.wg.Done()
	if r := recover(); r != nil {
		xlog.Get(ctx).Error("Goroutine panic", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
		panic(r)
	}
}

func (wg *WaitGroup) Wait() {
	wg.wg.Wait()
}

// defer Recover(ctx), 同上
func Recover(ctx context.Context) {
	if r := recover(); r != nil {
		xlog.Get(ctx).Error("Goroutine panic", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
		panic(r)
	}
}
