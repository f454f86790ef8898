package xcommon

import (
	"context"
	"os/signal"
	"syscall"

	"gactor/pkg/xlog"
)

// 阻塞直到收到SIGINT/SIGTERM或ctx结束
func UntilSignal(ctx context.Context) {
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-sigCtx.Done()
	xlog.Get(ctx).Info("Recv exit signal")
}
