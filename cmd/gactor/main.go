package main

import (
	"context"
	"os"

	"gactor/internal/cli"
	"gactor/pkg/xcommon"
	"gactor/pkg/xlog"

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()
	defer xcommon.Recover(ctx)

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		xlog.Get(ctx).Error("Command failed", zap.Error(err))
		os.Exit(1)
	}
}
