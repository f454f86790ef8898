package xlog

import (
	"context"

	"go.uber.org/zap/zapcore"
)

type loggerKeyType int

const loggerKey loggerKeyType = iota

// 生成子logger, 绑定到新的context
func NewContext(ctx context.Context, fields ...zapcore.Field) context.Context {
	return context.WithValue(ctx, loggerKey, newLogger(Get(ctx).Raw().With(fields...)))
}

// 取出srcCtx的logger, 绑定到destCtx
func FromContext(srcCtx, destCtx context.Context, fields ...zapcore.Field) context.Context {
	return context.WithValue(destCtx, loggerKey, newLogger(Get(srcCtx).Raw().With(fields...)))
}

// context获取logger, 未绑定时返回全局logger
func Get(ctx context.Context) Logger {
	if ctx == nil {
		return gLogger
	}
	if ctxLogger, ok := ctx.Value(loggerKey).(Logger); ok {
		return ctxLogger
	}
	return gLogger
}
