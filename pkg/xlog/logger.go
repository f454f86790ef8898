// Package xlog 基于zap的日志, logger通过context传递
package xlog

import "go.uber.org/zap"

// ECS时间字段
const FieldTimestamp = "@timestamp"

type Logger interface {
	Sugar() *zap.SugaredLogger

	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)

	// 返回原始zap.Logger
	Raw() *zap.Logger
}

type xlogger struct {
	*zap.Logger
}

func newLogger(l *zap.Logger) Logger {
	return &xlogger{Logger: l}
}

func (log *xlogger) Raw() *zap.Logger { return log.Logger }
