package xlog

import (
	"io"
	"os"

	"go.elastic.co/ecszap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var gLogger Logger

func init() {
	gLogger = newLogger(buildLogger(zapcore.DebugLevel, false, os.Stdout))
}

type Args struct {
	Level  string    // debug|info|warn|error
	Prod   bool      // true: json, false: 彩色终端格式
	Output io.Writer // 默认stdout
}

// 替换全局logger, 未绑定logger的context使用全局logger
func Init(arg Args) error {
	lvl, err := ParseLevel(arg.Level)
	if err != nil {
		return err
	}
	out := arg.Output
	if out == nil {
		out = os.Stdout
	}
	gLogger = newLogger(buildLogger(lvl, arg.Prod, out))
	return nil
}

func getEncoder(isProd bool) zapcore.Encoder {
	config := ecsCompatibleEncoder(!isProd)
	config.TimeKey = FieldTimestamp
	config.EncodeTime = zapcore.ISO8601TimeEncoder
	if isProd {
		return zapcore.NewJSONEncoder(config)
	}
	return zapcore.NewConsoleEncoder(config)
}

// Elastic Common Schema (ECS) 兼容的encoder格式, 便于日志被ELK归档
func ecsCompatibleEncoder(withColor bool) zapcore.EncoderConfig {
	return ecszap.EncoderConfig{
		EnableName:       true,
		EncodeName:       zapcore.FullNameEncoder,
		EnableStackTrace: true,
		EnableCaller:     true,
		EncodeCaller:     zapcore.ShortCallerEncoder,
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      customLevelEncoder(withColor),
		EncodeDuration:   zapcore.StringDurationEncoder,
	}.ToZapCoreEncoderConfig()
}

func buildLogger(lvl zapcore.Level, isProd bool, out io.Writer) *zap.Logger {
	core := zapcore.NewCore(getEncoder(isProd), zapcore.Lock(zapcore.AddSync(out)), zap.NewAtomicLevelAt(lvl))
	return zap.New(core,
		zap.WithCaller(true),
		// DPanic时自动增加Stacktrace
		zap.AddStacktrace(zap.NewAtomicLevelAt(zap.DPanicLevel)),
	)
}
