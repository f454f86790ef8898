package xlog

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

// 终端前景色(取自zap/internal/color)
type termColor uint8

const (
	colorRed termColor = iota + 31
	_
	colorYellow
	colorBlue
	colorMagenta
)

func (c termColor) Add(s string) string {
	return fmt.Sprintf("\x1b[%dm%s\x1b[0m", uint8(c), s)
}

func encodeLevel(l zapcore.Level) (string, termColor) {
	switch l {
	case zapcore.DebugLevel:
		return "DEBUG", colorMagenta
	case zapcore.InfoLevel:
		return "INFO", colorBlue
	case zapcore.WarnLevel:
		return "WARN", colorYellow
	case zapcore.ErrorLevel:
		return "ERROR", colorRed
	default:
		return fmt.Sprintf("LEVEL(%d)", l), colorRed
	}
}

// 自定义LevelEncoder
func customLevelEncoder(withColor bool) func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	return func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		lvlName, color := encodeLevel(l)
		if withColor {
			lvlName = color.Add(lvlName)
		}
		enc.AppendString(lvlName)
	}
}

// debug|info|warn|error, 空字符串为debug
func ParseLevel(s string) (zapcore.Level, error) {
	if s == "" {
		return zapcore.DebugLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return lvl, err
	}
	return lvl, nil
}
