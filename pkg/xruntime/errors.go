package xruntime

import "errors"

var (
	ErrCancelled = errors.New("future cancelled")
	ErrTimeout   = errors.New("parallel run timeout")
	ErrPanic     = errors.New("task panic")
)
