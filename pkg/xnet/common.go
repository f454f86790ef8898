// Package xnet websocket网关, 连接上的文本帧交给回调处理
package xnet

import (
	"context"
	"errors"
	"time"
)

const (
	maxMessageSize = 64 * 1024
	writeTimeout   = 10 * time.Second // 写超时时间
	writeChanLimit = 200              // 写channel大小
)

var (
	ErrSocketClosed = errors.New("socket already closed")
	ErrMsgOverflow  = errors.New("socket write channel overflow")
)

// 消息处理, 返回错误时关闭连接
type OnMessage func(ctx context.Context, sock *Websocket, msg []byte) error

// 建立链接
type OnConnect func(ctx context.Context, sock *Websocket)

// 关闭链接
type OnDisconnect func(ctx context.Context, sock *Websocket)

type Handlers struct {
	OnMessage    OnMessage
	OnConnect    OnConnect    // 可选
	OnDisconnect OnDisconnect // 可选
}
