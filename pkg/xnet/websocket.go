package xnet

import (
	"context"
	"net"
	"sync"
	"time"

	"gactor/pkg/xcommon"
	"gactor/pkg/xlog"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// 一条websocket连接, 读写各一个协程
type Websocket struct {
	conn     *websocket.Conn
	handlers Handlers

	writeCh chan []byte // 写channel

	closeOnce sync.Once
	closeCh   chan struct{}
	wg        xcommon.WaitGroup
}

func newWebsocket(ctx context.Context, conn *websocket.Conn, handlers Handlers) *Websocket {
	sock := &Websocket{
		conn:     conn,
		handlers: handlers,
		writeCh:  make(chan []byte, writeChanLimit),
		closeCh:  make(chan struct{}),
	}
	sock.conn.SetReadLimit(maxMessageSize)

	ctx = xlog.NewContext(ctx, zap.Stringer("remote", conn.RemoteAddr()))
	sock.wg.Add(2)
	go sock.readLoop(ctx)
	go sock.writeLoop(ctx)
	return sock
}

func (sock *Websocket) readLoop(ctx context.Context) {
	var readErr error
	defer func() {
		if readErr != nil {
			xlog.Get(ctx).Warn("Read loop exit with error.", zap.Error(readErr))
		}
		sock.forceClose()
	}()

	defer sock.wg.Done(ctx)

	if sock.handlers.OnConnect != nil {
		sock.handlers.OnConnect(ctx, sock)
	}
	if sock.handlers.OnDisconnect != nil {
		defer sock.handlers.OnDisconnect(ctx, sock)
	}

	for {
		_, message, err := sock.conn.ReadMessage()
		if err != nil {
			if !isNormalClose(err) {
				readErr = err
			}
			return
		}
		if err := sock.handlers.OnMessage(ctx, sock, message); err != nil {
			readErr = err
			return
		}
	}
}

func isNormalClose(err error) bool {
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return true
	}
	return errors.Is(err, net.ErrClosed)
}

func (sock *Websocket) writeLoop(ctx context.Context) {
	var writeErr error
	defer func() {
		if writeErr != nil {
			xlog.Get(ctx).Warn("Write loop exit with error.", zap.Error(writeErr))
		}

		deadline := time.Now().Add(writeTimeout)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		if err := sock.conn.WriteControl(websocket.CloseMessage, msg, deadline); err != nil && !errors.Is(err, websocket.ErrCloseSent) {
			xlog.Get(ctx).Debug("Write close message failed.", zap.Error(err))
		}

		_ = sock.conn.Close()
	}()

	defer sock.wg.Done(ctx)

	closed := false
	for {
		var msg []byte
		if !closed {
			// 阻塞获取数据
			select {
			case msg = <-sock.writeCh:
			case <-sock.closeCh:
				closed = true
				continue
			}
		} else {
			// closed状态,非阻塞获取数据,将待发送数据全部发送
			select {
			case msg = <-sock.writeCh:
			default:
			}
		}
		if msg == nil {
			return
		}

		if err := sock.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
			writeErr = err
			return
		}
		if err := sock.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			writeErr = err
			return
		}
	}
}

// 关闭并等待读写协程退出, 已入队的消息会先发送
func (sock *Websocket) Close(ctx context.Context) {
	sock.forceClose()
	sock.wg.Wait()
}

func (sock *Websocket) forceClose() {
	sock.closeOnce.Do(func() {
		close(sock.closeCh)
	})
}

func (sock *Websocket) WaitUntilClose(ctx context.Context) {
	sock.wg.Wait()
}

func (sock *Websocket) SendMsg(ctx context.Context, msg []byte) error {
	select {
	case <-sock.closeCh:
		return errors.WithStack(ErrSocketClosed)
	default:
	}
	select {
	case sock.writeCh <- msg:
		return nil
	case <-sock.closeCh:
		return errors.WithStack(ErrSocketClosed)
	default:
		return errors.WithStack(ErrMsgOverflow)
	}
}

func (sock *Websocket) RemoteAddr() net.Addr {
	return sock.conn.RemoteAddr()
}
