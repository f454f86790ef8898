package xnet

import (
	"context"
	"net/http"
	"sync"

	"gactor/pkg/xlog"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WSServer 以http.Handler方式挂到外部mux上
type WSServer struct {
	upgrader *websocket.Upgrader
	handlers Handlers
	ctx      context.Context

	mu      sync.Mutex
	closed  bool
	sockets map[*Websocket]bool // 所有的active连接
}

// ctx作为所有连接的基础context
func NewWSServer(ctx context.Context, handlers Handlers) *WSServer {
	return &WSServer{
		upgrader: &websocket.Upgrader{},
		handlers: handlers,
		ctx:      ctx,
		sockets:  make(map[*Websocket]bool),
	}
}

func (svr *WSServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := svr.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader will respond
		xlog.Get(svr.ctx).Warn("Upgrade connection failed", zap.Error(err))
		return
	}

	sock := newWebsocket(svr.ctx, conn, svr.handlers)
	if !svr.addSocket(sock) {
		sock.Close(svr.ctx)
		return
	}
	sock.WaitUntilClose(svr.ctx)
	svr.delSocket(sock)
}

// 当前连接数
func (svr *WSServer) Len() int {
	svr.mu.Lock()
	defer svr.mu.Unlock()
	return len(svr.sockets)
}

// 关闭所有连接, 之后的新连接直接关闭
func (svr *WSServer) Close(ctx context.Context) {
	svr.mu.Lock()
	svr.closed = true
	sockets := make([]*Websocket, 0, len(svr.sockets))
	for sock := range svr.sockets {
		sockets = append(sockets, sock)
	}
	svr.mu.Unlock()

	for _, sock := range sockets {
		sock.Close(ctx)
	}
}

func (svr *WSServer) addSocket(sock *Websocket) bool {
	svr.mu.Lock()
	defer svr.mu.Unlock()
	if svr.closed {
		return false
	}
	svr.sockets[sock] = true
	return true
}

func (svr *WSServer) delSocket(sock *Websocket) {
	svr.mu.Lock()
	defer svr.mu.Unlock()
	delete(svr.sockets, sock)
}
