package xnet

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

// 拨号并启动读写协程, url形如 ws://host:port/path
func Dial(ctx context.Context, url string, handlers Handlers) (*Websocket, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, http.Header{})
	if err != nil {
		return nil, errors.Wrapf(err, "dial %v", url)
	}
	return newWebsocket(ctx, conn, handlers), nil
}
