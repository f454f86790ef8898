package xnet_test

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"gactor/pkg/xnet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWebsocketEcho(t *testing.T) {
	ctx := context.Background()
	var (
		mu           sync.Mutex
		connected    int
		disconnected int
	)
	svr := xnet.NewWSServer(ctx, xnet.Handlers{
		OnMessage: func(ctx context.Context, sock *xnet.Websocket, msg []byte) error {
			return sock.SendMsg(ctx, bytes.ToUpper(msg))
		},
		OnConnect: func(ctx context.Context, sock *xnet.Websocket) {
			mu.Lock()
			connected++
			mu.Unlock()
		},
		OnDisconnect: func(ctx context.Context, sock *xnet.Websocket) {
			mu.Lock()
			disconnected++
			mu.Unlock()
		},
	})
	srv := httptest.NewServer(svr)
	defer srv.Close()

	replies := make(chan string, 10)
	cli, err := xnet.Dial(ctx, wsURL(srv), xnet.Handlers{
		OnMessage: func(ctx context.Context, sock *xnet.Websocket, msg []byte) error {
			replies <- string(msg)
			return nil
		},
	})
	require.NoError(t, err)

	for _, word := range []string{"alice", "bob", "carol"} {
		require.NoError(t, cli.SendMsg(ctx, []byte(word)))
	}
	for _, want := range []string{"ALICE", "BOB", "CAROL"} {
		select {
		case got := <-replies:
			assert.Equal(t, want, got)
		case <-time.After(time.Second):
			t.Fatal("reply timeout")
		}
	}
	assert.Eventually(t, func() bool { return svr.Len() == 1 }, time.Second, 10*time.Millisecond)

	cli.Close(ctx)
	assert.ErrorIs(t, cli.SendMsg(ctx, []byte("late")), xnet.ErrSocketClosed)
	assert.Eventually(t, func() bool { return svr.Len() == 0 }, time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, connected)
	assert.Equal(t, 1, disconnected)
}

func TestWebsocketServerClose(t *testing.T) {
	ctx := context.Background()
	svr := xnet.NewWSServer(ctx, xnet.Handlers{
		OnMessage: func(ctx context.Context, sock *xnet.Websocket, msg []byte) error { return nil },
	})
	srv := httptest.NewServer(svr)
	defer srv.Close()

	cli, err := xnet.Dial(ctx, wsURL(srv), xnet.Handlers{
		OnMessage: func(ctx context.Context, sock *xnet.Websocket, msg []byte) error { return nil },
	})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return svr.Len() == 1 }, time.Second, 10*time.Millisecond)

	svr.Close(ctx)
	assert.Eventually(t, func() bool { return svr.Len() == 0 }, time.Second, 10*time.Millisecond)

	done := make(chan struct{})
	go func() {
		cli.WaitUntilClose(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("client not closed")
	}
}

func TestDialFailed(t *testing.T) {
	_, err := xnet.Dial(context.Background(), "ws://127.0.0.1:1/ws", xnet.Handlers{})
	assert.Error(t, err)
}
