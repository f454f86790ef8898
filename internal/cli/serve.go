package cli

import (
	"context"
	"net/http"
	"time"

	"gactor/pkg/xactor"
	"gactor/pkg/xcommon"
	"gactor/pkg/xenv"
	"gactor/pkg/xlog"
	"gactor/pkg/xmetrics"
	"gactor/pkg/xnet"
	"gactor/pkg/xruntime"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const askTimeout = 5 * time.Second

type ServeOptions struct {
	*RootOptions
	Addr string
}

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a greeter pool over websocket",
		Long: `Start a greeter pool behind a websocket gateway. Every text frame on /ws
is asked to the pool as a name and answered with "hello <name>".
Prometheus metrics are exposed on /metrics. Stops on SIGINT/SIGTERM.

Example:
  gactor serve --addr :8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := opts.Config()
			if opts.Addr != "" {
				conf.ListenAddr = opts.Addr
			}
			return runServe(cmd.Context(), conf)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen addr (default listen_addr in config)")

	return cmd
}

func runServe(ctx context.Context, conf *xenv.Config) error {
	svr, err := newServer(ctx, conf)
	if err != nil {
		return err
	}

	httpSrv := &http.Server{Addr: conf.ListenAddr, Handler: svr.Handler()}
	sigCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// 监听失败时不再等待信号
	listenErr := make(chan error, 1)
	go func() {
		defer xcommon.Recover(ctx)
		defer cancel()
		xlog.Get(ctx).Info("Gateway listen", zap.String("addr", conf.ListenAddr))
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		}
	}()
	xcommon.UntilSignal(sigCtx)

	sctx, scancel := context.WithTimeout(context.Background(), conf.ShutdownTimeout)
	defer scancel()
	err = multierr.Combine(httpSrv.Shutdown(sctx), svr.Close(sctx))
	select {
	case lerr := <-listenErr:
		err = multierr.Append(lerr, err)
	default:
	}
	return err
}

// websocket网关 + greeter pool
type server struct {
	sys      *xactor.System
	pool     xactor.Actor
	ws       *xnet.WSServer
	registry *prometheus.Registry
}

func newServer(ctx context.Context, conf *xenv.Config) (*server, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := xmetrics.NewPrometheus(registry)

	env := xruntime.New(xruntime.EnvArgs{ExecutorWorkers: conf.ExecutorWorkers})
	sys := xactor.NewSystem(ctx, xactor.SystemArgs{Name: "serve", Env: env})
	pool, err := sys.Create(ctx, "greeters", xactor.PoolOf(xactor.PoolArgs{
		Name:    "greeters",
		Size:    conf.PoolSize,
		New:     newGreeter("greeter", conf.InboxSize, metrics),
		Metrics: metrics,
	}))
	if err != nil {
		return nil, err
	}

	svr := &server{sys: sys, pool: pool, registry: registry}
	svr.ws = xnet.NewWSServer(ctx, xnet.Handlers{OnMessage: svr.onMessage})
	return svr, nil
}

func (svr *server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", svr.ws)
	mux.Handle("/metrics", promhttp.HandlerFor(svr.registry, promhttp.HandlerOpts{}))
	return mux
}

// 每个文本帧作为名字ask到pool, 业务错误回给客户端, 不断开连接
func (svr *server) onMessage(ctx context.Context, sock *xnet.Websocket, msg []byte) error {
	actx, cancel := context.WithTimeout(ctx, askTimeout)
	defer cancel()
	resp, err := xactor.AskAs[string](actx, svr.pool, Greet{Name: string(msg)}, nil)
	if err != nil {
		xlog.Get(ctx).Debug("Greet failed", zap.Error(err))
		resp = "error: " + errors.Cause(err).Error()
	}
	return sock.SendMsg(ctx, []byte(resp))
}

// 先断开连接, 再停止actor
func (svr *server) Close(ctx context.Context) error {
	svr.ws.Close(ctx)
	return svr.sys.Shutdown(ctx)
}
