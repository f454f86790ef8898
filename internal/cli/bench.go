package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"gactor/pkg/xactor"
	"gactor/pkg/xcommon"
	"gactor/pkg/xenv"
	"gactor/pkg/xlog"
	"gactor/pkg/xmetrics"
	"gactor/pkg/xruntime"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type BenchOptions struct {
	*RootOptions
	Size     int
	Messages int
}

func NewBenchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BenchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Ask a round-robin greeter pool and print per-worker stats",
		Long: `Start a round-robin pool of greeter actors, send --messages asks from
--size concurrent clients and print the stats of every worker.

Example:
  gactor bench --size 8 --messages 100000
  gactor bench -c gactor.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := opts.Config()
			if opts.Size > 0 {
				conf.PoolSize = opts.Size
			}
			_, err := runBench(cmd.Context(), conf, opts.Messages, cmd.OutOrStdout())
			return err
		},
	}

	cmd.Flags().IntVarP(&opts.Size, "size", "n", 0, "pool size (default pool_size in config)")
	cmd.Flags().IntVarP(&opts.Messages, "messages", "m", 10000, "number of asks")

	return cmd
}

func runBench(ctx context.Context, conf *xenv.Config, messages int, out io.Writer) ([]xactor.Stats, error) {
	if messages <= 0 {
		return nil, errors.Errorf("messages[%d] invalid", messages)
	}
	env := xruntime.New(xruntime.EnvArgs{ExecutorWorkers: conf.ExecutorWorkers})
	sys := xactor.NewSystem(ctx, xactor.SystemArgs{Name: "bench", Env: env})
	defer func() {
		sctx, cancel := context.WithTimeout(ctx, conf.ShutdownTimeout)
		defer cancel()
		if err := sys.Shutdown(sctx); err != nil {
			xlog.Get(ctx).Warn("Bench shutdown failed", zap.Error(err))
		}
	}()

	actor, err := sys.Create(ctx, "greeters", xactor.PoolOf(xactor.PoolArgs{
		Name: "greeters",
		Size: conf.PoolSize,
		New:  newGreeter("greeter", conf.InboxSize, xmetrics.Nop()),
	}))
	if err != nil {
		return nil, err
	}
	pool := actor.(*xactor.Pool)

	// 每个client顺序ask, client之间并行
	clients := conf.PoolSize
	fns := make([]func(ctx context.Context) error, 0, clients)
	for c := 0; c < clients; c++ {
		n := messages / clients
		if c < messages%clients {
			n++
		}
		fns = append(fns, func(ctx context.Context) error {
			for i := 0; i < n; i++ {
				name := strconv.Itoa(c) + "-" + strconv.Itoa(i)
				resp, err := xactor.AskAs[string](ctx, pool, Greet{Name: name}, nil)
				if err != nil {
					return err
				}
				if resp != "hello "+name {
					return errors.Errorf("unexpected reply %q", resp)
				}
			}
			return nil
		})
	}

	begin := time.Now()
	if err := env.RunParallel(ctx, fns, 0); err != nil {
		return nil, err
	}
	cost := time.Since(begin)

	stats := pool.Stats()
	printStats(ctx, out, stats)
	_, _ = fmt.Fprintf(out, "messages: %d, workers: %d, cost: %v, qps: %.0f\n",
		messages, len(stats), cost, float64(messages)/cost.Seconds())
	return stats, nil
}

func printStats(ctx context.Context, out io.Writer, stats []xactor.Stats) {
	keys := []string{"worker", "processed", "failed", "dropped", "pending", "avg_cost"}
	values := make([][]string, 0, len(stats))
	for _, s := range stats {
		values = append(values, []string{
			s.Name,
			strconv.FormatInt(s.Processed, 10),
			strconv.FormatInt(s.Failed, 10),
			strconv.FormatInt(s.Dropped, 10),
			strconv.Itoa(s.Pending),
			s.AvgCost.String(),
		})
	}
	xcommon.PrintTable(ctx, out, keys, values)
}
