// Package cli gactor命令行: bench压测greeter pool, serve对外提供websocket网关
package cli

import (
	"gactor/pkg/xenv"
	"gactor/pkg/xlog"

	"github.com/spf13/cobra"
)

// 全局参数
type RootOptions struct {
	ConfigPath string
	LogLevel   string

	conf *xenv.Config
}

// 加载配置并初始化日志, 命令行参数优先
func (opts *RootOptions) load() error {
	conf, err := xenv.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	if opts.LogLevel != "" {
		conf.LogLevel = opts.LogLevel
	}
	if err := xlog.Init(xlog.Args{Level: conf.LogLevel, Prod: conf.LogProd}); err != nil {
		return err
	}
	opts.conf = conf
	return nil
}

func (opts *RootOptions) Config() *xenv.Config {
	if opts.conf == nil {
		return xenv.Default()
	}
	return opts.conf
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "gactor",
		Short: "gactor - in-process actor runtime",
		Long:  "Mailbox actors, routers and pools on top of goroutines.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "yaml config file")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")

	cmd.AddCommand(NewBenchCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}
