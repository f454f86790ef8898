// Package xenv 配置加载: 默认值 -> yaml文件 -> 环境变量
package xenv

import (
	"os"
	"time"

	"github.com/caarlos0/env/v8"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel        string        `yaml:"log_level" env:"GACTOR_LOG_LEVEL"`
	LogProd         bool          `yaml:"log_prod" env:"GACTOR_LOG_PROD"`
	InboxSize       int           `yaml:"inbox_size" env:"GACTOR_INBOX_SIZE"` // 0: 无界
	PoolSize        int           `yaml:"pool_size" env:"GACTOR_POOL_SIZE"`
	ExecutorWorkers int           `yaml:"executor_workers" env:"GACTOR_EXECUTOR_WORKERS"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"GACTOR_SHUTDOWN_TIMEOUT"`
	ListenAddr      string        `yaml:"listen_addr" env:"GACTOR_LISTEN_ADDR"`
}

func Default() *Config {
	return &Config{
		LogLevel:        "info",
		InboxSize:       0,
		PoolSize:        4,
		ExecutorWorkers: 8,
		ShutdownTimeout: 5 * time.Second,
		ListenAddr:      ":8080",
	}
}

// path为空时跳过文件
func Load(path string) (*Config, error) {
	conf := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read config %v", path)
		}
		if err := yaml.Unmarshal(data, conf); err != nil {
			return nil, errors.Wrapf(err, "parse config %v", path)
		}
	}
	if err := EnvLoad(conf); err != nil {
		return nil, errors.Wrap(err, "parse env")
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func (c *Config) Validate() error {
	if c.InboxSize < 0 {
		return errors.Errorf("inbox_size[%d] invalid", c.InboxSize)
	}
	if c.PoolSize <= 0 {
		return errors.Errorf("pool_size[%d] invalid", c.PoolSize)
	}
	if c.ExecutorWorkers <= 0 {
		return errors.Errorf("executor_workers[%d] invalid", c.ExecutorWorkers)
	}
	return nil
}

// 只覆盖设置了的环境变量
func EnvLoad(conf interface{}) error {
	return env.Parse(conf)
}
