package redis

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kochabx/workforce/log"
)

// Option 客户端选项
type Option func(*clientOptions)

type clientOptions struct {
	hooks           []redis.Hook
	debug           bool
	slowQueryThresh time.Duration
	logger          *log.Logger
}

// WithHooks 添加自定义 Hook
func WithHooks(hooks ...redis.Hook) Option {
	return func(o *clientOptions) {
		o.hooks = append(o.hooks, hooks...)
	}
}

// WithDebug 记录每条命令，超过阈值的记为慢查询
func WithDebug(slowQueryThreshold ...time.Duration) Option {
	return func(o *clientOptions) {
		o.debug = true
		if len(slowQueryThreshold) > 0 {
			o.slowQueryThresh = slowQueryThreshold[0]
		}
	}
}

// WithLogger 设置日志记录器
func WithLogger(logger *log.Logger) Option {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

func applyOptions(opts []Option) *clientOptions {
	o := &clientOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if o.logger == nil {
		o.logger = log.G.Named("redis")
	}
	return o
}
