package session

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/kochabx/workforce/auth/token"
	"github.com/kochabx/workforce/log"
	"github.com/kochabx/workforce/notice"
)

// Option 控制器选项
type Option func(*Controller)

// WithClock 替换时钟，测试中传入 clockwork.FakeClock
func WithClock(clock clockwork.Clock) Option {
	return func(c *Controller) {
		c.clock = clock
	}
}

// WithNotifier 设置提示和跳转的出口
func WithNotifier(n notice.Notifier) Option {
	return func(c *Controller) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithLogger 设置日志记录器
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithDecoder 设置令牌解码器
func WithDecoder(d *token.Decoder) Option {
	return func(c *Controller) {
		if d != nil {
			c.decoder = d
		}
	}
}

// WithInactivity 无操作窗口、倒计时总长和倒计时步长
func WithInactivity(window, countdown, tick time.Duration) Option {
	return func(c *Controller) {
		if window > 0 {
			c.inactivity = window
		}
		if countdown > 0 {
			c.countdown = countdown
		}
		if tick > 0 {
			c.tick = tick
		}
	}
}

// WithLoginPath 被动登出后的跳转目标
func WithLoginPath(path string) Option {
	return func(c *Controller) {
		if path != "" {
			c.loginPath = path
		}
	}
}

// WithStoreTimeout 定时器触发时清理存储的超时
func WithStoreTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.storeTimeout = d
		}
	}
}

// WithListener 订阅状态变化，回调在锁外执行
func WithListener(fn func(Event)) Option {
	return func(c *Controller) {
		if fn != nil {
			c.listeners = append(c.listeners, fn)
		}
	}
}
