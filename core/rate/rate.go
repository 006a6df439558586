package rate

import (
	"context"
	"time"
)

// Limiter 限制向后端发请求的速率
type Limiter interface {
	Allow() bool
	AllowN(t time.Time, n int) bool
	// Wait 阻塞直到拿到一个令牌或 ctx 结束
	Wait(ctx context.Context) error
}

// Unlimited 不做任何限制
type Unlimited struct{}

func (Unlimited) Allow() bool                    { return true }
func (Unlimited) AllowN(time.Time, int) bool     { return true }
func (Unlimited) Wait(ctx context.Context) error { return ctx.Err() }
