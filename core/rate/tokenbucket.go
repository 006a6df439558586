package rate

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// TokenBucketLimiter 进程内令牌桶，容量 capacity，每秒补充 r 个令牌，初始为满桶
type TokenBucketLimiter struct {
	limiter *rate.Limiter
}

// New r 不大于 0 时返回 Unlimited
func New(r, capacity int) Limiter {
	if r <= 0 {
		return Unlimited{}
	}
	return NewTokenBucketLimiter(capacity, r)
}

func NewTokenBucketLimiter(capacity, r int) *TokenBucketLimiter {
	return &TokenBucketLimiter{
		limiter: rate.NewLimiter(rate.Limit(r), max(capacity, 1)),
	}
}

func (lim *TokenBucketLimiter) Allow() bool {
	return lim.limiter.Allow()
}

func (lim *TokenBucketLimiter) AllowN(t time.Time, n int) bool {
	return lim.limiter.AllowN(t, n)
}

// Wait 令牌不足时按补充速率等待，ctx 先结束或等不到时返回错误
func (lim *TokenBucketLimiter) Wait(ctx context.Context) error {
	return lim.limiter.Wait(ctx)
}
