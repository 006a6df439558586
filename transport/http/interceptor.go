package http

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/kochabx/workforce/core/rate"
)

const HeaderRequestID = "X-Request-Id"

// TokenSource 提供当前令牌，匿名时返回空
type TokenSource interface {
	Token() string
}

// TokenFunc 函数适配器
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// Bearer 有令牌时附加 Authorization 头，没有时请求原样发出
func Bearer(src TokenSource) RequestInterceptor {
	return func(req *http.Request) error {
		if token := src.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		return nil
	}
}

// RequestID 附加请求 ID，已有时保留
func RequestID() RequestInterceptor {
	return func(req *http.Request) error {
		if req.Header.Get(HeaderRequestID) == "" {
			req.Header.Set(HeaderRequestID, uuid.NewString())
		}
		return nil
	}
}

// UserAgent 设置 User-Agent
func UserAgent(ua string) RequestInterceptor {
	return func(req *http.Request) error {
		req.Header.Set("User-Agent", ua)
		return nil
	}
}

// RateLimit 发送前等待令牌，ctx 结束时放弃发送
func RateLimit(l rate.Limiter) RequestInterceptor {
	return func(req *http.Request) error {
		return l.Wait(req.Context())
	}
}
