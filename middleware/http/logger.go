// Package middleware 本地状态服务使用的 gin 中间件
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/workforce/log"
)

// LoggerConfig 访问日志配置
type LoggerConfig struct {
	SkipPaths []string                // 跳过记录的路径，抓取指标的请求通常放在这里
	SkipFunc  func(*gin.Context) bool // 动态跳过判断函数
	Logger    *log.Logger
}

// Logger 访问日志，非 2xx 记为 warn
func Logger(cfgs ...LoggerConfig) gin.HandlerFunc {
	cfg := LoggerConfig{}
	if len(cfgs) > 0 {
		cfg = cfgs[0]
	}
	if cfg.Logger == nil {
		cfg.Logger = log.G
	}
	matcher := NewPathMatcher(cfg.SkipPaths)

	return func(c *gin.Context) {
		if shouldSkip(c, matcher, cfg.SkipFunc) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := cfg.Logger.Debug()
		if status >= 300 {
			event = cfg.Logger.Warn()
		}
		event = event.
			Int("status", status).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP())

		if query := c.Request.URL.RawQuery; query != "" {
			event = event.Str("query", query)
		}
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.ByType(gin.ErrorTypePrivate).String())
		}
		event.Msg("status request")
	}
}
