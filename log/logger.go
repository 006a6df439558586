package log

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"

	"github.com/kochabx/workforce/core/tag"
	"github.com/kochabx/workforce/log/desensitize"
	"github.com/kochabx/workforce/log/writer"
)

// Logger 日志记录器
type Logger struct {
	zerolog.Logger
	hook   *desensitize.Hook
	closer io.Closer
}

func init() {
	zerolog.TimeFieldFormat = time.DateTime
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
}

// newLogger 统一的 Logger 构建方法，脱敏钩子包在最外层 writer 上
func newLogger(w io.Writer, opts ...Option) *Logger {
	l := &Logger{}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}

	if l.hook != nil {
		w = desensitize.NewWriter(w, l.hook)
	}

	l.Logger = zerolog.New(w).With().Timestamp().Logger()
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// New 创建输出到控制台的 Logger
func New(opts ...Option) *Logger {
	return newLogger(writer.Console(), opts...)
}

// NewWriter 创建输出到任意 writer 的 Logger（JSON 格式）
func NewWriter(w io.Writer, opts ...Option) *Logger {
	return newLogger(w, opts...)
}

// NewFile 创建同时输出到轮转文件和控制台的 Logger
func NewFile(c FileConfig, opts ...Option) (*Logger, error) {
	if err := tag.ApplyDefaults(&c); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}

	fw, err := writer.File(c.toWriterConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create file writer: %w", err)
	}

	l := newLogger(zerolog.MultiLevelWriter(fw, writer.Console()), opts...)
	l.closer = fw
	return l, nil
}

// FromConfig 按配置创建 Logger，凭证脱敏总是开启
func FromConfig(c Config) (*Logger, error) {
	if err := tag.ApplyDefaults(&c); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}

	level, err := zerolog.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}

	opts := []Option{
		WithLevel(level),
		WithDesensitize(desensitize.NewHook(desensitize.BuiltinRules()...)),
	}
	if c.Caller {
		opts = append(opts, WithCaller())
	}

	if c.File.Enabled {
		return NewFile(c.File, opts...)
	}
	return New(opts...), nil
}

// Named 返回带 component 字段的子 Logger
func (l *Logger) Named(component string) *Logger {
	return &Logger{
		Logger: l.Logger.With().Str("component", component).Logger(),
		hook:   l.hook,
	}
}

// Close 关闭日志文件
func (l *Logger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}
