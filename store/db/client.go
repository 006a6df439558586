package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kochabx/workforce/log"
)

var (
	ErrUnsupportedDriver = errors.New("unsupported database driver")
	ErrInvalidConfig     = errors.New("invalid database configuration")
	ErrNotInitialized    = errors.New("database not initialized")
)

// Client 数据库客户端
type Client struct {
	config *Config
	db     *gorm.DB
	sqlDB  *sql.DB
	logger *log.Logger
}

// New 创建客户端并测试连接
func New(ctx context.Context, cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if err := cfg.Init(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	c := &Client{config: cfg, logger: o.logger}

	dialector, err := c.dialector()
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(gormLogWriter{c.logger}, logger.Config{
			LogLevel:                  logger.LogLevel(cfg.LogLevel()),
			SlowThreshold:             o.slowQueryThresh,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.Pool.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.Pool.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.Pool.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.Pool.ConnMaxIdleTime)

	c.db, c.sqlDB = db, sqlDB

	pingCtx, cancel := context.WithTimeout(ctx, o.connectTimeout)
	defer cancel()
	if err := c.Ping(pingCtx); err != nil {
		_ = c.Close()
		return nil, err
	}

	c.logger.Debug().Str("driver", string(cfg.Driver)).Msg("database client created")
	return c, nil
}

func (c *Client) dialector() (gorm.Dialector, error) {
	dsn := c.config.Dsn()
	switch c.config.Driver {
	case DriverMySQL:
		return mysql.Open(dsn), nil
	case DriverPostgres:
		return postgres.Open(dsn), nil
	case DriverSQLite:
		return sqlite.Open(dsn), nil
	default:
		return nil, ErrUnsupportedDriver
	}
}

// DB 获取 GORM 实例
func (c *Client) DB() *gorm.DB {
	return c.db
}

// Ping 测试连接
func (c *Client) Ping(ctx context.Context) error {
	if c.sqlDB == nil {
		return ErrNotInitialized
	}
	return c.sqlDB.PingContext(ctx)
}

// Close 关闭连接
func (c *Client) Close() error {
	if c.sqlDB == nil {
		return nil
	}
	err := c.sqlDB.Close()
	c.sqlDB = nil
	return err
}

// gormLogWriter 把 gorm 日志转给 zerolog
type gormLogWriter struct {
	logger *log.Logger
}

func (w gormLogWriter) Printf(format string, args ...any) {
	w.logger.Info().Msgf(format, args...)
}

// Option 客户端选项
type Option func(*clientOptions)

type clientOptions struct {
	logger          *log.Logger
	connectTimeout  time.Duration
	slowQueryThresh time.Duration
}

func defaultOptions() *clientOptions {
	return &clientOptions{
		logger:         log.G.Named("db"),
		connectTimeout: 10 * time.Second,
	}
}

// WithLogger 设置日志记录器
func WithLogger(l *log.Logger) Option {
	return func(o *clientOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithConnectTimeout 设置连接超时
func WithConnectTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		if d > 0 {
			o.connectTimeout = d
		}
	}
}

// WithSlowQuery 慢查询阈值，0 表示禁用
func WithSlowQuery(threshold time.Duration) Option {
	return func(o *clientOptions) {
		o.slowQueryThresh = threshold
	}
}
