package db

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kochabx/workforce/core/tag"
)

// Driver 数据库驱动类型
type Driver string

const (
	DriverMySQL    Driver = "mysql"
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

// Config 数据库配置，DSN 非空时直接使用
type Config struct {
	Driver   Driver         `json:"driver" mapstructure:"driver" default:"sqlite" validate:"oneof=mysql postgres sqlite"`
	DSN      string         `json:"dsn" mapstructure:"dsn"`
	SQLite   SQLiteConfig   `json:"sqlite" mapstructure:"sqlite"`
	Postgres PostgresConfig `json:"postgres" mapstructure:"postgres"`
	MySQL    MySQLConfig    `json:"mysql" mapstructure:"mysql"`
	Pool     PoolConfig     `json:"pool" mapstructure:"pool"`
	// Level gorm 日志级别: silent error warn info
	Level string `json:"level" mapstructure:"level" default:"silent"`
}

// SQLiteConfig SQLite 配置
type SQLiteConfig struct {
	FilePath    string `json:"filePath" mapstructure:"file_path" default:"workforce.db"`
	JournalMode string `json:"journalMode" mapstructure:"journal_mode" default:"WAL"`
	BusyTimeout int    `json:"busyTimeout" mapstructure:"busy_timeout" default:"5000"`
}

// PostgresConfig PostgreSQL 配置
type PostgresConfig struct {
	Host     string `json:"host" mapstructure:"host" default:"localhost"`
	Port     int    `json:"port" mapstructure:"port" default:"5432"`
	User     string `json:"user" mapstructure:"user" default:"postgres"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database" default:"workforce"`
	SSLMode  string `json:"sslMode" mapstructure:"ssl_mode" default:"disable"`
	TimeZone string `json:"timeZone" mapstructure:"time_zone" default:"UTC"`
}

// MySQLConfig MySQL 配置
type MySQLConfig struct {
	Host     string `json:"host" mapstructure:"host" default:"localhost"`
	Port     int    `json:"port" mapstructure:"port" default:"3306"`
	User     string `json:"user" mapstructure:"user" default:"root"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database" default:"workforce"`
	Charset  string `json:"charset" mapstructure:"charset" default:"utf8mb4"`
}

// PoolConfig 连接池配置
type PoolConfig struct {
	MaxIdleConns    int           `json:"maxIdleConns" mapstructure:"max_idle_conns" default:"2"`
	MaxOpenConns    int           `json:"maxOpenConns" mapstructure:"max_open_conns" default:"10"`
	ConnMaxLifetime time.Duration `json:"connMaxLifetime" mapstructure:"conn_max_lifetime" default:"1h"`
	ConnMaxIdleTime time.Duration `json:"connMaxIdleTime" mapstructure:"conn_max_idle_time" default:"10m"`
}

// Init 应用默认值
func (c *Config) Init() error {
	return tag.ApplyDefaults(c)
}

// Dsn 按驱动拼出数据源
func (c *Config) Dsn() string {
	if c.DSN != "" {
		return c.DSN
	}

	switch c.Driver {
	case DriverPostgres:
		p := c.Postgres
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
			p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode, p.TimeZone)
	case DriverMySQL:
		m := c.MySQL
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=UTC",
			m.User, m.Password, m.Host, m.Port, m.Database, m.Charset)
	default:
		s := c.SQLite
		q := url.Values{}
		q.Set("_journal_mode", s.JournalMode)
		q.Set("_busy_timeout", fmt.Sprint(s.BusyTimeout))
		return "file:" + s.FilePath + "?" + q.Encode()
	}
}

// Level gorm 日志级别
type Level int

const (
	LevelSilent Level = iota + 1
	LevelError
	LevelWarn
	LevelInfo
)

// LogLevel 解析日志级别，未知值视为 silent
func (c *Config) LogLevel() Level {
	switch strings.ToLower(c.Level) {
	case "error":
		return LevelError
	case "warn":
		return LevelWarn
	case "info":
		return LevelInfo
	default:
		return LevelSilent
	}
}
