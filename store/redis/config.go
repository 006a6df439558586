package redis

import (
	"errors"
	"time"

	"github.com/kochabx/workforce/core/tag"
)

var (
	ErrInvalidConfig = errors.New("redis: invalid config")
	ErrEmptyAddrs    = errors.New("redis: addrs cannot be empty")
)

// Config Redis 配置（单机/集群/哨兵）
type Config struct {
	// Addrs 单机一个地址，集群多个地址，哨兵模式为哨兵地址
	Addrs      []string `json:"addrs" mapstructure:"addrs" default:"localhost:6379"`
	MasterName string   `json:"masterName" mapstructure:"master_name"`
	Username   string   `json:"username" mapstructure:"username"`
	Password   string   `json:"password" mapstructure:"password"`
	DB         int      `json:"db" mapstructure:"db"`
	Protocol   int      `json:"protocol" mapstructure:"protocol" default:"3"`

	DialTimeout  time.Duration `json:"dialTimeout" mapstructure:"dial_timeout" default:"5s"`
	ReadTimeout  time.Duration `json:"readTimeout" mapstructure:"read_timeout" default:"3s"`
	WriteTimeout time.Duration `json:"writeTimeout" mapstructure:"write_timeout" default:"3s"`
	PoolSize     int           `json:"poolSize" mapstructure:"pool_size"`
}

// ApplyDefaults 应用默认值
func (c *Config) ApplyDefaults() error {
	return tag.ApplyDefaults(c)
}

// Validate 验证配置
func (c *Config) Validate() error {
	if len(c.Addrs) == 0 {
		return ErrEmptyAddrs
	}
	return nil
}

// Mode 部署模式
func (c *Config) Mode() string {
	switch {
	case c.MasterName != "":
		return "sentinel"
	case len(c.Addrs) > 1:
		return "cluster"
	default:
		return "single"
	}
}
