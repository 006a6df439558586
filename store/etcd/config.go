package etcd

import (
	"time"

	"github.com/kochabx/workforce/core/tag"
)

// Config etcd 配置
type Config struct {
	Endpoints        []string      `json:"endpoints" mapstructure:"endpoints" default:"localhost:2379"`
	Username         string        `json:"username" mapstructure:"username"`
	Password         string        `json:"password" mapstructure:"password"`
	DialTimeout      time.Duration `json:"dialTimeout" mapstructure:"dial_timeout" default:"5s"`
	KeepAliveTime    time.Duration `json:"keepAliveTime" mapstructure:"keep_alive_time" default:"30s"`
	KeepAliveTimeout time.Duration `json:"keepAliveTimeout" mapstructure:"keep_alive_timeout" default:"5s"`
}

func (c *Config) init() error {
	return tag.ApplyDefaults(c)
}
