package mongo

import (
	"net/url"
	"strconv"
	"time"

	"github.com/kochabx/workforce/core/tag"
)

// Config MongoDB 配置
type Config struct {
	// URI 非空时直接使用，忽略 Host 等字段
	URI         string        `json:"uri" mapstructure:"uri"`
	Host        string        `json:"host" mapstructure:"host" default:"localhost"`
	Port        int           `json:"port" mapstructure:"port" default:"27017"`
	User        string        `json:"user" mapstructure:"user"`
	Password    string        `json:"password" mapstructure:"password"`
	Database    string        `json:"database" mapstructure:"database" default:"workforce"`
	Collection  string        `json:"collection" mapstructure:"collection" default:"tokens"`
	MaxPoolSize int           `json:"maxPoolSize" mapstructure:"max_pool_size" default:"4"`
	Timeout     time.Duration `json:"timeout" mapstructure:"timeout" default:"3s"`
}

func (c *Config) init() error {
	return tag.ApplyDefaults(c)
}

// uri 构建连接字符串
func (c *Config) uri() string {
	if c.URI != "" {
		return c.URI
	}
	u := url.URL{
		Scheme: "mongodb",
		Host:   c.Host + ":" + strconv.Itoa(c.Port),
		Path:   "/",
	}
	if c.User != "" && c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	}
	return u.String()
}
