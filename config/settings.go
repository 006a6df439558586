package config

import (
	"time"

	"github.com/kochabx/workforce/audit"
	"github.com/kochabx/workforce/auth/store"
	"github.com/kochabx/workforce/log"
	khttp "github.com/kochabx/workforce/transport/http"
)

// Settings 控制台的全部配置，对应 workforce.yaml
type Settings struct {
	API     API          `json:"api" mapstructure:"api"`
	Session Session      `json:"session" mapstructure:"session"`
	Store   store.Config `json:"store" mapstructure:"store"`
	Log     log.Config   `json:"log" mapstructure:"log"`
	Audit   audit.Config `json:"audit" mapstructure:"audit"`
	Status  Status       `json:"status" mapstructure:"status"`
}

// API 后端地址
type API struct {
	BaseURL  string        `json:"baseUrl" mapstructure:"base_url" default:"http://localhost:8888/api" validate:"required,url"`
	Timeout  time.Duration `json:"timeout" mapstructure:"timeout" default:"30s"`
	PageSize int           `json:"pageSize" mapstructure:"page_size" default:"10" validate:"min=1,max=100"`
	// Workers ListAll 并发拉取分页的协程数
	Workers int `json:"workers" mapstructure:"workers" default:"4" validate:"min=1,max=64"`
	// RateLimit 每秒最多请求数，0 不限制
	RateLimit int `json:"rateLimit" mapstructure:"rate_limit" default:"0" validate:"min=0"`
	RateBurst int `json:"rateBurst" mapstructure:"rate_burst" default:"10" validate:"min=1"`
}

// Session 会话计时和跳转路径
type Session struct {
	InactivityWindow time.Duration `json:"inactivityWindow" mapstructure:"inactivity_window" default:"4m"`
	Countdown        time.Duration `json:"countdown" mapstructure:"countdown" default:"60s"`
	CountdownTick    time.Duration `json:"countdownTick" mapstructure:"countdown_tick" default:"1s"`
	LoginPath        string        `json:"loginPath" mapstructure:"login_path" default:"/login" validate:"required,startswith=/"`
	DeniedPath       string        `json:"deniedPath" mapstructure:"denied_path" default:"/access-denied" validate:"required,startswith=/"`
	// 404 响应体 message 含有其中任一字符串时视为当前用户已不存在
	PrincipalMarkers []string `json:"principalMarkers" mapstructure:"principal_markers" default:"User not found"`
	PrincipalCode    string   `json:"principalCode" mapstructure:"principal_code" default:"USER_NOT_FOUND"`
}

// Policy 转换为请求管道的判定策略
func (s Session) Policy() khttp.Policy {
	return khttp.Policy{
		PrincipalMarkers: s.PrincipalMarkers,
		PrincipalCode:    s.PrincipalCode,
		LoginPath:        s.LoginPath,
	}
}

// Status 交互模式下的状态服务
type Status struct {
	Enabled   bool                `json:"enabled" mapstructure:"enabled"`
	Addr      string              `json:"addr" mapstructure:"addr" default:"127.0.0.1:9464"`
	Endpoints khttp.ServerOptions `json:"endpoints" mapstructure:"endpoints"`
}

// Load 读取配置文件和环境变量，文件缺失时使用默认值
func Load(file string) (*Settings, *Config, error) {
	s := &Settings{}

	opts := []Option{WithPaths(".", "$HOME/.config/workforce")}
	if file != "" {
		opts = append(opts, WithFile(file))
	} else {
		opts = append(opts, WithOptional())
	}

	c := New(s, opts...)
	if err := c.Load(); err != nil {
		return nil, nil, err
	}
	return s, c, nil
}
