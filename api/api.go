// Package api 员工、项目、技能管理后端的类型化客户端
package api

import (
	"context"

	"github.com/kochabx/workforce/core/validator"
	"github.com/kochabx/workforce/errors"
	"github.com/kochabx/workforce/log"
	khttp "github.com/kochabx/workforce/transport/http"
)

const (
	defaultPageSize = 10
	defaultWorkers  = 4
)

// Client 聚合各资源客户端，请求都经过同一个 khttp.Client
type Client struct {
	http     *khttp.Client
	validate validator.Validator
	log      *log.Logger
	pageSize int
	workers  int

	Auth      *Auth
	Employees *Employees
	Projects  *Projects
	Skills    *Skills
	Admin     *Admin
	AI        *AI
}

// Option 客户端选项
type Option func(*Client)

func WithValidator(v validator.Validator) Option {
	return func(c *Client) {
		c.validate = v
	}
}

// WithPageSize ListAll 每页拉取的条数
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithWorkers ListAll 并发拉取的协程数
func WithWorkers(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.workers = n
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// New 创建客户端
func New(http *khttp.Client, opts ...Option) *Client {
	c := &Client{
		http:     http,
		validate: validator.Validate,
		log:      log.G.Named("api"),
		pageSize: defaultPageSize,
		workers:  defaultWorkers,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.Auth = &Auth{c: c}
	c.Employees = &Employees{resource[Employee]{c: c, path: "/employees", sort: Sort{Field: "name", Direction: Asc}}}
	c.Projects = &Projects{resource[Project]{c: c, path: "/projects", sort: Sort{Field: "projectName", Direction: Asc}}}
	c.Skills = &Skills{resource[Skill]{c: c, path: "/skills", sort: Sort{Field: "name", Direction: Asc}}}
	c.Admin = &Admin{c: c}
	c.AI = &AI{c: c}
	return c
}

// HTTP 底层客户端
func (c *Client) HTTP() *khttp.Client {
	return c.http
}

// check 发送前校验输入，失败时返回 400 并在元数据中带上各字段的错误
func (c *Client) check(ctx context.Context, v any) error {
	if c.validate == nil {
		return nil
	}
	if err := c.validate.StructCtx(ctx, v); err != nil {
		return errors.BadRequest("%v", err).WithMetadata(validator.FieldMessages(err)).WithCause(err)
	}
	return nil
}
