package api

import (
	"context"

	"github.com/kochabx/workforce/errors"
)

// Auth 登录和注册，不需要已登录
type Auth struct {
	c *Client
}

// Login 用凭据换取令牌
func (a *Auth) Login(ctx context.Context, cred Credentials) (string, error) {
	if err := a.c.check(ctx, cred); err != nil {
		return "", err
	}

	var resp tokenResponse
	if err := a.c.http.Post(ctx, "/auth/login", cred, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", errors.Internal("login response carries no token")
	}
	return resp.Token, nil
}

// Register 注册账号，只提交用户名和密码
func (a *Auth) Register(ctx context.Context, reg Registration) error {
	if err := a.c.check(ctx, reg); err != nil {
		return err
	}
	return a.c.http.Post(ctx, "/auth/register", Credentials{Username: reg.Username, Password: reg.Password}, nil)
}
