package api

import (
	"context"
	"strconv"

	"github.com/kochabx/workforce/auth/guard"
)

// Admin 角色和账号管理，服务端要求 ADMIN
type Admin struct {
	c *Client
}

func (a *Admin) Roles(ctx context.Context) ([]Role, error) {
	var out []Role
	if err := a.c.http.Get(ctx, "/admin/roles", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Admin) Users(ctx context.Context) ([]User, error) {
	var out []User
	if err := a.c.http.Get(ctx, "/admin/users", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AssignRole 设置角色，会拒绝拿掉最后一个管理员的 ADMIN
func (a *Admin) AssignRole(ctx context.Context, req AssignRoleRequest) error {
	if err := a.c.check(ctx, req); err != nil {
		return err
	}

	users, err := a.Users(ctx)
	if err != nil {
		return err
	}
	if err := guard.CheckRoleChange(Members(users), req.Username, req.Roles); err != nil {
		return err
	}

	return a.c.http.Post(ctx, "/admin/assign-role", req, nil)
}

// DeleteUser 删除账号，会拒绝删除最后一个管理员
func (a *Admin) DeleteUser(ctx context.Context, userID int64) error {
	users, err := a.Users(ctx)
	if err != nil {
		return err
	}
	if err := guard.CheckDelete(Members(users), userID); err != nil {
		return err
	}

	return a.c.http.Delete(ctx, "/admin/users/"+strconv.FormatInt(userID, 10))
}

// Members 转换为 guard 的成员列表
func Members(users []User) []guard.Member {
	out := make([]guard.Member, 0, len(users))
	for _, u := range users {
		out = append(out, guard.Member{ID: u.ID, Username: u.Username, Roles: u.Roles})
	}
	return out
}
