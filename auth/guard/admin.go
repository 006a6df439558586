package guard

import (
	"slices"

	"github.com/kochabx/workforce/errors"
)

// 最后一个管理员不能被降级或删除。仅为客户端提示，服务端仍需校验。
const (
	MsgLastAdminRole   = "Cannot change the last remaining Admin role. Please assign a new Admin first."
	MsgLastAdminDelete = "Cannot delete the last remaining Admin user."
)

// Member 用户及其角色
type Member struct {
	ID       int64
	Username string
	Roles    []string
}

func (m Member) IsAdmin() bool {
	return slices.Contains(m.Roles, RoleAdmin)
}

// AdminCount 持有管理员角色的人数
func AdminCount(members []Member) int {
	n := 0
	for _, m := range members {
		if m.IsAdmin() {
			n++
		}
	}
	return n
}

// CheckRoleChange 把 username 的角色改为 newRoles 前的检查
func CheckRoleChange(members []Member, username string, newRoles []string) error {
	idx := slices.IndexFunc(members, func(m Member) bool { return m.Username == username })
	if idx < 0 {
		return errors.NotFound("user %s not found", username)
	}
	if members[idx].IsAdmin() && !slices.Contains(newRoles, RoleAdmin) && AdminCount(members) <= 1 {
		return errors.Conflict(MsgLastAdminRole)
	}
	return nil
}

// CheckDelete 删除 userID 前的检查
func CheckDelete(members []Member, userID int64) error {
	idx := slices.IndexFunc(members, func(m Member) bool { return m.ID == userID })
	if idx < 0 {
		return errors.NotFound("user %d not found", userID)
	}
	if members[idx].IsAdmin() && AdminCount(members) <= 1 {
		return errors.Conflict(MsgLastAdminDelete)
	}
	return nil
}
