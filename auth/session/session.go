// Package session 会话状态机
//
// Controller 独占当前会话并整体替换它。过期、无操作和倒计时三个具名定时器
// 驱动自动登出，请求管道在收到 401 时调用 ForceLogout。
package session

import (
	"slices"
	"time"
)

// State 会话状态
type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Reason 状态变化原因
type Reason string

const (
	ReasonRestored         Reason = "restored"
	ReasonLogin            Reason = "login"
	ReasonLogout           Reason = "logout"
	ReasonExpired          Reason = "expired"
	ReasonInactivity       Reason = "inactivity"
	ReasonInvalid          Reason = "invalid"
	ReasonUnauthorized     Reason = "unauthorized"
	ReasonPrincipalMissing Reason = "principal-missing"
)

// 定时器名称
const (
	TimerExpiration = "expiration"
	TimerInactivity = "inactivity"
	TimerCountdown  = "countdown"
)

// 用户可见的提示
const (
	MsgExpired    = "Session expired. Please log in again."
	MsgInactivity = "You have been logged out due to inactivity."
	MsgCountdown  = "Logging out in %d seconds..."
)

// Session 不可变的会话快照，零值表示匿名
type Session struct {
	Token     string
	Subject   string
	Roles     []string
	ExpiresAt time.Time
}

// State 令牌存在即已认证
func (s Session) State() State {
	if s.Token == "" {
		return Anonymous
	}
	return Authenticated
}

func (s Session) Authenticated() bool {
	return s.Token != ""
}

// HasAnyRole 已认证且拥有 roles 中任意一个
func (s Session) HasAnyRole(roles ...string) bool {
	if !s.Authenticated() {
		return false
	}
	for _, r := range roles {
		if slices.Contains(s.Roles, r) {
			return true
		}
	}
	return false
}

func (s Session) clone() Session {
	s.Roles = slices.Clone(s.Roles)
	return s
}

// Event 一次状态变化
type Event struct {
	From    State
	To      State
	Subject string
	Reason  Reason
	At      time.Time
}
