// Package guard 基于会话角色的路由与操作门控
package guard

import (
	"slices"
	"strings"

	"github.com/kochabx/workforce/auth/session"
)

// RoleAdmin 管理员角色
const RoleAdmin = "ADMIN"

const (
	DefaultLoginPath  = "/login"
	DefaultDeniedPath = "/access-denied"
)

// Allowed 已认证且 required 为空或与会话角色有交集
func Allowed(s session.Session, required ...string) bool {
	if !s.Authenticated() {
		return false
	}
	if len(required) == 0 {
		return true
	}
	return hasIntersection(s.Roles, required)
}

func hasIntersection(a, b []string) bool {
	for _, x := range a {
		if slices.Contains(b, x) {
			return true
		}
	}
	return false
}

// Route 可导航的页面
type Route struct {
	Path  string
	Title string
	// Roles 为空表示任何已登录用户可见
	Roles []string
	// Public 无需登录
	Public bool
}

// Outcome 路由检查结果
type Outcome int

const (
	Allow Outcome = iota
	RedirectLogin
	RedirectDenied
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "login"
	default:
		return "denied"
	}
}

// Result 检查结果和跳转目标
type Result struct {
	Outcome  Outcome
	Redirect string
}

// Navigator 路由表
type Navigator struct {
	routes     []Route
	loginPath  string
	deniedPath string
}

// NavigatorOption 路由表选项
type NavigatorOption func(*Navigator)

// WithPaths 登录页和无权限页
func WithPaths(login, denied string) NavigatorOption {
	return func(n *Navigator) {
		if login != "" {
			n.loginPath = login
		}
		if denied != "" {
			n.deniedPath = denied
		}
	}
}

// NewNavigator routes 为空时使用 DefaultRoutes
func NewNavigator(routes []Route, opts ...NavigatorOption) *Navigator {
	if len(routes) == 0 {
		routes = DefaultRoutes()
	}
	n := &Navigator{
		routes:     routes,
		loginPath:  DefaultLoginPath,
		deniedPath: DefaultDeniedPath,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// DefaultRoutes 管理台的页面
func DefaultRoutes() []Route {
	return []Route{
		{Path: "/", Title: "Employees"},
		{Path: "/projects", Title: "Projects"},
		{Path: "/skills", Title: "Skills"},
		{Path: "/generated-data", Title: "Generated Data"},
		{Path: "/admin", Title: "Admin", Roles: []string{RoleAdmin}},
		{Path: "/login", Title: "Login", Public: true},
		{Path: "/register", Title: "Register", Public: true},
		{Path: "/access-denied", Title: "Access Denied", Public: true},
	}
}

// Check 匿名访问受保护页面去登录页，角色不足去无权限页
func (n *Navigator) Check(s session.Session, r Route) Result {
	switch {
	case r.Public:
		return Result{Outcome: Allow}
	case !s.Authenticated():
		return Result{Outcome: RedirectLogin, Redirect: n.loginPath}
	case !Allowed(s, r.Roles...):
		return Result{Outcome: RedirectDenied, Redirect: n.deniedPath}
	default:
		return Result{Outcome: Allow}
	}
}

// CheckPath 按路径检查，未知路径按需要登录处理
func (n *Navigator) CheckPath(s session.Session, path string) Result {
	r, ok := n.Route(path)
	if !ok {
		r = Route{Path: path}
	}
	return n.Check(s, r)
}

// Route 按路径查找
func (n *Navigator) Route(path string) (Route, bool) {
	if path != "/" {
		path = strings.TrimRight(path, "/")
	}
	for _, r := range n.routes {
		if r.Path == path {
			return r, true
		}
	}
	return Route{}, false
}

// Visible 导航栏中当前会话可见的页面
func (n *Navigator) Visible(s session.Session) []Route {
	var out []Route
	for _, r := range n.routes {
		if r.Public {
			continue
		}
		if Allowed(s, r.Roles...) {
			out = append(out, r)
		}
	}
	return out
}

// Action 需要角色的操作
type Action struct {
	Name  string
	Roles []string
}

var (
	ActionManageEmployees = Action{Name: "manage-employees"}
	ActionManageProjects  = Action{Name: "manage-projects"}
	ActionManageSkills    = Action{Name: "manage-skills"}
	ActionGenerateData    = Action{Name: "generate-data"}
	ActionAssignRole      = Action{Name: "assign-role", Roles: []string{RoleAdmin}}
	ActionDeleteUser      = Action{Name: "delete-user", Roles: []string{RoleAdmin}}
)

// Enabled 操作是否可用
func Enabled(s session.Session, a Action) bool {
	return Allowed(s, a.Roles...)
}
