package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/kochabx/workforce/auth/session"
	"github.com/kochabx/workforce/errors"
	"github.com/kochabx/workforce/notice"
	"github.com/kochabx/workforce/transport/http/metrics"
)

// Action 拦截器对响应的处理方式
type Action int

const (
	Passthrough Action = iota
	Logout
	Notify
)

func (a Action) String() string {
	switch a {
	case Logout:
		return "logout"
	case Notify:
		return "notify"
	default:
		return "passthrough"
	}
}

// 集中处理时展示给用户的提示
const (
	MsgSessionExpired    = "Session expired. Please log in again."
	MsgForbidden         = "You do not have permission to perform this action."
	MsgPrincipalNotFound = "User not found. Please log in."
)

// Decision 对一个响应的判定
type Decision struct {
	Action  Action
	Kind    string
	Message string
}

// Policy 判定参数
type Policy struct {
	// PrincipalMarkers 404 响应的 message 含其中任意一个即视为当前用户已不存在
	PrincipalMarkers []string
	// PrincipalCode 404 响应体 code 等于它时同样处理
	PrincipalCode string
	LoginPath     string
}

// DefaultPolicy 与服务端当前的错误格式对应
func DefaultPolicy() Policy {
	return Policy{
		PrincipalMarkers: []string{"User not found"},
		PrincipalCode:    "USER_NOT_FOUND",
		LoginPath:        "/login",
	}
}

// Decide 纯函数：状态码和响应体 -> 处理方式
func Decide(status int, body []byte, p Policy) Decision {
	switch status {
	case http.StatusUnauthorized:
		return Decision{Action: Logout, Kind: errors.KindUnauthorized, Message: MsgSessionExpired}
	case http.StatusForbidden:
		return Decision{Action: Notify, Kind: errors.KindForbidden, Message: MsgForbidden}
	case http.StatusNotFound:
		if p.principalMissing(parseBody(body)) {
			return Decision{Action: Logout, Kind: errors.KindNotFoundPrincipal, Message: MsgPrincipalNotFound}
		}
	}
	return Decision{Action: Passthrough}
}

func (p Policy) principalMissing(b errorBody) bool {
	if p.PrincipalCode != "" && b.Code == p.PrincipalCode {
		return true
	}
	if b.Message == "" {
		return false
	}
	for _, marker := range p.PrincipalMarkers {
		if marker != "" && strings.Contains(b.Message, marker) {
			return true
		}
	}
	return false
}

// errorBody 服务端错误响应里关心的字段
type errorBody struct {
	Message string
	Code    string
}

func parseBody(body []byte) errorBody {
	var raw struct {
		Message string          `json:"message"`
		Code    json.RawMessage `json:"code"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return errorBody{}
	}

	code := string(bytes.Trim(bytes.TrimSpace(raw.Code), `"`))
	return errorBody{Message: raw.Message, Code: code}
}

// Terminator 可被强制结束的会话
type Terminator interface {
	ForceLogout(ctx context.Context, reason session.Reason) bool
}

// SessionGuard 执行 Decide 的结果
//
// Logout: 结束会话并跳转登录页，只有确实结束了会话才提示，迟到的响应不会重复提示。
// Notify: 只提示。
func SessionGuard(s Terminator, n notice.Notifier, p Policy, m *metrics.Client) ResponseInterceptor {
	loginPath := p.LoginPath
	if loginPath == "" {
		loginPath = "/login"
	}

	return func(ctx context.Context, _ *http.Request, resp *Response) {
		d := Decide(resp.Status, resp.Body, p)
		if d.Action == Passthrough {
			return
		}
		if m != nil {
			m.ObserveDecision(d.Action.String())
		}

		switch d.Action {
		case Logout:
			reason := session.ReasonUnauthorized
			if d.Kind == errors.KindNotFoundPrincipal {
				reason = session.ReasonPrincipalMissing
			}
			ended := s.ForceLogout(ctx, reason)
			n.Redirect(loginPath)
			if ended {
				n.Notify(notice.Notice{Level: notice.Error, Message: d.Message})
			}
		case Notify:
			n.Notify(notice.Notice{Level: notice.Warning, Message: d.Message})
		}
	}
}
