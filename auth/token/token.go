// Package token extracts identity, roles and expiry from a bearer token.
//
// The payload is trusted as-is: the signature is never checked here, that is
// the API server's job. A token that cannot be read is reported as ErrDecode
// and must be treated exactly like having no session at all.
package token

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RolePrefix 服务端权限名的固定前缀，解码时去掉
const RolePrefix = "ROLE_"

var (
	ErrDecode  = errors.New("token: malformed token")
	ErrExpired = errors.New("token: token expired")
)

// Claims 从令牌中取出的会话信息
type Claims struct {
	Subject   string
	Roles     []string
	ExpiresAt time.Time
}

// Expired 到期时刻不晚于 now 即视为过期
func (c *Claims) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// Remaining 距离过期的时长，已过期时为 0
func (c *Claims) Remaining(now time.Time) time.Duration {
	return max(c.ExpiresAt.Sub(now), 0)
}

// payload 令牌负载
type payload struct {
	jwt.RegisteredClaims
	Roles []authority `json:"roles"`
}

// authority 兼容 {"authority":"ROLE_X"} 和 "ROLE_X" 两种写法
type authority string

func (a *authority) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = authority(s)
		return nil
	}

	var obj struct {
		Authority string `json:"authority"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	*a = authority(obj.Authority)
	return nil
}

// Decoder 令牌解码器
type Decoder struct {
	parser *jwt.Parser
}

// NewDecoder 创建解码器
func NewDecoder() *Decoder {
	return &Decoder{parser: jwt.NewParser()}
}

// Decode 解析令牌负载，不校验签名
func (d *Decoder) Decode(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty token", ErrDecode)
	}

	var p payload
	if _, _, err := d.parser.ParseUnverified(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	if p.Subject == "" {
		return nil, fmt.Errorf("%w: missing sub claim", ErrDecode)
	}
	if p.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing exp claim", ErrDecode)
	}

	return &Claims{
		Subject:   p.Subject,
		Roles:     normalizeRoles(p.Roles),
		ExpiresAt: p.ExpiresAt.Time,
	}, nil
}

// DecodeAt 解码并检查在 now 时刻是否已过期
func (d *Decoder) DecodeAt(raw string, now time.Time) (*Claims, error) {
	claims, err := d.Decode(raw)
	if err != nil {
		return nil, err
	}
	if claims.Expired(now) {
		return claims, fmt.Errorf("%w: expired at %s", ErrExpired, claims.ExpiresAt.Format(time.RFC3339))
	}
	return claims, nil
}

var defaultDecoder = NewDecoder()

// Decode 使用默认解码器
func Decode(raw string) (*Claims, error) {
	return defaultDecoder.Decode(raw)
}

// normalizeRoles 去前缀、去重、排序
func normalizeRoles(in []authority) []string {
	roles := make([]string, 0, len(in))
	for _, a := range in {
		role := strings.TrimPrefix(strings.TrimSpace(string(a)), RolePrefix)
		if role == "" {
			continue
		}
		roles = append(roles, role)
	}
	slices.Sort(roles)
	return slices.Compact(roles)
}
