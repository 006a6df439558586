// Package tokentest mints unverified bearer tokens shaped like the API server's.
package tokentest

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const secret = "tokentest"

// Mint 生成一个带 sub、exp 和 roles 的令牌，roles 按服务端格式写成 authority 对象
func Mint(subject string, expiresAt time.Time, roles ...string) string {
	authorities := make([]map[string]string, 0, len(roles))
	for _, r := range roles {
		authorities = append(authorities, map[string]string{"authority": "ROLE_" + r})
	}

	claims := jwt.MapClaims{
		"sub": subject,
		"exp": expiresAt.Unix(),
		"iat": expiresAt.Add(-time.Hour).Unix(),
	}
	if len(authorities) > 0 {
		claims["roles"] = authorities
	}
	return Sign(claims)
}

// Sign 用固定密钥签名任意负载
func Sign(claims jwt.MapClaims) string {
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		panic(err)
	}
	return s
}
