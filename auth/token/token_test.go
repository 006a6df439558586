package token_test

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/workforce/auth/token"
	"github.com/kochabx/workforce/auth/token/tokentest"
)

func TestDecodeAuthorityObjects(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	raw := tokentest.Mint("alice", exp, "ADMIN", "USER", "ADMIN")

	claims, err := token.Decode(raw)
	require.NoError(t, err)

	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, []string{"ADMIN", "USER"}, claims.Roles)
	assert.True(t, exp.Equal(claims.ExpiresAt))
	assert.False(t, claims.Expired(time.Now()))
}

func TestDecodePlainRoleStrings(t *testing.T) {
	raw := tokentest.Sign(jwt.MapClaims{
		"sub":   "bob",
		"exp":   time.Now().Add(time.Hour).Unix(),
		"roles": []string{"ROLE_ADMIN"},
	})

	claims, err := token.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"ADMIN"}, claims.Roles)
}

func TestDecodeWithoutRoles(t *testing.T) {
	raw := tokentest.Mint("carol", time.Now().Add(time.Hour))

	claims, err := token.Decode(raw)
	require.NoError(t, err)
	assert.Empty(t, claims.Roles)
}

func TestDecodeMalformed(t *testing.T) {
	payload := base64.RawURLEncoding.EncodeToString([]byte(`not json`))
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))

	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"two segments", "aaa.bbb"},
		{"payload not json", header + "." + payload + ".sig"},
		{"missing subject", tokentest.Sign(jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})},
		{"missing expiry", tokentest.Sign(jwt.MapClaims{"sub": "dave"})},
		{"bad roles", tokentest.Sign(jwt.MapClaims{"sub": "erin", "exp": time.Now().Add(time.Hour).Unix(), "roles": 42})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := token.Decode(tt.raw)
			assert.ErrorIs(t, err, token.ErrDecode)
		})
	}
}

func TestDecodeIgnoresSignature(t *testing.T) {
	raw := tokentest.Mint("frank", time.Now().Add(time.Hour), "USER")
	tampered := raw[:len(raw)-4] + "AAAA"

	claims, err := token.Decode(tampered)
	require.NoError(t, err)
	assert.Equal(t, "frank", claims.Subject)
}

func TestDecodeAt(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	dec := token.NewDecoder()

	_, err := dec.DecodeAt(tokentest.Mint("grace", now.Add(-time.Second)), now)
	assert.ErrorIs(t, err, token.ErrExpired)

	_, err = dec.DecodeAt(tokentest.Mint("grace", now), now)
	assert.ErrorIs(t, err, token.ErrExpired, "expiring exactly now counts as expired")

	claims, err := dec.DecodeAt(tokentest.Mint("grace", now.Add(time.Minute)), now)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, claims.Remaining(now))
}
