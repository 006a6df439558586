package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{":9464", true},
		{"127.0.0.1:9464", true},
		{"localhost:80", true},
		{"[::1]:8080", true},
		{"", false},
		{"localhost", false},
		{"localhost:0", false},
		{"localhost:65536", false},
		{"-bad:80", false},
		{"bad_host:80", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidateAddress(tt.addr), tt.addr)
	}
}
