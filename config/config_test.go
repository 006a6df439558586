package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/workforce/errors"
)

const sample = `
api:
  base_url: http://backend.internal:8080/api
  page_size: 25
session:
  inactivity_window: 2m
  principal_markers:
    - User not found
    - Principal missing
store:
  driver: memory
log:
  level: debug
`

func writeFile(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "workforce.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), sample)

	s, _, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://backend.internal:8080/api", s.API.BaseURL)
	assert.Equal(t, 25, s.API.PageSize)
	assert.Equal(t, 30*time.Second, s.API.Timeout)
	assert.Equal(t, 2*time.Minute, s.Session.InactivityWindow)
	assert.Equal(t, 60*time.Second, s.Session.Countdown)
	assert.Equal(t, []string{"User not found", "Principal missing"}, s.Session.PrincipalMarkers)
	assert.Equal(t, "memory", s.Store.Driver)
	assert.Equal(t, "debug", s.Log.Level)
	assert.Equal(t, "workforce.audit", s.Audit.Topic)
	assert.Equal(t, "/metrics", s.Status.Endpoints.MetricsPath)

	p := s.Session.Policy()
	assert.Equal(t, "/login", p.LoginPath)
	assert.Equal(t, "USER_NOT_FOUND", p.PrincipalCode)
}

func TestDefaultsWithoutFile(t *testing.T) {
	s := &Settings{}
	c := New(s, WithPaths(t.TempDir()), WithOptional())
	require.NoError(t, c.Load())

	assert.Equal(t, "http://localhost:8888/api", s.API.BaseURL)
	assert.Equal(t, 4*time.Minute, s.Session.InactivityWindow)
	assert.Equal(t, time.Second, s.Session.CountdownTick)
	assert.Equal(t, "/access-denied", s.Session.DeniedPath)
	assert.Equal(t, []string{"User not found"}, s.Session.PrincipalMarkers)
	assert.Equal(t, "file", s.Store.Driver)
	assert.Equal(t, "info", s.Log.Level)
}

func TestMissingFileRequired(t *testing.T) {
	s := &Settings{}
	err := New(s, WithPaths(t.TempDir())).Load()
	require.Error(t, err)
	assert.Equal(t, 404, errors.Code(err))
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("WORKFORCE_API_BASE_URL", "https://api.example.com")
	t.Setenv("WORKFORCE_SESSION_COUNTDOWN", "30s")
	t.Setenv("WORKFORCE_STORE_DRIVER", "db")

	path := writeFile(t, t.TempDir(), sample)
	s, _, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", s.API.BaseURL)
	assert.Equal(t, 30*time.Second, s.Session.Countdown)
	assert.Equal(t, "db", s.Store.Driver)
	// 文件中的其它值不受影响
	assert.Equal(t, 25, s.API.PageSize)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad url", "api:\n  base_url: not a url\n"},
		{"bad driver", "store:\n  driver: floppy\n"},
		{"bad page size", "api:\n  page_size: 1000\n"},
		{"bad login path", "session:\n  login_path: login\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), tt.body)
			_, _, err := Load(path)
			require.Error(t, err)
			assert.Equal(t, 400, errors.Code(err))
		})
	}
}

func TestWatchReload(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, sample)

	s := &Settings{}
	c := New(s, WithFile(path))
	require.NoError(t, c.Load())

	changed := make(chan struct{}, 4)
	c.OnChange(func() { changed <- struct{}{} })
	require.NoError(t, c.Watch())

	writeFile(t, dir, "api:\n  page_size: 50\n")

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after file change")
	}

	var size int
	c.Read(func() { size = s.API.PageSize })
	assert.Equal(t, 50, size)
}

func TestWatchWithoutFile(t *testing.T) {
	c := New(&Settings{}, WithPaths(t.TempDir()), WithOptional())
	require.NoError(t, c.Load())
	assert.Error(t, c.Watch())
}
