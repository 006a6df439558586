package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/workforce/store/db"
	"github.com/kochabx/workforce/store/etcd"
	"github.com/kochabx/workforce/store/mongo"
	"github.com/kochabx/workforce/store/redis"
)

// exercise 所有后端共用的行为
func exercise(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, s.Clear(ctx))
	_, err := s.Get(ctx)
	assert.ErrorIs(t, err, ErrTokenNotFound)

	require.NoError(t, s.Set(ctx, "first"))
	got, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first", got)

	require.NoError(t, s.Set(ctx, "second"))
	got, err = s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", got)

	require.NoError(t, s.Clear(ctx))
	require.NoError(t, s.Clear(ctx), "clearing twice is fine")
	_, err = s.Get(ctx)
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestMemory(t *testing.T) {
	exercise(t, NewMemory())
}

func TestFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	f := NewFile(fsys, "/home/u/.config/workforce/token")
	exercise(t, f)

	require.NoError(t, f.Set(context.Background(), "abc"))
	info, err := fsys.Stat(f.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	entries, err := afero.ReadDir(fsys, "/home/u/.config/workforce")
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file is renamed away")
}

func TestFileBlankIsAbsent(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/token", []byte("  \n"), 0o600))

	_, err := NewFile(fsys, "/token").Get(context.Background())
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestFileOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")
	s, err := Open(context.Background(), Config{Driver: DriverFile, File: FileConfig{Path: path}})
	require.NoError(t, err)
	exercise(t, s)
}

func TestDB(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, Config{
		Driver: DriverDB,
		DB:     db.Config{Driver: db.DriverSQLite, SQLite: db.SQLiteConfig{FilePath: filepath.Join(t.TempDir(), "tokens.db")}},
	})
	require.NoError(t, err)
	defer s.Close()
	exercise(t, s)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "tape"})
	assert.Error(t, err)
}

func TestOpenMemory(t *testing.T) {
	s, err := Open(context.Background(), Config{Driver: DriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)
}

func TestRedis(t *testing.T) {
	addr := os.Getenv("WORKFORCE_TEST_REDIS")
	if addr == "" {
		t.Skip("WORKFORCE_TEST_REDIS not set")
	}
	s, err := Open(context.Background(), Config{Driver: DriverRedis, Prefix: "workforce-test", Redis: redis.Config{Addrs: []string{addr}}})
	if err != nil {
		t.Skipf("Skipping test (Redis not available): %v", err)
	}
	defer s.Close()
	exercise(t, s)
}

func TestEtcd(t *testing.T) {
	endpoint := os.Getenv("WORKFORCE_TEST_ETCD")
	if endpoint == "" {
		t.Skip("WORKFORCE_TEST_ETCD not set")
	}
	s, err := Open(context.Background(), Config{Driver: DriverEtcd, Prefix: "workforce-test", Etcd: etcd.Config{Endpoints: []string{endpoint}}})
	if err != nil {
		t.Skipf("Skipping test (etcd not available): %v", err)
	}
	defer s.Close()
	exercise(t, s)
}

func TestMongo(t *testing.T) {
	uri := os.Getenv("WORKFORCE_TEST_MONGO")
	if uri == "" {
		t.Skip("WORKFORCE_TEST_MONGO not set")
	}
	s, err := Open(context.Background(), Config{Driver: DriverMongo, Prefix: "workforce-test", Mongo: mongo.Config{URI: uri}})
	if err != nil {
		t.Skipf("Skipping test (MongoDB not available): %v", err)
	}
	defer s.Close()
	exercise(t, s)
}
