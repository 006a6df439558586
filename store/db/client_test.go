package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDsn(t *testing.T) {
	c := &Config{Driver: DriverPostgres}
	require.NoError(t, c.Init())
	assert.Equal(t, "host=localhost port=5432 user=postgres password= dbname=workforce sslmode=disable TimeZone=UTC", c.Dsn())

	c = &Config{Driver: DriverMySQL, MySQL: MySQLConfig{Password: "secret"}}
	require.NoError(t, c.Init())
	assert.Equal(t, "root:secret@tcp(localhost:3306)/workforce?charset=utf8mb4&parseTime=True&loc=UTC", c.Dsn())

	c = &Config{}
	require.NoError(t, c.Init())
	assert.Equal(t, DriverSQLite, c.Driver)
	assert.Equal(t, "file:workforce.db?_busy_timeout=5000&_journal_mode=WAL", c.Dsn())

	c.DSN = "file::memory:"
	assert.Equal(t, "file::memory:", c.Dsn())
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, LevelInfo, (&Config{Level: "INFO"}).LogLevel())
	assert.Equal(t, LevelSilent, (&Config{Level: "bogus"}).LogLevel())
}

func TestSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	c, err := New(context.Background(), &Config{Driver: DriverSQLite, SQLite: SQLiteConfig{FilePath: path}})
	require.NoError(t, err)

	type row struct {
		ID   uint
		Name string
	}
	require.NoError(t, c.DB().AutoMigrate(&row{}))
	require.NoError(t, c.DB().Create(&row{Name: "x"}).Error)

	var got row
	require.NoError(t, c.DB().First(&got).Error)
	assert.Equal(t, "x", got.Name)

	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Ping(context.Background()), ErrNotInitialized)
}

func TestUnsupportedDriver(t *testing.T) {
	_, err := New(context.Background(), &Config{Driver: "oracle"})
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}
