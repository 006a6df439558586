package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig(t *testing.T) {
	c := &Config{}
	require.NoError(t, c.ApplyDefaults())
	assert.Equal(t, []string{"localhost:6379"}, c.Addrs)
	assert.Equal(t, 3, c.Protocol)
	assert.Equal(t, 5*time.Second, c.DialTimeout)
	assert.Equal(t, "single", c.Mode())

	assert.Equal(t, "cluster", (&Config{Addrs: []string{"a:1", "b:1"}}).Mode())
	assert.Equal(t, "sentinel", (&Config{Addrs: []string{"a:1"}, MasterName: "m"}).Mode())
	assert.ErrorIs(t, (&Config{}).Validate(), ErrEmptyAddrs)
}

func TestNewNilConfig(t *testing.T) {
	_, err := New(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

// TestSingleMode 需要 WORKFORCE_TEST_REDIS 指向可用的 Redis
func TestSingleMode(t *testing.T) {
	addr := os.Getenv("WORKFORCE_TEST_REDIS")
	if addr == "" {
		t.Skip("WORKFORCE_TEST_REDIS not set")
	}
	ctx := context.Background()

	client, err := New(ctx, &Config{Addrs: []string{addr}}, WithDebug(100*time.Millisecond))
	if err != nil {
		t.Skipf("Skipping test (Redis not available): %v", err)
	}
	defer client.Close()

	key := "workforce:test:key"
	require.NoError(t, client.UniversalClient().Set(ctx, key, "value", time.Minute).Err())
	got, err := client.UniversalClient().Get(ctx, key).Result()
	require.NoError(t, err)
	assert.Equal(t, "value", got)
	client.UniversalClient().Del(ctx, key)
}
