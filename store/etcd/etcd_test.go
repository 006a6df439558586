package etcd

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	c := &Config{}
	require.NoError(t, c.init())
	assert.Equal(t, []string{"localhost:2379"}, c.Endpoints)
	assert.Equal(t, 5*time.Second, c.DialTimeout)
}

func TestNilConfig(t *testing.T) {
	_, err := New(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	var e Etcd
	assert.ErrorIs(t, e.Ping(context.Background()), ErrEtcdNotInitialized)
	assert.NoError(t, e.Close())
}

// TestPutGet 需要 WORKFORCE_TEST_ETCD 指向可用的 etcd
func TestPutGet(t *testing.T) {
	endpoint := os.Getenv("WORKFORCE_TEST_ETCD")
	if endpoint == "" {
		t.Skip("WORKFORCE_TEST_ETCD not set")
	}
	ctx := context.Background()

	e, err := New(ctx, &Config{Endpoints: []string{endpoint}})
	if err != nil {
		t.Skipf("Skipping test (etcd not available): %v", err)
	}
	defer e.Close()

	_, err = e.Client.Put(ctx, "/workforce/test", "value")
	require.NoError(t, err)
	resp, err := e.Client.Get(ctx, "/workforce/test")
	require.NoError(t, err)
	require.Len(t, resp.Kvs, 1)
	assert.Equal(t, "value", string(resp.Kvs[0].Value))
	_, _ = e.Client.Delete(ctx, "/workforce/test")
}
