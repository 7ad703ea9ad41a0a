package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitRedisConnects(t *testing.T) {
	mr := miniredis.RunT(t)

	c := InitRedis(mr.Addr())
	require.NotNil(t, c)
	t.Cleanup(func() { _ = c.Close() })

	assert.Same(t, c, GetClient())
	require.NoError(t, c.Set(context.Background(), "k", "v", 0).Err())
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestInitRedisAcceptsURL(t *testing.T) {
	mr := miniredis.RunT(t)

	c := InitRedis("redis://" + mr.Addr() + "/0")
	require.NotNil(t, c)
	_ = c.Close()
}

func TestInitRedisUnreachableLeavesNilClient(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	assert.Nil(t, InitRedis(addr))
	assert.Nil(t, GetClient())
}

func TestNewClientRejectsBadURL(t *testing.T) {
	_, err := NewClient("redis://%zz")
	assert.Error(t, err)
}

func TestNotificationChannel(t *testing.T) {
	assert.Equal(t, "notifications:user:12", NotificationChannel(12))
}
