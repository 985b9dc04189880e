package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillora/skillora-server/pkg/cache"
)

func TestMemoryClientRoundTrip(t *testing.T) {
	client := cache.NewMemoryClient()
	t.Cleanup(func() { client.Close() })
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "key", "value", time.Minute))

	got, err := client.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, "value", got)

	require.NoError(t, client.Delete(ctx, "key"))
	_, err = client.Get(ctx, "key")
	assert.ErrorIs(t, err, cache.ErrMiss)
}

func TestMemoryClientExpiry(t *testing.T) {
	client := cache.NewMemoryClient()
	t.Cleanup(func() { client.Close() })
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "key", "value", 10*time.Millisecond))
	time.Sleep(25 * time.Millisecond)

	_, err := client.Get(ctx, "key")
	assert.ErrorIs(t, err, cache.ErrMiss)
}

func TestMemoryClientMiss(t *testing.T) {
	client := cache.NewMemoryClient()
	t.Cleanup(func() { client.Close() })

	_, err := client.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, cache.ErrMiss)
}
