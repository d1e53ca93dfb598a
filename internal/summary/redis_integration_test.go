//go:build integration

package summary

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendance-tracker/internal/stats"
	"attendance-tracker/internal/store/storetest"
)

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	cache := NewRedisCache(storetest.Redis(t))

	_, ok, err := cache.Get(ctx, Key(1))
	require.NoError(t, err)
	assert.False(t, ok)

	want := stats.Summary{Present: 3, Absent: 1, Total: 4, Percentage: 75}
	require.NoError(t, cache.Set(ctx, Key(1), want, time.Minute))

	got, ok, err := cache.Get(ctx, Key(1))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	require.NoError(t, cache.Delete(ctx, Key(1)))
	_, ok, err = cache.Get(ctx, Key(1))
	require.NoError(t, err)
	assert.False(t, ok)
}
