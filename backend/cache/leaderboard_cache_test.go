package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumina/backend/leaderboard"
)

func newTestCache(t *testing.T) (*LeaderboardCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := Connect(context.Background(), "redis://"+mr.Addr(), time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

var window = []leaderboard.Entry{
	{Rank: 1, UserID: 2, UserEmail: "b@x.io", TotalXP: 300, StudyHours: 4.5, Streak: 3},
	{Rank: 2, UserID: 1, UserEmail: "a@x.io", TotalXP: 100, StudyHours: 1},
}

func TestLeaderboardCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	_, ok, err := c.Get(ctx, 50)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, 50, window))
	got, ok, err := c.Get(ctx, 50)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, window, got)

	_, ok, err = c.Get(ctx, 10)
	require.NoError(t, err)
	assert.False(t, ok, "windows are cached per limit")

	assert.Equal(t, time.Minute, mr.TTL(keyGlobal))
}

func TestLeaderboardCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	require.NoError(t, c.Set(ctx, 50, window))
	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, 50)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLeaderboardCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	require.NoError(t, c.Set(ctx, 50, window))
	require.NoError(t, c.Set(ctx, 10, window[:1]))
	require.NoError(t, c.Invalidate(ctx))

	for _, limit := range []int{10, 50} {
		_, ok, err := c.Get(ctx, limit)
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestLeaderboardCache_Nil(t *testing.T) {
	ctx := context.Background()
	var c *LeaderboardCache

	_, ok, err := c.Get(ctx, 50)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, c.Set(ctx, 50, window))
	assert.NoError(t, c.Invalidate(ctx))
	assert.NoError(t, c.Close())
}

func TestConnect_BadURL(t *testing.T) {
	_, err := Connect(context.Background(), "not-a-url", time.Minute)
	assert.Error(t, err)
}
