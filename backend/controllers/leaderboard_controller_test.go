package controllers_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumina/backend/cache"
	"lumina/backend/controllers"
	"lumina/backend/models"
	"lumina/backend/testutil"
)

func TestGroupLeaderboard(t *testing.T) {
	env := newTestEnv(t, nil)
	a, aToken := env.user("a@x.io", 100)
	b, bToken := env.user("b@x.io", 300)
	_, outsiderToken := env.user("c@x.io", 1000)

	group := createGroup(t, env, aToken, controllers.CreateGroupRequest{Name: "Pair"})
	require.Equal(t, http.StatusOK, env.do(http.MethodPost, fmt.Sprintf("/api/study-groups/%d/join", group.ID), bToken, nil).StatusCode)
	testutil.CreateSession(t, env.db, b.ID, "Go", 2, env.today(), models.FocusHigh)

	resp := env.do(http.MethodGet, fmt.Sprintf("/api/leaderboard/group/%d", group.ID), aToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	board := decode[controllers.GroupLeaderboardResponse](t, resp)

	assert.Equal(t, group.ID, board.GroupID)
	assert.Equal(t, "Pair", board.GroupName)
	require.Len(t, board.Entries, 2)
	assert.Equal(t, b.ID, board.Entries[0].UserID)
	assert.Equal(t, 1, board.Entries[0].Rank)
	assert.Equal(t, 2.0, board.Entries[0].StudyHours)
	assert.Zero(t, board.Entries[0].Streak, "group entries report no streak")
	assert.Equal(t, a.ID, board.Entries[1].UserID)
	require.NotNil(t, board.UserRank)
	assert.Equal(t, 2, board.UserRank.Rank)

	// Non-members see a public group's board without a rank of their own.
	resp = env.do(http.MethodGet, fmt.Sprintf("/api/leaderboard/group/%d", group.ID), outsiderToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, decode[controllers.GroupLeaderboardResponse](t, resp).UserRank)

	private := false
	secret := createGroup(t, env, aToken, controllers.CreateGroupRequest{Name: "Secret", IsPublic: &private})
	resp = env.do(http.MethodGet, fmt.Sprintf("/api/leaderboard/group/%d", secret.ID), outsiderToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(http.MethodGet, "/api/leaderboard/group/9999", aToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGlobalLeaderboard(t *testing.T) {
	env := newTestEnv(t, nil)
	top, topToken := env.user("top@x.io", 500)
	mid, _ := env.user("mid@x.io", 200)
	low, lowToken := env.user("low@x.io", 10)
	testutil.CreateSession(t, env.db, top.ID, "Go", 1.5, env.today(), models.FocusHigh)
	testutil.CreateSession(t, env.db, low.ID, "Go", 1, env.today(), models.FocusHigh)

	resp := env.do(http.MethodGet, "/api/leaderboard/global", topToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	board := decode[controllers.GlobalLeaderboardResponse](t, resp)
	assert.Equal(t, int64(3), board.TotalUsers)
	require.Len(t, board.Entries, 3)
	assert.Equal(t, []uint{top.ID, mid.ID, low.ID}, []uint{board.Entries[0].UserID, board.Entries[1].UserID, board.Entries[2].UserID})
	assert.Equal(t, 1, board.Entries[0].Streak)
	assert.Equal(t, 1.5, board.Entries[0].StudyHours)
	require.NotNil(t, board.UserRank)
	assert.Equal(t, board.Entries[0], *board.UserRank)

	t.Run("requester outside the window", func(t *testing.T) {
		resp := env.do(http.MethodGet, "/api/leaderboard/global?limit=2", lowToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		board := decode[controllers.GlobalLeaderboardResponse](t, resp)
		require.Len(t, board.Entries, 2)
		require.NotNil(t, board.UserRank)
		assert.Equal(t, 3, board.UserRank.Rank)
		assert.Equal(t, low.ID, board.UserRank.UserID)
		assert.Equal(t, 1.0, board.UserRank.StudyHours)
		assert.Zero(t, board.UserRank.Streak)
	})

	t.Run("bad limit", func(t *testing.T) {
		resp := env.do(http.MethodGet, "/api/leaderboard/global?limit=0", topToken, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestGlobalLeaderboard_CacheInvalidatedByXP(t *testing.T) {
	mr := miniredis.RunT(t)
	lbCache, err := cache.Connect(context.Background(), "redis://"+mr.Addr(), time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = lbCache.Close() })

	env := newTestEnv(t, lbCache)
	first, firstToken := env.user("first@x.io", 50)
	second, secondToken := env.user("second@x.io", 40)

	resp := env.do(http.MethodGet, "/api/leaderboard/global", firstToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, first.ID, decode[controllers.GlobalLeaderboardResponse](t, resp).Entries[0].UserID)
	assert.True(t, mr.Exists("leaderboard:global"))

	in := controllers.CreateSessionRequest{Topic: "Go", Hours: 2, StudyDate: env.today().Format(models.DateLayout), FocusLevel: "high"}
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/api/logs", secondToken, in).StatusCode)
	assert.False(t, mr.Exists("leaderboard:global"))

	resp = env.do(http.MethodGet, "/api/leaderboard/global", firstToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	board := decode[controllers.GlobalLeaderboardResponse](t, resp)
	assert.Equal(t, second.ID, board.Entries[0].UserID)
	assert.Equal(t, int64(60), board.Entries[0].TotalXP)
	assert.Equal(t, 2, board.UserRank.Rank)
}

func TestGlobalLeaderboard_CacheInvalidatedByAccountChanges(t *testing.T) {
	mr := miniredis.RunT(t)
	lbCache, err := cache.Connect(context.Background(), "redis://"+mr.Addr(), time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = lbCache.Close() })

	env := newTestEnv(t, lbCache)
	_, firstToken := env.user("first@x.io", 50)
	env.user("second@x.io", 40)

	resp := env.do(http.MethodGet, "/api/leaderboard/global", firstToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, decode[controllers.GlobalLeaderboardResponse](t, resp).Entries, 2)
	require.True(t, mr.Exists("leaderboard:global"))

	resp = env.do(http.MethodPost, "/api/register", "", controllers.RegisterRequest{Email: "new@x.io", Password: "secret123"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	newToken := decode[controllers.TokenResponse](t, resp).AccessToken
	assert.False(t, mr.Exists("leaderboard:global"), "registration drops the cached window")

	resp = env.do(http.MethodGet, "/api/leaderboard/global", newToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	board := decode[controllers.GlobalLeaderboardResponse](t, resp)
	assert.Equal(t, int64(3), board.TotalUsers)
	require.Len(t, board.Entries, 3)
	require.NotNil(t, board.UserRank)
	assert.Equal(t, 3, board.UserRank.Rank)
	assert.Equal(t, board.Entries[2], *board.UserRank)

	// A password-only change keeps the window, an email change drops it.
	resp = env.do(http.MethodPut, "/api/me", newToken, controllers.UpdateUserRequest{OldPassword: "secret123", NewPassword: "another1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, mr.Exists("leaderboard:global"))

	resp = env.do(http.MethodPut, "/api/me", newToken, controllers.UpdateUserRequest{OldPassword: "another1", Email: "renamed@x.io"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, mr.Exists("leaderboard:global"))

	resp = env.do(http.MethodGet, "/api/leaderboard/global", firstToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "renamed@x.io", decode[controllers.GlobalLeaderboardResponse](t, resp).Entries[2].UserEmail)
}

func TestGlobalLeaderboard_DefaultLimitCapped(t *testing.T) {
	mr := miniredis.RunT(t)
	lbCache, err := cache.Connect(context.Background(), "redis://"+mr.Addr(), time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = lbCache.Close() })

	env := newTestEnv(t, lbCache)
	env.cfg.LeaderboardLimit = 1000
	_, token := env.user("a@x.io", 1)

	resp := env.do(http.MethodGet, "/api/leaderboard/global", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	fields, err := mr.HKeys("leaderboard:global")
	require.NoError(t, err)
	assert.Equal(t, []string{"100"}, fields)
}
