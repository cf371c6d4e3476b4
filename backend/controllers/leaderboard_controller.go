package controllers

import (
	"context"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"lumina/backend/cache"
	"lumina/backend/config"
	"lumina/backend/leaderboard"
	"lumina/backend/middleware"
	"lumina/backend/repository"
	"lumina/backend/stats"
	"lumina/backend/utils"
)

const maxLeaderboardLimit = 100

type LeaderboardController struct {
	Repo   *repository.Repository
	Cfg    *config.Config
	Cache  *cache.LeaderboardCache
	Logger *log.Logger
}

func NewLeaderboardController(repo *repository.Repository, cfg *config.Config, lbCache *cache.LeaderboardCache, logger *log.Logger) *LeaderboardController {
	return &LeaderboardController{Repo: repo, Cfg: cfg, Cache: lbCache, Logger: logger}
}

type GlobalLeaderboardResponse struct {
	Entries    []leaderboard.Entry `json:"entries"`
	UserRank   *leaderboard.Entry  `json:"user_rank"`
	TotalUsers int64               `json:"total_users"`
}

type GroupLeaderboardResponse struct {
	GroupID   uint                `json:"group_id"`
	GroupName string              `json:"group_name"`
	Entries   []leaderboard.Entry `json:"entries"`
	UserRank  *leaderboard.Entry  `json:"user_rank"`
}

func (lc *LeaderboardController) engine(limit int) leaderboard.Engine {
	return leaderboard.Engine{
		Limit:         limit,
		Today:         stats.Day(lc.Cfg.Now()),
		UniformStreak: lc.Cfg.LeaderboardUniformStreak,
	}
}

func (lc *LeaderboardController) logf(format string, args ...interface{}) {
	if lc.Logger != nil {
		lc.Logger.Printf(format, args...)
	}
}

// window serves the top entries from the cache when possible.
func (lc *LeaderboardController) window(ctx context.Context, engine leaderboard.Engine, activity leaderboard.ActivityFunc) ([]leaderboard.Entry, error) {
	entries, ok, err := lc.Cache.Get(ctx, engine.Limit)
	if err != nil {
		lc.logf("leaderboard cache get: %v", err)
	}
	if ok {
		return entries, nil
	}

	top, err := lc.Repo.TopMembers(ctx, engine.Limit)
	if err != nil {
		return nil, err
	}
	entries, err = engine.Window(top, activity)
	if err != nil {
		return nil, err
	}
	if err := lc.Cache.Set(ctx, engine.Limit, entries); err != nil {
		lc.logf("leaderboard cache set: %v", err)
	}
	return entries, nil
}

// Global godoc
// @Summary Global leaderboard
// @Description Top users by XP plus the requester's own rank
// @Tags leaderboard
// @Produce json
// @Param limit query int false "Window size"
// @Success 200 {object} GlobalLeaderboardResponse
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /leaderboard/global [get]
func (lc *LeaderboardController) Global(c *fiber.Ctx) error {
	limit, err := queryLimit(c, lc.Cfg.LeaderboardLimit, maxLeaderboardLimit)
	if err != nil {
		return utils.BadRequest(c, "limit must be a positive integer")
	}

	ctx := c.UserContext()
	user := middleware.CurrentUser(c)
	engine := lc.engine(limit)
	activity := lc.Repo.ActivityFunc(ctx)

	entries, err := lc.window(ctx, engine, activity)
	if err != nil {
		return utils.InternalServerError(c, "Could not build leaderboard")
	}

	loadAll := func() ([]leaderboard.Member, error) { return lc.Repo.AllMembers(ctx) }
	userRank, err := engine.ResolveUserRank(entries, user.ID, loadAll, activity)
	if err != nil {
		if errors.Is(err, leaderboard.ErrNotRanked) {
			return utils.NotFound(c, "User not found in leaderboard")
		}
		return utils.InternalServerError(c, "Could not resolve user rank")
	}

	total, err := lc.Repo.CountUsers(ctx)
	if err != nil {
		return utils.InternalServerError(c, "Could not count users")
	}

	return c.JSON(GlobalLeaderboardResponse{Entries: entries, UserRank: userRank, TotalUsers: total})
}

// Group godoc
// @Summary Study group leaderboard
// @Description Every member of the group ranked by XP
// @Tags leaderboard
// @Produce json
// @Param id path int true "Group ID"
// @Success 200 {object} GroupLeaderboardResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /leaderboard/group/{id} [get]
func (lc *LeaderboardController) Group(c *fiber.Ctx) error {
	groupID, err := paramID(c)
	if err != nil {
		return utils.NotFound(c, "Study group not found")
	}

	ctx := c.UserContext()
	user := middleware.CurrentUser(c)
	group, err := lc.Repo.GroupForUser(ctx, groupID, user.ID)
	if err != nil {
		return groupError(c, err)
	}

	members, err := lc.Repo.GroupMembers(ctx, groupID)
	if err != nil {
		return utils.InternalServerError(c, "Could not load group members")
	}
	board, err := lc.engine(0).Group(members, user.ID, lc.Repo.ActivityFunc(ctx))
	if err != nil {
		return utils.InternalServerError(c, "Could not build leaderboard")
	}

	return c.JSON(GroupLeaderboardResponse{
		GroupID:   group.ID,
		GroupName: group.Name,
		Entries:   board.Entries,
		UserRank:  board.UserRank,
	})
}
