package controllers

import (
	"context"
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"lumina/backend/cache"
)

var errInvalidParam = errors.New("invalid parameter")

// queryLimit reads a positive ?limit= value capped at max. Absent means def,
// capped the same way.
func queryLimit(c *fiber.Ctx, def, max int) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return min(def, max), nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, errInvalidParam
	}
	if n > max {
		n = max
	}
	return n, nil
}

func paramID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errInvalidParam
	}
	return uint(id), nil
}

// invalidateLeaderboard drops the cached global window after any change to
// the users it ranks: XP, new accounts, emails.
// Cache trouble is logged and never fails the request.
func invalidateLeaderboard(ctx context.Context, lbCache *cache.LeaderboardCache, logger *log.Logger) {
	if err := lbCache.Invalidate(ctx); err != nil && logger != nil {
		logger.Printf("leaderboard cache invalidate: %v", err)
	}
}
