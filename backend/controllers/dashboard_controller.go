package controllers

import (
	"github.com/gofiber/fiber/v2"

	"lumina/backend/config"
	"lumina/backend/middleware"
	"lumina/backend/repository"
	"lumina/backend/stats"
	"lumina/backend/utils"
)

type DashboardController struct {
	Repo *repository.Repository
	Cfg  *config.Config
}

func NewDashboardController(repo *repository.Repository, cfg *config.Config) *DashboardController {
	return &DashboardController{Repo: repo, Cfg: cfg}
}

type DashboardResponse struct {
	User    string `json:"user"`
	TotalXP int64  `json:"total_xp"`
	stats.Summary
}

// GetStats godoc
// @Summary Dashboard statistics
// @Description Total hours, streak, focus score, topics and the 7-day chart
// @Tags dashboard
// @Produce json
// @Success 200 {object} DashboardResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /dashboard/stats [get]
func (dc *DashboardController) GetStats(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	sessions, err := dc.Repo.ListSessions(c.UserContext(), user.ID, repository.SessionFilter{})
	if err != nil {
		return utils.InternalServerError(c, "Could not load study sessions")
	}

	return c.JSON(DashboardResponse{
		User:    user.Email,
		TotalXP: user.TotalXP,
		Summary: stats.Compute(sessions, stats.Day(dc.Cfg.Now())),
	})
}
