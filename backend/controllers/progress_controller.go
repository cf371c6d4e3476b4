package controllers

import (
	"github.com/gofiber/fiber/v2"

	"lumina/backend/config"
	"lumina/backend/middleware"
	"lumina/backend/repository"
	"lumina/backend/stats"
	"lumina/backend/utils"
)

type ProgressController struct {
	Repo *repository.Repository
	Cfg  *config.Config
}

func NewProgressController(repo *repository.Repository, cfg *config.Config) *ProgressController {
	return &ProgressController{Repo: repo, Cfg: cfg}
}

// GetProgress godoc
// @Summary Get user progress
// @Description Returns study hours, sessions and active days for the last 4 months, newest first
// @Tags progress
// @Produce json
// @Success 200 {object} map[string][]stats.MonthProgress
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress [get]
func (pc *ProgressController) GetProgress(c *fiber.Ctx) error {
	today := stats.Day(pc.Cfg.Now())
	user := middleware.CurrentUser(c)

	sessions, err := pc.Repo.ListSessions(c.UserContext(), user.ID, repository.SessionFilter{
		From: stats.MonthStart(today, stats.ProgressMonths-1),
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not load study sessions")
	}

	return c.JSON(fiber.Map{
		"progress": stats.Monthly(sessions, today, stats.ProgressMonths),
	})
}

// GetTopics godoc
// @Summary Progress per topic
// @Description Hours, session count and last study date for every topic
// @Tags progress
// @Produce json
// @Success 200 {array} stats.TopicProgress
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress/topics [get]
func (pc *ProgressController) GetTopics(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	sessions, err := pc.Repo.ListSessions(c.UserContext(), user.ID, repository.SessionFilter{})
	if err != nil {
		return utils.InternalServerError(c, "Could not load study sessions")
	}
	return c.JSON(stats.ByTopic(sessions))
}
