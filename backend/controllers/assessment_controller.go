package controllers

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"lumina/backend/ai"
	"lumina/backend/cache"
	"lumina/backend/middleware"
	"lumina/backend/models"
	"lumina/backend/repository"
	"lumina/backend/utils"
)

type AssessmentController struct {
	Repo      *repository.Repository
	AI        ai.Generator
	Validator *utils.Validator
	Cache     *cache.LeaderboardCache
	Logger    *log.Logger
}

func NewAssessmentController(repo *repository.Repository, gen ai.Generator, v *utils.Validator, lbCache *cache.LeaderboardCache, logger *log.Logger) *AssessmentController {
	return &AssessmentController{Repo: repo, AI: gen, Validator: v, Cache: lbCache, Logger: logger}
}

type AssessmentRequest struct {
	Topic string `json:"topic" validate:"required,min=2,max=100" example:"Graph theory"`
}

type AssessmentResponse struct {
	Topic       string    `json:"topic"`
	GeneratedAt time.Time `json:"generated_at"`
	Questions   string    `json:"questions"`
	XPAwarded   int64     `json:"xp_awarded"`
}

// Generate godoc
// @Summary Generate assessment questions
// @Description Uses the notes of the latest session on the topic as context
// @Tags assessment
// @Accept json
// @Produce json
// @Param request body AssessmentRequest true "Topic"
// @Success 200 {object} AssessmentResponse
// @Failure 422 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /assessment/generate [post]
func (ac *AssessmentController) Generate(c *fiber.Ctx) error {
	var input AssessmentRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	input.Topic = strings.TrimSpace(input.Topic)
	if errs := ac.Validator.Validate(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	ctx := c.UserContext()
	user := middleware.CurrentUser(c)

	var notes string
	latest, err := ac.Repo.LatestSessionForTopic(ctx, user.ID, input.Topic)
	switch {
	case err == nil:
		notes = latest.Notes
	case !errors.Is(err, repository.ErrNotFound):
		return utils.InternalServerError(c, "Could not load study sessions")
	}

	questions, err := ac.AI.AssessmentQuestions(ctx, input.Topic, notes)
	if err != nil {
		if ac.Logger != nil {
			ac.Logger.Printf("assessment generation for user %d: %v", user.ID, err)
		}
		return utils.BadGateway(c, "Failed to generate assessment")
	}

	if err := ac.Repo.AddXP(ctx, user.ID, models.XPAssessment); err != nil {
		return utils.InternalServerError(c, "Could not award XP")
	}
	invalidateLeaderboard(ctx, ac.Cache, ac.Logger)

	return c.JSON(AssessmentResponse{
		Topic:       input.Topic,
		GeneratedAt: time.Now().UTC(),
		Questions:   questions,
		XPAwarded:   models.XPAssessment,
	})
}
