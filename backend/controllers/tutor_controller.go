package controllers

import (
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

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// TutorFallbackAnswer is returned when the text-generation service fails.
const TutorFallbackAnswer = "Sorry, I'm having trouble answering right now. Please try again in a moment."

type TutorController struct {
	Repo      *repository.Repository
	AI        ai.Generator
	Validator *utils.Validator
	Cache     *cache.LeaderboardCache
	Logger    *log.Logger
}

func NewTutorController(repo *repository.Repository, gen ai.Generator, v *utils.Validator, lbCache *cache.LeaderboardCache, logger *log.Logger) *TutorController {
	return &TutorController{Repo: repo, AI: gen, Validator: v, Cache: lbCache, Logger: logger}
}

type AskRequest struct {
	Topic    string `json:"topic" validate:"omitempty,min=2,max=100" example:"Go"`
	Question string `json:"question" validate:"required,min=2,max=2000" example:"What is a goroutine?"`
}

type TutorResponse struct {
	ID        uint      `json:"id,omitempty"`
	Topic     string    `json:"topic"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
	Degraded  bool      `json:"degraded"`
	XPAwarded int64     `json:"xp_awarded"`
}

// Ask godoc
// @Summary Ask the AI tutor
// @Description Answers are stored and award XP. If generation fails an apology is returned and nothing is stored.
// @Tags tutor
// @Accept json
// @Produce json
// @Param request body AskRequest true "Question"
// @Success 200 {object} TutorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /tutor/ask [post]
func (tc *TutorController) Ask(c *fiber.Ctx) error {
	var input AskRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	input.Topic = strings.TrimSpace(input.Topic)
	input.Question = strings.TrimSpace(input.Question)
	if errs := tc.Validator.Validate(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	ctx := c.UserContext()
	user := middleware.CurrentUser(c)

	answer, err := tc.AI.TutorAnswer(ctx, input.Topic, input.Question)
	if err != nil {
		if tc.Logger != nil {
			tc.Logger.Printf("tutor generation for user %d: %v", user.ID, err)
		}
		return c.JSON(TutorResponse{
			Topic:     input.Topic,
			Question:  input.Question,
			Answer:    TutorFallbackAnswer,
			CreatedAt: time.Now().UTC(),
			Degraded:  true,
		})
	}

	conv := models.Conversation{
		UserID:   user.ID,
		Topic:    input.Topic,
		Question: input.Question,
		Answer:   answer,
	}
	if err := tc.Repo.CreateConversation(ctx, &conv, models.XPTutorQuestion); err != nil {
		return utils.InternalServerError(c, "Could not save conversation")
	}
	invalidateLeaderboard(ctx, tc.Cache, tc.Logger)

	return c.JSON(TutorResponse{
		ID:        conv.ID,
		Topic:     conv.Topic,
		Question:  conv.Question,
		Answer:    conv.Answer,
		CreatedAt: conv.CreatedAt,
		XPAwarded: models.XPTutorQuestion,
	})
}

// History godoc
// @Summary Tutor conversation history
// @Tags tutor
// @Produce json
// @Param limit query int false "Maximum number of conversations"
// @Success 200 {array} models.Conversation
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /tutor/history [get]
func (tc *TutorController) History(c *fiber.Ctx) error {
	limit, err := queryLimit(c, defaultHistoryLimit, maxHistoryLimit)
	if err != nil {
		return utils.BadRequest(c, "limit must be a positive integer")
	}

	user := middleware.CurrentUser(c)
	history, err := tc.Repo.ConversationHistory(c.UserContext(), user.ID, limit)
	if err != nil {
		return utils.InternalServerError(c, "Could not load conversations")
	}
	return c.JSON(history)
}
