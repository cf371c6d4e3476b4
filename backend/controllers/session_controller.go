package controllers

import (
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"lumina/backend/cache"
	"lumina/backend/config"
	"lumina/backend/middleware"
	"lumina/backend/models"
	"lumina/backend/repository"
	"lumina/backend/utils"
)

const maxSessionsPage = 500

type SessionController struct {
	Repo      *repository.Repository
	Cfg       *config.Config
	Validator *utils.Validator
	Cache     *cache.LeaderboardCache
	Logger    *log.Logger
}

func NewSessionController(repo *repository.Repository, cfg *config.Config, v *utils.Validator, lbCache *cache.LeaderboardCache, logger *log.Logger) *SessionController {
	return &SessionController{Repo: repo, Cfg: cfg, Validator: v, Cache: lbCache, Logger: logger}
}

type CreateSessionRequest struct {
	Topic      string  `json:"topic" validate:"required,min=2,max=100" example:"Linear algebra"`
	Hours      float64 `json:"hours" validate:"gt=0,lte=24" example:"1.5"`
	StudyDate  string  `json:"study_date" validate:"required,datetime=2006-01-02" example:"2024-03-14"`
	FocusLevel string  `json:"focus_level" validate:"required,oneof=low medium high" example:"high"`
	Notes      string  `json:"notes" validate:"max=1000"`
}

// SessionResponse renders the study date without a time component.
type SessionResponse struct {
	ID         uint              `json:"id"`
	UserID     uint              `json:"user_id"`
	Topic      string            `json:"topic"`
	Hours      float64           `json:"hours"`
	StudyDate  string            `json:"study_date"`
	FocusLevel models.FocusLevel `json:"focus_level"`
	Notes      string            `json:"notes,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	XPAwarded  int64             `json:"xp_awarded,omitempty"`
}

func newSessionResponse(s *models.StudySession) SessionResponse {
	return SessionResponse{
		ID:         s.ID,
		UserID:     s.UserID,
		Topic:      s.Topic,
		Hours:      s.Hours,
		StudyDate:  s.StudyDate.Format(models.DateLayout),
		FocusLevel: s.FocusLevel,
		Notes:      s.Notes,
		CreatedAt:  s.CreatedAt,
	}
}

// CreateLog godoc
// @Summary Log a study session
// @Description Stores a session and awards XP for the hours studied
// @Tags logs
// @Accept json
// @Produce json
// @Param session body CreateSessionRequest true "Study session"
// @Success 201 {object} SessionResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /logs [post]
func (sc *SessionController) CreateLog(c *fiber.Ctx) error {
	var input CreateSessionRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	input.Topic = strings.TrimSpace(input.Topic)
	input.FocusLevel = strings.ToLower(strings.TrimSpace(input.FocusLevel))
	if errs := sc.Validator.Validate(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	studyDate, err := time.Parse(models.DateLayout, input.StudyDate)
	if err != nil {
		return utils.ValidationError(c, map[string]string{"study_date": "study_date must be a date in YYYY-MM-DD format"})
	}

	user := middleware.CurrentUser(c)
	session := models.StudySession{
		UserID:     user.ID,
		Topic:      input.Topic,
		Hours:      input.Hours,
		StudyDate:  studyDate,
		FocusLevel: models.FocusLevel(input.FocusLevel),
		Notes:      strings.TrimSpace(input.Notes),
	}
	xp := models.SessionXP(input.Hours)
	if err := sc.Repo.CreateSession(c.UserContext(), &session, xp); err != nil {
		return utils.InternalServerError(c, "Could not save study session")
	}
	invalidateLeaderboard(c.UserContext(), sc.Cache, sc.Logger)

	response := newSessionResponse(&session)
	response.XPAwarded = xp
	return utils.Created(c, response)
}

// ListLogs godoc
// @Summary List study sessions
// @Tags logs
// @Produce json
// @Param topic query string false "Exact topic"
// @Param limit query int false "Maximum number of sessions"
// @Success 200 {array} SessionResponse
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /logs [get]
func (sc *SessionController) ListLogs(c *fiber.Ctx) error {
	limit, err := queryLimit(c, maxSessionsPage, maxSessionsPage)
	if err != nil {
		return utils.BadRequest(c, "limit must be a positive integer")
	}

	user := middleware.CurrentUser(c)
	sessions, err := sc.Repo.ListSessions(c.UserContext(), user.ID, repository.SessionFilter{
		Topic: strings.TrimSpace(c.Query("topic")),
		Limit: limit,
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not load study sessions")
	}

	response := make([]SessionResponse, 0, len(sessions))
	for i := range sessions {
		response = append(response, newSessionResponse(&sessions[i]))
	}
	return c.JSON(response)
}
