package controllers

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"lumina/backend/cache"
	"lumina/backend/config"
	"lumina/backend/models"
	"lumina/backend/repository"
	"lumina/backend/utils"
)

type AuthController struct {
	Repo      *repository.Repository
	Cfg       *config.Config
	Validator *utils.Validator
	Cache     *cache.LeaderboardCache
	Logger    *log.Logger
}

func NewAuthController(repo *repository.Repository, cfg *config.Config, v *utils.Validator, lbCache *cache.LeaderboardCache, logger *log.Logger) *AuthController {
	return &AuthController{Repo: repo, Cfg: cfg, Validator: v, Cache: lbCache, Logger: logger}
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255" example:"student@example.com"`
	Password string `json:"password" validate:"required,min=6,max=128" example:"secret123"`
}

// LoginRequest accepts either a JSON body with email or an OAuth2-style form
// with username.
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register godoc
// @Summary Register a new user
// @Description Creates an account and returns an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "User registration data"
// @Success 201 {object} TokenResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /register [post]
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var input RegisterRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	input.Email = normalizeEmail(input.Email)
	if errs := ac.Validator.Validate(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return utils.InternalServerError(c, "Could not hash password")
	}

	user := models.User{Email: input.Email, HashedPassword: hashedPassword}
	if err := ac.Repo.CreateUser(c.UserContext(), &user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return utils.Conflict(c, "Email already registered")
		}
		return utils.InternalServerError(c, "Could not create user")
	}
	// a new account enters the global ranking
	invalidateLeaderboard(c.UserContext(), ac.Cache, ac.Logger)

	token, err := utils.GenerateJWTToken(&user, ac.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}
	return utils.Created(c, TokenResponse{AccessToken: token, TokenType: utils.TokenType})
}

// Login godoc
// @Summary User login
// @Description Authenticate user and return JWT token
// @Tags auth
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Router /login [post]
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var input LoginRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse request body")
	}

	email := input.Email
	if email == "" {
		email = input.Username
	}
	email = normalizeEmail(email)
	if email == "" || input.Password == "" {
		return utils.Unauthorized(c, "Incorrect email or password")
	}

	user, err := ac.Repo.UserByEmail(c.UserContext(), email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return utils.Unauthorized(c, "Incorrect email or password")
		}
		return utils.InternalServerError(c, "Could not query database")
	}
	if !utils.CheckPassword(input.Password, user.HashedPassword) {
		return utils.Unauthorized(c, "Incorrect email or password")
	}

	token, err := utils.GenerateJWTToken(user, ac.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}
	return c.JSON(TokenResponse{AccessToken: token, TokenType: utils.TokenType})
}
