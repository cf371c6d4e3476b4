package controllers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"lumina/backend/cache"
	"lumina/backend/middleware"
	"lumina/backend/repository"
	"lumina/backend/utils"
)

type UserController struct {
	Repo      *repository.Repository
	Validator *utils.Validator
	Cache     *cache.LeaderboardCache
	Logger    *log.Logger
}

func NewUserController(repo *repository.Repository, v *utils.Validator, lbCache *cache.LeaderboardCache, logger *log.Logger) *UserController {
	return &UserController{Repo: repo, Validator: v, Cache: lbCache, Logger: logger}
}

type UpdateUserRequest struct {
	Email       string `json:"email" validate:"omitempty,email,max=255" example:"user@example.com"`
	OldPassword string `json:"old_password" validate:"required" example:"oldPassword123"`
	NewPassword string `json:"new_password" validate:"omitempty,min=6,max=128" example:"newPassword123"`
}

// GetProfile godoc
// @Summary Get user profile
// @Description Returns the authenticated user
// @Tags users
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /me [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	return c.JSON(middleware.CurrentUser(c))
}

// UpdateProfile godoc
// @Summary Update user profile
// @Description Changes the email and/or password. The current password is always required.
// @Tags users
// @Accept json
// @Produce json
// @Param input body UpdateUserRequest true "Profile update data"
// @Success 200 {object} models.User
// @Failure 401 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /me [put]
func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	var input UpdateUserRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	input.Email = normalizeEmail(input.Email)
	if errs := uc.Validator.Validate(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	user := *middleware.CurrentUser(c)

	// Проверяем старый пароль
	if !utils.CheckPassword(input.OldPassword, user.HashedPassword) {
		return utils.Unauthorized(c, "Invalid old password")
	}

	if input.Email != "" {
		user.Email = input.Email
	}
	if input.NewPassword != "" {
		hashedPassword, err := utils.HashPassword(input.NewPassword)
		if err != nil {
			return utils.InternalServerError(c, "Could not hash password")
		}
		user.HashedPassword = hashedPassword
	}

	// Сохраняем изменения
	if err := uc.Repo.UpdateCredentials(c.UserContext(), &user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return utils.Conflict(c, "Email already registered")
		}
		return utils.InternalServerError(c, "Could not update user")
	}
	// Кэш рейтинга хранит email
	if user.Email != middleware.CurrentUser(c).Email {
		invalidateLeaderboard(c.UserContext(), uc.Cache, uc.Logger)
	}
	return c.JSON(user)
}
