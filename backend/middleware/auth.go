package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"lumina/backend/config"
	"lumina/backend/models"
	"lumina/backend/repository"
	"lumina/backend/utils"
)

const (
	localUser   = "user"
	localUserID = "user_id"
)

// AuthMiddleware resolves the bearer token to a stored user. A valid token
// whose user no longer exists is rejected like an invalid one.
func AuthMiddleware(cfg *config.Config, repo *repository.Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := utils.ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Could not validate credentials")
		}

		user, err := repo.UserByID(c.UserContext(), userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return utils.Unauthorized(c, "Could not validate credentials")
			}
			return utils.InternalServerError(c, "Could not load user")
		}

		c.Locals(localUser, user)
		c.Locals(localUserID, user.ID)
		return c.Next()
	}
}

// CurrentUser returns the user stored by AuthMiddleware, or nil outside of it.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(localUser).(*models.User)
	return user
}
