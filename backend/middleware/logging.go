package middleware

import (
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"lumina/backend/utils"
)

func LoggingMiddleware(logger *log.Logger, colors bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		// Передаем управление следующему обработчику
		err := c.Next()

		// Ошибка еще не обработана ErrorHandler, статус берем из нее
		status := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}

		userID, _ := c.Locals(localUserID).(uint)
		requestID, _ := c.Locals("requestid").(string)

		// Логируем информацию о запросе
		args := []interface{}{
			c.IP(),
			utils.ColorizeMethod(c.Method(), colors),
			c.Path(),
			utils.Colorize(strconv.Itoa(status), status, colors),
			time.Since(start),
			requestID,
			userID,
		}
		if err != nil {
			logger.Printf("%s %s %s %s %v rid=%s uid=%d err=%v", append(args, err)...)
		} else {
			logger.Printf("%s %s %s %s %v rid=%s uid=%d", args...)
		}

		return err
	}
}
