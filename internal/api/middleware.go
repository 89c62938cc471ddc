package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const localsUserKey = "userID"

// UserMiddleware 从请求头取用户标识。
// 鉴权是外围关注点，这里只做最薄的一层身份提取。
func UserMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Get("X-User-ID"))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing or invalid X-User-ID"})
		}
		c.Locals(localsUserKey, id)
		return c.Next()
	}
}

// UserID 取当前请求的用户标识
func UserID(c *fiber.Ctx) uuid.UUID {
	return c.Locals(localsUserKey).(uuid.UUID)
}
