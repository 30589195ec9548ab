package middleware

import (
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/roomfinder-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/roomfinder-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// SyncUser upserts the users mirror from the verified claims so listings
// can reference their owner. Must run after JWTProtected.
func SyncUser(users services.UserStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := GetClaims(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Message: "Unauthorized"})
		}
		user, err := services.UserFromClaims(claims)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Message: "Unauthorized"})
		}

		if err := users.Upsert(c.UserContext(), user); err != nil {
			slog.Error("user sync failed", "user_id", user.ID, "error", err)
			return err
		}
		c.Locals(currentUserKey, user)
		return c.Next()
	}
}
