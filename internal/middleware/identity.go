package middleware

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/roomfinder-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	userContextKey = "user"
	currentUserKey = "current_user"
)

var ErrNoIdentity = errors.New("no authenticated identity")

// GetClaims returns the verified claims JWTProtected stored on the context.
func GetClaims(c *fiber.Ctx) (jwt.MapClaims, error) {
	token, ok := c.Locals(userContextKey).(*jwt.Token)
	if !ok || token == nil {
		return nil, ErrNoIdentity
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrNoIdentity
	}
	return claims, nil
}

// GetSubject returns the token subject, which is the caller's user id.
func GetSubject(c *fiber.Ctx) (string, error) {
	claims, err := GetClaims(c)
	if err != nil {
		return "", err
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", ErrNoIdentity
	}
	return sub, nil
}

// CurrentUser returns the mirror row SyncUser stored for this request.
func CurrentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(currentUserKey).(*models.User)
	return user, ok && user != nil
}
