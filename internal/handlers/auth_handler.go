package handlers

import (
	"errors"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/roomfinder-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/roomfinder-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/roomfinder-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/roomfinder-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/roomfinder-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	users    services.UserStore
	sessions *services.SessionService
	cfg      *config.Config
}

func NewAuthHandler(users services.UserStore, sessions *services.SessionService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{users: users, sessions: sessions, cfg: cfg}
}

// CurrentUser returns the stored profile of the authenticated caller.
func (h *AuthHandler) CurrentUser(c *fiber.Ctx) error {
	sub, err := middleware.GetSubject(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(errUnauthorized)
	}

	user, err := h.users.Get(c.UserContext(), sub)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(errUnauthorized)
		}
		return err
	}
	return c.JSON(user)
}

// DevLogin issues a session for an arbitrary identity. It only exists when
// DEV_LOGIN_ENABLED is set and stands in for the external identity provider.
func (h *AuthHandler) DevLogin(c *fiber.Ctx) error {
	if !h.cfg.DevLoginEnabled {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Message: "Not found"})
	}

	var req dto.DevLoginRequest
	if fe := parseBody(c, &req); fe != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fe)
	}

	user := &models.User{
		ID:              req.ID,
		Email:           optional(req.Email),
		FirstName:       optional(req.FirstName),
		LastName:        optional(req.LastName),
		ProfileImageURL: optional(req.ProfileImageURL),
	}
	if err := h.users.Upsert(c.UserContext(), user); err != nil {
		return err
	}

	token, err := h.sessions.Issue(user)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.sessions.TTL()),
		HTTPOnly: true,
		Secure:   h.cfg.AppEnv == "production",
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	slog.Info("dev session issued", "user_id", user.ID)

	return c.JSON(dto.SessionResponse{Token: token, User: *user})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.cfg.AppEnv == "production",
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.SendStatus(fiber.StatusNoContent)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
