package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"recipe-api/domain"
	"recipe-api/internal/api/presenters"
	"recipe-api/internal/middleware"
)

type (
	AuthHandler interface {
		Me(c *fiber.Ctx) error
		Logout(c *fiber.Ctx) error
	}

	authHandler struct {
		sessions middleware.SessionStore
		logger   *zap.Logger
	}
)

func NewAuthHandler(sessions middleware.SessionStore, logger *zap.Logger) AuthHandler {
	return &authHandler{sessions: sessions, logger: logger}
}

func (h *authHandler) Me(c *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		return presenters.ErrorResponse(c, domain.MessageFailedUnauthorized, domain.ErrNoCredentials)
	}
	return presenters.SuccessResponse(c, principal, fiber.StatusOK, domain.MessageSuccessMe)
}

// Logout destroys the server-side session. The handler is idempotent; a
// request without a live session still gets a success response.
func (h *authHandler) Logout(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c)
	if err == nil {
		if destroyErr := sess.Destroy(); destroyErr != nil {
			h.logger.Warn("failed to destroy session on logout", zap.Error(destroyErr))
		}
	}
	c.ClearCookie(middleware.SessionCookieName)
	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessLogout)
}
