package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"recipe-api/domain"
	"recipe-api/internal/api/presenters"
	"recipe-api/pkg/auth"
)

const (
	// SessionCookieName is the cookie the session store keys on. Its raw
	// value doubles as the cookie token checked during authentication.
	SessionCookieName = "app_session"

	principalKey = "principal"
	requestIDKey = "requestId"

	sessionKeyIDToken      = "idToken"
	sessionKeyAccessToken  = "accessToken"
	sessionKeyRefreshToken = "refreshToken"
)

type (
	Middleware interface {
		CORS() fiber.Handler
		RequestID() fiber.Handler
		// Authenticated verifies the session-bound token pair and stores the
		// resulting principal on the request scope. Verification failures
		// destroy the session; an identity-provider outage does not.
		Authenticated() fiber.Handler
		// MaybeAuthenticated sets the principal when valid credentials are
		// present but never rejects the request. For public routes whose
		// response varies by caller.
		MaybeAuthenticated() fiber.Handler
		// RequireRole must run after Authenticated. Membership is fetched
		// fresh from the identity provider on every call.
		RequireRole(role string) fiber.Handler
	}

	middleware struct {
		authenticator auth.Authenticator
		sessions      SessionStore
		logger        *zap.Logger
	}
)

func NewMiddleware(authenticator auth.Authenticator, sessions SessionStore, logger *zap.Logger) Middleware {
	return &middleware{
		authenticator: authenticator,
		sessions:      sessions,
		logger:        logger,
	}
}

func (m *middleware) CORS() fiber.Handler {
	return cors.New(cors.Config{
		AllowCredentials: true,
		AllowOriginsFunc: func(origin string) bool { return true },
	})
}

func (m *middleware) RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(requestIDKey, id)
		c.Set("X-Request-ID", id)
		return c.Next()
	}
}

func (m *middleware) Authenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := m.sessions.Get(c)
		if err != nil {
			m.logger.Warn("failed to load session", zap.Error(err))
			return presenters.ErrorResponse(c, domain.MessageFailedUnauthorized, domain.ErrNoCredentials)
		}

		idToken, _ := sess.Get(sessionKeyIDToken).(string)
		cookieToken := c.Cookies(SessionCookieName)

		principal, err := m.authenticator.Authenticate(c.Context(), idToken, cookieToken)
		if err != nil {
			// A provider outage is not evidence the session is bad, so the
			// caller keeps it and can retry.
			if !errors.Is(err, domain.ErrAuthUnavailable) {
				if destroyErr := sess.Destroy(); destroyErr != nil {
					m.logger.Warn("failed to destroy session", zap.Error(destroyErr))
				}
			}
			m.logger.Info("request rejected",
				zap.String("requestId", RequestIDFrom(c)),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
			return presenters.ErrorResponse(c, domain.MessageFailedUnauthorized, err)
		}

		principal.Tokens.AccessToken, _ = sess.Get(sessionKeyAccessToken).(string)
		principal.Tokens.RefreshToken, _ = sess.Get(sessionKeyRefreshToken).(string)

		c.Locals(principalKey, principal)
		return c.Next()
	}
}

func (m *middleware) MaybeAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := m.sessions.Get(c)
		if err != nil {
			return c.Next()
		}

		idToken, _ := sess.Get(sessionKeyIDToken).(string)
		principal, err := m.authenticator.Authenticate(c.Context(), idToken, c.Cookies(SessionCookieName))
		if err != nil {
			return c.Next()
		}

		principal.Tokens.AccessToken, _ = sess.Get(sessionKeyAccessToken).(string)
		principal.Tokens.RefreshToken, _ = sess.Get(sessionKeyRefreshToken).(string)
		c.Locals(principalKey, principal)
		return c.Next()
	}
}

func (m *middleware) RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFrom(c)
		if !ok {
			return presenters.ErrorResponse(c, domain.MessageFailedUnauthorized, domain.ErrNoCredentials)
		}
		if err := m.authenticator.RequireRole(c.Context(), principal, role); err != nil {
			return presenters.ErrorResponse(c, domain.MessageFailedForbidden, err)
		}
		return c.Next()
	}
}

// PrincipalFrom returns the verified caller identity set by Authenticated.
func PrincipalFrom(c *fiber.Ctx) (domain.Principal, bool) {
	principal, ok := c.Locals(principalKey).(domain.Principal)
	return principal, ok
}

func RequestIDFrom(c *fiber.Ctx) string {
	id, _ := c.Locals(requestIDKey).(string)
	return id
}
