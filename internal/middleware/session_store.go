package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

type (
	// SessionStore abstracts the cookie-backed session store so the
	// authentication path can be exercised without a running server store.
	SessionStore interface {
		Get(c *fiber.Ctx) (Session, error)
	}

	Session interface {
		Get(key string) any
		Set(key string, value any)
		Destroy() error
		Save() error
	}

	fiberSessionStore struct {
		store *session.Store
	}
)

// NewSessionStore builds the production store keyed on the session cookie.
func NewSessionStore() SessionStore {
	return &fiberSessionStore{
		store: session.New(session.Config{
			KeyLookup:      "cookie:" + SessionCookieName,
			CookieHTTPOnly: true,
			CookieSameSite: fiber.CookieSameSiteLaxMode,
		}),
	}
}

func (s *fiberSessionStore) Get(c *fiber.Ctx) (Session, error) {
	sess, err := s.store.Get(c)
	if err != nil {
		return nil, err
	}
	return sess, nil
}
