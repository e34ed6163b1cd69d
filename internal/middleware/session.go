package middleware

import (
	"agora/internal/session"

	"github.com/gofiber/fiber/v2"
)

// SessionLocal is the Fiber locals key holding the resolved *session.Session.
const SessionLocal = "session"

// ResolveSession verifies the session cookie and, when the server-side
// record is still live, stores the session in locals. It never rejects a
// request: each operation decides for itself when (and whether) a missing
// session is an error, because the status-code ordering differs per
// operation.
func ResolveSession(store *session.Store, codec *session.CookieCodec) fiber.Handler {
	return func(c *fiber.Ctx) error {
		value := c.Cookies(session.CookieName)
		if value == "" {
			return c.Next()
		}

		claimed, err := codec.Decode(value)
		if err != nil {
			return c.Next()
		}

		live, err := store.Get(c.UserContext(), claimed.ID)
		if err != nil {
			Logger.WarnContext(c.UserContext(), "session lookup failed", "error", err)
			return c.Next()
		}
		if live == nil || live.UserID != claimed.UserID {
			return c.Next()
		}

		c.Locals(SessionLocal, live)
		c.Locals("sessionUserID", live.UserID)
		return c.Next()
	}
}

// SessionFromLocals returns the resolved session, or nil when the caller is
// not logged in.
func SessionFromLocals(c *fiber.Ctx) *session.Session {
	if s, ok := c.Locals(SessionLocal).(*session.Session); ok {
		return s
	}
	return nil
}
