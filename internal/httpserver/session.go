package httpserver

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/lucaria/internal/session"
	"github.com/Skotchmaster/lucaria/pkg/logging"
)

const sessionIDKey = "session_id"

// SessionCookie makes sure every visitor carries a session id. The cookie is
// re-issued on each request so its lifetime slides with the stored session.
func SessionCookie(ttl time.Duration, secure bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := ""
			if ck, err := c.Cookie(session.CookieName); err == nil && session.ValidID(ck.Value) {
				id = ck.Value
			} else {
				id = session.NewID()
				logging.FromContext(c.Request().Context()).Debug("session_started")
			}

			ck := session.Cookie(id, ttl)
			ck.Secure = secure
			c.SetCookie(ck)
			c.Set(sessionIDKey, id)
			return next(c)
		}
	}
}

func sessionID(c echo.Context) string {
	id, _ := c.Get(sessionIDKey).(string)
	return id
}
