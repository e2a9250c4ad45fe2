package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/lucaria/pkg/logging"
	"github.com/Skotchmaster/lucaria/pkg/tokens"
)

const (
	ContextUserKey = "user"
	ContextRoleKey = "role"
)

type IdentityMiddleware struct {
	JWTSecret     []byte
	SecureCookies bool
}

func NewIdentityMiddleware(secret []byte, secureCookies bool) *IdentityMiddleware {
	return &IdentityMiddleware{
		JWTSecret:     secret,
		SecureCookies: secureCookies,
	}
}

type ValidatorFunc func(claims *tokens.AuthClaims) error

// Resolve attaches the caller's claims to the context when the auth cookie
// carries a valid token. It never rejects a request.
func (m *IdentityMiddleware) Resolve(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ck, err := c.Cookie(tokens.AuthCookieName)
		if err != nil || ck.Value == "" {
			return next(c)
		}

		claims, err := tokens.AuthClaimsFromToken(ck.Value, m.JWTSecret)
		if err != nil {
			logging.FromContext(c.Request().Context()).Debug("auth_cookie_rejected", "error", err)
			c.SetCookie(tokens.DeleteCookie(tokens.AuthCookieName, "/", m.SecureCookies))
			return next(c)
		}

		setUserContext(c, claims)
		return next(c)
	}
}

func (m *IdentityMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireWithValidator(next, nil)
}

func (m *IdentityMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireWithValidator(next, func(claims *tokens.AuthClaims) error {
		if !claims.IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return nil
	})
}

func (m *IdentityMiddleware) requireWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return m.Resolve(func(c echo.Context) error {
		claims := UserFromContext(c)
		if claims == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "login required")
		}
		if validator != nil {
			if err := validator(claims); err != nil {
				return err
			}
		}
		return next(c)
	})
}

// UserFromContext returns the authenticated caller, or nil.
func UserFromContext(c echo.Context) *tokens.AuthClaims {
	claims, _ := c.Get(ContextUserKey).(*tokens.AuthClaims)
	return claims
}

func setUserContext(c echo.Context, claims *tokens.AuthClaims) {
	c.Set(ContextUserKey, claims)
	c.Set(ContextRoleKey, claims.Role)
}
