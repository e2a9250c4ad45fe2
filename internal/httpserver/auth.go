package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/lucaria/internal/metrics"
	"github.com/Skotchmaster/lucaria/internal/service"
	"github.com/Skotchmaster/lucaria/internal/session"
	"github.com/Skotchmaster/lucaria/pkg/logging"
	middleware "github.com/Skotchmaster/lucaria/pkg/middleware/auth"
	"github.com/Skotchmaster/lucaria/pkg/tokens"
)

type AuthHTTP struct {
	Svc           *service.AuthService
	Sessions      session.Store
	Metrics       *metrics.Metrics
	SecureCookies bool
}

type credentials struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

func (h *AuthHTTP) Home(c echo.Context) error {
	if middleware.UserFromContext(c) != nil {
		return render(c, http.StatusOK, "dashboard", nil)
	}
	return render(c, http.StatusOK, "homepage", echo.Map{"Username": ""})
}

func (h *AuthHTTP) LoginForm(c echo.Context) error {
	return render(c, http.StatusOK, "login", echo.Map{"Username": ""})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req credentials
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.Metrics.AuthAttempt("login", false)
			return render(c, http.StatusOK, "login", echo.Map{
				"Username": req.Username,
				"Errors":   []string{service.MsgInvalidLogin},
			})
		}
		l.Error("login_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.Metrics.AuthAttempt("login", true)
	c.SetCookie(tokens.CreateCookie(tokens.AuthCookieName, res.Token, "/", res.Expires, h.SecureCookies))
	return c.Redirect(http.StatusSeeOther, "/")
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req credentials
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Register(ctx, req.Username, req.Password)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			h.Metrics.AuthAttempt("register", false)
			return render(c, http.StatusOK, "homepage", echo.Map{
				"Username": req.Username,
				"Errors":   verr.Messages,
			})
		}
		l.Error("register_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.Metrics.AuthAttempt("register", true)
	c.SetCookie(tokens.CreateCookie(tokens.AuthCookieName, res.Token, "/", res.Expires, h.SecureCookies))
	return c.Redirect(http.StatusSeeOther, "/")
}

func (h *AuthHTTP) LogOut(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_logout")

	if id := sessionID(c); id != "" && h.Sessions != nil {
		if err := h.Sessions.Delete(ctx, id); err != nil {
			l.Error("logout_failed", "status", 500, "reason", "cannot drop session", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	}

	c.SetCookie(tokens.DeleteCookie(tokens.AuthCookieName, "/", h.SecureCookies))
	l.Info("successful_logout")
	return c.Redirect(http.StatusSeeOther, "/")
}
