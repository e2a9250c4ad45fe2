package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/lucaria/internal/metrics"
	"github.com/Skotchmaster/lucaria/internal/service"
	"github.com/Skotchmaster/lucaria/internal/session"
	"github.com/Skotchmaster/lucaria/pkg/logging"
)

const msgInvalidInput = "Invalid input"

type CartHTTP struct {
	Svc     *service.CartService
	Store   session.Store
	Metrics *metrics.Metrics
}

func (h *CartHTTP) load(c echo.Context) (string, *session.Session, error) {
	id := sessionID(c)
	if id == "" {
		return "", nil, session.ErrInvalidID
	}
	sess, err := h.Store.Get(c.Request().Context(), id)
	if err != nil {
		return "", nil, err
	}
	return id, sess, nil
}

// save drops sessions that no longer hold anything instead of storing them.
func (h *CartHTTP) save(c echo.Context, id string, sess *session.Session) error {
	if sess.Empty() {
		return h.Store.Delete(c.Request().Context(), id)
	}
	return h.Store.Save(c.Request().Context(), id, sess)
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	productID, err := strconv.Atoi(strings.TrimSpace(c.FormValue("productId")))
	if err != nil {
		l.Warn("add_to_cart_failed", "status", 400, "reason", "product id is not an integer", "error", err)
		return c.String(http.StatusBadRequest, msgInvalidInput)
	}
	qty := 1
	if raw := strings.TrimSpace(c.FormValue("quantity")); raw != "" {
		if qty, err = strconv.Atoi(raw); err != nil {
			l.Warn("add_to_cart_failed", "status", 400, "reason", "quantity is not an integer", "error", err)
			return c.String(http.StatusBadRequest, msgInvalidInput)
		}
	}

	id, sess, err := h.load(c)
	if err != nil {
		l.Error("add_to_cart_failed", "status", 500, "reason", "cannot load session", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if err := h.Svc.AddItem(ctx, sess, productID, qty); err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			l.Warn("add_to_cart_failed", "status", 400, "error", err)
			return c.String(http.StatusBadRequest, msgInvalidInput)
		}
		l.Error("add_to_cart_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if err := h.save(c, id, sess); err != nil {
		l.Error("add_to_cart_failed", "status", 500, "reason", "cannot save session", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.Metrics.CartChange("add")
	return c.Redirect(http.StatusSeeOther, "/cart")
}

func (h *CartHTTP) RemoveFromCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	productID, err := strconv.Atoi(strings.TrimSpace(c.FormValue("productId")))
	if err != nil {
		l.Warn("remove_from_cart_failed", "status", 400, "reason", "product id is not an integer", "error", err)
		return c.String(http.StatusBadRequest, msgInvalidInput)
	}

	id, sess, err := h.load(c)
	if err != nil {
		l.Error("remove_from_cart_failed", "status", 500, "reason", "cannot load session", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.Svc.RemoveItem(ctx, sess, productID)

	if err := h.save(c, id, sess); err != nil {
		l.Error("remove_from_cart_failed", "status", 500, "reason", "cannot save session", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.Metrics.CartChange("remove")
	return c.Redirect(http.StatusSeeOther, "/cart")
}

func (h *CartHTTP) ApplyDiscount(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.apply_discount")

	id, sess, err := h.load(c)
	if err != nil {
		l.Error("apply_discount_failed", "status", 500, "reason", "cannot load session", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	changed, accepted, err := h.Svc.ApplyDiscount(ctx, sess, c.FormValue("discount"))
	if err != nil {
		l.Error("apply_discount_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if !changed {
		return c.Redirect(http.StatusSeeOther, "/cart")
	}

	if err := h.save(c, id, sess); err != nil {
		l.Error("apply_discount_failed", "status", 500, "reason", "cannot save session", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.Metrics.DiscountApplied(accepted)
	if !accepted {
		l.Info("discount_rejected")
	}
	return c.Redirect(http.StatusSeeOther, "/cart")
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	return h.showTotals(c, "cart")
}

func (h *CartHTTP) Checkout(c echo.Context) error {
	if err := h.showTotals(c, "checkout"); err != nil {
		return err
	}
	h.Metrics.CheckoutViewed()
	return nil
}

func (h *CartHTTP) showTotals(c echo.Context, view string) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart."+view)

	_, sess, err := h.load(c)
	if err != nil {
		l.Error("get_cart_failed", "status", 500, "reason", "cannot load session", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	totals, err := h.Svc.ComputeTotals(ctx, sess)
	if err != nil {
		l.Error("get_cart_failed", "status", 500, "reason", "cannot compute totals", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return render(c, http.StatusOK, view, echo.Map{"Totals": totals})
}
