package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/lucaria/internal/metrics"
	pkgdb "github.com/Skotchmaster/lucaria/pkg/db"
	"github.com/Skotchmaster/lucaria/pkg/logging"
	middleware "github.com/Skotchmaster/lucaria/pkg/middleware/auth"
	"github.com/Skotchmaster/lucaria/pkg/middleware/csrf"
)

type Deps struct {
	DB             *gorm.DB
	Renderer       *Renderer
	AuthHandler    *AuthHTTP
	CatalogHandler *CatalogHTTP
	CartHandler    *CartHTTP
	Identity       *middleware.IdentityMiddleware
	Metrics        *metrics.Metrics
	CSRF           csrf.Config
	SessionTTL     time.Duration
	SecureCookies  bool
}

func Register(e *echo.Echo, d *Deps) {
	e.Renderer = d.Renderer

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if err := pkgdb.Ping(c.Request().Context(), d.DB); err != nil {
			logging.FromContext(c.Request().Context()).Warn("not_ready", "status", 503, "error", err)
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}

	app := e.Group("",
		csrf.Middleware(d.CSRF),
		SessionCookie(d.SessionTTL, d.SecureCookies),
		d.Identity.Resolve,
	)

	app.GET("/", d.AuthHandler.Home)
	app.GET("/login", d.AuthHandler.LoginForm)
	app.POST("/login", d.AuthHandler.Login)
	app.POST("/register", d.AuthHandler.Register)
	app.GET("/logout", d.AuthHandler.LogOut)

	app.GET("/products", d.CatalogHandler.GetProducts)
	app.GET("/products/:id", d.CatalogHandler.GetProduct)
	app.GET("/search", d.CatalogHandler.SearchProducts)

	admin := app.Group("/admin/products", d.Identity.RequireAdmin)
	admin.GET("/new", d.CatalogHandler.NewProductForm)
	admin.POST("/new", d.CatalogHandler.CreateProduct)

	app.GET("/cart", d.CartHandler.GetCart)
	app.POST("/cart/add", d.CartHandler.AddToCart)
	app.POST("/cart/remove", d.CartHandler.RemoveFromCart)
	app.POST("/cart/apply-discount", d.CartHandler.ApplyDiscount)
	app.GET("/checkout", d.CartHandler.Checkout)
}
