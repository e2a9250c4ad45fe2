package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/lucaria/internal/repo"
	"github.com/Skotchmaster/lucaria/internal/service"
	"github.com/Skotchmaster/lucaria/pkg/logging"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	f := repo.ProductFilter{
		Category: c.QueryParam("category"),
		Search:   c.QueryParam("search"),
		Sort:     c.QueryParam("sort"),
	}

	items, err := h.Svc.ListProducts(ctx, f)
	if err != nil {
		l.Error("get_products_error", "status", 500, "reason", "cannot list products", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return render(c, http.StatusOK, "products", echo.Map{
		"Products": items,
		"Category": f.Category,
		"Search":   f.Search,
		"Sort":     f.Sort,
	})
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		l.Warn("get_product_failed", "status", 404, "reason", "id is not a positive integer", "id", c.Param("id"))
		return render(c, http.StatusNotFound, "404", nil)
	}

	product, err := h.Svc.GetProduct(ctx, uint(id))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("get_product_failed", "status", 404, "reason", "product with this id does not exist", "id", id)
			return render(c, http.StatusNotFound, "404", nil)
		}
		l.Error("get_product_failed", "status", 500, "reason", "cannot get product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return render(c, http.StatusOK, "product-detail", echo.Map{"Product": product})
}

func (h *CatalogHTTP) NewProductForm(c echo.Context) error {
	return render(c, http.StatusOK, "admin-new-product", echo.Map{"Form": service.ProductInput{}})
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "create_product")

	in := service.ProductInput{
		Name:        c.FormValue("name"),
		Description: c.FormValue("description"),
		Price:       c.FormValue("price"),
		Image:       c.FormValue("image"),
		Category:    c.FormValue("category"),
	}

	product, err := h.Svc.CreateProduct(ctx, in)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			l.Warn("product_create_error", "status", 200, "reasons", verr.Messages)
			return render(c, http.StatusOK, "admin-new-product", echo.Map{
				"Form":   in,
				"Errors": verr.Messages,
			})
		}
		l.Error("product_create_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.Redirect(http.StatusSeeOther, "/products/"+strconv.FormatUint(uint64(product.ID), 10))
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	q := c.QueryParam("q")
	items, err := h.Svc.Search(ctx, q)
	if err != nil {
		l.Error("search_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return render(c, http.StatusOK, "search", echo.Map{
		"Query":    q,
		"Products": items,
	})
}
