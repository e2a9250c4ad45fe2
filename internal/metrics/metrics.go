// Package metrics exposes request and storefront counters to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec

	authAttempts *prometheus.CounterVec
	cartChanges  *prometheus.CounterVec
	discounts    *prometheus.CounterVec
	checkouts    prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "HTTP request latency by route and method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_auth_attempts_total",
			Help: "Registration and login attempts by outcome.",
		}, []string{"action", "result"}),
		cartChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_cart_changes_total",
			Help: "Cart mutations by kind.",
		}, []string{"kind"}),
		discounts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_discount_applications_total",
			Help: "Discount code submissions by result.",
		}, []string{"result"}),
		checkouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_checkout_views_total",
			Help: "Checkout page renders.",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.duration, m.authAttempts, m.cartChanges, m.discounts, m.checkouts,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Middleware records one observation per request, keyed by the route pattern
// so ids in paths do not explode label cardinality.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			} else if err != nil {
				status = http.StatusInternalServerError
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
			m.duration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

func (m *Metrics) AuthAttempt(action string, ok bool) {
	if m == nil {
		return
	}
	m.authAttempts.WithLabelValues(action, result(ok)).Inc()
}

func (m *Metrics) CartChange(kind string) {
	if m == nil {
		return
	}
	m.cartChanges.WithLabelValues(kind).Inc()
}

func (m *Metrics) DiscountApplied(ok bool) {
	if m == nil {
		return
	}
	m.discounts.WithLabelValues(result(ok)).Inc()
}

func (m *Metrics) CheckoutViewed() {
	if m == nil {
		return
	}
	m.checkouts.Inc()
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "rejected"
}
