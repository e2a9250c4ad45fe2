package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/lucaria/internal/config"
	"github.com/Skotchmaster/lucaria/internal/events"
	"github.com/Skotchmaster/lucaria/internal/httpserver"
	"github.com/Skotchmaster/lucaria/internal/metrics"
	"github.com/Skotchmaster/lucaria/internal/repo"
	"github.com/Skotchmaster/lucaria/internal/search"
	"github.com/Skotchmaster/lucaria/internal/service"
	"github.com/Skotchmaster/lucaria/internal/session"
	pkgdb "github.com/Skotchmaster/lucaria/pkg/db"
	"github.com/Skotchmaster/lucaria/pkg/logging"
	middleware "github.com/Skotchmaster/lucaria/pkg/middleware/auth"
	"github.com/Skotchmaster/lucaria/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/lucaria/pkg/middleware/logging"
	"github.com/Skotchmaster/lucaria/web"
)

const sweepInterval = time.Minute

func main() {
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel).With("service", "storefront")
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		cancel()
		log.Fatalf("db open: %v", err)
	}

	store := &repo.GormRepo{DB: db}
	if err := store.Migrate(ctx); err != nil {
		cancel()
		log.Fatalf("db migrate: %v", err)
	}
	if err := store.Seed(ctx); err != nil {
		cancel()
		log.Fatalf("db seed: %v", err)
	}
	if n, err := store.PromoteAdmins(ctx, cfg.AdminUsernames); err != nil {
		logger.Error("promote_admins_failed", "error", err)
	} else if n > 0 {
		logger.Info("admins_promoted", "count", n)
	}
	cancel()

	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	sessions := newSessionStore(bgCtx, cfg, logger)
	publisher := newPublisher(cfg, logger)
	index := newSearchIndex(cfg, store, logger)

	m := metrics.New()

	catalog := &service.CatalogService{Repo: store, Events: publisher}
	if index != nil {
		catalog.Index = index
	}

	renderer, err := httpserver.NewRenderer(web.Templates, "templates")
	if err != nil {
		log.Fatalf("templates: %v", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.Secure())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(m.Middleware())

	httpserver.Register(e, &httpserver.Deps{
		DB:       db,
		Renderer: renderer,
		AuthHandler: &httpserver.AuthHTTP{
			Svc: &service.AuthService{
				Repo:      store,
				JWTSecret: cfg.JWTSecret,
				Admins:    cfg.AdminUsernames,
				Events:    publisher,
			},
			Sessions:      sessions,
			Metrics:       m,
			SecureCookies: cfg.SecureCookies,
		},
		CatalogHandler: &httpserver.CatalogHTTP{Svc: catalog},
		CartHandler: &httpserver.CartHTTP{
			Svc:     &service.CartService{Repo: store, Events: publisher},
			Store:   sessions,
			Metrics: m,
		},
		Identity:      middleware.NewIdentityMiddleware(cfg.JWTSecret, cfg.SecureCookies),
		Metrics:       m,
		CSRF:          csrf.Config{Secure: cfg.SecureCookies, EnforceSameOrigin: true},
		SessionTTL:    cfg.SessionTTL,
		SecureCookies: cfg.SecureCookies,
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("storefront listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown_failed", "error", err)
	}
	stopBackground()

	if err := publisher.Close(); err != nil {
		logger.Error("publisher_close_failed", "error", err)
	}
	if err := pkgdb.Close(db); err != nil {
		logger.Error("db_close_failed", "error", err)
	}

	logger.Info("storefront stopped")
}

func newSessionStore(ctx context.Context, cfg config.Config, l *slog.Logger) session.Store {
	if cfg.SessionBackend == config.SessionBackendRedis {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		rs := session.NewRedisStore(client, cfg.SessionTTL)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rs.Ping(pingCtx); err != nil {
			log.Fatalf("redis ping: %v", err)
		}
		l.Info("session_store", "backend", "redis", "addr", cfg.RedisAddr)
		return rs
	}

	ms := session.NewMemoryStore(cfg.SessionTTL)
	go ms.RunSweeper(ctx, sweepInterval)
	l.Info("session_store", "backend", "memory")
	return ms
}

func newPublisher(cfg config.Config, l *slog.Logger) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		l.Info("events_disabled", "reason", "KAFKA_BROKERS is empty")
		return events.Nop{}
	}
	l.Info("events_enabled", "brokers", cfg.KafkaBrokers)
	return events.NewKafkaPublisher(cfg.KafkaBrokers)
}

// newSearchIndex returns nil when Elasticsearch is not configured or not
// reachable; search then falls back to the database.
func newSearchIndex(cfg config.Config, store *repo.GormRepo, l *slog.Logger) *search.Index {
	if cfg.ESURL == "" {
		l.Info("search_index_disabled", "reason", "ES_URL is empty")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	idx, err := search.NewClient(ctx, search.Config{
		URL:      cfg.ESURL,
		User:     cfg.ESUser,
		Password: cfg.ESPassword,
		Index:    cfg.ESIndex,
	}, l)
	if err != nil {
		l.Error("search_index_unavailable", "error", err)
		return nil
	}

	products, err := store.AllProducts(ctx)
	if err != nil {
		l.Error("search_reindex_failed", "error", err)
		return idx
	}
	n, err := idx.Reindex(ctx, products)
	if err != nil {
		l.Error("search_reindex_failed", "indexed", n, "error", err)
		return idx
	}
	l.Info("search_reindexed", "count", n)
	return idx
}
