package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/tourism-booking-gateway/internal/availability"
	"github.com/iliyamo/tourism-booking-gateway/internal/cart"
	"github.com/iliyamo/tourism-booking-gateway/internal/catalog"
	"github.com/iliyamo/tourism-booking-gateway/internal/config"
	"github.com/iliyamo/tourism-booking-gateway/internal/database"
	"github.com/iliyamo/tourism-booking-gateway/internal/handler"
	"github.com/iliyamo/tourism-booking-gateway/internal/middleware"
	"github.com/iliyamo/tourism-booking-gateway/internal/queue"
	"github.com/iliyamo/tourism-booking-gateway/internal/repository"
	"github.com/iliyamo/tourism-booking-gateway/internal/router"
	"github.com/iliyamo/tourism-booking-gateway/internal/service"
	"github.com/iliyamo/tourism-booking-gateway/internal/session"
	"github.com/iliyamo/tourism-booking-gateway/internal/upstream"
)

func main() {
	cfg := config.Load()
	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		logger.Warn("redis unavailable; cache and rate limiting disabled", zap.String("addr", cfg.Redis.Addr))
	} else {
		defer rdb.Close()
	}

	api, err := upstream.New(upstream.Options{
		BaseURL: cfg.Upstream.BaseURL,
		Timeout: cfg.Upstream.Timeout,
		RPS:     cfg.Upstream.RPS,
		Burst:   cfg.Upstream.Burst,
		Logger:  logger,
	})
	if err != nil {
		logger.Fatal("upstream client", zap.Error(err))
	}

	// sessions
	var sessions session.Store
	if cfg.SessionStore == "mysql" {
		db, err := database.Open(cfg.DB)
		if err != nil {
			logger.Fatal("mysql", zap.Error(err))
		}
		defer db.Close()
		repo := repository.NewSessionRepo(db)
		sessions = repo
		go purgeSessions(ctx, repo, logger)
	} else {
		logger.Warn("sessions kept in memory; they are lost on restart")
		sessions = session.NewMemoryStore()
	}
	mgr := session.NewManager(api, sessions, cfg.SessionSecret, cfg.SessionTTL, logger)

	// cart mirrors
	var mirrors cart.Store
	if cfg.CartStore == "redis" && rdb != nil {
		mirrors = cart.NewRedisStore(rdb, "cart", cfg.CartTTL)
	} else {
		mirrors = cart.NewMemoryStore()
	}
	opts := []cart.Option{cart.WithLogger(logger)}
	if cfg.EventsEnabled {
		pub := service.NewQueuePublisher(cfg.AMQPURL, logger)
		defer pub.Close()
		opts = append(opts, cart.WithPublisher(pub))
	}
	syncer := cart.NewSynchronizer(api, mirrors, opts...)
	mgr.OnLogout(syncer)

	if cfg.ConsumeEvents {
		c := &queue.Consumer{URL: cfg.AMQPURL, Log: logger}
		go func() {
			if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("consumer stopped", zap.Error(err))
			}
		}()
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(logger))

	router.Register(e, router.Handlers{
		Auth:         handler.NewAuthHandler(mgr, api),
		Cart:         handler.NewCartHandler(syncer, mgr, api),
		Catalog:      handler.NewCatalogHandler(catalog.NewLister(api), api),
		Availability: handler.NewAvailabilityHandler(availability.NewChecker(api, logger)),
	}, mgr,
		middleware.NewTokenBucket(cfg.RateLimit, rdb, logger),
		middleware.NewRedisCache(cfg.Cache, rdb),
		cfg.LoginPath)

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env),
		zap.String("upstream", cfg.Upstream.BaseURL))
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdown); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

// purgeSessions deletes expired and revoked session rows once an hour.
func purgeSessions(ctx context.Context, repo *repository.SessionRepo, logger *zap.Logger) {
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := repo.PurgeExpired(ctx, time.Now().UTC())
			if err != nil {
				logger.Warn("purge sessions", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Info("purged sessions", zap.Int64("rows", n))
			}
		}
	}
}
