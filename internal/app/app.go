// Package app wires the dev server: store, repos, services, handlers,
// router, realtime fan-out and tracing, in the order they depend on each
// other.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dermatch/dermatch-go/internal/db"
	"github.com/dermatch/dermatch-go/internal/observability"
	"github.com/dermatch/dermatch-go/internal/pkg/logger"
	"github.com/dermatch/dermatch-go/internal/realtime"
	"github.com/dermatch/dermatch-go/internal/realtime/bus"
	"github.com/dermatch/dermatch-go/internal/seed"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services
	Hub      *realtime.SSEHub

	eventBus     bus.Bus
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	store, err := db.New(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init store: %w", err)
	}
	if err := store.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	conn := store.DB()

	hub := realtime.NewSSEHub(log)

	var eventBus bus.Bus
	if cfg.RedisAddr != "" {
		eventBus, err = bus.NewRedisBus(log)
		if err != nil {
			log.Warn("redis bus unavailable, events stay instance-local", "error", err)
			eventBus = nil
		}
	}

	reposet := wireRepos(conn, log)
	serviceset := wireServices(conn, log, reposet, hub, eventBus)

	catalog, err := seed.Load(cfg.CatalogPath)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	if err := serviceset.Catalog.Seed(context.Background(), catalog); err != nil {
		log.Sync()
		return nil, fmt.Errorf("seed catalog: %w", err)
	}

	handlerset := wireHandlers(log, serviceset, hub)
	middleware := wireMiddleware(log, cfg)
	router := wireRouter(log, cfg, handlerset, middleware)

	return &App{
		Log:      log,
		DB:       conn,
		Router:   router,
		Cfg:      cfg,
		Repos:    reposet,
		Services: serviceset,
		Hub:      hub,
		eventBus: eventBus,
	}, nil
}

// Start brings up the background pieces: tracing and the cross-instance
// event forwarder. Safe to call once; Run does not call it implicitly so
// tests can serve the router without side effects.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	a.otelShutdown = observability.InitOTel(ctx, a.Log, observability.OtelConfig{
		ServiceName: a.Cfg.ServiceName,
		Environment: a.Cfg.Env,
		Version:     a.Cfg.Version,
	})

	if a.eventBus != nil {
		if err := a.eventBus.StartForwarder(ctx, a.Hub.Broadcast); err != nil {
			a.Log.Warn("event forwarder failed to start", "error", err)
		}
	}
}

func (a *App) Run() error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("dev server listening", "port", a.Cfg.Port)
	return a.Router.Run(":" + a.Cfg.Port)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		_ = a.otelShutdown(ctx)
		cancel()
		a.otelShutdown = nil
	}
	if a.eventBus != nil {
		_ = a.eventBus.Close()
		a.eventBus = nil
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
