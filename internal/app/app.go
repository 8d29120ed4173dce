package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yohannreimer/projeto-treinamentos/internal/db"
	"github.com/yohannreimer/projeto-treinamentos/internal/observability"
	"github.com/yohannreimer/projeto-treinamentos/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services

	otelShutdown func(context.Context) error
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

	log.Info("Loading configuration...")
	cfg := LoadConfig(log)

	dbService, err := db.NewService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := dbService.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("database automigrate: %w", err)
	}
	theDB := dbService.DB()

	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "treinamentos",
		Environment: os.Getenv("ENVIRONMENT"),
		Version:     os.Getenv("SERVICE_VERSION"),
	})

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet)
	handlerset := wireHandlers(log, serviceset)
	middleware := wireMiddleware(log, serviceset)
	router := wireRouter(log, cfg, handlerset, middleware)

	app := &App{
		Log:          log,
		DB:           theDB,
		Router:       router,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		otelShutdown: otelShutdown,
	}
	if err := app.applyStartupData(context.Background()); err != nil {
		log.Sync()
		return nil, err
	}
	return app, nil
}

// applyStartupData creates the bootstrap operator and applies any seed data
// from the config file. Both are idempotent.
func (a *App) applyStartupData(ctx context.Context) error {
	if a.Cfg.BootstrapEmail != "" {
		if err := a.Services.Auth.EnsureBootstrapUser(ctx, a.Cfg.BootstrapEmail, a.Cfg.BootstrapName, a.Cfg.BootstrapPassword); err != nil {
			return fmt.Errorf("bootstrap user: %w", err)
		}
	}
	if a.Cfg.Seed != nil {
		summary, err := a.Services.Bootstrap.ApplyCurrentData(ctx, *a.Cfg.Seed)
		if err != nil {
			return fmt.Errorf("apply seed data: %w", err)
		}
		a.Log.Info("Seed data applied",
			"clients_upserted", summary.ClientsUpserted,
			"modules_upserted", summary.ModulesUpserted,
			"progress_rows_created", summary.ProgressRowsCreated,
		)
	}
	return nil
}

func (a *App) Run(addr string) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Router.Run(addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.otelShutdown != nil {
		_ = a.otelShutdown(context.Background())
		a.otelShutdown = nil
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
