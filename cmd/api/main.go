package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/davidgarza-dev/fieldmark-backend/api/routes"
	"github.com/davidgarza-dev/fieldmark-backend/internal/attribution"
	"github.com/davidgarza-dev/fieldmark-backend/internal/auth"
	"github.com/davidgarza-dev/fieldmark-backend/internal/catalog"
	"github.com/davidgarza-dev/fieldmark-backend/internal/coverage"
	"github.com/davidgarza-dev/fieldmark-backend/internal/hours"
	"github.com/davidgarza-dev/fieldmark-backend/internal/routesplan"
	"github.com/davidgarza-dev/fieldmark-backend/internal/uploads"
	"github.com/davidgarza-dev/fieldmark-backend/internal/users"
	"github.com/davidgarza-dev/fieldmark-backend/internal/visits"
	"github.com/davidgarza-dev/fieldmark-backend/pkg/auth/session"
	"github.com/davidgarza-dev/fieldmark-backend/pkg/config"
	"github.com/davidgarza-dev/fieldmark-backend/pkg/db"
	"github.com/davidgarza-dev/fieldmark-backend/pkg/logger"
	"github.com/davidgarza-dev/fieldmark-backend/pkg/migrate"
	"github.com/davidgarza-dev/fieldmark-backend/pkg/outbox"
	"github.com/davidgarza-dev/fieldmark-backend/pkg/redis"
	"github.com/davidgarza-dev/fieldmark-backend/pkg/storage/gcs"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap gcs", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()
	outboxSvc := outbox.NewService(outbox.NewRepository(gormDB), logg)
	catalogRepo := catalog.NewRepository(gormDB)
	catalogService, err := catalog.NewService(catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(gormDB),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	visitService, err := visits.NewService(visits.ServiceParams{
		Repo:      visits.NewRepository(gormDB),
		StoreRepo: catalogRepo,
		TxRunner:  dbClient,
		Outbox:    outboxSvc,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create visit service", err)
		os.Exit(1)
	}

	attributionService, err := attribution.NewService(attribution.ServiceParams{
		Repo:     attribution.NewRepository(gormDB),
		TxRunner: dbClient,
		Outbox:   outboxSvc,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create attribution service", err)
		os.Exit(1)
	}

	coverageService, err := coverage.NewService(coverage.ServiceParams{
		Repo: coverage.NewRepository(gormDB),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create coverage service", err)
		os.Exit(1)
	}

	hoursService, err := hours.NewService(hours.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create hours service", err)
		os.Exit(1)
	}

	routeService, err := routesplan.NewService(routesplan.ServiceParams{
		Repo:     routesplan.NewRepository(gormDB),
		TxRunner: dbClient,
		Outbox:   outboxSvc,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create route service", err)
		os.Exit(1)
	}

	uploadService, err := uploads.NewService(gcsClient, cfg.GCS.BucketName, cfg.GCS.UploadURLExpiry, cfg.GCS.DownloadURLExpiry)
	if err != nil {
		logg.Error(context.Background(), "failed to create upload service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, routes.Services{
			Auth:        authService,
			Catalog:     catalogService,
			Visits:      visitService,
			Attribution: attributionService,
			Coverage:    coverageService,
			Hours:       hoursService,
			Routes:      routeService,
			Uploads:     uploadService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
