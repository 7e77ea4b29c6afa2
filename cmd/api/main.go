package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/osoriodev/tablebook-backend/api/routes"
	"github.com/osoriodev/tablebook-backend/internal/calendar"
	"github.com/osoriodev/tablebook-backend/internal/layout"
	"github.com/osoriodev/tablebook-backend/internal/reservations"
	"github.com/osoriodev/tablebook-backend/pkg/config"
	"github.com/osoriodev/tablebook-backend/pkg/db"
	"github.com/osoriodev/tablebook-backend/pkg/logger"
	"github.com/osoriodev/tablebook-backend/pkg/migrate"
	"github.com/osoriodev/tablebook-backend/pkg/redis"
	"github.com/osoriodev/tablebook-backend/pkg/security"
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

	cipher, err := security.NewTokenCipher(cfg.Security)
	if err != nil {
		logg.Error(context.Background(), "failed to build token cipher", err)
		os.Exit(1)
	}

	reservationsRepo := reservations.NewRepository(dbClient)
	reservationsService, err := reservations.NewService(reservations.Params{
		Logger:       logg,
		DB:           dbClient,
		Repo:         reservationsRepo,
		Availability: reservations.NewAvailability(reservationsRepo),
		Syncer:       calendar.NewClient(cfg.Calendar, logg),
		Cipher:       cipher,
		Config:       cfg.Reservations,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reservations service", err)
		os.Exit(1)
	}

	layoutService, err := layout.NewService(layout.Params{
		Logger: logg,
		Repo:   layout.NewRepository(dbClient),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create layout service", err)
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
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, reservationsService, layoutService),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
