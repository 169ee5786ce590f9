package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"gocausal/adapters/memory"
	"gocausal/adapters/postgres"
	"gocausal/app"
	"gocausal/internal"
	"gocausal/internal/api"
	"gocausal/internal/config"
	"gocausal/internal/errors"
	"gocausal/internal/migration"
	"gocausal/ports"
)

// initDatabase connects to PostgreSQL and brings the schema up to date
func initDatabase(ctx context.Context, appConfig *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}

	migrator := migration.NewRunner()
	if err := migrator.Run(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "database migration failed")
	}

	return db, nil
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		internal.DefaultLogger.Debug("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		internal.DefaultLogger.Error("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	logger := internal.NewLogger(internal.ParseLogLevel(appConfig.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var runs ports.RunRepository
	if appConfig.Database.Enabled() {
		db, err := initDatabase(ctx, appConfig)
		if err != nil {
			logger.Error("Failed to initialize database: %v", err)
			os.Exit(1)
		}
		defer db.Close()
		runs = postgres.NewRunRepository(db)
		logger.Info("Storing runs in PostgreSQL")
	} else {
		runs = memory.NewRunRepository()
		logger.Info("DATABASE_URL not set, storing runs in memory")
	}

	service := app.NewDiscoveryService(runs, logger)
	server := api.NewServer(service, api.Config{
		MaxConcurrentFits: appConfig.Server.MaxConcurrentFits,
		MaxBodyBytes:      appConfig.Server.MaxBodyBytes,
		Defaults:          appConfig.Discovery,
	}, logger)

	if err := server.Start(ctx, ":"+appConfig.Server.Port); err != nil {
		logger.Error("Server failed: %v", err)
		os.Exit(1)
	}
}
