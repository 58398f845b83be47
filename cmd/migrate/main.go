package main

import (
	"context"
	"flag"
	"log"
	"time"

	"careerconnect/internal/config"
	"careerconnect/internal/database/migration"
	dbpostgres "careerconnect/internal/database/postgres"
	"careerconnect/internal/logging"
	"careerconnect/migrations"

	"go.uber.org/zap"
)

func main() {
	dir := flag.String("dir", "", "read migrations from this directory instead of the embedded set")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.App.Environment)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if !cfg.Database.Enabled() {
		logger.Fatal("database is not configured", zap.String("hint", "set DB_HOST and DB_NAME"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	r := migration.Runner{Source: migrations.FS, Logger: logger}
	if *dir != "" {
		r = migration.Runner{Dir: *dir, Logger: logger}
	}

	n, err := r.Run(ctx, db.SQLDB())
	if err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}
	logger.Info("migrations complete", zap.Int("applied", n))
}
