package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"waste-bknd/internal/config"
	"waste-bknd/internal/database"
	"waste-bknd/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
)

func main() {
	var (
		dsn     = flag.String("dsn", "", "Database connection string (default DATABASE_URL)")
		up      = flag.Bool("up", false, "Run all up migrations")
		down    = flag.Bool("down", false, "Run all down migrations")
		steps   = flag.Int("steps", 0, "Number of migrations (positive=up, negative=down)")
		version = flag.Bool("version", false, "Print current migration version")
		force   = flag.Int("force", -1, "Force set version (use with caution)")
	)
	flag.Parse()

	forceSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "force" {
			forceSet = true
		}
	})

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logr := logger.New(cfg)
	defer logr.Sync()

	if *dsn == "" {
		*dsn = cfg.DatabaseURL
	}

	source, err := iofs.New(database.Migrations, database.MigrationsDir)
	if err != nil {
		logr.Fatal("failed to create migration source", zap.Error(err))
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, *dsn)
	if err != nil {
		logr.Fatal("failed to create migrator", zap.Error(err))
	}
	defer m.Close()

	switch {
	case *version:
		v, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			logr.Fatal("failed to get version", zap.Error(err))
		}
		fmt.Printf("version: %d, dirty: %v\n", v, dirty)
	case forceSet:
		if err := m.Force(*force); err != nil {
			logr.Fatal("failed to force version", zap.Int("version", *force), zap.Error(err))
		}
		logr.Info("forced migration version", zap.Int("version", *force))
	case *up:
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logr.Fatal("failed to run up migrations", zap.Error(err))
		}
		logr.Info("migrations applied")
	case *down:
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logr.Fatal("failed to run down migrations", zap.Error(err))
		}
		logr.Info("migrations reverted")
	case *steps != 0:
		if err := m.Steps(*steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logr.Fatal("failed to run migrations", zap.Int("steps", *steps), zap.Error(err))
		}
		logr.Info("migration steps applied", zap.Int("steps", *steps))
	default:
		fmt.Println("usage: migrate [-dsn <connection-string>] [-up|-down|-steps N|-version|-force N]")
		flag.PrintDefaults()
	}
}
