package main

import (
	"errors"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"

	"github.com/noah-isme/salon-booking-api/migrations"
	"github.com/noah-isme/salon-booking-api/pkg/config"
	"github.com/noah-isme/salon-booking-api/pkg/database"
	"github.com/noah-isme/salon-booking-api/pkg/logger"
)

// Usage: migrate [up|down|version|force <version>]
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	dbDriver, err := postgres.WithInstance(db.DB, &postgres.Config{})
	if err != nil {
		logr.Fatal("migrate db driver", zap.Error(err))
	}
	srcDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		logr.Fatal("migrate source driver", zap.Error(err))
	}
	m, err := migrate.NewWithInstance("iofs", srcDriver, "postgres", dbDriver)
	if err != nil {
		logr.Fatal("create migrator", zap.Error(err))
	}
	defer func() { _, _ = m.Close() }()

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "up":
		err = m.Up()
	case "down":
		err = m.Steps(-1)
	case "force":
		if len(os.Args) < 3 {
			logr.Fatal("force requires a version")
		}
		version, convErr := strconv.Atoi(os.Args[2])
		if convErr != nil {
			logr.Fatal("invalid version", zap.Error(convErr))
		}
		err = m.Force(version)
	case "version":
		version, dirty, verErr := m.Version()
		if verErr != nil && !errors.Is(verErr, migrate.ErrNilVersion) {
			logr.Fatal("read version", zap.Error(verErr))
		}
		logr.Info("schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		return
	default:
		logr.Fatal("unknown command", zap.String("command", cmd))
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logr.Fatal("migration failed", zap.String("command", cmd), zap.Error(err))
	}
	logr.Info("migrations complete", zap.String("command", cmd))
}
