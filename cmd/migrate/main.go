//go:build migrate

package main

import (
	"context"
	"errors"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/yanex66/vouchly/internal/config"
	"github.com/yanex66/vouchly/internal/logger"
	"github.com/yanex66/vouchly/internal/model"
	"github.com/yanex66/vouchly/internal/repository"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.Server.IsProduction()); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Log

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = cfg.Database.DSN()
	}

	source := os.Getenv("MIGRATIONS_PATH")
	if source == "" {
		source = "file://migrations"
	}

	m, err := migrate.New(source, dsn)
	if err != nil {
		log.Fatal("failed to create migrate instance", zap.Error(err))
	}
	defer m.Close()

	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down|version|force|grant-owner>")
	}

	switch os.Args[1] {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
		log.Info("migrations applied")

	case "down":
		if err := m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal("failed to roll back migration", zap.Error(err))
		}
		log.Info("migration rolled back")

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			log.Fatal("failed to get version", zap.Error(err))
		}
		log.Info("schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))

	case "force":
		if len(os.Args) < 3 {
			log.Fatal("usage: migrate force <version>")
		}
		version, err := strconv.Atoi(os.Args[2])
		if err != nil {
			log.Fatal("invalid version", zap.String("version", os.Args[2]))
		}
		if err := m.Force(version); err != nil {
			log.Fatal("failed to force version", zap.Error(err))
		}
		log.Info("forced version", zap.Int("version", version))

	case "grant-owner":
		// Bootstraps the first owner, who can then add admins through the API.
		if len(os.Args) < 3 {
			log.Fatal("usage: migrate grant-owner <user_id>")
		}
		userID, err := strconv.ParseInt(os.Args[2], 10, 64)
		if err != nil {
			log.Fatal("invalid user id", zap.String("user_id", os.Args[2]))
		}
		repo, err := repository.New(dsn)
		if err != nil {
			log.Fatal("failed to connect to database", zap.Error(err))
		}
		defer repo.Close()
		if err := repo.CreateAdmin(context.Background(), userID, model.AdminRoleOwner); err != nil {
			log.Fatal("failed to grant owner", zap.Error(err))
		}
		log.Info("owner granted", zap.Int64("user_id", userID))

	default:
		log.Fatal("unknown command", zap.String("command", os.Args[1]))
	}
}
