package main

import (
	"errors"
	"os"

	"github.com/konstanta-tech/tracker/internal/config"
	"github.com/konstanta-tech/tracker/internal/models"
	"github.com/konstanta-tech/tracker/internal/services"
	"github.com/konstanta-tech/tracker/internal/utils"
	"github.com/konstanta-tech/tracker/pkg/logger"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// appServices holds the shared dependencies of the HTTP layer.
type appServices struct {
	db              *gorm.DB
	events          *services.EventHub
	snapshotService *services.SnapshotService
	activityService *services.ActivityService
	snapshotPath    string
}

// bootstrap opens the database, seeds it and starts the snapshot scheduler.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)
	if err := utils.RegisterValidators(); err != nil {
		logger.Fatalf("Failed to register validators: %v", err)
	}

	if err := models.InitDB(&cfg.Database, gormLogLevel(cfg.Server.Mode)); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	db := models.GetDB()

	if err := models.AutoMigrate(db); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	snapshots := services.NewSnapshotService(db)
	if cfg.Seed.Path != "" {
		switch err := snapshots.ImportFile(cfg.Seed.Path); {
		case err == nil:
			logger.Infof("Seeded database from %s", cfg.Seed.Path)
		case errors.Is(err, services.ErrNotEmpty):
			logger.Debug().Str("path", cfg.Seed.Path).Msg("database already populated, seed skipped")
		case errors.Is(err, os.ErrNotExist):
			logger.Warn().Str("path", cfg.Seed.Path).Msg("seed file not found")
		default:
			logger.Warn().Err(err).Str("path", cfg.Seed.Path).Msg("Failed to seed database")
		}
	}

	auth := services.NewAuthService(db, &cfg.JWT)
	if err := auth.CreateAdminIfNotExists(cfg.Seed.AdminEmail, cfg.Seed.AdminPassword); err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin user")
	}

	app := &appServices{
		db:              db,
		events:          services.NewEventHub(),
		snapshotService: snapshots,
		activityService: services.NewActivityService(db),
	}

	if cfg.Snapshot.Enabled {
		if err := snapshots.StartScheduler(cfg.Snapshot.Schedule, cfg.Snapshot.Path); err != nil {
			logger.Warn().Err(err).Msg("Snapshot export disabled")
		} else {
			app.snapshotPath = cfg.Snapshot.Path
		}
	}

	return app
}

func gormLogLevel(mode string) gormlogger.LogLevel {
	if mode == "debug" {
		return gormlogger.Info
	}
	return gormlogger.Warn
}

// shutdown stops the scheduler and writes a final snapshot.
func (s *appServices) shutdown() {
	s.snapshotService.StopScheduler()
	if s.snapshotPath != "" {
		if err := s.snapshotService.WriteFile(s.snapshotPath); err != nil {
			logger.Error().Err(err).Msg("Final snapshot failed")
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		sqlDB.Close()
	}
	logger.Info().Msg("Shutdown complete")
}
