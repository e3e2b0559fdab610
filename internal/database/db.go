package database

import (
	"os"
	"path/filepath"

	"bedding-ledger-backend/internal/config"
	"bedding-ledger-backend/internal/logger"
	"bedding-ledger-backend/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var (
		dialector gorm.Dialector
		err       error
	)

	switch cfg.DBDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseDSN)
	default:
		// sqlite is the default: single-user tool, one file under the home dir
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				logger.L.Fatal("could not create data directory", zap.String("dir", dir), zap.Error(err))
			}
		}
		dialector = sqlite.Open(cfg.SQLitePath)
	}

	DB, err = gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		logger.L.Fatal("database connection failed", zap.Error(err))
	}

	if err := DB.AutoMigrate(
		&models.User{},
		&models.Purchase{},
		&models.Return{},
	); err != nil {
		logger.L.Fatal("auto-migration failed", zap.Error(err))
	}

	logger.L.Info("database ready", zap.String("driver", cfg.DBDriver))
}
