package database

import (
	"fmt"

	"wager-ledger/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the ledger database for the given driver
func Connect(driver, dsn string, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Error),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == "sqlite" {
		// sqlite serializes writers; one connection avoids SQLITE_BUSY under load.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql db: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	log.Info("database connection established", zap.String("driver", driver))
	return db, nil
}

// Models lists every table the ledger owns
func Models() []interface{} {
	return []interface{}{
		&models.Profile{},
		&models.Bet{},
		&models.Treasury{},
		&models.Friend{},
		&models.Wallet{},
		&models.Transfer{},
	}
}

// AutoMigrate runs automatic migrations for all models
func AutoMigrate(db *gorm.DB, log *zap.Logger) error {
	for _, model := range Models() {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}
	log.Info("database migrations completed")
	return nil
}
