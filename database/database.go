package database

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"carbon-track/models"
)

// DefaultSQLitePath est utilisé quand DATABASE_URL est vide.
const DefaultSQLitePath = "carbon.db"

// Dialector choisit le driver gorm d'après le DSN.
func Dialector(dsn string) (gorm.Dialector, string) {
	switch {
	case strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://"):
		return postgres.Open(dsn), "postgres"
	case strings.HasPrefix(dsn, "sqlite://"):
		return sqlite.Open(strings.TrimPrefix(dsn, "sqlite://")), "sqlite"
	case strings.HasPrefix(dsn, "file:") || strings.HasSuffix(dsn, ".db"):
		return sqlite.Open(dsn), "sqlite"
	case dsn != "":
		// DSN postgres sans schéma (host=... user=...)
		return postgres.Open(dsn), "postgres"
	default:
		return sqlite.Open(DefaultSQLitePath), "sqlite"
	}
}

// Connect ouvre la base et migre la table des slots.
func Connect(dsn string, log *zap.Logger) (*gorm.DB, error) {
	dialector, driver := Dialector(dsn)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("database: connect (%s): %w", driver, err)
	}

	if err := db.AutoMigrate(&models.SlotEntry{}); err != nil {
		return nil, fmt.Errorf("database: migrate: %w", err)
	}

	log.Info("database ready", zap.String("driver", driver))
	return db, nil
}
