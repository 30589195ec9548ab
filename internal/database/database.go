package database

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/roomfinder-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/roomfinder-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Connect(cfg *config.Config) error {
	var err error
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	slog.Info("database connected")
	return nil
}

// EnumTypes maps each Postgres enum type to its labels.
func EnumTypes() map[string][]string {
	pt := make([]string, len(models.PropertyTypes))
	for i, v := range models.PropertyTypes {
		pt[i] = string(v)
	}
	tp := make([]string, len(models.TenantPreferences))
	for i, v := range models.TenantPreferences {
		tp[i] = string(v)
	}
	return map[string][]string{
		"property_type":     pt,
		"tenant_preference": tp,
	}
}

// CreateEnumSQL returns an idempotent CREATE TYPE statement.
func CreateEnumSQL(name string, labels []string) string {
	quoted := make([]string, len(labels))
	for i, l := range labels {
		quoted[i] = "'" + strings.ReplaceAll(l, "'", "''") + "'"
	}
	return fmt.Sprintf(
		"DO $$ BEGIN CREATE TYPE %s AS ENUM (%s); EXCEPTION WHEN duplicate_object THEN NULL; END $$;",
		name, strings.Join(quoted, ", "),
	)
}

// Migrate creates the enum types and then runs AutoMigrate.
func Migrate(db *gorm.DB) error {
	for _, name := range []string{"property_type", "tenant_preference"} {
		if err := db.Exec(CreateEnumSQL(name, EnumTypes()[name])).Error; err != nil {
			return fmt.Errorf("failed to create enum %s: %w", name, err)
		}
	}
	return db.AutoMigrate(
		&models.User{},
		&models.Listing{},
		&models.SystemLog{},
	)
}

func Ping() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
