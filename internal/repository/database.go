// File: internal/repository/database.go
package repository

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/iyunix/kairos/internal/domain"
)

// DefaultUserID is the record created on first boot so the single-user frontend works out of the box.
const DefaultUserID uint = 1

// Open connects to the configured store. driver is "sqlite" or "postgres".
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite", "":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         newGormLogger(slog.Default().Handler()),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	return db, nil
}

// newGormLogger sends slow queries and SQL errors through the process slog
// handler, so production output stays JSON.
func newGormLogger(h slog.Handler) logger.Interface {
	return logger.New(slog.NewLogLogger(h, slog.LevelWarn), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// Migrate creates or updates the users, conversations and messages tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&domain.User{}, &domain.Conversation{}, &domain.Message{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// SeedDefaultUser inserts user ID 1 when it is missing. It only runs once the
// users table carries the target_language column, so it is safe to call
// against a partially migrated schema. Returns true when a row was created.
func SeedDefaultUser(ctx context.Context, db *gorm.DB) (bool, error) {
	if !db.Migrator().HasColumn(&domain.User{}, "target_language") {
		log.Printf("[Seed] users.target_language missing; skipping default user seed")
		return false, nil
	}

	var count int64
	if err := db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", DefaultUserID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check default user: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	defaultUser := &domain.User{
		ID:             DefaultUserID,
		Name:           "Default User",
		Email:          "default@example.com",
		PasswordHash:   "placeholder", // not a bcrypt hash, so nobody can log in as this user
		TargetLanguage: domain.DefaultTargetLanguage,
		FluencyLevel:   domain.DefaultFluencyLevel,
	}
	if err := db.WithContext(ctx).Create(defaultUser).Error; err != nil {
		return false, fmt.Errorf("create default user: %w", err)
	}

	// An explicit ID does not advance the postgres sequence.
	if db.Dialector.Name() == "postgres" {
		if err := db.WithContext(ctx).Exec(
			"SELECT setval(pg_get_serial_sequence('users', 'id'), (SELECT MAX(id) FROM users))",
		).Error; err != nil {
			return true, fmt.Errorf("advance users id sequence: %w", err)
		}
	}

	log.Printf("[Seed] Created default user (ID=%d)", DefaultUserID)
	return true, nil
}
