// Package repotest opens throwaway in-memory databases for tests.
package repotest

import (
	"testing"

	"gorm.io/gorm"

	"github.com/iyunix/kairos/internal/repository"
)

// NewDB returns a migrated in-memory SQLite database that lives for the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := repository.Open("sqlite", "file::memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	// every new connection would see its own empty memory database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := repository.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
