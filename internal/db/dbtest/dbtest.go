// Package dbtest opens throwaway migrated databases for tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Rogue-Bear-Innovations/planner-back/internal/db"
)

// New returns a migrated sqlite database living in the test's temp dir.
func New(tb testing.TB) *gorm.DB {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "planner.db")
	conn, err := db.Open(sqlite.Open(db.SQLiteDSN(path)), logger.Silent)
	if err != nil {
		tb.Fatalf("open test database: %v", err)
	}

	tb.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}
