// Package testutil opens throwaway databases for repository and service tests.
package testutil

import (
	"testing"

	"go-pos-ws/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated in-memory SQLite database. It holds a single
// connection, so nothing may use the returned handle while a transaction
// started from it is still open.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

// FailNthCreate makes the nth INSERT into table fail with err. Register it
// after seeding so setup inserts are not counted.
func FailNthCreate(t *testing.T, db *gorm.DB, table string, n int, err error) {
	t.Helper()

	calls := 0
	name := "testutil:fail_" + table
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register(name, func(tx *gorm.DB) {
		if tx.Statement.Table != table {
			return
		}
		calls++
		if calls == n {
			_ = tx.AddError(err)
		}
	}))
}
