// db/testing_test.go
package db

import (
	"context"
	"testing"

	"uniloans/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestRepo opens an in-memory sqlite DB. One connection max: sqlite
// serializes writers anyway, and this keeps :memory: to a single
// database across goroutines.
func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, Migrate(gdb))
	return NewRepo(gdb)
}

func seedUser(t *testing.T, r *Repo, name, cedula string) *models.User {
	t.Helper()
	u := &models.User{
		ID:       uuid.NewString(),
		FullName: name,
		Cedula:   cedula,
		Active:   true,
	}
	require.NoError(t, r.CreateUser(context.Background(), u))
	return u
}

func seedItem(t *testing.T, r *Repo, name string, total int) *models.Item {
	t.Helper()
	it := &models.Item{
		ID:           uuid.NewString(),
		Name:         name,
		TotalQty:     total,
		AvailableQty: total,
		Active:       true,
	}
	require.NoError(t, r.CreateItem(context.Background(), it))
	return it
}
