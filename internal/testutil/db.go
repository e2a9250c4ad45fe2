// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/lucaria/internal/models"
	"github.com/Skotchmaster/lucaria/internal/repo"
	pkgdb "github.com/Skotchmaster/lucaria/pkg/db"
)

var Secret = []byte("test-secret-test-secret-test-secret!")

// InitTestDB opens a migrated in-memory sqlite database that is closed when t ends.
func InitTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := pkgdb.Open(context.Background(), pkgdb.DriverSQLite, ":memory:")
	require.NoError(t, err, "failed to connect to in-memory db")
	t.Cleanup(func() { _ = pkgdb.Close(db) })

	r := &repo.GormRepo{DB: db}
	require.NoError(t, r.Migrate(context.Background()), "failed to migrate tables")
	return db
}

// InitSeededDB is InitTestDB plus the default discounts and starter catalog.
func InitSeededDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := InitTestDB(t)
	require.NoError(t, (&repo.GormRepo{DB: db}).Seed(context.Background()))
	return db
}

func CreateProduct(t *testing.T, db *gorm.DB, name, price, category string) models.Product {
	t.Helper()
	p := models.Product{
		Name:        name,
		Description: name + " description",
		Price:       decimal.RequireFromString(price),
		Category:    category,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}
