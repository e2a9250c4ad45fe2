package repo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/lucaria/internal/models"
	"github.com/Skotchmaster/lucaria/internal/repo"
	"github.com/Skotchmaster/lucaria/internal/testutil"
)

func TestSeedIsIdempotent(t *testing.T) {
	db := testutil.InitTestDB(t)
	r := &repo.GormRepo{DB: db}
	ctx := context.Background()

	require.NoError(t, r.Seed(ctx))
	require.NoError(t, r.Seed(ctx))

	var products, discounts int64
	require.NoError(t, db.Model(&models.Product{}).Count(&products).Error)
	require.NoError(t, db.Model(&models.Discount{}).Count(&discounts).Error)
	assert.EqualValues(t, 3, products)
	assert.EqualValues(t, 3, discounts)

	d, err := r.GetDiscount(ctx, "FALL25")
	require.NoError(t, err)
	assert.True(t, d.Percent.Equal(decimal.NewFromInt(25)))

	jeans, err := r.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Slim Fit Jeans", jeans.Name)
	assert.Equal(t, "59.99", jeans.Price.StringFixed(2))
}

func TestSeedSkipsProductsWhenCatalogNotEmpty(t *testing.T) {
	db := testutil.InitTestDB(t)
	testutil.CreateProduct(t, db, "Existing", "1.00", "Misc")

	require.NoError(t, (&repo.GormRepo{DB: db}).Seed(context.Background()))

	var n int64
	require.NoError(t, db.Model(&models.Product{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestGetProductsFilters(t *testing.T) {
	db := testutil.InitSeededDB(t)
	r := &repo.GormRepo{DB: db}
	ctx := context.Background()

	all, err := r.GetProducts(ctx, repo.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []uint{1, 2, 3}, ids(all))

	jeans, err := r.GetProducts(ctx, repo.ProductFilter{Search: "  JEANS "})
	require.NoError(t, err)
	require.Len(t, jeans, 1)
	assert.Equal(t, "Slim Fit Jeans", jeans[0].Name)

	byDesc, err := r.GetProducts(ctx, repo.ProductFilter{Search: "fleece"})
	require.NoError(t, err)
	require.Len(t, byDesc, 1)
	assert.Equal(t, "Oversized Hoodie", byDesc[0].Name)

	tops, err := r.GetProducts(ctx, repo.ProductFilter{Category: "Tops"})
	require.NoError(t, err)
	assert.Equal(t, []uint{2, 3}, ids(tops))

	none, err := r.GetProducts(ctx, repo.ProductFilter{Category: "Tops", Search: "jeans"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetProductsSort(t *testing.T) {
	db := testutil.InitSeededDB(t)
	testutil.CreateProduct(t, db, "Socks", "4.50", "Accessories")
	r := &repo.GormRepo{DB: db}
	ctx := context.Background()

	low, err := r.GetProducts(ctx, repo.ProductFilter{Sort: repo.SortPriceLow})
	require.NoError(t, err)
	for i := 1; i < len(low); i++ {
		assert.True(t, low[i-1].Price.LessThanOrEqual(low[i].Price), "low sort must be non-decreasing")
	}

	high, err := r.GetProducts(ctx, repo.ProductFilter{Sort: repo.SortPriceHigh})
	require.NoError(t, err)
	for i := 1; i < len(high); i++ {
		assert.True(t, high[i-1].Price.GreaterThanOrEqual(high[i].Price), "high sort must be non-increasing")
	}
	assert.Equal(t, "Slim Fit Jeans", high[0].Name)
	assert.Equal(t, "Socks", low[0].Name)
}

func TestGetProductsByIDs(t *testing.T) {
	db := testutil.InitSeededDB(t)
	r := &repo.GormRepo{DB: db}

	got, err := r.GetProductsByIDs(context.Background(), []uint{1, 3, 99})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Contains(t, got, uint(1))
	assert.NotContains(t, got, uint(99))
}

func TestUsers(t *testing.T) {
	db := testutil.InitTestDB(t)
	r := &repo.GormRepo{DB: db}
	ctx := context.Background()

	u := &models.User{Username: "alice", PasswordHash: "x", Role: models.RoleUser}
	require.NoError(t, r.CreateUser(ctx, u))
	assert.NotZero(t, u.ID)

	taken, err := r.UsernameTaken(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = r.UsernameTaken(ctx, "Alice")
	require.NoError(t, err)
	assert.False(t, taken)

	err = r.CreateUser(ctx, &models.User{Username: "alice", PasswordHash: "y", Role: models.RoleUser})
	assert.ErrorIs(t, err, repo.ErrUserAlreadyExist)

	_, err = r.GetUserByUsername(ctx, "nobody")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	n, err := r.PromoteAdmins(ctx, []string{"alice", "ghost"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := r.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role)
}

func ids(ps []models.Product) []uint {
	out := make([]uint, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}
