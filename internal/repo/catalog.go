package repo

import (
	"context"
	"strings"

	"github.com/Skotchmaster/lucaria/internal/models"
)

const (
	SortPriceLow  = "low"
	SortPriceHigh = "high"
)

type ProductFilter struct {
	Category string
	Search   string
	Sort     string
}

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	product := models.Product{}
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProducts applies the optional search, category and sort of f. Without a
// recognised sort the products come back in insertion order.
func (r *GormRepo) GetProducts(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	q := r.DB.WithContext(ctx).Model(&models.Product{})

	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}

	switch f.Sort {
	case SortPriceLow:
		q = q.Order("price ASC").Order("id ASC")
	case SortPriceHigh:
		q = q.Order("price DESC").Order("id ASC")
	default:
		q = q.Order("id ASC")
	}

	items := make([]models.Product, 0)
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetProductsByIDs(ctx context.Context, ids []uint) (map[uint]models.Product, error) {
	out := make(map[uint]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var items []models.Product
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	for _, p := range items {
		out[p.ID] = p
	}
	return out, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) (*models.Product, error) {
	if err := r.DB.WithContext(ctx).Create(prod).Error; err != nil {
		return nil, err
	}
	return prod, nil
}

func (r *GormRepo) AllProducts(ctx context.Context) ([]models.Product, error) {
	var items []models.Product
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
