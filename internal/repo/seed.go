package repo

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/lucaria/internal/models"
)

var seedDiscounts = []models.Discount{
	{Code: "SAVE10", Percent: decimal.NewFromInt(10)},
	{Code: "FALL25", Percent: decimal.NewFromInt(25)},
	{Code: "WELCOME5", Percent: decimal.NewFromInt(5)},
}

var seedProducts = []models.Product{
	{Name: "Slim Fit Jeans", Description: "Tapered denim with stretch comfort", Price: decimal.RequireFromString("59.99"), Image: "/images/jeans.jpg", Category: "Bottoms"},
	{Name: "Oversized Hoodie", Description: "Cozy fleece with front pocket", Price: decimal.RequireFromString("44.99"), Image: "/images/hoodie.jpg", Category: "Tops"},
	{Name: "Graphic Tee", Description: "Soft cotton with bold print", Price: decimal.RequireFromString("24.99"), Image: "/images/tee.jpg", Category: "Tops"},
}

// Seed inserts the default discount codes when missing and the starter
// catalog when the products table is empty.
func (r *GormRepo) Seed(ctx context.Context) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		discounts := make([]models.Discount, len(seedDiscounts))
		copy(discounts, seedDiscounts)
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&discounts).Error; err != nil {
			return fmt.Errorf("seed discounts: %w", err)
		}

		var n int64
		if err := tx.Model(&models.Product{}).Count(&n).Error; err != nil {
			return fmt.Errorf("count products: %w", err)
		}
		if n > 0 {
			return nil
		}

		products := make([]models.Product, len(seedProducts))
		copy(products, seedProducts)
		if err := tx.Create(&products).Error; err != nil {
			return fmt.Errorf("seed products: %w", err)
		}
		return nil
	})
}
