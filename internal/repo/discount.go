package repo

import (
	"context"

	"github.com/Skotchmaster/lucaria/internal/models"
)

func (r *GormRepo) GetDiscount(ctx context.Context, code string) (*models.Discount, error) {
	var d models.Discount
	if err := r.DB.WithContext(ctx).Where("code = ?", code).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}
