package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/lucaria/internal/models"
)

type GormRepo struct {
	DB *gorm.DB
}

func (r *GormRepo) Migrate(ctx context.Context) error {
	if err := r.DB.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
