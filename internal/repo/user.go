package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/lucaria/internal/models"
)

var ErrUserAlreadyExist = errors.New("user already exist")

func (r *GormRepo) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GormRepo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	err := r.DB.WithContext(ctx).Create(u).Error
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrUserAlreadyExist
	}
	// not every dialector translates unique violations
	if taken, terr := r.UsernameTaken(ctx, u.Username); terr == nil && taken {
		return ErrUserAlreadyExist
	}
	return err
}

func (r *GormRepo) PromoteAdmins(ctx context.Context, usernames []string) (int64, error) {
	if len(usernames) == 0 {
		return 0, nil
	}
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("username IN ? AND role <> ?", usernames, models.RoleAdmin).
		Update("role", models.RoleAdmin)
	return res.RowsAffected, res.Error
}
