package repository

import (
	"context"

	"github.com/eatsplorer/eatsplorer-backend/internal/app/model"
	"gorm.io/gorm"
)

type AdminRepository interface {
	Create(ctx context.Context, admin *model.Admin) error
	FindByUsername(ctx context.Context, username string) (*model.Admin, error)
	FindByToken(ctx context.Context, token string) (*model.Admin, error)
}

type adminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) Create(ctx context.Context, admin *model.Admin) error {
	return r.db.WithContext(ctx).Create(admin).Error
}

func (r *adminRepository) FindByUsername(ctx context.Context, username string) (*model.Admin, error) {
	var admin model.Admin
	err := r.db.WithContext(ctx).Where(map[string]interface{}{"username": username}).First(&admin).Error
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *adminRepository) FindByToken(ctx context.Context, token string) (*model.Admin, error) {
	var admin model.Admin
	err := r.db.WithContext(ctx).Where(map[string]interface{}{"token": token}).First(&admin).Error
	if err != nil {
		return nil, err
	}
	return &admin, nil
}
