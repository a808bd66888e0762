package repository

import (
	"context"

	"github.com/eatsplorer/eatsplorer-backend/internal/app/model"
	"github.com/eatsplorer/eatsplorer-backend/pkg/logger"
	"gorm.io/gorm"
)

type FavoriteRepository interface {
	Create(ctx context.Context, favorite *model.Favorite) error
	FindAll(ctx context.Context) ([]model.Favorite, error)
	Delete(ctx context.Context, username, establishmentName string) (int64, error)
}

type favoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) Create(ctx context.Context, favorite *model.Favorite) error {
	logger.Debug("Creating favorite in database", map[string]interface{}{
		"username":      favorite.Username,
		"establishment": favorite.EstablishmentName,
	})

	if err := r.db.WithContext(ctx).Create(favorite).Error; err != nil {
		logger.Error("Failed to create favorite in database", err, map[string]interface{}{
			"username":      favorite.Username,
			"establishment": favorite.EstablishmentName,
		})
		return err
	}
	return nil
}

func (r *favoriteRepository) FindAll(ctx context.Context) ([]model.Favorite, error) {
	var favorites []model.Favorite
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&favorites).Error; err != nil {
		logger.Error("Failed to list favorites", err)
		return nil, err
	}
	return favorites, nil
}

func (r *favoriteRepository) Delete(ctx context.Context, username, establishmentName string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where(byUserAndEstablishment(username, establishmentName)).
		Delete(&model.Favorite{})
	if res.Error != nil {
		logger.Error("Failed to delete favorite", res.Error, map[string]interface{}{
			"username":      username,
			"establishment": establishmentName,
		})
	}
	return res.RowsAffected, res.Error
}
