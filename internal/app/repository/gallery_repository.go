package repository

import (
	"context"

	"github.com/eatsplorer/eatsplorer-backend/internal/app/model"
	"github.com/eatsplorer/eatsplorer-backend/pkg/logger"
	"gorm.io/gorm"
)

// GalleryRepository stores the per-establishment pictures, menus and cuisine tags.
type GalleryRepository interface {
	CreatePicture(ctx context.Context, p *model.Picture) error
	ListPictures(ctx context.Context) ([]model.Picture, error)
	DeletePicture(ctx context.Context, id uint) (int64, error)

	CreateMenu(ctx context.Context, m *model.Menu) error
	ListMenus(ctx context.Context) ([]model.Menu, error)
	DeleteMenu(ctx context.Context, id uint) (int64, error)

	CreateCuisine(ctx context.Context, c *model.Cuisine) error
	ListCuisines(ctx context.Context) ([]model.Cuisine, error)
	DeleteCuisine(ctx context.Context, id uint) (int64, error)
}

type galleryRepository struct {
	db *gorm.DB
}

func NewGalleryRepository(db *gorm.DB) GalleryRepository {
	return &galleryRepository{db: db}
}

func (r *galleryRepository) create(ctx context.Context, kind string, row interface{}) error {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		logger.Error("Failed to create gallery row", err, map[string]interface{}{
			"kind": kind,
		})
		return err
	}
	return nil
}

func (r *galleryRepository) list(ctx context.Context, kind string, dest interface{}) error {
	if err := r.db.WithContext(ctx).Order("id ASC").Find(dest).Error; err != nil {
		logger.Error("Failed to list gallery rows", err, map[string]interface{}{
			"kind": kind,
		})
		return err
	}
	return nil
}

func (r *galleryRepository) delete(ctx context.Context, kind string, row interface{}, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Delete(row, id)
	if res.Error != nil {
		logger.Error("Failed to delete gallery row", res.Error, map[string]interface{}{
			"kind": kind,
			"id":   id,
		})
	}
	return res.RowsAffected, res.Error
}

func (r *galleryRepository) CreatePicture(ctx context.Context, p *model.Picture) error {
	return r.create(ctx, "picture", p)
}

func (r *galleryRepository) ListPictures(ctx context.Context) ([]model.Picture, error) {
	var list []model.Picture
	return list, r.list(ctx, "picture", &list)
}

func (r *galleryRepository) DeletePicture(ctx context.Context, id uint) (int64, error) {
	return r.delete(ctx, "picture", &model.Picture{}, id)
}

func (r *galleryRepository) CreateMenu(ctx context.Context, m *model.Menu) error {
	return r.create(ctx, "menu", m)
}

func (r *galleryRepository) ListMenus(ctx context.Context) ([]model.Menu, error) {
	var list []model.Menu
	return list, r.list(ctx, "menu", &list)
}

func (r *galleryRepository) DeleteMenu(ctx context.Context, id uint) (int64, error) {
	return r.delete(ctx, "menu", &model.Menu{}, id)
}

func (r *galleryRepository) CreateCuisine(ctx context.Context, c *model.Cuisine) error {
	return r.create(ctx, "cuisine", c)
}

func (r *galleryRepository) ListCuisines(ctx context.Context) ([]model.Cuisine, error) {
	var list []model.Cuisine
	return list, r.list(ctx, "cuisine", &list)
}

func (r *galleryRepository) DeleteCuisine(ctx context.Context, id uint) (int64, error) {
	return r.delete(ctx, "cuisine", &model.Cuisine{}, id)
}
