package service

import (
	"context"
	"errors"

	"github.com/eatsplorer/eatsplorer-backend/internal/app/model"
	"github.com/eatsplorer/eatsplorer-backend/internal/app/repository"
	"github.com/eatsplorer/eatsplorer-backend/pkg/logger"
)

var ErrMediaNotFound = errors.New("media not found")

// GalleryService manages pictures, menus and cuisine tags. Each row is
// linked to the establishment with the same name when one exists.
type GalleryService interface {
	AddPicture(ctx context.Context, establishmentName, image string) (*model.Picture, error)
	ListPictures(ctx context.Context) ([]model.Picture, error)
	DeletePicture(ctx context.Context, id uint) error

	AddMenu(ctx context.Context, establishmentName, image string) (*model.Menu, error)
	ListMenus(ctx context.Context) ([]model.Menu, error)
	DeleteMenu(ctx context.Context, id uint) error

	AddCuisine(ctx context.Context, establishmentName, cuisineType string) (*model.Cuisine, error)
	ListCuisines(ctx context.Context) ([]model.Cuisine, error)
	DeleteCuisine(ctx context.Context, id uint) error
}

type galleryService struct {
	repo           repository.GalleryRepository
	establishments repository.EstablishmentRepository
}

func NewGalleryService(repo repository.GalleryRepository, establishments repository.EstablishmentRepository) GalleryService {
	return &galleryService{
		repo:           repo,
		establishments: establishments,
	}
}

func deleted(n int64, err error) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMediaNotFound
	}
	return nil
}

func (s *galleryService) AddPicture(ctx context.Context, establishmentName, image string) (*model.Picture, error) {
	estID, err := resolveEstablishmentID(ctx, s.establishments, establishmentName)
	if err != nil {
		return nil, err
	}
	picture := &model.Picture{EstablishmentName: establishmentName, Image: image, EstablishmentID: estID}
	if err := s.repo.CreatePicture(ctx, picture); err != nil {
		return nil, err
	}
	logger.Info("Picture added", map[string]interface{}{
		"picture_id":    picture.ID,
		"establishment": establishmentName,
	})
	return picture, nil
}

func (s *galleryService) ListPictures(ctx context.Context) ([]model.Picture, error) {
	return s.repo.ListPictures(ctx)
}

func (s *galleryService) DeletePicture(ctx context.Context, id uint) error {
	return deleted(s.repo.DeletePicture(ctx, id))
}

func (s *galleryService) AddMenu(ctx context.Context, establishmentName, image string) (*model.Menu, error) {
	estID, err := resolveEstablishmentID(ctx, s.establishments, establishmentName)
	if err != nil {
		return nil, err
	}
	menu := &model.Menu{EstablishmentName: establishmentName, Image: image, EstablishmentID: estID}
	if err := s.repo.CreateMenu(ctx, menu); err != nil {
		return nil, err
	}
	logger.Info("Menu added", map[string]interface{}{
		"menu_id":       menu.ID,
		"establishment": establishmentName,
	})
	return menu, nil
}

func (s *galleryService) ListMenus(ctx context.Context) ([]model.Menu, error) {
	return s.repo.ListMenus(ctx)
}

func (s *galleryService) DeleteMenu(ctx context.Context, id uint) error {
	return deleted(s.repo.DeleteMenu(ctx, id))
}

func (s *galleryService) AddCuisine(ctx context.Context, establishmentName, cuisineType string) (*model.Cuisine, error) {
	estID, err := resolveEstablishmentID(ctx, s.establishments, establishmentName)
	if err != nil {
		return nil, err
	}
	cuisine := &model.Cuisine{EstablishmentName: establishmentName, Type: cuisineType, EstablishmentID: estID}
	if err := s.repo.CreateCuisine(ctx, cuisine); err != nil {
		return nil, err
	}
	return cuisine, nil
}

func (s *galleryService) ListCuisines(ctx context.Context) ([]model.Cuisine, error) {
	return s.repo.ListCuisines(ctx)
}

func (s *galleryService) DeleteCuisine(ctx context.Context, id uint) error {
	return deleted(s.repo.DeleteCuisine(ctx, id))
}
