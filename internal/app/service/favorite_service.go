package service

import (
	"context"
	"errors"

	"github.com/eatsplorer/eatsplorer-backend/internal/app/model"
	"github.com/eatsplorer/eatsplorer-backend/internal/app/repository"
	"github.com/eatsplorer/eatsplorer-backend/pkg/logger"
	"gorm.io/gorm"
)

var ErrFavoriteNotFound = errors.New("favorite not found")

// FavoriteInput is the bookmark plus the display fields copied at save time.
type FavoriteInput struct {
	Username          string
	EstablishmentName string
	Type              string
	Barangay          string
	Logo              string
}

type FavoriteService interface {
	Add(ctx context.Context, input FavoriteInput) (*model.Favorite, error)
	Remove(ctx context.Context, username, establishmentName string) error
	List(ctx context.Context) ([]model.Favorite, error)
}

type favoriteService struct {
	repo           repository.FavoriteRepository
	establishments repository.EstablishmentRepository
}

func NewFavoriteService(repo repository.FavoriteRepository, establishments repository.EstablishmentRepository) FavoriteService {
	return &favoriteService{
		repo:           repo,
		establishments: establishments,
	}
}

// resolveEstablishmentID returns the id of the lowest id establishment named
// name, or nil when there is none.
func resolveEstablishmentID(ctx context.Context, repo repository.EstablishmentRepository, name string) (*uint, error) {
	est, err := repo.FindByName(ctx, name, false)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	id := est.ID
	return &id, nil
}

func (s *favoriteService) Add(ctx context.Context, input FavoriteInput) (*model.Favorite, error) {
	estID, err := resolveEstablishmentID(ctx, s.establishments, input.EstablishmentName)
	if err != nil {
		return nil, err
	}

	favorite := &model.Favorite{
		Username:          input.Username,
		EstablishmentName: input.EstablishmentName,
		Type:              input.Type,
		Barangay:          input.Barangay,
		Logo:              input.Logo,
		EstablishmentID:   estID,
	}
	if err := s.repo.Create(ctx, favorite); err != nil {
		return nil, err
	}

	logger.Info("Favorite added", map[string]interface{}{
		"favorite_id":   favorite.ID,
		"username":      input.Username,
		"establishment": input.EstablishmentName,
	})
	return favorite, nil
}

func (s *favoriteService) Remove(ctx context.Context, username, establishmentName string) error {
	n, err := s.repo.Delete(ctx, username, establishmentName)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrFavoriteNotFound
	}
	return nil
}

func (s *favoriteService) List(ctx context.Context) ([]model.Favorite, error) {
	return s.repo.FindAll(ctx)
}
