package service

import (
	"context"
	"errors"
	"sort"

	"github.com/eatsplorer/eatsplorer-backend/internal/app/model"
	"github.com/eatsplorer/eatsplorer-backend/internal/app/repository"
	"github.com/eatsplorer/eatsplorer-backend/pkg/logger"
	"github.com/eatsplorer/eatsplorer-backend/pkg/util"
	"gorm.io/gorm"
)

var ErrInvalidCoordinates = errors.New("invalid coordinates")

const (
	RankLimit   = 10
	FamousLimit = 3

	DefaultNearbyRadiusKm = 5.0
	MaxNearbyRadiusKm     = 100.0
)

// EstablishmentInput carries the writable columns of an establishment.
// Empty Logo or Image2 on update keeps the stored image.
type EstablishmentInput struct {
	Name        string
	Barangay    string
	Description string
	Location    string
	Phone       string
	Email       string
	Latitude    float64
	Longitude   float64
	Hours       model.WeeklyHours
	Logo        string
	Image2      string
}

// NearbyEstablishment is an establishment with its distance from the query point.
type NearbyEstablishment struct {
	model.Establishment
	DistanceKm float64 `json:"distance_km"`
}

type EstablishmentService interface {
	List(ctx context.Context, order repository.SortOrder) ([]model.Establishment, error)
	Top(ctx context.Context, limit int) ([]model.Establishment, error)
	Nearby(ctx context.Context, lat, lng, radiusKm float64) ([]NearbyEstablishment, error)
	Count(ctx context.Context) (int64, error)
	Get(ctx context.Context, id uint) (*model.Establishment, error)
	Create(ctx context.Context, input EstablishmentInput) (*model.Establishment, error)
	Update(ctx context.Context, id uint, input EstablishmentInput) (*model.Establishment, error)
	Delete(ctx context.Context, id uint) error
}

type establishmentService struct {
	db   *gorm.DB
	repo repository.EstablishmentRepository
}

func NewEstablishmentService(db *gorm.DB) EstablishmentService {
	return &establishmentService{
		db:   db,
		repo: repository.NewEstablishmentRepository(db),
	}
}

func (s *establishmentService) List(ctx context.Context, order repository.SortOrder) ([]model.Establishment, error) {
	return s.repo.List(ctx, order, 0)
}

func (s *establishmentService) Top(ctx context.Context, limit int) ([]model.Establishment, error) {
	return s.repo.List(ctx, repository.AveDescending, limit)
}

// Nearby returns establishments within radiusKm of (lat, lng), nearest first.
// Rows without usable coordinates are skipped.
func (s *establishmentService) Nearby(ctx context.Context, lat, lng, radiusKm float64) ([]NearbyEstablishment, error) {
	if !util.ValidCoordinates(lat, lng) {
		return nil, ErrInvalidCoordinates
	}
	if radiusKm <= 0 {
		radiusKm = DefaultNearbyRadiusKm
	}
	if radiusKm > MaxNearbyRadiusKm {
		radiusKm = MaxNearbyRadiusKm
	}

	all, err := s.repo.List(ctx, repository.AveDescending, 0)
	if err != nil {
		return nil, err
	}

	nearby := make([]NearbyEstablishment, 0)
	for _, e := range all {
		if !util.ValidCoordinates(e.Latitude, e.Longitude) {
			continue
		}
		d := util.DistanceKm(lat, lng, e.Latitude, e.Longitude)
		if d <= radiusKm {
			nearby = append(nearby, NearbyEstablishment{Establishment: e, DistanceKm: d})
		}
	}
	sort.SliceStable(nearby, func(i, j int) bool {
		if nearby[i].DistanceKm != nearby[j].DistanceKm {
			return nearby[i].DistanceKm < nearby[j].DistanceKm
		}
		return nearby[i].ID < nearby[j].ID
	})

	logger.Debug("Nearby establishments resolved", map[string]interface{}{
		"radius_km": radiusKm,
		"count":     len(nearby),
	})
	return nearby, nil
}

func (s *establishmentService) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func (s *establishmentService) Get(ctx context.Context, id uint) (*model.Establishment, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEstablishmentNotFound
		}
		return nil, err
	}
	return e, nil
}

func (in EstablishmentInput) apply(e *model.Establishment) {
	e.Name = in.Name
	e.Barangay = in.Barangay
	e.Description = in.Description
	e.Location = in.Location
	e.Phone = in.Phone
	e.Email = in.Email
	e.Latitude = in.Latitude
	e.Longitude = in.Longitude
	e.WeeklyHours = in.Hours
	if in.Logo != "" {
		e.Logo = in.Logo
	}
	if in.Image2 != "" {
		e.Image2 = in.Image2
	}
}

// Create inserts a new establishment with ave 0. When it is the first one
// with its name, ratings stored earlier for that name are linked and counted.
func (s *establishmentService) Create(ctx context.Context, input EstablishmentInput) (*model.Establishment, error) {
	logger.Info("Creating establishment", map[string]interface{}{
		"name": input.Name,
	})

	e := &model.Establishment{}
	input.apply(e)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		establishments := repository.NewEstablishmentRepository(tx)

		_, err := establishments.FindByName(ctx, input.Name, true)
		first := errors.Is(err, gorm.ErrRecordNotFound)
		if err != nil && !first {
			return err
		}

		if err := establishments.Create(ctx, e); err != nil {
			return err
		}
		if !first {
			return nil
		}

		linked, err := repository.NewRatingRepository(tx).LinkOrphans(ctx, e.Name, e.ID)
		if err != nil {
			return err
		}
		if linked > 0 {
			logger.Info("Linked earlier ratings to new establishment", map[string]interface{}{
				"establishment_id": e.ID,
				"ratings":          linked,
			})
			e.Ave = int(linked)
			return establishments.AdjustAve(ctx, e.ID, linked)
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to create establishment", err, map[string]interface{}{
			"name": input.Name,
		})
		return nil, err
	}

	logger.Info("Establishment created", map[string]interface{}{
		"establishment_id": e.ID,
	})
	return e, nil
}

// Update overwrites every column but ave. A rename carries the dependent
// rows along in the same transaction.
func (s *establishmentService) Update(ctx context.Context, id uint, input EstablishmentInput) (*model.Establishment, error) {
	logger.Info("Updating establishment", map[string]interface{}{
		"establishment_id": id,
	})

	var updated *model.Establishment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		establishments := repository.NewEstablishmentRepository(tx)

		e, err := establishments.LockByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEstablishmentNotFound
			}
			return err
		}

		oldName := e.Name
		input.apply(e)
		if err := establishments.Save(ctx, e); err != nil {
			return err
		}

		if oldName != e.Name {
			logger.Info("Establishment renamed", map[string]interface{}{
				"establishment_id": id,
				"old_name":         oldName,
				"new_name":         e.Name,
			})
			adopt := oldName
			if _, err := establishments.FindByName(ctx, oldName, false); err == nil {
				adopt = ""
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if adopt != "" {
				linked, err := repository.NewRatingRepository(tx).LinkOrphans(ctx, adopt, id)
				if err != nil {
					return err
				}
				if err := establishments.AdjustAve(ctx, id, linked); err != nil {
					return err
				}
				e.Ave += int(linked)
			}
			if err := establishments.RenameDependents(ctx, id, adopt, e.Name); err != nil {
				return err
			}
		}
		updated = e
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrEstablishmentNotFound) {
			logger.Error("Failed to update establishment", err, map[string]interface{}{
				"establishment_id": id,
			})
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes the establishment together with its ratings, favorites,
// pictures, menus and types.
func (s *establishmentService) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		establishments := repository.NewEstablishmentRepository(tx)

		e, err := establishments.LockByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEstablishmentNotFound
			}
			return err
		}

		if _, err := establishments.Delete(ctx, id); err != nil {
			return err
		}

		// Unlinked rows with the name only go when no other establishment claims it.
		name := e.Name
		if _, err := establishments.FindByName(ctx, name, false); err == nil {
			name = ""
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return establishments.DeleteDependents(ctx, id, name)
	})
	if err != nil {
		if !errors.Is(err, ErrEstablishmentNotFound) {
			logger.Error("Failed to delete establishment", err, map[string]interface{}{
				"establishment_id": id,
			})
		}
		return err
	}

	logger.Info("Establishment deleted", map[string]interface{}{
		"establishment_id": id,
	})
	return nil
}
