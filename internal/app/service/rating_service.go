package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/eatsplorer/eatsplorer-backend/internal/app/model"
	"github.com/eatsplorer/eatsplorer-backend/internal/app/repository"
	"github.com/eatsplorer/eatsplorer-backend/internal/metrics"
	"github.com/eatsplorer/eatsplorer-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrEstablishmentNotFound = errors.New("establishment not found")
	ErrRatingNotFound        = errors.New("rating not found")
)

// Rating feed event types.
const (
	EventRatingCreated = "rating_created"
	EventRatingUpdated = "rating_updated"
	EventRatingDeleted = "rating_deleted"
)

// EventPublisher receives rating events after the owning transaction commits.
type EventPublisher interface {
	Publish(eventType, establishment string, data interface{})
}

type noopPublisher struct{}

func (noopPublisher) Publish(string, string, interface{}) {}

// ReconcileReport summarizes one reconcile run.
type ReconcileReport struct {
	Establishments int   `json:"establishments"`
	Relinked       int64 `json:"relinked"`
	Corrected      int   `json:"corrected"`
}

// RatingService owns every write that touches an establishment's ave.
// ave must equal the number of ratings linked to the establishment.
type RatingService interface {
	CreateRating(ctx context.Context, username, comment string, score int, establishmentName string) (*model.Rating, error)
	UpdateRating(ctx context.Context, username, establishmentName, comment string, score int) (*model.Rating, error)
	DeleteRating(ctx context.Context, username, establishmentName string) (int64, error)
	DeleteRatingByID(ctx context.Context, id uint) error
	ListRatings(ctx context.Context) ([]model.Rating, error)
	CountRatings(ctx context.Context) (int64, error)
	Reconcile(ctx context.Context) (*ReconcileReport, error)
}

type ratingService struct {
	db     *gorm.DB
	events EventPublisher
	now    func() time.Time
}

func NewRatingService(db *gorm.DB, events EventPublisher) RatingService {
	if events == nil {
		events = noopPublisher{}
	}
	return &ratingService{
		db:     db,
		events: events,
		now:    time.Now,
	}
}

// CreateRating locks the establishment, bumps ave and inserts the rating in
// one transaction. An unknown name still stores the rating, unlinked.
func (s *ratingService) CreateRating(ctx context.Context, username, comment string, score int, establishmentName string) (*model.Rating, error) {
	logger.Info("Creating rating", map[string]interface{}{
		"username":      username,
		"establishment": establishmentName,
	})

	rating := &model.Rating{
		Username:          username,
		Comment:           comment,
		Score:             score,
		RateDate:          s.now(),
		EstablishmentName: establishmentName,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		establishments := repository.NewEstablishmentRepository(tx)
		ratings := repository.NewRatingRepository(tx)

		est, err := establishments.FindByName(ctx, establishmentName, true)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			est = nil
		case err != nil:
			return err
		}

		if est != nil {
			if err := establishments.AdjustAve(ctx, est.ID, 1); err != nil {
				return err
			}
			id := est.ID
			rating.EstablishmentID = &id
		}

		return ratings.Create(ctx, rating)
	})
	if err != nil {
		metrics.RecordRatingOperation("create", "error")
		logger.Error("Failed to create rating", err, map[string]interface{}{
			"username":      username,
			"establishment": establishmentName,
		})
		return nil, err
	}

	if rating.EstablishmentID == nil {
		metrics.OrphanRatings.Inc()
		logger.Warn("Rating stored without a matching establishment", map[string]interface{}{
			"rating_id":     rating.ID,
			"establishment": establishmentName,
		})
	}
	metrics.RecordRatingOperation("create", "ok")
	s.events.Publish(EventRatingCreated, establishmentName, rating)

	logger.Info("Rating created", map[string]interface{}{
		"rating_id":     rating.ID,
		"establishment": establishmentName,
	})
	return rating, nil
}

// UpdateRating rewrites comment, score and date of the user's ratings for
// the establishment. ave is left alone.
func (s *ratingService) UpdateRating(ctx context.Context, username, establishmentName, comment string, score int) (*model.Rating, error) {
	now := s.now()
	n, err := repository.NewRatingRepository(s.db).UpdateByUserAndEstablishment(ctx, username, establishmentName, map[string]interface{}{
		"Comment":   comment,
		"Ratings":   score,
		"Rate_date": now,
	})
	if err != nil {
		metrics.RecordRatingOperation("update", "error")
		return nil, err
	}
	if n == 0 {
		metrics.RecordRatingOperation("update", "not_found")
		logger.Warn("No rating to update", map[string]interface{}{
			"username":      username,
			"establishment": establishmentName,
		})
		return nil, ErrRatingNotFound
	}

	rating := &model.Rating{
		Username:          username,
		Comment:           comment,
		Score:             score,
		RateDate:          now,
		EstablishmentName: establishmentName,
	}
	metrics.RecordRatingOperation("update", "ok")
	s.events.Publish(EventRatingUpdated, establishmentName, rating)

	logger.Info("Rating updated", map[string]interface{}{
		"username":      username,
		"establishment": establishmentName,
		"rows":          n,
	})
	return rating, nil
}

// DeleteRating removes the user's ratings for the establishment and takes
// the linked ones off its ave. It returns the number of rows deleted.
func (s *ratingService) DeleteRating(ctx context.Context, username, establishmentName string) (int64, error) {
	logger.Info("Deleting rating", map[string]interface{}{
		"username":      username,
		"establishment": establishmentName,
	})

	var deleted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		establishments := repository.NewEstablishmentRepository(tx)
		ratings := repository.NewRatingRepository(tx)

		est, err := establishments.FindByName(ctx, establishmentName, true)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEstablishmentNotFound
			}
			return err
		}

		linked, err := ratings.CountLinkedByEstablishment(ctx, username, establishmentName)
		if err != nil {
			return err
		}

		// est is already locked; lock the other owners in id order.
		owners := make([]uint, 0, len(linked))
		for id := range linked {
			owners = append(owners, id)
		}
		sort.Slice(owners, func(i, j int) bool { return owners[i] < owners[j] })
		for _, id := range owners {
			if id == est.ID {
				continue
			}
			if _, err := establishments.LockByID(ctx, id); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		deleted, err = ratings.DeleteByUserAndEstablishment(ctx, username, establishmentName)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return ErrRatingNotFound
		}

		for _, id := range owners {
			if err := establishments.AdjustAve(ctx, id, -linked[id]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrEstablishmentNotFound), errors.Is(err, ErrRatingNotFound):
			metrics.RecordRatingOperation("delete", "not_found")
			logger.Warn("Rating delete found nothing", map[string]interface{}{
				"username":      username,
				"establishment": establishmentName,
				"reason":        err.Error(),
			})
		default:
			metrics.RecordRatingOperation("delete", "error")
			logger.Error("Failed to delete rating", err, map[string]interface{}{
				"username":      username,
				"establishment": establishmentName,
			})
		}
		return 0, err
	}

	metrics.RecordRatingOperation("delete", "ok")
	s.events.Publish(EventRatingDeleted, establishmentName, map[string]interface{}{
		"username": username,
		"feName":   establishmentName,
		"deleted":  deleted,
	})

	logger.Info("Rating deleted", map[string]interface{}{
		"username":      username,
		"establishment": establishmentName,
		"rows":          deleted,
	})
	return deleted, nil
}

// DeleteRatingByID removes one rating and, when it was linked, decrements
// its establishment.
func (s *ratingService) DeleteRatingByID(ctx context.Context, id uint) error {
	var rating *model.Rating
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ratings := repository.NewRatingRepository(tx)

		var err error
		rating, err = ratings.FindByID(ctx, id, true)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRatingNotFound
			}
			return err
		}

		if _, err := ratings.DeleteByID(ctx, id); err != nil {
			return err
		}
		if rating.EstablishmentID == nil {
			return nil
		}
		return repository.NewEstablishmentRepository(tx).AdjustAve(ctx, *rating.EstablishmentID, -1)
	})
	if err != nil {
		if errors.Is(err, ErrRatingNotFound) {
			metrics.RecordRatingOperation("delete_by_id", "not_found")
			return err
		}
		metrics.RecordRatingOperation("delete_by_id", "error")
		logger.Error("Failed to delete rating by id", err, map[string]interface{}{
			"rating_id": id,
		})
		return err
	}

	metrics.RecordRatingOperation("delete_by_id", "ok")
	s.events.Publish(EventRatingDeleted, rating.EstablishmentName, rating)
	logger.Info("Rating deleted by id", map[string]interface{}{
		"rating_id": id,
	})
	return nil
}

func (s *ratingService) ListRatings(ctx context.Context) ([]model.Rating, error) {
	return repository.NewRatingRepository(s.db).FindAll(ctx)
}

func (s *ratingService) CountRatings(ctx context.Context) (int64, error) {
	return repository.NewRatingRepository(s.db).Count(ctx)
}

// Reconcile links orphan ratings to the lowest id establishment with their
// name, then resets every ave that disagrees with its linked count. Each
// correction is re-counted under the row lock so concurrent writes are not lost.
func (s *ratingService) Reconcile(ctx context.Context) (*ReconcileReport, error) {
	report, err := s.reconcile(ctx)
	corrected := 0
	if report != nil {
		corrected = report.Corrected
	}
	metrics.RecordReconcile(corrected, err)
	if err != nil {
		logger.Error("Reconcile failed", err)
		return nil, err
	}

	logger.Info("Reconcile finished", map[string]interface{}{
		"establishments": report.Establishments,
		"relinked":       report.Relinked,
		"corrected":      report.Corrected,
	})
	return report, nil
}

func (s *ratingService) reconcile(ctx context.Context) (*ReconcileReport, error) {
	establishments := repository.NewEstablishmentRepository(s.db)
	ratings := repository.NewRatingRepository(s.db)

	list, err := establishments.List(ctx, repository.AveDescending, 0)
	if err != nil {
		return nil, err
	}
	report := &ReconcileReport{Establishments: len(list)}

	owner := make(map[string]uint, len(list))
	for _, e := range list {
		if id, ok := owner[e.Name]; !ok || e.ID < id {
			owner[e.Name] = e.ID
		}
	}
	for name, id := range owner {
		n, err := ratings.LinkOrphans(ctx, name, id)
		if err != nil {
			return nil, err
		}
		report.Relinked += n
	}

	counts, err := ratings.CountPerEstablishment(ctx)
	if err != nil {
		return nil, err
	}

	for _, e := range list {
		if int64(e.Ave) == counts[e.ID] {
			continue
		}
		fixed, err := s.correct(ctx, e.ID)
		if err != nil {
			return nil, err
		}
		if fixed {
			report.Corrected++
		}
	}
	return report, nil
}

func (s *ratingService) correct(ctx context.Context, id uint) (bool, error) {
	fixed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		establishments := repository.NewEstablishmentRepository(tx)

		e, err := establishments.LockByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		want, err := repository.NewRatingRepository(tx).CountByEstablishment(ctx, id)
		if err != nil {
			return err
		}
		if int64(e.Ave) == want {
			return nil
		}

		logger.Warn("Correcting establishment aggregate", map[string]interface{}{
			"establishment_id": id,
			"ave":              e.Ave,
			"linked_ratings":   want,
		})
		fixed = true
		return establishments.SetAve(ctx, id, want)
	})
	return fixed, err
}
