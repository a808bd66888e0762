package repository

import (
	"context"

	"github.com/eatsplorer/eatsplorer-backend/internal/app/model"
	"github.com/eatsplorer/eatsplorer-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RatingRepository interface {
	Create(ctx context.Context, rating *model.Rating) error
	FindAll(ctx context.Context) ([]model.Rating, error)
	FindByID(ctx context.Context, id uint, forUpdate bool) (*model.Rating, error)
	Count(ctx context.Context) (int64, error)
	CountByEstablishment(ctx context.Context, establishmentID uint) (int64, error)
	CountLinkedByEstablishment(ctx context.Context, username, establishmentName string) (map[uint]int64, error)
	UpdateByUserAndEstablishment(ctx context.Context, username, establishmentName string, fields map[string]interface{}) (int64, error)
	DeleteByUserAndEstablishment(ctx context.Context, username, establishmentName string) (int64, error)
	DeleteByID(ctx context.Context, id uint) (int64, error)
	LinkOrphans(ctx context.Context, establishmentName string, establishmentID uint) (int64, error)
	CountPerEstablishment(ctx context.Context) (map[uint]int64, error)
}

type ratingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

func byUserAndEstablishment(username, establishmentName string) map[string]interface{} {
	return map[string]interface{}{"username": username, "feName": establishmentName}
}

func (r *ratingRepository) Create(ctx context.Context, rating *model.Rating) error {
	logger.Debug("Creating rating in database", map[string]interface{}{
		"username":      rating.Username,
		"establishment": rating.EstablishmentName,
	})

	if err := r.db.WithContext(ctx).Create(rating).Error; err != nil {
		logger.Error("Failed to create rating in database", err, map[string]interface{}{
			"username":      rating.Username,
			"establishment": rating.EstablishmentName,
		})
		return err
	}
	return nil
}

func (r *ratingRepository) FindAll(ctx context.Context) ([]model.Rating, error) {
	var ratings []model.Rating
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&ratings).Error; err != nil {
		logger.Error("Failed to list ratings", err)
		return nil, err
	}
	return ratings, nil
}

func (r *ratingRepository) FindByID(ctx context.Context, id uint, forUpdate bool) (*model.Rating, error) {
	q := r.db.WithContext(ctx)
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var rating model.Rating
	if err := q.First(&rating, id).Error; err != nil {
		return nil, err
	}
	return &rating, nil
}

func (r *ratingRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Rating{}).Count(&n).Error
	return n, err
}

func (r *ratingRepository) CountByEstablishment(ctx context.Context, establishmentID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Rating{}).
		Where("establishment_id = ?", establishmentID).
		Count(&n).Error
	return n, err
}

// CountLinkedByEstablishment counts the user's linked ratings carrying the name,
// keyed by the establishment each one was counted into. After a rename onto a
// taken name the rows can belong to more than one establishment.
func (r *ratingRepository) CountLinkedByEstablishment(ctx context.Context, username, establishmentName string) (map[uint]int64, error) {
	var rows []struct {
		EstablishmentID uint
		Total           int64
	}
	err := r.db.WithContext(ctx).Model(&model.Rating{}).
		Select("establishment_id, COUNT(*) AS total").
		Where(byUserAndEstablishment(username, establishmentName)).
		Where("establishment_id IS NOT NULL").
		Group("establishment_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.EstablishmentID] = row.Total
	}
	return counts, nil
}

func (r *ratingRepository) UpdateByUserAndEstablishment(ctx context.Context, username, establishmentName string, fields map[string]interface{}) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Rating{}).
		Where(byUserAndEstablishment(username, establishmentName)).
		Updates(fields)
	if res.Error != nil {
		logger.Error("Failed to update rating", res.Error, map[string]interface{}{
			"username":      username,
			"establishment": establishmentName,
		})
	}
	return res.RowsAffected, res.Error
}

func (r *ratingRepository) DeleteByUserAndEstablishment(ctx context.Context, username, establishmentName string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where(byUserAndEstablishment(username, establishmentName)).
		Delete(&model.Rating{})
	if res.Error != nil {
		logger.Error("Failed to delete ratings", res.Error, map[string]interface{}{
			"username":      username,
			"establishment": establishmentName,
		})
	}
	return res.RowsAffected, res.Error
}

func (r *ratingRepository) DeleteByID(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&model.Rating{}, id)
	return res.RowsAffected, res.Error
}

// LinkOrphans attaches unlinked ratings carrying establishmentName to establishmentID.
func (r *ratingRepository) LinkOrphans(ctx context.Context, establishmentName string, establishmentID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Rating{}).
		Where(map[string]interface{}{"feName": establishmentName, "establishment_id": nil}).
		UpdateColumn("establishment_id", establishmentID)
	return res.RowsAffected, res.Error
}

// CountPerEstablishment returns the number of linked ratings keyed by establishment id.
func (r *ratingRepository) CountPerEstablishment(ctx context.Context) (map[uint]int64, error) {
	var rows []struct {
		EstablishmentID uint
		Total           int64
	}
	err := r.db.WithContext(ctx).Model(&model.Rating{}).
		Select("establishment_id, COUNT(*) AS total").
		Where("establishment_id IS NOT NULL").
		Group("establishment_id").
		Scan(&rows).Error
	if err != nil {
		logger.Error("Failed to count ratings per establishment", err)
		return nil, err
	}

	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.EstablishmentID] = row.Total
	}
	return counts, nil
}
