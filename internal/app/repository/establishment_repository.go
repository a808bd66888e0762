package repository

import (
	"context"

	"github.com/eatsplorer/eatsplorer-backend/internal/app/model"
	"github.com/eatsplorer/eatsplorer-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SortOrder of the aggregate listings. Ties always fall back to id ascending.
type SortOrder int

const (
	AveDescending SortOrder = iota
	AveAscending
)

type EstablishmentRepository interface {
	Create(ctx context.Context, e *model.Establishment) error
	Save(ctx context.Context, e *model.Establishment) error
	FindByID(ctx context.Context, id uint) (*model.Establishment, error)
	LockByID(ctx context.Context, id uint) (*model.Establishment, error)
	FindByName(ctx context.Context, name string, forUpdate bool) (*model.Establishment, error)
	List(ctx context.Context, order SortOrder, limit int) ([]model.Establishment, error)
	Count(ctx context.Context) (int64, error)
	AdjustAve(ctx context.Context, id uint, delta int64) error
	SetAve(ctx context.Context, id uint, ave int64) error
	Delete(ctx context.Context, id uint) (int64, error)
	RenameDependents(ctx context.Context, id uint, oldName, newName string) error
	DeleteDependents(ctx context.Context, id uint, name string) error
}

type establishmentRepository struct {
	db *gorm.DB
}

func NewEstablishmentRepository(db *gorm.DB) EstablishmentRepository {
	return &establishmentRepository{db: db}
}

// byName matches the legacy name column; map conditions keep the
// mixed-case column quoted on every dialect.
func byName(name string) map[string]interface{} {
	return map[string]interface{}{"feName": name}
}

func (r *establishmentRepository) Create(ctx context.Context, e *model.Establishment) error {
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		logger.Error("Failed to create establishment", err, map[string]interface{}{
			"name": e.Name,
		})
		return err
	}
	logger.Debug("Establishment created", map[string]interface{}{
		"establishment_id": e.ID,
		"name":             e.Name,
	})
	return nil
}

// Save overwrites every column except ave, which only the rating operations move.
func (r *establishmentRepository) Save(ctx context.Context, e *model.Establishment) error {
	err := r.db.WithContext(ctx).Model(e).Select("*").Omit("id", "ave").Updates(e).Error
	if err != nil {
		logger.Error("Failed to update establishment", err, map[string]interface{}{
			"establishment_id": e.ID,
		})
		return err
	}
	return nil
}

func (r *establishmentRepository) FindByID(ctx context.Context, id uint) (*model.Establishment, error) {
	var e model.Establishment
	if err := r.db.WithContext(ctx).First(&e, id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// LockByID reads the row with SELECT ... FOR UPDATE; call it inside a transaction.
func (r *establishmentRepository) LockByID(ctx context.Context, id uint) (*model.Establishment, error) {
	var e model.Establishment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&e, id).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// FindByName returns the lowest id establishment with the given name. With
// forUpdate the row stays locked until the surrounding transaction ends.
func (r *establishmentRepository) FindByName(ctx context.Context, name string, forUpdate bool) (*model.Establishment, error) {
	logger.Debug("Finding establishment by name", map[string]interface{}{
		"name":       name,
		"for_update": forUpdate,
	})

	q := r.db.WithContext(ctx)
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var e model.Establishment
	if err := q.Where(byName(name)).Order("id ASC").First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// List returns establishments ordered by ave; limit <= 0 means all.
func (r *establishmentRepository) List(ctx context.Context, order SortOrder, limit int) ([]model.Establishment, error) {
	q := r.db.WithContext(ctx)
	if order == AveAscending {
		q = q.Order("ave ASC")
	} else {
		q = q.Order("ave DESC")
	}
	q = q.Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var list []model.Establishment
	if err := q.Find(&list).Error; err != nil {
		logger.Error("Failed to list establishments", err, map[string]interface{}{
			"limit": limit,
		})
		return nil, err
	}
	return list, nil
}

func (r *establishmentRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Establishment{}).Count(&n).Error
	return n, err
}

// AdjustAve moves ave by delta in a single statement. Decrements stop at zero.
func (r *establishmentRepository) AdjustAve(ctx context.Context, id uint, delta int64) error {
	if delta == 0 {
		return nil
	}

	expr := gorm.Expr("ave + ?", delta)
	if delta < 0 {
		expr = gorm.Expr("CASE WHEN ave > ? THEN ave - ? ELSE 0 END", -delta, -delta)
	}

	err := r.db.WithContext(ctx).
		Model(&model.Establishment{}).
		Where("id = ?", id).
		UpdateColumn("ave", expr).Error
	if err != nil {
		logger.Error("Failed to adjust establishment aggregate", err, map[string]interface{}{
			"establishment_id": id,
			"delta":            delta,
		})
		return err
	}
	return nil
}

func (r *establishmentRepository) SetAve(ctx context.Context, id uint, ave int64) error {
	return r.db.WithContext(ctx).
		Model(&model.Establishment{}).
		Where("id = ?", id).
		UpdateColumn("ave", ave).Error
}

func (r *establishmentRepository) Delete(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&model.Establishment{}, id)
	if res.Error != nil {
		logger.Error("Failed to delete establishment", res.Error, map[string]interface{}{
			"establishment_id": id,
		})
	}
	return res.RowsAffected, res.Error
}

// dependents are the tables that reference an establishment by name and id.
var dependents = []interface{}{
	&model.Rating{},
	&model.Favorite{},
	&model.Picture{},
	&model.Menu{},
	&model.Cuisine{},
}

// RenameDependents keeps the legacy name column of linked rows in step with
// a rename. Unlinked rows carrying oldName are adopted unless oldName is empty.
func (r *establishmentRepository) RenameDependents(ctx context.Context, id uint, oldName, newName string) error {
	for _, m := range dependents {
		q := r.db.WithContext(ctx).Model(m).Where("establishment_id = ?", id)
		if oldName != "" {
			q = q.Or(map[string]interface{}{"feName": oldName, "establishment_id": nil})
		}
		err := q.Updates(map[string]interface{}{"feName": newName, "establishment_id": id}).Error
		if err != nil {
			logger.Error("Failed to rename dependent rows", err, map[string]interface{}{
				"establishment_id": id,
			})
			return err
		}
	}
	return nil
}

// DeleteDependents removes rows linked by id and, when name is not empty,
// unlinked rows with that name.
func (r *establishmentRepository) DeleteDependents(ctx context.Context, id uint, name string) error {
	for _, m := range dependents {
		q := r.db.WithContext(ctx).Where("establishment_id = ?", id)
		if name != "" {
			q = q.Or(map[string]interface{}{"feName": name, "establishment_id": nil})
		}
		if err := q.Delete(m).Error; err != nil {
			logger.Error("Failed to delete dependent rows", err, map[string]interface{}{
				"establishment_id": id,
			})
			return err
		}
	}
	return nil
}
