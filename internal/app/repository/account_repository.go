package repository

import (
	"context"

	"github.com/eatsplorer/eatsplorer-backend/internal/app/model"
	"github.com/eatsplorer/eatsplorer-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	FindByUsername(ctx context.Context, username string) (*model.Account, error)
	FindByID(ctx context.Context, id uint) (*model.Account, error)
	FindAll(ctx context.Context) ([]model.Account, error)
	ListEmails(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int64, error)
	UpdatePasswordByEmail(ctx context.Context, email, passwordHash string) (int64, error)
	Delete(ctx context.Context, id uint) (int64, error)
}

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, account *model.Account) error {
	logger.Debug("Creating account in database", map[string]interface{}{
		"username": account.Username,
	})

	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		logger.Error("Failed to create account in database", err, map[string]interface{}{
			"username": account.Username,
		})
		return err
	}
	return nil
}

func (r *accountRepository) FindByUsername(ctx context.Context, username string) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).
		Where(map[string]interface{}{"Username": username}).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) FindByID(ctx context.Context, id uint) (*model.Account, error) {
	var account model.Account
	if err := r.db.WithContext(ctx).First(&account, id).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) FindAll(ctx context.Context) ([]model.Account, error) {
	var accounts []model.Account
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&accounts).Error; err != nil {
		logger.Error("Failed to list accounts", err)
		return nil, err
	}
	return accounts, nil
}

// ListEmails returns every non-empty account email.
func (r *accountRepository) ListEmails(ctx context.Context) ([]string, error) {
	var emails []string
	err := r.db.WithContext(ctx).Model(&model.Account{}).
		Where(clause.Neq{Column: "Email", Value: ""}).
		Order("id ASC").
		Pluck("Email", &emails).Error
	if err != nil {
		logger.Error("Failed to list account emails", err)
		return nil, err
	}
	return emails, nil
}

func (r *accountRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Account{}).Count(&n).Error
	return n, err
}

func (r *accountRepository) UpdatePasswordByEmail(ctx context.Context, email, passwordHash string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Account{}).
		Where(map[string]interface{}{"Email": email}).
		UpdateColumn("password", passwordHash)
	if res.Error != nil {
		logger.Error("Failed to update account password", res.Error)
	}
	return res.RowsAffected, res.Error
}

func (r *accountRepository) Delete(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&model.Account{}, id)
	if res.Error != nil {
		logger.Error("Failed to delete account", res.Error, map[string]interface{}{
			"account_id": id,
		})
	}
	return res.RowsAffected, res.Error
}
