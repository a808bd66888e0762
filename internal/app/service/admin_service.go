package service

import (
	"context"
	"errors"

	"github.com/eatsplorer/eatsplorer-backend/internal/app/model"
	"github.com/eatsplorer/eatsplorer-backend/internal/app/repository"
	"github.com/eatsplorer/eatsplorer-backend/pkg/logger"
	"github.com/eatsplorer/eatsplorer-backend/pkg/util"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrInvalidAdminToken = errors.New("invalid admin token")

// AdminService authenticates the back-office user. Admins hold a static
// bearer token that is returned on login.
type AdminService interface {
	Login(ctx context.Context, username, password string) (string, error)
	ValidateToken(ctx context.Context, token string) (*model.Admin, error)
	EnsureAdmin(ctx context.Context, username, password string) (*model.Admin, error)
}

type adminService struct {
	repo repository.AdminRepository
}

func NewAdminService(repo repository.AdminRepository) AdminService {
	return &adminService{repo: repo}
}

func (s *adminService) Login(ctx context.Context, username, password string) (string, error) {
	admin, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Admin login failed: unknown username")
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if !util.VerifyPassword(admin.PasswordHash, password) {
		logger.Warn("Admin login failed: invalid password", map[string]interface{}{
			"admin_id": admin.ID,
		})
		return "", ErrInvalidCredentials
	}

	logger.Info("Admin logged in", map[string]interface{}{
		"admin_id": admin.ID,
	})
	return admin.Token, nil
}

func (s *adminService) ValidateToken(ctx context.Context, token string) (*model.Admin, error) {
	if token == "" {
		return nil, ErrInvalidAdminToken
	}
	admin, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidAdminToken
		}
		return nil, err
	}
	return admin, nil
}

// EnsureAdmin returns the admin with username, creating it with a fresh token when missing.
func (s *adminService) EnsureAdmin(ctx context.Context, username, password string) (*model.Admin, error) {
	existing, err := s.repo.FindByUsername(ctx, username)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, err
	}
	admin := &model.Admin{
		Username:     username,
		PasswordHash: hash,
		Token:        uuid.NewString(),
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		return nil, err
	}

	logger.Info("Admin created", map[string]interface{}{
		"admin_id": admin.ID,
		"username": username,
	})
	return admin, nil
}
