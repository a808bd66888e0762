package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/eatsplorer/eatsplorer-backend/internal/app/model"
	"github.com/eatsplorer/eatsplorer-backend/internal/app/repository"
	"github.com/eatsplorer/eatsplorer-backend/pkg/logger"
	"github.com/eatsplorer/eatsplorer-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already exists")
)

type AccountService interface {
	Register(ctx context.Context, username, password, email string) (*model.Account, error)
	Login(ctx context.Context, username, password string) (*model.Account, string, error)
	ResetPassword(ctx context.Context, email, password string) error
	Get(ctx context.Context, id uint) (*model.Account, error)
	List(ctx context.Context) ([]model.Account, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id uint) error
}

type accountService struct {
	repo          repository.AccountRepository
	jwtSecret     string
	sessionExpiry time.Duration
}

func NewAccountService(repo repository.AccountRepository, jwtSecret string, sessionExpiry time.Duration) AccountService {
	return &accountService{
		repo:          repo,
		jwtSecret:     jwtSecret,
		sessionExpiry: sessionExpiry,
	}
}

func (s *accountService) Register(ctx context.Context, username, password, email string) (*model.Account, error) {
	logger.Info("Registering account", map[string]interface{}{
		"username": username,
	})

	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		logger.Warn("Registration failed: username exists", map[string]interface{}{
			"username": username,
		})
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		logger.Error("Failed to hash password", err)
		return nil, err
	}

	account := &model.Account{
		Username:     username,
		PasswordHash: hash,
		Email:        strings.TrimSpace(email),
	}
	if err := s.repo.Create(ctx, account); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	logger.Info("Account registered", map[string]interface{}{
		"account_id": account.ID,
		"username":   username,
	})
	return account, nil
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}

// Login checks the password and issues a session token.
func (s *accountService) Login(ctx context.Context, username, password string) (*model.Account, string, error) {
	account, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: account not found", map[string]interface{}{
				"username": username,
			})
			return nil, "", ErrAccountNotFound
		}
		return nil, "", err
	}

	if !util.VerifyPassword(account.PasswordHash, password) {
		logger.Warn("Login failed: invalid password", map[string]interface{}{
			"account_id": account.ID,
		})
		return nil, "", ErrInvalidCredentials
	}

	token, err := util.GenerateSessionToken(account.ID, account.Username, s.jwtSecret, s.sessionExpiry)
	if err != nil {
		logger.Error("Failed to generate session token", err, map[string]interface{}{
			"account_id": account.ID,
		})
		return nil, "", err
	}

	logger.Info("Account logged in", map[string]interface{}{
		"account_id": account.ID,
	})
	return account, token, nil
}

func (s *accountService) ResetPassword(ctx context.Context, email, password string) error {
	hash, err := util.HashPassword(password)
	if err != nil {
		logger.Error("Failed to hash password", err)
		return err
	}

	n, err := s.repo.UpdatePasswordByEmail(ctx, email, hash)
	if err != nil {
		return err
	}
	if n == 0 {
		logger.Warn("Password reset for unknown email")
		return ErrAccountNotFound
	}

	logger.Info("Password reset", map[string]interface{}{
		"accounts": n,
	})
	return nil
}

func (s *accountService) Get(ctx context.Context, id uint) (*model.Account, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

func (s *accountService) List(ctx context.Context) ([]model.Account, error) {
	return s.repo.FindAll(ctx)
}

func (s *accountService) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func (s *accountService) Delete(ctx context.Context, id uint) error {
	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAccountNotFound
	}
	logger.Info("Account deleted", map[string]interface{}{
		"account_id": id,
	})
	return nil
}
