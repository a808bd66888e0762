package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/eatsplorer/eatsplorer-backend/internal/metrics"
	"github.com/eatsplorer/eatsplorer-backend/internal/notification"
	"github.com/eatsplorer/eatsplorer-backend/pkg/logger"
	"github.com/eatsplorer/eatsplorer-backend/pkg/util"
)

const (
	PurposeRegistration  = "registration"
	PurposePasswordReset = "password_reset"
)

var (
	ErrInvalidOTP     = errors.New("invalid or expired code")
	ErrUnknownPurpose = errors.New("unknown otp purpose")
)

// OTPStore is satisfied by redis.OTPStore and util.MemoryOTPStore.
type OTPStore interface {
	Save(ctx context.Context, purpose, email, code string, ttl time.Duration) error
	Verify(ctx context.Context, purpose, email, code string) (bool, error)
}

type OTPService interface {
	GenerateDigits() (int, error)
	// Issue stores code for (purpose, email) and queues the email. An empty
	// code is generated server side.
	Issue(ctx context.Context, purpose, email, code string) error
	Verify(ctx context.Context, purpose, email, code string) error
}

type otpService struct {
	store      OTPStore
	dispatcher notification.Dispatcher
	ttl        time.Duration
}

func NewOTPService(store OTPStore, dispatcher notification.Dispatcher, ttl time.Duration) OTPService {
	return &otpService{
		store:      store,
		dispatcher: dispatcher,
		ttl:        ttl,
	}
}

func (s *otpService) GenerateDigits() (int, error) {
	return util.GenerateOTP()
}

func renderOTP(purpose, email, code string) (notification.Message, error) {
	switch purpose {
	case PurposeRegistration:
		return notification.RegistrationOTP(email, code)
	case PurposePasswordReset:
		return notification.PasswordResetOTP(email, code)
	default:
		return notification.Message{}, ErrUnknownPurpose
	}
}

// otpAddress is the store key for an email; addresses are case insensitive.
func otpAddress(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *otpService) Issue(ctx context.Context, purpose, email, code string) error {
	email = strings.TrimSpace(email)
	if code == "" {
		n, err := util.GenerateOTP()
		if err != nil {
			return err
		}
		code = strconv.Itoa(n)
	}

	msg, err := renderOTP(purpose, email, code)
	if err != nil {
		return err
	}

	if err := s.store.Save(ctx, purpose, otpAddress(email), code, s.ttl); err != nil {
		logger.Error("Failed to store otp", err, map[string]interface{}{
			"purpose": purpose,
		})
		return err
	}
	metrics.OTPIssued.WithLabelValues(purpose).Inc()

	// delivery problems are retried by the queue and never fail the request
	if err := s.dispatcher.Enqueue(ctx, msg); err != nil {
		logger.Error("Failed to queue otp email", err, map[string]interface{}{
			"purpose":    purpose,
			"message_id": msg.ID,
		})
		return nil
	}

	logger.Info("OTP issued", map[string]interface{}{
		"purpose":    purpose,
		"message_id": msg.ID,
	})
	return nil
}

func (s *otpService) Verify(ctx context.Context, purpose, email, code string) error {
	if purpose != PurposeRegistration && purpose != PurposePasswordReset {
		return ErrUnknownPurpose
	}
	ok, err := s.store.Verify(ctx, purpose, otpAddress(email), code)
	if err != nil {
		logger.Error("Failed to verify otp", err, map[string]interface{}{
			"purpose": purpose,
		})
		return err
	}
	if !ok {
		return ErrInvalidOTP
	}
	return nil
}
