package service

import (
	"context"
	"strings"

	"github.com/eatsplorer/eatsplorer-backend/internal/app/repository"
	"github.com/eatsplorer/eatsplorer-backend/internal/notification"
	"github.com/eatsplorer/eatsplorer-backend/pkg/logger"
)

// RecipientEveryone fans an announcement out to every account email.
const RecipientEveryone = "everyone"

type AnnouncementResult struct {
	Queued int `json:"queued"`
	Failed int `json:"failed"`
}

type AnnouncementService interface {
	Send(ctx context.Context, body, recipient string) (AnnouncementResult, error)
}

type announcementService struct {
	accounts   repository.AccountRepository
	dispatcher notification.Dispatcher
}

func NewAnnouncementService(accounts repository.AccountRepository, dispatcher notification.Dispatcher) AnnouncementService {
	return &announcementService{
		accounts:   accounts,
		dispatcher: dispatcher,
	}
}

// Send queues one email per recipient. Only the recipient lookup can fail
// the call; per-message failures are counted in the result.
func (s *announcementService) Send(ctx context.Context, body, recipient string) (AnnouncementResult, error) {
	var result AnnouncementResult

	recipient = strings.TrimSpace(recipient)
	recipients := []string{recipient}
	if strings.EqualFold(recipient, RecipientEveryone) {
		emails, err := s.accounts.ListEmails(ctx)
		if err != nil {
			return result, err
		}
		recipients = emails
	}

	for _, to := range recipients {
		if to == "" {
			continue
		}
		msg, err := notification.Announcement(to, body)
		if err == nil {
			err = s.dispatcher.Enqueue(ctx, msg)
		}
		if err != nil {
			logger.Warn("Failed to queue announcement", map[string]interface{}{
				"error": err.Error(),
			})
			result.Failed++
			continue
		}
		result.Queued++
	}

	logger.Info("Announcement queued", map[string]interface{}{
		"recipient": recipient,
		"queued":    result.Queued,
		"failed":    result.Failed,
	})
	return result, nil
}
