package errors

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ErrorInfo is the status, code and message an error maps to.
type ErrorInfo struct {
	Status  int
	Code    string
	Message string
}

// ParseError classifies store and transport errors without leaking their text.
// subject names the resource in not-found messages, e.g. "establishment".
func ParseError(err error, subject string) ErrorInfo {
	if err == nil {
		return internal()
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Status:  http.StatusNotFound,
			Code:    notFoundCode(subject),
			Message: notFoundMessage(subject),
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorInfo{
			Status:  http.StatusServiceUnavailable,
			Code:    InternalTimeout,
			Message: "The request took too long, try again later",
		}
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicateKey(err.Error()) {
		return ErrorInfo{
			Status:  http.StatusConflict,
			Code:    ResourceAlreadyExists,
			Message: "Already exists",
		}
	}

	return internal()
}

// isDuplicateKey covers the postgres, mysql and sqlite wordings.
func isDuplicateKey(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "duplicate key") ||
		strings.Contains(lower, "duplicate entry") ||
		strings.Contains(lower, "unique constraint")
}

func internal() ErrorInfo {
	return ErrorInfo{
		Status:  http.StatusInternalServerError,
		Code:    InternalServerError,
		Message: "Internal Server Error",
	}
}

func notFoundCode(subject string) string {
	switch strings.ToLower(subject) {
	case "establishment":
		return EstablishmentNotFound
	case "rating", "comment":
		return RatingNotFound
	case "account", "user":
		return AccountNotFound
	case "favorite":
		return FavoriteNotFound
	}
	return ResourceNotFound
}

func notFoundMessage(subject string) string {
	if subject == "" {
		return "Not found"
	}
	return strings.ToUpper(subject[:1]) + subject[1:] + " not found"
}

// ParseAndRespond parses err and writes the matching error body.
func ParseAndRespond(c *gin.Context, err error, subject string) {
	info := ParseError(err, subject)
	RespondWithError(c, info.Status, info.Code, info.Message)
}
