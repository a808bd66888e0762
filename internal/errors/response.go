package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// requestIDKey mirrors middleware.RequestIDKey; importing middleware here would cycle.
const requestIDKey = "request_id"

// ErrorResponse is the body of every error reply. Message is always generic;
// the cause of a failure belongs in the server log, keyed by RequestID.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// RespondWithError aborts the handler chain with an error body.
func RespondWithError(c *gin.Context, statusCode int, errorCode string, message string) {
	c.AbortWithStatusJSON(statusCode, ErrorResponse{
		Error:     errorCode,
		Message:   message,
		RequestID: c.GetString(requestIDKey),
	})
}

func orDefault(message, fallback string) string {
	if message == "" {
		return fallback
	}
	return message
}

func Unauthorized(c *gin.Context, message string) {
	RespondWithError(c, http.StatusUnauthorized, AuthUnauthorized, orDefault(message, "Authentication required"))
}

func Forbidden(c *gin.Context, message string) {
	RespondWithError(c, http.StatusForbidden, AuthzForbidden, orDefault(message, "Access denied"))
}

func BadRequest(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusBadRequest, errorCode, message)
}

func NotFound(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusNotFound, errorCode, message)
}

func Conflict(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusConflict, errorCode, message)
}

func TooManyRequests(c *gin.Context, message string) {
	RespondWithError(c, http.StatusTooManyRequests, RateLimited, orDefault(message, "Too many requests, try again later"))
}

func InternalError(c *gin.Context, message string) {
	RespondWithError(c, http.StatusInternalServerError, InternalServerError, orDefault(message, "Internal Server Error"))
}
