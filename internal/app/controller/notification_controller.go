package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/eatsplorer/eatsplorer-backend/internal/app/service"
	apperrors "github.com/eatsplorer/eatsplorer-backend/internal/errors"
	"github.com/eatsplorer/eatsplorer-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// NotificationController issues OTP emails and announcements.
type NotificationController struct {
	otpService          service.OTPService
	announcementService service.AnnouncementService
}

func NewNotificationController(otpService service.OTPService, announcementService service.AnnouncementService) *NotificationController {
	return &NotificationController{
		otpService:          otpService,
		announcementService: announcementService,
	}
}

type OTPRequest struct {
	Email        string      `json:"email" binding:"required"`
	RandomDigits FlexibleInt `json:"randomDigits"`
}

type VerifyOTPRequest struct {
	Email   string      `json:"email" binding:"required"`
	Code    FlexibleInt `json:"code" binding:"required"`
	Purpose string      `json:"purpose"`
}

type AnnouncementRequest struct {
	Message   string `json:"message" binding:"required"`
	Recipient string `json:"recipient" binding:"required"`
}

// RandomDigits returns a fresh six digit code
// GET /getRandomDigits
func (ctrl *NotificationController) RandomDigits(c *gin.Context) {
	digits, err := ctrl.otpService.GenerateDigits()
	if err != nil {
		respondInternal(c, "Failed to generate digits", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"digits": digits})
}

func (ctrl *NotificationController) issue(c *gin.Context, purpose string) {
	var req OTPRequest
	if !bindJSON(c, &req) {
		return
	}

	code := ""
	if req.RandomDigits > 0 {
		code = strconv.Itoa(int(req.RandomDigits))
	}
	if err := ctrl.otpService.Issue(c.Request.Context(), purpose, req.Email, code); err != nil {
		respondInternal(c, "Failed to issue otp", err, map[string]interface{}{
			"purpose": purpose,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "OTP sent successfully"})
}

// SendRegistrationOTP POST /otp
func (ctrl *NotificationController) SendRegistrationOTP(c *gin.Context) {
	ctrl.issue(c, service.PurposeRegistration)
}

// SendPasswordResetOTP POST /otp_forgot
func (ctrl *NotificationController) SendPasswordResetOTP(c *gin.Context) {
	ctrl.issue(c, service.PurposePasswordReset)
}

// VerifyOTP checks and consumes a code; purpose defaults to registration
// POST /otp/verify
func (ctrl *NotificationController) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if !bindJSON(c, &req) {
		return
	}
	purpose := req.Purpose
	if purpose == "" {
		purpose = service.PurposeRegistration
	}

	err := ctrl.otpService.Verify(c.Request.Context(), purpose, req.Email, strconv.Itoa(int(req.Code)))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownPurpose):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Unknown purpose")
		case errors.Is(err, service.ErrInvalidOTP):
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthOTPInvalid, "Invalid or expired code")
		default:
			respondInternal(c, "Failed to verify otp", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"verified": true})
}

// SendAnnouncement emails one address, or every account for "everyone"
// POST /send-announcement
func (ctrl *NotificationController) SendAnnouncement(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req AnnouncementRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := ctrl.announcementService.Send(c.Request.Context(), req.Message, req.Recipient)
	if err != nil {
		respondInternal(c, "Failed to send announcement", err)
		return
	}

	log.Info("Announcement accepted", map[string]interface{}{
		"queued": result.Queued,
		"failed": result.Failed,
	})
	c.JSON(http.StatusOK, gin.H{
		"message": "Announcement sent successfully",
		"queued":  result.Queued,
		"failed":  result.Failed,
	})
}
