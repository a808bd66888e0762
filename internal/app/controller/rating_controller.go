package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/eatsplorer/eatsplorer-backend/internal/app/model"
	"github.com/eatsplorer/eatsplorer-backend/internal/app/service"
	apperrors "github.com/eatsplorer/eatsplorer-backend/internal/errors"
	"github.com/eatsplorer/eatsplorer-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type RatingController struct {
	ratingService service.RatingService
}

func NewRatingController(ratingService service.RatingService) *RatingController {
	return &RatingController{
		ratingService: ratingService,
	}
}

// CommentRequest is the body of /comment and /comment_update. counter is the score.
type CommentRequest struct {
	Username    string      `json:"username" binding:"required,notblank"`
	Comment     string      `json:"comment"`
	Counter     FlexibleInt `json:"counter"`
	FeNameQuery string      `json:"feNameQuery" binding:"required,notblank"`
}

type CommentDeleteRequest struct {
	Username    string `json:"username" binding:"required,notblank"`
	FeNameQuery string `json:"feNameQuery" binding:"required,notblank"`
}

type commentResponse struct {
	ID          uint      `json:"id"`
	Username    string    `json:"username"`
	Comment     string    `json:"comment"`
	Counter     int       `json:"counter"`
	SecretDate  time.Time `json:"secret_date"`
	FeNameQuery string    `json:"feNameQuery"`
}

func echoRating(r *model.Rating) commentResponse {
	return commentResponse{
		ID:          r.ID,
		Username:    r.Username,
		Comment:     r.Comment,
		Counter:     r.Score,
		SecretDate:  r.RateDate,
		FeNameQuery: r.EstablishmentName,
	}
}

// CreateComment stores a rating and bumps the establishment's ave
// POST /comment
func (ctrl *RatingController) CreateComment(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CommentRequest
	if !bindJSON(c, &req) {
		return
	}

	rating, err := ctrl.ratingService.CreateRating(c.Request.Context(), req.Username, req.Comment, int(req.Counter), req.FeNameQuery)
	if err != nil {
		respondInternal(c, "Failed to create comment", err, map[string]interface{}{
			"establishment": req.FeNameQuery,
		})
		return
	}

	log.Info("Comment created", map[string]interface{}{
		"rating_id": rating.ID,
	})
	c.JSON(http.StatusCreated, echoRating(rating))
}

// UpdateComment rewrites the caller's comment and score
// POST /comment_update
func (ctrl *RatingController) UpdateComment(c *gin.Context) {
	var req CommentRequest
	if !bindJSON(c, &req) {
		return
	}

	rating, err := ctrl.ratingService.UpdateRating(c.Request.Context(), req.Username, req.FeNameQuery, req.Comment, int(req.Counter))
	if err != nil {
		if errors.Is(err, service.ErrRatingNotFound) {
			apperrors.NotFound(c, apperrors.RatingNotFound, "Comment not found")
			return
		}
		respondInternal(c, "Failed to update comment", err)
		return
	}

	c.JSON(http.StatusCreated, echoRating(rating))
}

// DeleteComment removes the caller's ratings for an establishment
// DELETE /comment_delete
func (ctrl *RatingController) DeleteComment(c *gin.Context) {
	var req CommentDeleteRequest
	if !bindJSON(c, &req) {
		return
	}

	if _, err := ctrl.ratingService.DeleteRating(c.Request.Context(), req.Username, req.FeNameQuery); err != nil {
		switch {
		case errors.Is(err, service.ErrEstablishmentNotFound):
			apperrors.NotFound(c, apperrors.EstablishmentNotFound, "Establishment not found")
		case errors.Is(err, service.ErrRatingNotFound):
			apperrors.NotFound(c, apperrors.RatingNotFound, "Comment not found")
		default:
			respondInternal(c, "Failed to delete comment", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}

// DeleteByID is the admin removal of a single rating
// DELETE /rate_delete
func (ctrl *RatingController) DeleteByID(c *gin.Context) {
	var req IDRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := ctrl.ratingService.DeleteRatingByID(c.Request.Context(), uint(req.ID)); err != nil {
		if errors.Is(err, service.ErrRatingNotFound) {
			apperrors.NotFound(c, apperrors.RatingNotFound, "Rating not found")
			return
		}
		respondInternal(c, "Failed to delete rating", err, map[string]interface{}{
			"rating_id": req.ID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Rating deleted successfully"})
}

// List returns every rating
// GET /ssr, /display_comment
func (ctrl *RatingController) List(c *gin.Context) {
	ratings, err := ctrl.ratingService.ListRatings(c.Request.Context())
	if err != nil {
		respondInternal(c, "Failed to list ratings", err)
		return
	}
	c.JSON(http.StatusOK, ratings)
}

// Count returns the number of ratings
// GET /rating
func (ctrl *RatingController) Count(c *gin.Context) {
	n, err := ctrl.ratingService.CountRatings(c.Request.Context())
	if err != nil {
		respondInternal(c, "Failed to count ratings", err)
		return
	}
	c.JSON(http.StatusOK, countResponse(n))
}

// Reconcile runs the ave repair job on demand
// POST /admin/reconcile
func (ctrl *RatingController) Reconcile(c *gin.Context) {
	report, err := ctrl.ratingService.Reconcile(c.Request.Context())
	if err != nil {
		respondInternal(c, "Reconcile failed", err)
		return
	}
	c.JSON(http.StatusOK, report)
}
