package controller

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/eatsplorer/eatsplorer-backend/internal/app/model"
	"github.com/eatsplorer/eatsplorer-backend/internal/app/repository"
	"github.com/eatsplorer/eatsplorer-backend/internal/app/service"
	apperrors "github.com/eatsplorer/eatsplorer-backend/internal/errors"
	"github.com/eatsplorer/eatsplorer-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type EstablishmentController struct {
	establishmentService service.EstablishmentService
	uploader             *Uploader
}

func NewEstablishmentController(establishmentService service.EstablishmentService, uploader *Uploader) *EstablishmentController {
	return &EstablishmentController{
		establishmentService: establishmentService,
		uploader:             uploader,
	}
}

// EstablishmentForm holds the text fields of /insert and /update. The opening
// hours are read per day from "<day>_opening" and "<day>_closing".
type EstablishmentForm struct {
	FeName      string  `form:"feName" binding:"required,notblank"`
	Barangay    string  `form:"barangay"`
	Description string  `form:"description"`
	Location    string  `form:"location"`
	Phone       string  `form:"phone"`
	Email       string  `form:"email"`
	Latitude    float64 `form:"latitude"`
	Longitude   float64 `form:"longitude"`
}

// bindEstablishment reads the form and stores any uploaded images.
func (ctrl *EstablishmentController) bindEstablishment(c *gin.Context) (service.EstablishmentInput, bool) {
	var form EstablishmentForm
	if err := c.ShouldBind(&form); err != nil {
		middleware.GetLoggerFromContext(c).Warn("Invalid establishment form", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.InvalidRequest, "Invalid request data")
		return service.EstablishmentInput{}, false
	}

	input := service.EstablishmentInput{
		Name:        strings.TrimSpace(form.FeName),
		Barangay:    form.Barangay,
		Description: form.Description,
		Location:    form.Location,
		Phone:       form.Phone,
		Email:       form.Email,
		Latitude:    form.Latitude,
		Longitude:   form.Longitude,
	}
	for _, day := range model.Weekdays {
		opening, closing := input.Hours.Slot(day)
		*opening = c.PostForm(day + "_opening")
		*closing = c.PostForm(day + "_closing")
	}

	var ok bool
	if input.Logo, ok = ctrl.uploader.Optional(c, "logo"); !ok {
		return input, false
	}
	if input.Image2, ok = ctrl.uploader.Optional(c, "image2"); !ok {
		return input, false
	}
	return input, true
}

// Insert creates an establishment from a multipart form
// POST /insert
func (ctrl *EstablishmentController) Insert(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	input, ok := ctrl.bindEstablishment(c)
	if !ok {
		return
	}

	e, err := ctrl.establishmentService.Create(c.Request.Context(), input)
	if err != nil {
		respondInternal(c, "Failed to create establishment", err)
		return
	}

	log.Info("Establishment inserted", map[string]interface{}{
		"establishment_id": e.ID,
	})
	c.JSON(http.StatusOK, gin.H{
		"message": "Text and images uploaded successfully",
		"id":      e.ID,
	})
}

// Update overwrites an establishment; images not re-uploaded are kept
// POST /update
func (ctrl *EstablishmentController) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.PostForm("id"), 10, 64)
	if err != nil || id == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid establishment id")
		return
	}
	input, ok := ctrl.bindEstablishment(c)
	if !ok {
		return
	}

	if _, err := ctrl.establishmentService.Update(c.Request.Context(), uint(id), input); err != nil {
		if errors.Is(err, service.ErrEstablishmentNotFound) {
			apperrors.NotFound(c, apperrors.EstablishmentNotFound, "Establishment not found")
			return
		}
		respondInternal(c, "Failed to update establishment", err, map[string]interface{}{
			"establishment_id": id,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Data updated successfully"})
}

// Delete removes the establishment and its dependent rows
// DELETE /eatery_delete
func (ctrl *EstablishmentController) Delete(c *gin.Context) {
	var req IDRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := ctrl.establishmentService.Delete(c.Request.Context(), uint(req.ID)); err != nil {
		if errors.Is(err, service.ErrEstablishmentNotFound) {
			apperrors.NotFound(c, apperrors.EstablishmentNotFound, "Establishment not found")
			return
		}
		respondInternal(c, "Failed to delete establishment", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Eatery deleted successfully"})
}

func (ctrl *EstablishmentController) list(c *gin.Context, order repository.SortOrder) {
	establishments, err := ctrl.establishmentService.List(c.Request.Context(), order)
	if err != nil {
		respondInternal(c, "Failed to list establishments", err)
		return
	}
	c.JSON(http.StatusOK, establishments)
}

// ListByAve returns all establishments, highest ave first
// GET /
func (ctrl *EstablishmentController) ListByAve(c *gin.Context) {
	ctrl.list(c, repository.AveDescending)
}

// ListByAveAscending returns all establishments, lowest ave first
// GET /abcd
func (ctrl *EstablishmentController) ListByAveAscending(c *gin.Context) {
	ctrl.list(c, repository.AveAscending)
}

func (ctrl *EstablishmentController) top(c *gin.Context, limit int) {
	establishments, err := ctrl.establishmentService.Top(c.Request.Context(), limit)
	if err != nil {
		respondInternal(c, "Failed to rank establishments", err)
		return
	}
	c.JSON(http.StatusOK, establishments)
}

// Rank returns the top ten
// GET /rank
func (ctrl *EstablishmentController) Rank(c *gin.Context) {
	ctrl.top(c, service.RankLimit)
}

// Famous returns the top three
// GET /famous
func (ctrl *EstablishmentController) Famous(c *gin.Context) {
	ctrl.top(c, service.FamousLimit)
}

type NearbyQuery struct {
	Lat      *float64 `form:"lat" binding:"required"`
	Lng      *float64 `form:"lng" binding:"required"`
	RadiusKm float64  `form:"radius_km"`
}

// Nearby lists establishments around a point, nearest first
// GET /nearby?lat=&lng=&radius_km=
func (ctrl *EstablishmentController) Nearby(c *gin.Context) {
	var q NearbyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		apperrors.BadRequest(c, apperrors.InvalidRequest, "lat and lng are required")
		return
	}

	nearby, err := ctrl.establishmentService.Nearby(c.Request.Context(), *q.Lat, *q.Lng, q.RadiusKm)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCoordinates) {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid coordinates")
			return
		}
		respondInternal(c, "Failed to find nearby establishments", err)
		return
	}
	c.JSON(http.StatusOK, nearby)
}

// Count returns the number of establishments
// GET /establishment
func (ctrl *EstablishmentController) Count(c *gin.Context) {
	n, err := ctrl.establishmentService.Count(c.Request.Context())
	if err != nil {
		respondInternal(c, "Failed to count establishments", err)
		return
	}
	c.JSON(http.StatusOK, countResponse(n))
}
