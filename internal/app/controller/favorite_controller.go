package controller

import (
	"errors"
	"net/http"

	"github.com/eatsplorer/eatsplorer-backend/internal/app/service"
	apperrors "github.com/eatsplorer/eatsplorer-backend/internal/errors"
	"github.com/gin-gonic/gin"
)

type FavoriteController struct {
	favoriteService service.FavoriteService
}

func NewFavoriteController(favoriteService service.FavoriteService) *FavoriteController {
	return &FavoriteController{
		favoriteService: favoriteService,
	}
}

type FavoriteFormData struct {
	FeType   string `json:"feType"`
	Barangay string `json:"barangay"`
	Logo     string `json:"logo"`
}

type AddFavoriteRequest struct {
	Username    string           `json:"username" binding:"required,notblank"`
	FeNameQuery string           `json:"feNameQuery" binding:"required,notblank"`
	FormData    FavoriteFormData `json:"formData"`
}

type RemoveFavoriteRequest struct {
	Username    string `json:"username" binding:"required,notblank"`
	FeNameQuery string `json:"feNameQuery" binding:"required,notblank"`
}

// Add bookmarks an establishment
// POST /myfavorites
func (ctrl *FavoriteController) Add(c *gin.Context) {
	var req AddFavoriteRequest
	if !bindJSON(c, &req) {
		return
	}

	favorite, err := ctrl.favoriteService.Add(c.Request.Context(), service.FavoriteInput{
		Username:          req.Username,
		EstablishmentName: req.FeNameQuery,
		Type:              req.FormData.FeType,
		Barangay:          req.FormData.Barangay,
		Logo:              req.FormData.Logo,
	})
	if err != nil {
		respondInternal(c, "Failed to add favorite", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":          favorite.ID,
		"username":    favorite.Username,
		"feNameQuery": favorite.EstablishmentName,
		"feType":      favorite.Type,
		"barangay":    favorite.Barangay,
		"logo":        favorite.Logo,
	})
}

// Remove deletes a bookmark
// DELETE /delete_myfavorites
func (ctrl *FavoriteController) Remove(c *gin.Context) {
	var req RemoveFavoriteRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := ctrl.favoriteService.Remove(c.Request.Context(), req.Username, req.FeNameQuery); err != nil {
		if errors.Is(err, service.ErrFavoriteNotFound) {
			apperrors.NotFound(c, apperrors.FavoriteNotFound, "Favorite not found")
			return
		}
		respondInternal(c, "Failed to remove favorite", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Favorite deleted successfully"})
}

// List GET /myfavorite
func (ctrl *FavoriteController) List(c *gin.Context) {
	favorites, err := ctrl.favoriteService.List(c.Request.Context())
	if err != nil {
		respondInternal(c, "Failed to list favorites", err)
		return
	}
	c.JSON(http.StatusOK, favorites)
}
