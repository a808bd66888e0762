package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/eatsplorer/eatsplorer-backend/internal/app/service"
	apperrors "github.com/eatsplorer/eatsplorer-backend/internal/errors"
	"github.com/gin-gonic/gin"
)

// GalleryController serves establishment pictures, menus and cuisine types.
type GalleryController struct {
	galleryService service.GalleryService
	uploader       *Uploader
}

func NewGalleryController(galleryService service.GalleryService, uploader *Uploader) *GalleryController {
	return &GalleryController{
		galleryService: galleryService,
		uploader:       uploader,
	}
}

type TypeRequest struct {
	SelectedOption string `json:"selectedOption" binding:"required,notblank"`
	Type           string `json:"type" binding:"required"`
}

// establishmentField returns the establishment name of an upload form.
func establishmentField(c *gin.Context) (string, bool) {
	name := strings.TrimSpace(c.PostForm("selectedOption"))
	if name == "" {
		name = strings.TrimSpace(c.PostForm("feName"))
	}
	if name == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "selectedOption is required")
		return "", false
	}
	return name, true
}

// UploadPicture adds a gallery picture
// POST /upload/fepic
func (ctrl *GalleryController) UploadPicture(c *gin.Context) {
	name, ok := establishmentField(c)
	if !ok {
		return
	}
	file, ok := ctrl.uploader.Required(c, "image1")
	if !ok {
		return
	}

	picture, err := ctrl.galleryService.AddPicture(c.Request.Context(), name, file)
	if err != nil {
		respondInternal(c, "Failed to add picture", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":        "Text and images uploaded successfully",
		"id":             picture.ID,
		"selectedOption": name,
		"image1":         file,
	})
}

// UploadMenu adds a menu image, sent as "menu" or "image1"
// POST /upload/femenu
func (ctrl *GalleryController) UploadMenu(c *gin.Context) {
	name, ok := establishmentField(c)
	if !ok {
		return
	}
	file, ok := ctrl.uploader.Required(c, "menu", "image1")
	if !ok {
		return
	}

	menu, err := ctrl.galleryService.AddMenu(c.Request.Context(), name, file)
	if err != nil {
		respondInternal(c, "Failed to add menu", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":        "Text and images uploaded successfully",
		"id":             menu.ID,
		"selectedOption": name,
		"menu":           file,
	})
}

// UploadType tags an establishment with a cuisine type
// POST /upload/ttype
func (ctrl *GalleryController) UploadType(c *gin.Context) {
	var req TypeRequest
	if !bindJSON(c, &req) {
		return
	}

	cuisine, err := ctrl.galleryService.AddCuisine(c.Request.Context(), req.SelectedOption, req.Type)
	if err != nil {
		respondInternal(c, "Failed to add type", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":             cuisine.ID,
		"selectedOption": cuisine.EstablishmentName,
		"type":           cuisine.Type,
	})
}

// ListPictures GET /fe_pic, /fepic
func (ctrl *GalleryController) ListPictures(c *gin.Context) {
	pictures, err := ctrl.galleryService.ListPictures(c.Request.Context())
	if err != nil {
		respondInternal(c, "Failed to list pictures", err)
		return
	}
	c.JSON(http.StatusOK, pictures)
}

// ListMenus GET /fe_menu, /femenu
func (ctrl *GalleryController) ListMenus(c *gin.Context) {
	menus, err := ctrl.galleryService.ListMenus(c.Request.Context())
	if err != nil {
		respondInternal(c, "Failed to list menus", err)
		return
	}
	c.JSON(http.StatusOK, menus)
}

// ListTypes GET /type, /Types
func (ctrl *GalleryController) ListTypes(c *gin.Context) {
	cuisines, err := ctrl.galleryService.ListCuisines(c.Request.Context())
	if err != nil {
		respondInternal(c, "Failed to list types", err)
		return
	}
	c.JSON(http.StatusOK, cuisines)
}

func (ctrl *GalleryController) deleteByID(c *gin.Context, del func(*gin.Context, uint) error, message string) {
	var req IDRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := del(c, uint(req.ID)); err != nil {
		if errors.Is(err, service.ErrMediaNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Not found")
			return
		}
		respondInternal(c, "Failed to delete gallery row", err, map[string]interface{}{
			"id": req.ID,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

// DeletePicture DELETE /image_delete
func (ctrl *GalleryController) DeletePicture(c *gin.Context) {
	ctrl.deleteByID(c, func(c *gin.Context, id uint) error {
		return ctrl.galleryService.DeletePicture(c.Request.Context(), id)
	}, "Image deleted successfully")
}

// DeleteMenu DELETE /menu_delete
func (ctrl *GalleryController) DeleteMenu(c *gin.Context) {
	ctrl.deleteByID(c, func(c *gin.Context, id uint) error {
		return ctrl.galleryService.DeleteMenu(c.Request.Context(), id)
	}, "Menu deleted successfully")
}

// DeleteType DELETE /type_delete
func (ctrl *GalleryController) DeleteType(c *gin.Context) {
	ctrl.deleteByID(c, func(c *gin.Context, id uint) error {
		return ctrl.galleryService.DeleteCuisine(c.Request.Context(), id)
	}, "Type deleted successfully")
}
