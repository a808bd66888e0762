package controller

import (
	"errors"
	"net/http"

	apperrors "github.com/eatsplorer/eatsplorer-backend/internal/errors"
	"github.com/eatsplorer/eatsplorer-backend/internal/middleware"
	"github.com/eatsplorer/eatsplorer-backend/internal/storage"
	"github.com/gin-gonic/gin"
)

// Uploader stores the files of a multipart request.
type Uploader struct {
	store   storage.FileStore
	maxSize int64
}

func NewUploader(store storage.FileStore, maxSize int64) *Uploader {
	return &Uploader{
		store:   store,
		maxSize: maxSize,
	}
}

// Optional saves the file in field and returns its stored name, or "" when
// the field was not sent. ok is false once an error response was written.
func (u *Uploader) Optional(c *gin.Context, field string) (name string, ok bool) {
	log := middleware.GetLoggerFromContext(c)

	file, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", true
		}
		log.Warn("Invalid multipart upload", map[string]interface{}{
			"field": field,
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.InvalidRequest, "Invalid upload")
		return "", false
	}

	if err := storage.ValidateUpload(file, u.maxSize); err != nil {
		log.Warn("Upload rejected", map[string]interface{}{
			"field":        field,
			"size":         file.Size,
			"content_type": file.Header.Get("Content-Type"),
		})
		if errors.Is(err, storage.ErrFileTooLarge) {
			apperrors.RespondWithError(c, http.StatusRequestEntityTooLarge, apperrors.UploadFileTooLarge, "File is too large")
		} else {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Only image files are allowed (JPEG, PNG, GIF, WEBP)")
		}
		return "", false
	}

	name, err = u.store.Save(c.Request.Context(), field, file)
	if err != nil {
		log.Error("Failed to store upload", err, map[string]interface{}{
			"field":   field,
			"backend": u.store.Backend(),
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "Failed to store upload")
		return "", false
	}
	return name, true
}

// Required saves the first of fields that was sent and answers 400 when none was.
func (u *Uploader) Required(c *gin.Context, fields ...string) (string, bool) {
	for _, field := range fields {
		name, ok := u.Optional(c, field)
		if !ok {
			return "", false
		}
		if name != "" {
			return name, true
		}
	}
	apperrors.BadRequest(c, apperrors.ValidationRequired, "An image file is required")
	return "", false
}

// Serve answers requests that match no route with an uploaded file: from
// disk for local storage, or a redirect to the object URL.
func (u *Uploader) Serve(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		apperrors.NotFound(c, apperrors.ResourceNotFound, "Not found")
		return
	}
	loc, ok := u.store.Locate(c.Request.Context(), c.Request.URL.Path[1:])
	if !ok {
		apperrors.NotFound(c, apperrors.ResourceNotFound, "Not found")
		return
	}
	if loc.URL != "" {
		c.Redirect(http.StatusFound, loc.URL)
		return
	}
	c.File(loc.Path)
}
