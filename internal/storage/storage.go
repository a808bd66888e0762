package storage

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrFileTooLarge    = errors.New("file exceeds the upload size limit")
	ErrUnsupportedType = errors.New("only image files are allowed")
	ErrInvalidName     = errors.New("invalid file name")
)

// AllowedContentTypes are the image types accepted for upload.
var AllowedContentTypes = []string{
	"image/jpeg",
	"image/jpg",
	"image/png",
	"image/gif",
	"image/webp",
}

// Location says where a stored file can be read. Exactly one field is set.
type Location struct {
	Path string
	URL  string
}

// FileStore persists uploaded files. Only the returned filename is stored
// in the database.
type FileStore interface {
	Save(ctx context.Context, field string, file *multipart.FileHeader) (string, error)
	Locate(ctx context.Context, name string) (Location, bool)
	Backend() string
}

// GenerateFilename builds "<field>_<unix millis><ext>" from the form field
// and the uploaded file's extension.
func GenerateFilename(field, original string, now time.Time) string {
	return fmt.Sprintf("%s_%d%s", field, now.UnixMilli(), strings.ToLower(filepath.Ext(original)))
}

// ValidateUpload checks the declared size and content type of file.
func ValidateUpload(file *multipart.FileHeader, maxSize int64) error {
	if maxSize > 0 && file.Size > maxSize {
		return ErrFileTooLarge
	}
	contentType := file.Header.Get("Content-Type")
	for _, allowed := range AllowedContentTypes {
		if contentType == allowed {
			return nil
		}
	}
	return ErrUnsupportedType
}

// cleanName rejects anything that is not a bare file name.
func cleanName(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", ErrInvalidName
	}
	return name, nil
}
