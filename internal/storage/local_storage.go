package storage

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"github.com/eatsplorer/eatsplorer-backend/internal/metrics"
	"github.com/eatsplorer/eatsplorer-backend/pkg/logger"
)

// LocalStorage writes uploads into a directory that is also served back over HTTP.
type LocalStorage struct {
	dir string
	now func() time.Time
}

func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &LocalStorage{dir: dir, now: time.Now}, nil
}

func (s *LocalStorage) Backend() string {
	return "local"
}

func (s *LocalStorage) Save(ctx context.Context, field string, file *multipart.FileHeader) (string, error) {
	name, err := s.save(ctx, field, file)
	metrics.RecordUpload(s.Backend(), err)
	return name, err
}

func (s *LocalStorage) save(ctx context.Context, field string, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	// Same-millisecond uploads for one field get the next free timestamp.
	now := s.now()
	var (
		name string
		dst  *os.File
	)
	for i := 0; i < 100; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		name = GenerateFilename(field, file.Filename, now.Add(time.Duration(i)*time.Millisecond))
		dst, err = os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			break
		}
		if !errors.Is(err, os.ErrExist) {
			return "", err
		}
	}
	if dst == nil {
		return "", err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		logger.Error("Failed to write upload", err, map[string]interface{}{
			"file": name,
		})
		return "", err
	}
	if err := dst.Close(); err != nil {
		return "", err
	}

	logger.Debug("Upload stored", map[string]interface{}{
		"file": name,
		"size": file.Size,
	})
	return name, nil
}

func (s *LocalStorage) Locate(_ context.Context, name string) (Location, bool) {
	name, err := cleanName(name)
	if err != nil {
		return Location{}, false
	}
	path := filepath.Join(s.dir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return Location{}, false
	}
	return Location{Path: path}, true
}
