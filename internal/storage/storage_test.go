package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileHeader(t *testing.T, field, filename, contentType string, body []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, field, filename))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(body)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })
	return form.File[field][0]
}

func TestGenerateFilename(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	assert.Equal(t, "logo_1700000000123.png", GenerateFilename("logo", "My Logo.PNG", at))
	assert.Equal(t, "menu_1700000000123", GenerateFilename("menu", "noext", at))
}

func TestValidateUpload(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        []byte
		max         int64
		want        error
	}{
		{"png ok", "image/png", []byte("png"), 10, nil},
		{"too large", "image/png", []byte("0123456789abc"), 10, ErrFileTooLarge},
		{"not an image", "text/plain", []byte("hi"), 10, ErrUnsupportedType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fh := fileHeader(t, "image1", "a.png", tt.contentType, tt.body)
			err := ValidateUpload(fh, tt.max)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLocalStorage_SaveAndLocate(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)
	store.now = func() time.Time { return time.UnixMilli(1000) }
	ctx := context.Background()

	first, err := store.Save(ctx, "logo", fileHeader(t, "logo", "a.jpg", "image/jpeg", []byte("one")))
	require.NoError(t, err)
	assert.Equal(t, "logo_1000.jpg", first)

	// same millisecond moves to the next free name
	second, err := store.Save(ctx, "logo", fileHeader(t, "logo", "b.jpg", "image/jpeg", []byte("two")))
	require.NoError(t, err)
	assert.Equal(t, "logo_1001.jpg", second)

	data, err := os.ReadFile(filepath.Join(dir, first))
	require.NoError(t, err)
	assert.Equal(t, "one", string(data))

	loc, ok := store.Locate(ctx, second)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, second), loc.Path)

	for _, name := range []string{"missing.png", "../secret", ".env", ""} {
		_, ok := store.Locate(ctx, name)
		assert.False(t, ok, name)
	}
}

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = params
	f.body, _ = io.ReadAll(params.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Storage_Save(t *testing.T) {
	client := &fakeS3{}
	store := &S3Storage{
		client:  client,
		bucket:  "uploads",
		prefix:  "common",
		baseURL: "https://cdn.example.com",
		now:     func() time.Time { return time.UnixMilli(42) },
	}
	ctx := context.Background()

	name, err := store.Save(ctx, "image1", fileHeader(t, "image1", "pic.webp", "image/webp", []byte("bytes")))
	require.NoError(t, err)
	assert.Equal(t, "image1_42.webp", name)
	assert.Equal(t, "uploads", aws.ToString(client.input.Bucket))
	assert.Equal(t, "common/image1_42.webp", aws.ToString(client.input.Key))
	assert.Equal(t, "image/webp", aws.ToString(client.input.ContentType))
	assert.Equal(t, "bytes", string(client.body))

	loc, ok := store.Locate(ctx, name)
	require.True(t, ok)
	assert.Equal(t, "https://cdn.example.com/common/image1_42.webp", loc.URL)

	client.err = errors.New("access denied")
	_, err = store.Save(ctx, "image1", fileHeader(t, "image1", "pic.webp", "image/webp", []byte("bytes")))
	assert.Error(t, err)
}
