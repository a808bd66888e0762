package storage

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/eatsplorer/eatsplorer-backend/internal/metrics"
	"github.com/eatsplorer/eatsplorer-backend/pkg/logger"
)

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Storage struct {
	client  putObjectAPI
	bucket  string
	prefix  string
	baseURL string
	now     func() time.Time
}

type S3Options struct {
	Region          string
	Bucket          string
	Prefix          string
	AccessKeyID     string
	SecretAccessKey string
	BaseURL         string // CloudFront or custom domain; empty uses the S3 endpoint
}

func NewS3Storage(ctx context.Context, opts S3Options) *S3Storage {
	var cfg aws.Config
	var err error

	// If credentials are provided, use them. Otherwise, use default credential chain
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		cfg = aws.Config{
			Region: opts.Region,
			Credentials: credentials.NewStaticCredentialsProvider(
				opts.AccessKeyID,
				opts.SecretAccessKey,
				"",
			),
		}
	} else {
		cfg, err = config.LoadDefaultConfig(ctx, config.WithRegion(opts.Region))
		if err != nil {
			logger.Warn("Failed to load AWS default config, using region only", map[string]interface{}{
				"error": err.Error(),
			})
			cfg = aws.Config{Region: opts.Region}
		}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, opts.Region)
	}

	return &S3Storage{
		client:  s3.NewFromConfig(cfg),
		bucket:  opts.Bucket,
		prefix:  strings.Trim(opts.Prefix, "/"),
		baseURL: baseURL,
		now:     time.Now,
	}
}

func (s *S3Storage) Backend() string {
	return "s3"
}

func (s *S3Storage) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}

func (s *S3Storage) Save(ctx context.Context, field string, file *multipart.FileHeader) (string, error) {
	name, err := s.save(ctx, field, file)
	metrics.RecordUpload(s.Backend(), err)
	return name, err
}

func (s *S3Storage) save(ctx context.Context, field string, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	name := GenerateFilename(field, file.Filename, s.now())
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key(name)),
		Body:          src,
		ContentLength: aws.Int64(file.Size),
		ContentType:   aws.String(file.Header.Get("Content-Type")),
	})
	if err != nil {
		logger.Error("Failed to upload to S3", err, map[string]interface{}{
			"bucket": s.bucket,
			"key":    s.key(name),
		})
		return "", fmt.Errorf("failed to upload %s: %w", name, err)
	}

	logger.Debug("Upload stored in S3", map[string]interface{}{
		"key":  s.key(name),
		"size": file.Size,
	})
	return name, nil
}

// PublicURL is the address a stored file is served from.
func (s *S3Storage) PublicURL(name string) string {
	return s.baseURL + "/" + s.key(name)
}

func (s *S3Storage) Locate(_ context.Context, name string) (Location, bool) {
	name, err := cleanName(name)
	if err != nil {
		return Location{}, false
	}
	return Location{URL: s.PublicURL(name)}, true
}
