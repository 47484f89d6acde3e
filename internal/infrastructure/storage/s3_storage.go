// Package storage provides the object storage backend for item images.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	catalogapp "github.com/lookbook/backend/internal/application/catalog"
	infraconfig "github.com/lookbook/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const (
	defaultRegion         = "us-east-1"
	defaultUploadExpiry   = 15 * time.Minute
	defaultDownloadExpiry = time.Hour
)

var errEmptyKey = errors.New("image storage key is required")

var _ catalogapp.ObjectStorageService = (*S3ImageStorage)(nil)

// S3ImageStorage keeps item images in an S3 compatible bucket (AWS S3,
// MinIO, R2). Image bytes never pass through the API: merchants upload and
// shoppers download through presigned URLs.
type S3ImageStorage struct {
	client         *s3.Client
	presign        *s3.PresignClient
	bucket         string
	uploadExpiry   time.Duration
	downloadExpiry time.Duration
	logger         *zap.Logger
}

// S3ImageStorageOption configures an S3ImageStorage
type S3ImageStorageOption func(*S3ImageStorage)

// WithLogger sets the logger used for bucket provisioning
func WithLogger(logger *zap.Logger) S3ImageStorageOption {
	return func(s *S3ImageStorage) { s.logger = logger }
}

func validateConfig(cfg *infraconfig.StorageConfig) error {
	switch {
	case cfg == nil:
		return errors.New("storage configuration is required")
	case cfg.Bucket == "":
		return errors.New("storage bucket is required")
	case (cfg.AccessKeyID == "") != (cfg.SecretAccessKey == ""):
		return errors.New("storage access key id and secret must be set together")
	}
	if cfg.Endpoint != "" {
		if u, err := url.Parse(cfg.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid storage endpoint %q", cfg.Endpoint)
		}
	}
	return nil
}

// NewS3ImageStorage builds the S3 client from cfg. Without static keys the
// default AWS credential chain applies.
func NewS3ImageStorage(ctx context.Context, cfg *infraconfig.StorageConfig, opts ...S3ImageStorageOption) (*S3ImageStorage, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	s := &S3ImageStorage{
		client:         client,
		presign:        s3.NewPresignClient(client),
		bucket:         cfg.Bucket,
		uploadExpiry:   orDefault(cfg.UploadURLExpiry, defaultUploadExpiry),
		downloadExpiry: orDefault(cfg.DownloadURLExpiry, defaultDownloadExpiry),
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func orDefault(d, def time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return def
}

// EnsureBucket creates the bucket when HeadBucket says it is missing. It
// doubles as the storage health probe.
func (s *S3ImageStorage) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}
	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("head bucket %s: %w", s.bucket, err)
	}

	s.logger.Info("Creating image bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	var owned *types.BucketAlreadyOwnedByYou
	if err != nil && !errors.As(err, &owned) {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	return nil
}

// GenerateUploadURL presigns a PUT of storageKey, bound to contentType. A
// non-positive expiresIn uses the configured upload expiry.
func (s *S3ImageStorage) GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errEmptyKey
	}
	expiresIn = orDefault(expiresIn, s.uploadExpiry)
	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(storageKey),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(expiresIn))
	return presigned(req, err, expiresIn, "upload")
}

// GenerateDownloadURL presigns a GET of storageKey
func (s *S3ImageStorage) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errEmptyKey
	}
	expiresIn = orDefault(expiresIn, s.downloadExpiry)
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storageKey),
	}, s3.WithPresignExpires(expiresIn))
	return presigned(req, err, expiresIn, "download")
}

func presigned(req *v4.PresignedHTTPRequest, err error, ttl time.Duration, kind string) (string, time.Time, error) {
	if err != nil {
		return "", time.Time{}, fmt.Errorf("presign %s url: %w", kind, err)
	}
	return req.URL, time.Now().Add(ttl), nil
}

// DeleteObject removes storageKey from the bucket
func (s *S3ImageStorage) DeleteObject(ctx context.Context, storageKey string) error {
	if storageKey == "" {
		return errEmptyKey
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storageKey),
	}); err != nil {
		return fmt.Errorf("delete object %s: %w", storageKey, err)
	}
	return nil
}

// Bucket returns the bucket name
func (s *S3ImageStorage) Bucket() string { return s.bucket }
