package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	appConfig "github.com/nageshcare/nageshcare-api/config"
)

// PresignExpiry is how long generated download URLs stay valid
const PresignExpiry = time.Hour

// S3FileStore stores files in a private S3 bucket and hands out presigned URLs
type S3FileStore struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

// NewS3FileStore builds a store from the application AWS settings. Static
// credentials are used when both keys are set, otherwise the default chain.
func NewS3FileStore(ctx context.Context, cfg *appConfig.Config) (*S3FileStore, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.AWSRegion)}
	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		)))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig)
	return &S3FileStore{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.AWSS3Bucket,
	}, nil
}

// Save uploads r to key
func (s *S3FileStore) Save(ctx context.Context, key string, r io.Reader, contentType string) error {
	if _, err := CleanKey(key); err != nil {
		return err
	}
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   r,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}

// Open streams the object at key, or returns ErrBlobNotFound
func (s *S3FileStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("failed to download from S3: %w", err)
	}
	return out.Body, nil
}

// URL generates a presigned GET URL for key, valid for PresignExpiry
func (s *S3FileStore) URL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}
	request, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = PresignExpiry
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return request.URL, nil
}

// Delete removes the object at key
func (s *S3FileStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}

// NewFileStore returns the store selected by STORAGE_BACKEND
func NewFileStore(ctx context.Context, cfg *appConfig.Config) (FileStore, error) {
	switch cfg.StorageBackend {
	case appConfig.StorageS3:
		return NewS3FileStore(ctx, cfg)
	case appConfig.StorageLocal, "":
		return NewLocalFileStore(cfg.UploadDir, LocalURLPrefix), nil
	}
	return nil, fmt.Errorf("unsupported storage backend %q", cfg.StorageBackend)
}

// LocalURLPrefix is where the upload handler serves files from the local store
const LocalURLPrefix = "/api/v1/uploads"
