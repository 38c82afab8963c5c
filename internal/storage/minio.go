package storage

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/wsupload/service/internal/logger"
)

// MinioOptions configures a MinioStorage.
type MinioOptions struct {
	Endpoint     string
	AccessKey    string
	SecretKey    string
	Bucket       string
	UseSSL       bool
	CreateBucket bool
}

// MinioStorage implements Uploader using a MinIO (or any S3-compatible) backend.
type MinioStorage struct {
	client *minio.Client
	bucket string
}

// NewMinioStorage creates a MinIO client and checks the bucket. When
// CreateBucket is set a missing bucket is created, otherwise it is an error.
func NewMinioStorage(ctx context.Context, opts MinioOptions) (*MinioStorage, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if !opts.CreateBucket {
			return nil, fmt.Errorf("bucket %q does not exist", opts.Bucket)
		}
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", opts.Bucket, err)
		}
		logger.Log.Info().Str("bucket", opts.Bucket).Msg("storage: created bucket")
	}

	return &MinioStorage{client: client, bucket: opts.Bucket}, nil
}

// UploadFile streams the file at path to the bucket under key.
func (s *MinioStorage) UploadFile(ctx context.Context, path, key string) error {
	_, err := s.client.FPutObject(ctx, s.bucket, key, path, minio.PutObjectOptions{
		ContentType: contentType(key),
	})
	if err != nil {
		return fmt.Errorf("put object %q: %w", key, err)
	}
	return nil
}

// Bucket returns the target bucket name.
func (s *MinioStorage) Bucket() string {
	return s.bucket
}
