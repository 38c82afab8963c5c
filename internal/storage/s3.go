package storage

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Options configures an S3Storage.
type S3Options struct {
	AccessKey string
	SecretKey string
	Region    string
	Bucket    string
	// Endpoint overrides the AWS endpoint (path-style addressing is used when set).
	Endpoint string
}

// S3Storage implements Uploader on top of the AWS SDK S3 client.
type S3Storage struct {
	client *s3.Client
	bucket string
}

// NewS3Storage builds an S3 client with static credentials. With no keys the
// client signs nothing and relies on the bucket policy.
func NewS3Storage(opts S3Options) *S3Storage {
	s3Opts := s3.Options{
		Region:                     opts.Region,
		RequestChecksumCalculation: aws.RequestChecksumCalculationWhenRequired,
	}
	if opts.AccessKey != "" || opts.SecretKey != "" {
		creds := aws.Credentials{
			AccessKeyID:     opts.AccessKey,
			SecretAccessKey: opts.SecretKey,
			Source:          "wsupload",
		}
		s3Opts.Credentials = aws.NewCredentialsCache(aws.CredentialsProviderFunc(
			func(context.Context) (aws.Credentials, error) { return creds, nil },
		))
	} else {
		s3Opts.Credentials = aws.AnonymousCredentials{}
	}
	if opts.Endpoint != "" {
		s3Opts.BaseEndpoint = aws.String(opts.Endpoint)
		s3Opts.UsePathStyle = true
	}

	return &S3Storage{client: s3.New(s3Opts), bucket: opts.Bucket}
}

// UploadFile puts the file at path under key.
func (s *S3Storage) UploadFile(ctx context.Context, path, key string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %q: %w", path, err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(contentType(key)),
	})
	if err != nil {
		return fmt.Errorf("put object %q: %w", key, err)
	}
	return nil
}

// Bucket returns the target bucket name.
func (s *S3Storage) Bucket() string {
	return s.bucket
}
