// Package storage uploads local files to an S3-compatible bucket.
// Two drivers exist: the AWS SDK for AWS S3 and minio-go for any S3-compatible
// provider. The bucket is bound when the driver is constructed.
package storage

import (
	"context"
	"mime"
	"path/filepath"
)

// Uploader copies a local file to an object in a fixed bucket.
type Uploader interface {
	// UploadFile uploads the file at path under key, overwriting any existing object.
	UploadFile(ctx context.Context, path, key string) error
	// Bucket returns the bucket objects are written to.
	Bucket() string
}

// contentType guesses a MIME type from the object key.
func contentType(key string) string {
	if ct := mime.TypeByExtension(filepath.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
