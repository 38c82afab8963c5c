package storage

import (
	"context"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/wsupload/service/internal/storage"

type tracedUploader struct {
	next   Uploader
	tracer trace.Tracer
}

// WithTracing wraps u so every upload runs inside a "storage.upload" span taken
// from the global tracer provider.
func WithTracing(u Uploader) Uploader {
	return &tracedUploader{next: u, tracer: otel.Tracer(tracerName)}
}

func (t *tracedUploader) UploadFile(ctx context.Context, path, key string) error {
	attrs := []attribute.KeyValue{
		attribute.String("storage.bucket", t.next.Bucket()),
		attribute.String("storage.key", key),
	}
	if info, err := os.Stat(path); err == nil {
		attrs = append(attrs, attribute.Int64("storage.size", info.Size()))
	}

	ctx, span := t.tracer.Start(ctx, "storage.upload", trace.WithAttributes(attrs...))
	defer span.End()

	if err := t.next.UploadFile(ctx, path, key); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (t *tracedUploader) Bucket() string {
	return t.next.Bucket()
}
