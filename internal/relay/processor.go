// Package relay implements the upload socket: each JSON frame carries a
// base64 payload that is written to disk, uploaded to the configured bucket
// and acknowledged with a text reply.
package relay

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wsupload/service/internal/storage"
)

// Outcome describes one upload attempt.
type Outcome struct {
	ConnID   string
	Bucket   string
	Key      string
	Size     int64
	Duration time.Duration
	Err      error
}

// Recorder persists upload outcomes. Implementations must not block for long
// and must handle their own errors.
type Recorder interface {
	Record(ctx context.Context, o Outcome)
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, Outcome) {}

// Processor runs the decode, write, upload and cleanup cycle for one frame.
// It is safe for concurrent use: every frame gets its own local file.
type Processor struct {
	uploader storage.Uploader
	dir      string
	key      string
	recorder Recorder
	metrics  *Metrics
}

// NewProcessor creates a Processor that stages files in dir and uploads them
// under key. A nil recorder disables history; nil metrics are unregistered.
func NewProcessor(uploader storage.Uploader, dir, key string, recorder Recorder, metrics *Metrics) *Processor {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Processor{
		uploader: uploader,
		dir:      dir,
		key:      key,
		recorder: recorder,
		metrics:  metrics,
	}
}

// SuccessReply is the text sent after a successful upload.
func (p *Processor) SuccessReply() string {
	return fmt.Sprintf("File %s uploaded successfully to %s!", p.key, p.uploader.Bucket())
}

// Process handles a single frame and returns the reply text on success.
func (p *Processor) Process(ctx context.Context, connID string, frame []byte) (string, *Error) {
	log := zerolog.Ctx(ctx)

	data, err := decodePayload(frame)
	if err != nil {
		p.metrics.observe(decodeErr(err))
		return "", decodeErr(err)
	}

	path := p.localPath()
	defer p.cleanup(log, path)

	if err := writeFile(path, data); err != nil {
		p.metrics.observe(ioErr(err))
		return "", ioErr(err)
	}
	log.Debug().Str("path", path).Int("bytes", len(data)).Msg("file saved locally")

	start := time.Now()
	uerr := p.uploader.UploadFile(ctx, path, p.key)
	elapsed := time.Since(start)
	p.metrics.uploadDuration.Observe(elapsed.Seconds())

	p.recorder.Record(ctx, Outcome{
		ConnID:   connID,
		Bucket:   p.uploader.Bucket(),
		Key:      p.key,
		Size:     int64(len(data)),
		Duration: elapsed,
		Err:      uerr,
	})

	if uerr != nil {
		log.Error().Err(uerr).Str("key", p.key).Msg("upload failed")
		p.metrics.observe(uploadErr(uerr))
		return "", uploadErr(uerr)
	}

	log.Info().
		Str("bucket", p.uploader.Bucket()).
		Str("key", p.key).
		Int("bytes", len(data)).
		Dur("duration", elapsed).
		Msg("file uploaded")
	p.metrics.observe(nil)
	p.metrics.uploadedBytes.Add(float64(len(data)))
	return p.SuccessReply(), nil
}

// localPath returns a fresh staging path so concurrent frames never collide.
func (p *Processor) localPath() string {
	return filepath.Join(p.dir, uuid.NewString()+"-"+filepath.Base(p.key))
}

func writeFile(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create local file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write local file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close local file: %w", err)
	}
	return nil
}

// cleanup removes the staged file. Failures are logged and otherwise ignored.
func (p *Processor) cleanup(log *zerolog.Logger, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Str("path", path).Msg("remove local file")
	}
}
