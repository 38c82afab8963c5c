package history

import (
	"context"
	"time"

	"github.com/wsupload/service/internal/logger"
	"github.com/wsupload/service/internal/relay"
)

// recordTimeout bounds a single history insert.
const recordTimeout = 5 * time.Second

// Store is the persistence used by Service; *Repository satisfies it.
type Store interface {
	Insert(ctx context.Context, a *Attempt) error
	ListRecent(ctx context.Context, limit int) ([]Attempt, error)
}

// Service records upload outcomes and serves the history listing.
type Service struct {
	store Store
}

// NewService creates a new history Service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Record stores o. It implements relay.Recorder; failures are logged only,
// and the insert outlives a closing connection.
func (s *Service) Record(ctx context.Context, o relay.Outcome) {
	a := &Attempt{
		ConnID:     o.ConnID,
		Bucket:     o.Bucket,
		Key:        o.Key,
		SizeBytes:  o.Size,
		Status:     StatusSucceeded,
		DurationMS: o.Duration.Milliseconds(),
	}
	if o.Err != nil {
		msg := o.Err.Error()
		a.Status = StatusFailed
		a.Error = &msg
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	if err := s.store.Insert(ctx, a); err != nil {
		logger.Log.Error().Err(err).Str("conn_id", o.ConnID).Msg("history: record upload attempt")
	}
}

// Recent returns the newest attempts.
func (s *Service) Recent(ctx context.Context, limit int) ([]Attempt, error) {
	return s.store.ListRecent(ctx, limit)
}
