// Package history keeps a Postgres record of every upload attempt.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Attempt statuses.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Attempt is one stored upload attempt.
type Attempt struct {
	ID         string    `json:"id"`
	ConnID     string    `json:"connId"`
	Bucket     string    `json:"bucket"`
	Key        string    `json:"key"`
	SizeBytes  int64     `json:"sizeBytes"`
	Status     string    `json:"status"`
	Error      *string   `json:"error,omitempty"`
	DurationMS int64     `json:"durationMs"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Repository handles upload_attempts database operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Insert stores an attempt and fills in its generated ID and timestamp.
func (r *Repository) Insert(ctx context.Context, a *Attempt) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO upload_attempts (conn_id, bucket, object_key, size_bytes, status, error, duration_ms)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		a.ConnID, a.Bucket, a.Key, a.SizeBytes, a.Status, a.Error, a.DurationMS,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert upload attempt: %w", err)
	}
	return nil
}

// ListRecent returns up to limit attempts, newest first.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]Attempt, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, conn_id, bucket, object_key, size_bytes, status, error, duration_ms, created_at
		 FROM upload_attempts
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list upload attempts: %w", err)
	}

	attempts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Attempt, error) {
		var a Attempt
		err := row.Scan(&a.ID, &a.ConnID, &a.Bucket, &a.Key, &a.SizeBytes,
			&a.Status, &a.Error, &a.DurationMS, &a.CreatedAt)
		return a, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan upload attempts: %w", err)
	}
	return attempts, nil
}
