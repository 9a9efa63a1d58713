package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/praesidion/wpbr-intake/internal/models"
	appErrors "github.com/praesidion/wpbr-intake/pkg/errors"
)

const trackingColumns = `id, token, to_email, subject, owner_id, submission_id, sent_at, delivered_at, read_at, read_count`

// TrackingRepository persists the email delivery log.
type TrackingRepository struct {
	db *sqlx.DB
}

// NewTrackingRepository constructs the repository.
func NewTrackingRepository(db *sqlx.DB) *TrackingRepository {
	return &TrackingRepository{db: db}
}

// Create inserts one tracking row. Rows are append-only; later status moves
// go through the atomic update statements below.
func (r *TrackingRepository) Create(ctx context.Context, t *models.EmailTracking) error {
	if t.SentAt.IsZero() {
		t.SentAt = time.Now().UTC()
	}
	const query = `INSERT INTO email_tracking
	(token, to_email, subject, owner_id, submission_id, sent_at, read_count)
	VALUES (:token, :to_email, :subject, :owner_id, :submission_id, :sent_at, 0)`
	if _, err := r.db.NamedExecContext(ctx, query, t); err != nil {
		return fmt.Errorf("create tracking row: %w", err)
	}
	return nil
}

// MarkDelivered stamps delivered_at once; repeats keep the first timestamp.
func (r *TrackingRepository) MarkDelivered(ctx context.Context, token string, at time.Time) error {
	const query = `UPDATE email_tracking SET delivered_at = COALESCE(delivered_at, $2) WHERE token = $1`
	res, err := r.db.ExecContext(ctx, query, token, at.UTC())
	if err != nil {
		return fmt.Errorf("mark delivered: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "tracking token unknown")
	}
	return nil
}

// RecordOpen bumps read_count and stamps the first read in one statement, so
// concurrent pixel hits never lose an increment.
func (r *TrackingRepository) RecordOpen(ctx context.Context, token string, at time.Time) error {
	const query = `UPDATE email_tracking
	SET read_count = read_count + 1, read_at = COALESCE(read_at, $2)
	WHERE token = $1`
	res, err := r.db.ExecContext(ctx, query, token, at.UTC())
	if err != nil {
		return fmt.Errorf("record open: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "tracking token unknown")
	}
	return nil
}

// GetByToken fetches one row scoped to its owner.
func (r *TrackingRepository) GetByToken(ctx context.Context, token, ownerID string) (*models.EmailTracking, error) {
	query := `SELECT ` + trackingColumns + ` FROM email_tracking WHERE token = $1 AND owner_id = $2`
	var row models.EmailTracking
	if err := r.db.GetContext(ctx, &row, query, token, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "tracking token unknown")
		}
		return nil, fmt.Errorf("get tracking row: %w", err)
	}
	return &row, nil
}

// ListBySubmission returns both rows of one submission, oldest first.
func (r *TrackingRepository) ListBySubmission(ctx context.Context, submissionID, ownerID string) ([]models.EmailTracking, error) {
	query := `SELECT ` + trackingColumns + ` FROM email_tracking
	WHERE submission_id = $1 AND owner_id = $2 ORDER BY sent_at ASC, id ASC`
	rows := []models.EmailTracking{}
	if err := r.db.SelectContext(ctx, &rows, query, submissionID, ownerID); err != nil {
		return nil, fmt.Errorf("list tracking rows: %w", err)
	}
	return rows, nil
}
