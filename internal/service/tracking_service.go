package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/praesidion/wpbr-intake/internal/dto"
	"github.com/praesidion/wpbr-intake/internal/models"
)

type trackingStore interface {
	MarkDelivered(ctx context.Context, token string, at time.Time) error
	RecordOpen(ctx context.Context, token string, at time.Time) error
	GetByToken(ctx context.Context, token, ownerID string) (*models.EmailTracking, error)
	ListBySubmission(ctx context.Context, submissionID, ownerID string) ([]models.EmailTracking, error)
}

// TrackingService reads and advances the email delivery log.
type TrackingService struct {
	repo   trackingStore
	logger *zap.Logger
	now    func() time.Time
}

// NewTrackingService constructs the service.
func NewTrackingService(repo trackingStore, logger *zap.Logger) *TrackingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrackingService{repo: repo, logger: logger, now: time.Now}
}

// RecordOpen registers a pixel hit. Unknown tokens are logged and swallowed:
// the caller always serves the pixel, so probing tokens reveals nothing.
func (s *TrackingService) RecordOpen(ctx context.Context, token string) {
	if err := s.repo.RecordOpen(ctx, token, s.now()); err != nil {
		s.logger.Debug("open event not recorded", zap.Error(err))
	}
}

// RecordDelivered registers a delivery callback the same way.
func (s *TrackingService) RecordDelivered(ctx context.Context, token string) {
	if err := s.repo.MarkDelivered(ctx, token, s.now()); err != nil {
		s.logger.Debug("delivery event not recorded", zap.Error(err))
	}
}

// Status returns one row, owner-scoped.
func (s *TrackingService) Status(ctx context.Context, principal models.Principal, token string) (*dto.TrackingView, error) {
	row, err := s.repo.GetByToken(ctx, token, principal.UserID)
	if err != nil {
		return nil, err
	}
	view := toTrackingView(row)
	return &view, nil
}

// ListBySubmission returns the delivery log of one submission, owner-scoped.
func (s *TrackingService) ListBySubmission(ctx context.Context, principal models.Principal, submissionID string) ([]dto.TrackingView, error) {
	rows, err := s.repo.ListBySubmission(ctx, submissionID, principal.UserID)
	if err != nil {
		return nil, err
	}
	views := make([]dto.TrackingView, 0, len(rows))
	for i := range rows {
		views = append(views, toTrackingView(&rows[i]))
	}
	return views, nil
}

func toTrackingView(row *models.EmailTracking) dto.TrackingView {
	return dto.TrackingView{
		Token:        row.Token,
		ToEmail:      row.ToEmail,
		Subject:      row.Subject,
		Status:       row.Status(),
		SubmissionID: row.SubmissionID,
		SentAt:       row.SentAt,
		DeliveredAt:  row.DeliveredAt,
		ReadAt:       row.ReadAt,
		ReadCount:    row.ReadCount,
	}
}
