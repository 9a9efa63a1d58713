package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praesidion/wpbr-intake/internal/models"
	appErrors "github.com/praesidion/wpbr-intake/pkg/errors"
)

type stubTrackingStore struct {
	rows     map[string]*models.EmailTracking
	openErr  error
	delivErr error
}

func newStubTrackingStore() *stubTrackingStore {
	return &stubTrackingStore{rows: map[string]*models.EmailTracking{}}
}

func (s *stubTrackingStore) MarkDelivered(ctx context.Context, token string, at time.Time) error {
	if s.delivErr != nil {
		return s.delivErr
	}
	row, ok := s.rows[token]
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "tracking token unknown")
	}
	if row.DeliveredAt == nil {
		row.DeliveredAt = &at
	}
	return nil
}

func (s *stubTrackingStore) RecordOpen(ctx context.Context, token string, at time.Time) error {
	if s.openErr != nil {
		return s.openErr
	}
	row, ok := s.rows[token]
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "tracking token unknown")
	}
	row.ReadCount++
	if row.ReadAt == nil {
		row.ReadAt = &at
	}
	return nil
}

func (s *stubTrackingStore) GetByToken(ctx context.Context, token, ownerID string) (*models.EmailTracking, error) {
	row, ok := s.rows[token]
	if !ok || row.OwnerID != ownerID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "tracking token unknown")
	}
	return row, nil
}

func (s *stubTrackingStore) ListBySubmission(ctx context.Context, submissionID, ownerID string) ([]models.EmailTracking, error) {
	out := []models.EmailTracking{}
	for _, row := range s.rows {
		if row.SubmissionID == submissionID && row.OwnerID == ownerID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func TestRecordOpenSwallowsUnknownToken(t *testing.T) {
	store := newStubTrackingStore()
	svc := NewTrackingService(store, nil)

	// Must not panic or surface an error path to the caller.
	svc.RecordOpen(context.Background(), "geen-token")
}

func TestRecordOpenBumpsCountOnce(t *testing.T) {
	store := newStubTrackingStore()
	store.rows["tok-1"] = &models.EmailTracking{Token: "tok-1", OwnerID: "user-1"}
	svc := NewTrackingService(store, nil)

	svc.RecordOpen(context.Background(), "tok-1")
	svc.RecordOpen(context.Background(), "tok-1")

	row := store.rows["tok-1"]
	assert.Equal(t, 2, row.ReadCount)
	require.NotNil(t, row.ReadAt)
}

func TestStatusIsOwnerScoped(t *testing.T) {
	store := newStubTrackingStore()
	store.rows["tok-1"] = &models.EmailTracking{
		Token: "tok-1", OwnerID: "user-1", SubmissionID: "sub-1",
		ToEmail: "afdeling@politie.nl", SentAt: time.Now(),
	}
	svc := NewTrackingService(store, nil)

	view, err := svc.Status(context.Background(), models.Principal{UserID: "user-1"}, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "verzonden", view.Status)

	_, err = svc.Status(context.Background(), models.Principal{UserID: "user-2"}, "tok-1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestListBySubmission(t *testing.T) {
	store := newStubTrackingStore()
	read := time.Now()
	store.rows["tok-1"] = &models.EmailTracking{Token: "tok-1", OwnerID: "user-1", SubmissionID: "sub-1", ReadAt: &read, ReadCount: 3}
	store.rows["tok-2"] = &models.EmailTracking{Token: "tok-2", OwnerID: "user-1", SubmissionID: "sub-1"}
	store.rows["tok-3"] = &models.EmailTracking{Token: "tok-3", OwnerID: "user-1", SubmissionID: "sub-2"}
	svc := NewTrackingService(store, nil)

	views, err := svc.ListBySubmission(context.Background(), models.Principal{UserID: "user-1"}, "sub-1")
	require.NoError(t, err)
	assert.Len(t, views, 2)
}
