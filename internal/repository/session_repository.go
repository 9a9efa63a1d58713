package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/praesidion/wpbr-intake/internal/models"
	appErrors "github.com/praesidion/wpbr-intake/pkg/errors"
)

// SessionRepository keeps the live submission session per owner in redis.
// One key per owner enforces the single-live-session rule; the key TTL is
// refreshed on every save so redis expires abandoned sessions on its own.
type SessionRepository struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewSessionRepository constructs the repository. ttl is the inactivity
// window after which a session is gone.
func NewSessionRepository(client *redis.Client, ttl time.Duration, logger *zap.Logger) *SessionRepository {
	return &SessionRepository{client: client, ttl: ttl, logger: logger}
}

func sessionKey(ownerID string) string {
	return "wpbr:session:" + ownerID
}

// Get loads the owner's session. Returns ErrNotFound when none is live.
func (r *SessionRepository) Get(ctx context.Context, ownerID string) (*models.SubmissionSession, error) {
	raw, err := r.client.Get(ctx, sessionKey(ownerID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no live session")
		}
		return nil, fmt.Errorf("redis get session %s: %w", ownerID, err)
	}

	var session models.SubmissionSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", ownerID, err)
	}
	return &session, nil
}

// Save stores the session and refreshes its TTL.
func (r *SessionRepository) Save(ctx context.Context, session *models.SubmissionSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", session.OwnerID, err)
	}
	if err := r.client.Set(ctx, sessionKey(session.OwnerID), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session %s: %w", session.OwnerID, err)
	}
	return nil
}

// Delete removes the owner's session; deleting a missing key is not an error.
func (r *SessionRepository) Delete(ctx context.Context, ownerID string) error {
	if err := r.client.Del(ctx, sessionKey(ownerID)).Err(); err != nil {
		return fmt.Errorf("redis delete session %s: %w", ownerID, err)
	}
	return nil
}
