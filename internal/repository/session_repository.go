package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/registration-service/internal/domain"
)

// SessionRepository stores approval sessions keyed by operator chat id.
// It is an upsert-by-key store: at most one session per chat, and a later
// Put replaces an earlier one. Expiry is enforced by key TTL and re-checked
// at read time, so an expired session is indistinguishable from an absent
// one.
type SessionRepository interface {
	Put(ctx context.Context, session *domain.ApprovalSession) error
	// Get returns the live session for the chat, or nil when none exists.
	Get(ctx context.Context, chatID int64) (*domain.ApprovalSession, error)
	Delete(ctx context.Context, chatID int64) error
}

type sessionRepository struct {
	client *redis.Client
}

// NewSessionRepository returns a Redis-backed implementation.
func NewSessionRepository(client *redis.Client) SessionRepository {
	return &sessionRepository{client: client}
}

func sessionKey(chatID int64) string {
	return fmt.Sprintf("approval:session:%d", chatID)
}

func (r *sessionRepository) Put(ctx context.Context, session *domain.ApprovalSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return errors.New("session already expired")
	}

	return r.client.Set(ctx, sessionKey(session.ChatID), payload, ttl).Err()
}

func (r *sessionRepository) Get(ctx context.Context, chatID int64) (*domain.ApprovalSession, error) {
	payload, err := r.client.Get(ctx, sessionKey(chatID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var session domain.ApprovalSession
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}

	if session.Expired(time.Now()) {
		_ = r.client.Del(ctx, sessionKey(chatID)).Err()
		return nil, nil
	}
	return &session, nil
}

func (r *sessionRepository) Delete(ctx context.Context, chatID int64) error {
	return r.client.Del(ctx, sessionKey(chatID)).Err()
}
