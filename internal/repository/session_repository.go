package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mfnunez/avisia-utm-builder/internal/form"
	"github.com/mfnunez/avisia-utm-builder/internal/models"
	"github.com/redis/go-redis/v9"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrStateNotFound   = errors.New("oauth state not found")
)

const (
	sessionTTL = 12 * time.Hour
	// login round-trips to the provider should complete well within this
	stateTTL = 10 * time.Minute
)

// SessionRepository keeps authenticated sessions, one-shot OAuth state
// nonces and the per-session form view-model in Redis.
type SessionRepository interface {
	CreateSession(ctx context.Context, session *models.Session) error
	GetSession(ctx context.Context, id string) (*models.Session, error)
	DeleteSession(ctx context.Context, id string) error

	SetState(ctx context.Context, state string) error
	TakeState(ctx context.Context, state string) error

	SaveFormState(ctx context.Context, sessionID string, state form.State) error
	GetFormState(ctx context.Context, sessionID string) (form.State, error)
}

type sessionRepository struct {
	redis *RedisDB
}

func NewSessionRepository(redis *RedisDB) SessionRepository {
	return &sessionRepository{redis: redis}
}

func (r *sessionRepository) CreateSession(ctx context.Context, session *models.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	return r.redis.Client.Set(ctx, sessionKey(session.ID), data, sessionTTL).Err()
}

func (r *sessionRepository) GetSession(ctx context.Context, id string) (*models.Session, error) {
	data, err := r.redis.Client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &session, nil
}

func (r *sessionRepository) DeleteSession(ctx context.Context, id string) error {
	if err := r.redis.Client.Del(ctx, sessionKey(id), formKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *sessionRepository) SetState(ctx context.Context, state string) error {
	return r.redis.Client.Set(ctx, stateKey(state), "1", stateTTL).Err()
}

// TakeState consumes an OAuth state nonce. Each nonce is valid for exactly
// one callback; a second take fails with ErrStateNotFound.
func (r *sessionRepository) TakeState(ctx context.Context, state string) error {
	deleted, err := r.redis.Client.Del(ctx, stateKey(state)).Result()
	if err != nil {
		return fmt.Errorf("failed to take oauth state: %w", err)
	}
	if deleted == 0 {
		return ErrStateNotFound
	}
	return nil
}

func (r *sessionRepository) SaveFormState(ctx context.Context, sessionID string, state form.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal form state: %w", err)
	}

	return r.redis.Client.Set(ctx, formKey(sessionID), data, sessionTTL).Err()
}

// GetFormState returns the stored view-model, or the default state when the
// session has none yet.
func (r *sessionRepository) GetFormState(ctx context.Context, sessionID string) (form.State, error) {
	data, err := r.redis.Client.Get(ctx, formKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return form.DefaultState(), nil
		}
		return form.State{}, fmt.Errorf("failed to get form state: %w", err)
	}

	var state form.State
	if err := json.Unmarshal(data, &state); err != nil {
		return form.State{}, fmt.Errorf("failed to unmarshal form state: %w", err)
	}
	if state.Selected == nil {
		state.Selected = map[string]struct{}{}
	}

	return state, nil
}

func sessionKey(id string) string {
	return "session:" + id
}

func stateKey(state string) string {
	return "oauth_state:" + state
}

func formKey(sessionID string) string {
	return "form:" + sessionID
}
