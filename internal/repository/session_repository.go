package repository

import (
	"context"
	"ctchen222/Tic-Tac-Toe-Solo/internal/session"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

//go:generate mockgen -destination=mocks/mock_session_repository.go -package=mocks . SessionRepository

var tracer = otel.Tracer("repository.session")

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrVersionConflict = errors.New("session was modified concurrently")
)

// SessionRepository stores the live snapshot of each session.
//
// Save is a compare-and-set on State.Version: it stores state only when the
// stored snapshot has version state.Version-1, or when no snapshot exists and
// state.Version is 1. Otherwise it fails with ErrVersionConflict, or with
// ErrSessionNotFound when the snapshot it was based on is gone.
type SessionRepository interface {
	Save(ctx context.Context, state session.State) error
	FindByID(ctx context.Context, id string) (*session.State, error)
	Delete(ctx context.Context, id string) error
}

type redisSessionRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSessionRepository creates a new Redis-based SessionRepository. Each
// snapshot expires ttl after its last save; a zero ttl keeps it forever.
func NewSessionRepository(rdb *redis.Client, ttl time.Duration) SessionRepository {
	return &redisSessionRepository{rdb: rdb, ttl: ttl}
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

// Save stores state under WATCH so a concurrent writer aborts the transaction,
// and refreshes the snapshot's expiry.
func (r *redisSessionRepository) Save(ctx context.Context, state session.State) error {
	ctx, span := tracer.Start(ctx, "SessionRepository.Save", trace.WithAttributes(
		attribute.String("session.id", state.ID),
		attribute.Int64("session.version", state.Version),
	))
	defer span.End()

	data, err := json.Marshal(state)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to marshal session")
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	key := sessionKey(state.ID)
	err = r.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			if err := checkVersion(state, nil); err != nil {
				return err
			}
		case err != nil:
			return fmt.Errorf("failed to get session from redis: %w", err)
		default:
			var stored session.State
			if err := json.Unmarshal(current, &stored); err != nil {
				return fmt.Errorf("failed to unmarshal session: %w", err)
			}
			if err := checkVersion(state, &stored); err != nil {
				return err
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		err = fmt.Errorf("%w: %s", ErrVersionConflict, state.ID)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to save session")
		if errors.Is(err, ErrVersionConflict) || errors.Is(err, ErrSessionNotFound) {
			return err
		}
		return fmt.Errorf("failed to save session in redis: %w", err)
	}
	return nil
}

// checkVersion reports whether state may replace stored. A nil stored means
// no snapshot exists.
func checkVersion(state session.State, stored *session.State) error {
	switch {
	case stored == nil && state.Version <= 1:
		return nil
	case stored == nil:
		return fmt.Errorf("%w: %s", ErrSessionNotFound, state.ID)
	case stored.Version != state.Version-1:
		return fmt.Errorf("%w: %s is at version %d, write is based on %d",
			ErrVersionConflict, state.ID, stored.Version, state.Version-1)
	}
	return nil
}

// FindByID retrieves a session snapshot from Redis.
func (r *redisSessionRepository) FindByID(ctx context.Context, id string) (*session.State, error) {
	ctx, span := tracer.Start(ctx, "SessionRepository.FindByID", trace.WithAttributes(
		attribute.String("session.id", id),
	))
	defer span.End()

	data, err := r.rdb.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to get session")
		return nil, fmt.Errorf("failed to get session from redis: %w", err)
	}

	var state session.State
	if err := json.Unmarshal(data, &state); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to unmarshal session")
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &state, nil
}

// Delete removes a session snapshot. Deleting a missing session is not an error.
func (r *redisSessionRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "SessionRepository.Delete", trace.WithAttributes(
		attribute.String("session.id", id),
	))
	defer span.End()

	if err := r.rdb.Del(ctx, sessionKey(id)).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to delete session")
		return fmt.Errorf("failed to delete session from redis: %w", err)
	}
	return nil
}
