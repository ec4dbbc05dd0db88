package hub

import (
	"context"
	"ctchen222/Tic-Tac-Toe-Solo/internal/game"
	"ctchen222/Tic-Tac-Toe-Solo/internal/repository"
	"ctchen222/Tic-Tac-Toe-Solo/internal/session"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("hub")
	meter  = otel.Meter("hub")
)

// ErrSessionNotFound is returned for an unknown or expired session ID.
var ErrSessionNotFound = repository.ErrSessionNotFound

// maxAttempts bounds how often an operation is replayed on a fresh snapshot
// after losing a write race.
const maxAttempts = 3

// Options tunes session eviction.
type Options struct {
	// SweepInterval is how often expired snapshots are freed from a
	// repository that implements repository.Sweeper. Zero disables sweeping.
	SweepInterval time.Duration
}

// Hub serves sessions out of the repository. It keeps no session state of its
// own: every operation loads the stored snapshot, applies one transition and
// saves it back with a version check, so any number of hubs may share a
// repository.
type Hub struct {
	repo       repository.SessionRepository
	calculator session.MoveCalculator
	opts       Options

	moves    metric.Int64Counter
	finished metric.Int64Counter
}

// NewHub creates a new hub.
func NewHub(repo repository.SessionRepository, calculator session.MoveCalculator, opts Options) (*Hub, error) {
	moves, err := meter.Int64Counter("tictactoe.moves",
		metric.WithDescription("Marks placed on a board"),
		metric.WithUnit("{move}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create moves counter: %w", err)
	}
	finished, err := meter.Int64Counter("tictactoe.games.finished",
		metric.WithDescription("Games that ended in a win or a draw"),
		metric.WithUnit("{game}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create finished games counter: %w", err)
	}

	return &Hub{
		repo:       repo,
		calculator: calculator,
		opts:       opts,
		moves:      moves,
		finished:   finished,
	}, nil
}

// CreateSession starts a new session and returns its initial state.
func (h *Hub) CreateSession(ctx context.Context) (session.State, error) {
	ctx, span := tracer.Start(ctx, "hub.CreateSession")
	defer span.End()

	s := session.New(uuid.New().String(), h.calculator)
	span.SetAttributes(attribute.String("session.id", s.ID))

	state := s.State()
	if err := h.repo.Save(ctx, state); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to save new session")
		return session.State{}, fmt.Errorf("failed to save new session: %w", err)
	}

	slog.InfoContext(ctx, "Session created", "session.id", s.ID)
	return state, nil
}

// load rebuilds the session from its stored snapshot.
func (h *Hub) load(ctx context.Context, id string) (*session.Session, error) {
	stored, err := h.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return session.Restore(*stored, h.calculator)
}

// update runs apply on the latest snapshot of session id and saves the
// result. When another writer saved first, apply is replayed on the newer
// snapshot. An error from apply aborts without saving and is returned with
// the state apply saw.
func (h *Hub) update(ctx context.Context, id string, apply func(*session.Session) error) (session.State, error) {
	span := trace.SpanFromContext(ctx)

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		var s *session.Session
		s, err = h.load(ctx, id)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Session lookup failed")
			return session.State{}, err
		}

		if err := apply(s); err != nil {
			return s.State(), err
		}

		state := s.State()
		err = h.repo.Save(ctx, state)
		if err == nil {
			return state, nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			break
		}
		slog.DebugContext(ctx, "Session changed while updating, retrying", "session.id", id, "attempt", attempt)
	}

	slog.ErrorContext(ctx, "Failed to save session", "session.id", id, "error", err)
	span.RecordError(err)
	span.SetStatus(codes.Error, "Failed to save session")
	return session.State{}, fmt.Errorf("failed to save session: %w", err)
}

// State returns the current state of a session.
func (h *Hub) State(ctx context.Context, id string) (session.State, error) {
	s, err := h.load(ctx, id)
	if err != nil {
		return session.State{}, err
	}
	return s.State(), nil
}

// PlayHuman applies the human's move and stores the new state.
func (h *Hub) PlayHuman(ctx context.Context, id string, row, col int) (game.TurnResult, session.State, error) {
	ctx, span := tracer.Start(ctx, "hub.PlayHuman", trace.WithAttributes(
		attribute.String("session.id", id),
	))
	defer span.End()

	var result game.TurnResult
	state, err := h.update(ctx, id, func(s *session.Session) error {
		var err error
		result, err = s.PlayHuman(ctx, row, col)
		return err
	})
	if err != nil {
		return game.TurnResult{}, state, err
	}
	h.record(ctx, session.Human, result)
	return result, state, nil
}

// PlayComputer runs the pending computer turn and stores the new state.
func (h *Hub) PlayComputer(ctx context.Context, id string) (game.Move, game.TurnResult, session.State, error) {
	ctx, span := tracer.Start(ctx, "hub.PlayComputer", trace.WithAttributes(
		attribute.String("session.id", id),
	))
	defer span.End()

	var (
		move   game.Move
		result game.TurnResult
	)
	state, err := h.update(ctx, id, func(s *session.Session) error {
		var err error
		move, result, err = s.PlayComputer(ctx)
		return err
	})
	if err != nil {
		return game.Move{}, game.TurnResult{}, state, err
	}
	h.record(ctx, session.Computer, result)
	return move, result, state, nil
}

// Reset starts a new game in an existing session.
func (h *Hub) Reset(ctx context.Context, id string) (session.State, error) {
	ctx, span := tracer.Start(ctx, "hub.Reset", trace.WithAttributes(
		attribute.String("session.id", id),
	))
	defer span.End()

	state, err := h.update(ctx, id, func(s *session.Session) error {
		s.Reset(ctx)
		return nil
	})
	if err != nil {
		return state, err
	}
	slog.InfoContext(ctx, "New game started", "session.id", id)
	return state, nil
}

// Remove deletes a session. Removing an unknown session is not an error.
func (h *Hub) Remove(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "hub.Remove", trace.WithAttributes(
		attribute.String("session.id", id),
	))
	defer span.End()

	if err := h.repo.Delete(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to delete session")
		return fmt.Errorf("failed to delete session: %w", err)
	}
	slog.InfoContext(ctx, "Session removed", "session.id", id)
	return nil
}

func (h *Hub) record(ctx context.Context, by game.Player, result game.TurnResult) {
	h.moves.Add(ctx, 1, metric.WithAttributes(attribute.String("player", by.String())))

	var outcome string
	switch {
	case result.Status == game.StatusDraw:
		outcome = "draw"
	case result.Status == game.StatusWin && result.Winner == session.Human:
		outcome = "human_win"
	case result.Status == game.StatusWin:
		outcome = "computer_win"
	default:
		return
	}
	h.finished.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	slog.InfoContext(ctx, "Game finished", "game.outcome", outcome)
}
