package session

import (
	"context"
	"ctchen222/Tic-Tac-Toe-Solo/internal/game"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("session")

var (
	ErrComputerTurnPending = errors.New("computer turn in progress")
	ErrNotComputerTurn     = errors.New("no computer turn pending")
)

// The human always moves first.
const (
	Human    = game.Player1
	Computer = game.Player2
)

// MoveCalculator defines an interface for an agent that can calculate a game move.
type MoveCalculator interface {
	CalculateNextMove(ctx context.Context, grid game.Grid, me game.Player) (game.Move, error)
}

// Session is one human's game against the computer. A human move that leaves
// the game open puts the session in a pending state until PlayComputer runs;
// human input is rejected meanwhile.
type Session struct {
	ID string

	mu           sync.Mutex
	board        *game.Board
	calculator   MoveCalculator
	last         game.TurnResult
	computerMove *game.Move
	version      int64
	updatedAt    time.Time
}

// New creates a session with an empty board.
func New(id string, calculator MoveCalculator) *Session {
	return &Session{
		ID:         id,
		board:      game.NewBoard(),
		calculator: calculator,
		last:       game.TurnResult{Status: game.StatusContinue},
		version:    1,
		updatedAt:  time.Now(),
	}
}

// computerPending reports whether the computer owes a move. s.mu must be held.
func (s *Session) computerPending() bool {
	grid := s.board.Snapshot()
	return !s.last.Status.Terminal() && grid.Count(Human) > grid.Count(Computer)
}

// PlayHuman marks (row, col) for the human player.
func (s *Session) PlayHuman(ctx context.Context, row, col int) (game.TurnResult, error) {
	ctx, span := tracer.Start(ctx, "session.PlayHuman", trace.WithAttributes(
		attribute.String("session.id", s.ID),
		attribute.Int("move.row", row),
		attribute.Int("move.col", col),
	))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.computerPending() {
		slog.WarnContext(ctx, "ignoring human move during computer turn", "session.id", s.ID)
		span.SetStatus(codes.Error, "Computer turn pending")
		return game.TurnResult{}, ErrComputerTurnPending
	}

	result, err := s.board.Mark(row, col, Human)
	if err != nil {
		slog.WarnContext(ctx, "invalid move from player", "session.id", s.ID, "error", err)
		span.SetAttributes(attribute.Bool("move.valid", false))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid move")
		return game.TurnResult{}, fmt.Errorf("human move %s: %w", game.Move{Row: row, Col: col}, err)
	}
	span.SetAttributes(attribute.Bool("move.valid", true), attribute.String("turn.status", string(result.Status)))

	s.last = result
	s.computerMove = nil
	s.version++
	s.updatedAt = time.Now()
	return result, nil
}

// PlayComputer asks the calculator for the computer's move and marks it.
func (s *Session) PlayComputer(ctx context.Context) (game.Move, game.TurnResult, error) {
	ctx, span := tracer.Start(ctx, "session.PlayComputer", trace.WithAttributes(
		attribute.String("session.id", s.ID),
	))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.computerPending() {
		span.SetStatus(codes.Error, "No computer turn pending")
		return game.Move{}, game.TurnResult{}, ErrNotComputerTurn
	}

	move, err := s.calculator.CalculateNextMove(ctx, s.board.Snapshot(), Computer)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to calculate computer move")
		return game.Move{}, game.TurnResult{}, fmt.Errorf("failed to calculate computer move: %w", err)
	}

	result, err := s.board.Mark(move.Row, move.Col, Computer)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Computer chose an invalid move")
		return game.Move{}, game.TurnResult{}, fmt.Errorf("computer move %s: %w", move, err)
	}
	span.SetAttributes(
		attribute.Int("move.row", move.Row),
		attribute.Int("move.col", move.Col),
		attribute.String("turn.status", string(result.Status)),
	)

	s.last = result
	s.computerMove = &move
	s.version++
	s.updatedAt = time.Now()
	return move, result, nil
}

// Reset starts a new game in the same session.
func (s *Session) Reset(ctx context.Context) {
	_, span := tracer.Start(ctx, "session.Reset", trace.WithAttributes(
		attribute.String("session.id", s.ID),
	))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.board.Init()
	s.last = game.TurnResult{Status: game.StatusContinue}
	s.computerMove = nil
	s.version++
	s.updatedAt = time.Now()
}
