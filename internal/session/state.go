package session

import (
	"ctchen222/Tic-Tac-Toe-Solo/internal/game"
	"fmt"
	"time"
)

// State is a snapshot of a session, used for rendering and storage.
type State struct {
	ID               string            `json:"id"`
	Board            game.Grid         `json:"board"`
	Status           game.Status       `json:"status"`
	Winner           game.Player       `json:"winner,omitempty"`
	Line             *game.WinningLine `json:"line,omitempty"`
	Next             game.Player       `json:"next,omitempty"`
	ComputerPending  bool              `json:"computer_pending"`
	LastComputerMove *game.Move        `json:"last_computer_move,omitempty"`
	// Version counts state transitions, starting at 1. Storage uses it to
	// reject writes based on an outdated snapshot.
	Version          int64             `json:"version"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := State{
		ID:              s.ID,
		Board:           s.board.Snapshot(),
		Status:          s.last.Status,
		Winner:          s.last.Winner,
		Line:            s.last.Line,
		ComputerPending: s.computerPending(),
		Version:         s.version,
		UpdatedAt:       s.updatedAt,
	}
	if s.computerMove != nil {
		m := *s.computerMove
		state.LastComputerMove = &m
	}
	switch {
	case s.last.Status.Terminal():
		state.Next = game.Empty
	case state.ComputerPending:
		state.Next = Computer
	default:
		state.Next = Human
	}
	return state
}

// Restore rebuilds a session from a stored snapshot. The outcome is derived
// from the board, not trusted from the snapshot.
func Restore(state State, calculator MoveCalculator) (*Session, error) {
	board := &game.Board{}
	result, err := board.Restore(state.Board)
	if err != nil {
		return nil, fmt.Errorf("failed to restore session %s: %w", state.ID, err)
	}

	s := &Session{
		ID:         state.ID,
		board:      board,
		calculator: calculator,
		last:       result,
		version:    state.Version,
		updatedAt:  state.UpdatedAt,
	}
	if state.LastComputerMove != nil && state.LastComputerMove.InRange() {
		m := *state.LastComputerMove
		s.computerMove = &m
	}
	if s.updatedAt.IsZero() {
		s.updatedAt = time.Now()
	}
	return s, nil
}
