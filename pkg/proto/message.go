package proto

import "ctchen222/Tic-Tac-Toe-Solo/internal/game"

// Client message types
const (
	TypeMove    = "move"
	TypeNewGame = "new_game"
)

// Server message types
const (
	TypeUpdate = "update"
	TypeError  = "error"
)

// ClientToServerMessage represents a message from the client to the server.
type ClientToServerMessage struct {
	Type     string `json:"type" validate:"required,oneof=move new_game"`
	Position []int  `json:"position,omitempty" validate:"omitempty,len=2,dive,min=0,max=2"`
}

// ServerToClientMessage represents a message from the server to the client.
type ServerToClientMessage struct {
	Type         string            `json:"type" validate:"required"`
	Reason       string            `json:"reason,omitempty"`
	GameID       string            `json:"gameId,omitempty"`
	Board        *game.Grid        `json:"board,omitempty"`
	Status       game.Status       `json:"status,omitempty"`
	Next         game.Player       `json:"next,omitempty"`
	Winner       game.Player       `json:"winner,omitempty"`
	Line         *game.WinningLine `json:"line,omitempty"`
	ComputerMove *game.Move        `json:"computerMove,omitempty"`
}
