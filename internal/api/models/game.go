package models

import (
	"ctchen222/Tic-Tac-Toe-Solo/internal/game"
	"ctchen222/Tic-Tac-Toe-Solo/internal/session"
)

// MoveRequest defines the structure for a human move request.
type MoveRequest struct {
	Row *int `json:"row" binding:"required,min=0,max=2"`
	Col *int `json:"col" binding:"required,min=0,max=2"`
}

// ComputerTurn is the computer's reply to a human move.
type ComputerTurn struct {
	Move   game.Move       `json:"move"`
	Result game.TurnResult `json:"result"`
}

// MoveResponse defines the structure returned after a turn. Computer is nil
// when the human's move ended the game.
type MoveResponse struct {
	Human    *game.TurnResult `json:"human,omitempty"`
	Computer *ComputerTurn    `json:"computer,omitempty"`
	State    session.State    `json:"state"`
}
