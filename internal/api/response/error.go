package response

import (
	"ctchen222/Tic-Tac-Toe-Solo/internal/game"
	"ctchen222/Tic-Tac-Toe-Solo/internal/repository"
	"ctchen222/Tic-Tac-Toe-Solo/internal/session"
	"errors"
	"net/http"
)

type errorStatus struct {
	target error
	code   int
}

// errorStatuses is checked in order; the first match wins.
var errorStatuses = []errorStatus{
	{repository.ErrSessionNotFound, http.StatusNotFound},
	{repository.ErrVersionConflict, http.StatusConflict},
	{game.ErrOutOfRange, http.StatusBadRequest},
	{game.ErrInvalidPlayer, http.StatusBadRequest},
	{game.ErrCellOccupied, http.StatusConflict},
	{game.ErrGameOver, http.StatusConflict},
	{game.ErrBoardFull, http.StatusConflict},
	{session.ErrComputerTurnPending, http.StatusConflict},
	{session.ErrNotComputerTurn, http.StatusConflict},
}

// StatusFor maps a domain error to an HTTP status code. Unknown errors are
// reported as 500.
func StatusFor(err error) int {
	for _, es := range errorStatuses {
		if errors.Is(err, es.target) {
			return es.code
		}
	}
	return http.StatusInternalServerError
}
