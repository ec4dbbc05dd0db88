package controller

import (
	"context"
	"ctchen222/Tic-Tac-Toe-Solo/internal/api/models"
	"ctchen222/Tic-Tac-Toe-Solo/internal/api/response"
	"ctchen222/Tic-Tac-Toe-Solo/internal/game"
	"ctchen222/Tic-Tac-Toe-Solo/internal/session"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GameService is the part of the hub the REST API drives.
type GameService interface {
	CreateSession(ctx context.Context) (session.State, error)
	State(ctx context.Context, id string) (session.State, error)
	PlayHuman(ctx context.Context, id string, row, col int) (game.TurnResult, session.State, error)
	PlayComputer(ctx context.Context, id string) (game.Move, game.TurnResult, session.State, error)
	Reset(ctx context.Context, id string) (session.State, error)
	Remove(ctx context.Context, id string) error
}

// GameController handles game-related HTTP requests.
type GameController struct {
	games GameService
}

// NewGameController creates a new GameController.
func NewGameController(games GameService) *GameController {
	return &GameController{
		games: games,
	}
}

// Create starts a new session.
func (gc *GameController) Create(c *gin.Context) {
	state, err := gc.games.CreateSession(c.Request.Context())
	if err != nil {
		response.DomainErrorResponse(c, err)
		return
	}
	response.CreatedResponse(c, state)
}

// Get returns the current state of a session.
func (gc *GameController) Get(c *gin.Context) {
	state, err := gc.games.State(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.DomainErrorResponse(c, err)
		return
	}
	response.SuccessResponse(c, state)
}

// Move plays the human's move and, if the game goes on, the computer's reply.
// REST clients get no pacing delay.
func (gc *GameController) Move(c *gin.Context) {
	var req models.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx := c.Request.Context()
	id := c.Param("id")

	human, state, err := gc.games.PlayHuman(ctx, id, *req.Row, *req.Col)
	if err != nil {
		response.DomainErrorResponse(c, err)
		return
	}

	resp := models.MoveResponse{Human: &human, State: state}
	if state.ComputerPending {
		move, result, next, err := gc.games.PlayComputer(ctx, id)
		if err != nil {
			slog.ErrorContext(ctx, "computer reply failed", "session.id", id, "error", err)
			response.DomainErrorResponse(c, err)
			return
		}
		resp.Computer = &models.ComputerTurn{Move: move, Result: result}
		resp.State = next
	}

	response.SuccessResponse(c, resp)
}

// Computer plays a pending computer turn. Clients use it to recover when the
// reply to a move failed.
func (gc *GameController) Computer(c *gin.Context) {
	move, result, state, err := gc.games.PlayComputer(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.DomainErrorResponse(c, err)
		return
	}
	response.SuccessResponse(c, models.MoveResponse{
		Computer: &models.ComputerTurn{Move: move, Result: result},
		State:    state,
	})
}

// Reset starts a new game in the same session.
func (gc *GameController) Reset(c *gin.Context) {
	state, err := gc.games.Reset(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.DomainErrorResponse(c, err)
		return
	}
	response.SuccessResponse(c, state)
}

// Delete ends a session.
func (gc *GameController) Delete(c *gin.Context) {
	if err := gc.games.Remove(c.Request.Context(), c.Param("id")); err != nil {
		response.DomainErrorResponse(c, err)
		return
	}
	response.SuccessResponse(c, gin.H{"id": c.Param("id")})
}
