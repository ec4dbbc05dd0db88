package server

import (
	"context"
	"ctchen222/Tic-Tac-Toe-Solo/internal/api/response"
	"ctchen222/Tic-Tac-Toe-Solo/internal/game"
	"ctchen222/Tic-Tac-Toe-Solo/internal/player"
	"ctchen222/Tic-Tac-Toe-Solo/internal/session"
	"ctchen222/Tic-Tac-Toe-Solo/pkg/proto"
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// handleWebSocket binds a connection to the session named by gameId, or to a
// new session, and serves it until the client goes away.
func (s *Server) handleWebSocket(c *gin.Context) {
	r := c.Request
	ctx, span := tracer.Start(r.Context(), "server.handleWebSocket", trace.WithAttributes(
		attribute.String("http.url", r.URL.String()),
		attribute.String("http.method", r.Method),
	))
	defer span.End()

	var (
		state session.State
		err   error
	)
	if id := c.Query("gameId"); id != "" {
		state, err = s.games.State(ctx, id)
	} else {
		state, err = s.games.CreateSession(ctx)
	}
	if err != nil {
		slog.WarnContext(ctx, "cannot bind websocket to session", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Cannot bind session")
		response.DomainErrorResponse(c, err)
		return
	}
	span.SetAttributes(attribute.String("session.id", state.ID))

	conn, err := s.upgrader.Upgrade(c.Writer, r, nil)
	if err != nil {
		slog.ErrorContext(ctx, "failed to upgrade connection", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to upgrade connection")
		return
	}

	p := player.NewPlayer(state.ID, conn)
	s.send(ctx, p, updateMessage(state, nil))
	if state.ComputerPending {
		s.scheduleComputer(ctx, p)
	}
	s.readPump(ctx, p)
}

// readPump feeds every frame from the connection to handleMessage.
func (s *Server) readPump(ctx context.Context, p *player.Player) {
	defer func() {
		p.Conn.Close()
		slog.InfoContext(ctx, "player disconnected", "session.id", p.SessionID)
	}()

	for {
		_, msg, err := p.Conn.ReadMessage()
		if err != nil {
			slog.DebugContext(ctx, "player connection closed", "session.id", p.SessionID, "error", err)
			return
		}
		s.handleMessage(ctx, p, msg)
	}
}

// handleMessage handles a message from a player. It acts as a dispatcher.
func (s *Server) handleMessage(ctx context.Context, p *player.Player, raw []byte) {
	ctx, span := tracer.Start(ctx, "server.handleMessage", trace.WithAttributes(
		attribute.String("session.id", p.SessionID),
	))
	defer span.End()

	message, err := decodeMessage(raw)
	if err != nil {
		slog.WarnContext(ctx, "invalid message from player", "session.id", p.SessionID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid message format")
		s.send(ctx, p, errorMessage(err))
		return
	}
	span.SetAttributes(attribute.String("message.type", message.Type))

	switch message.Type {
	case proto.TypeMove:
		s.handleMove(ctx, p, message.Position[0], message.Position[1])
	case proto.TypeNewGame:
		s.handleNewGame(ctx, p)
	}
}

func (s *Server) handleMove(ctx context.Context, p *player.Player, row, col int) {
	_, state, err := s.games.PlayHuman(ctx, p.SessionID, row, col)
	if err != nil {
		s.send(ctx, p, errorMessage(err))
		return
	}
	s.send(ctx, p, updateMessage(state, nil))
	if state.ComputerPending {
		s.scheduleComputer(ctx, p)
	}
}

func (s *Server) handleNewGame(ctx context.Context, p *player.Player) {
	if p.CancelScheduled() {
		slog.DebugContext(ctx, "dropped pending computer move", "session.id", p.SessionID)
	}
	state, err := s.games.Reset(ctx, p.SessionID)
	if err != nil {
		s.send(ctx, p, errorMessage(err))
		return
	}
	s.send(ctx, p, updateMessage(state, nil))
}

func (s *Server) scheduleComputer(ctx context.Context, p *player.Player) {
	p.Schedule(ctx, s.opts.ComputerMoveDelay, func(ctx context.Context) {
		s.playComputer(ctx, p)
	})
}

// playComputer runs the deferred computer turn.
func (s *Server) playComputer(ctx context.Context, p *player.Player) {
	ctx, span := tracer.Start(ctx, "server.playComputer", trace.WithAttributes(
		attribute.String("session.id", p.SessionID),
	))
	defer span.End()

	move, _, state, err := s.games.PlayComputer(ctx, p.SessionID)
	if errors.Is(err, session.ErrNotComputerTurn) {
		slog.DebugContext(ctx, "computer turn already taken", "session.id", p.SessionID)
		return
	}
	if err != nil {
		slog.ErrorContext(ctx, "computer move failed", "session.id", p.SessionID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Computer move failed")
		s.send(ctx, p, errorMessage(err))
		return
	}
	s.send(ctx, p, updateMessage(state, &move))
}

func (s *Server) send(ctx context.Context, p *player.Player, msg *proto.ServerToClientMessage) {
	if err := p.Send(msg); err != nil {
		slog.WarnContext(ctx, "error writing message to player", "session.id", p.SessionID, "error", err)
	}
}

func updateMessage(state session.State, computerMove *game.Move) *proto.ServerToClientMessage {
	board := state.Board
	return &proto.ServerToClientMessage{
		Type:         proto.TypeUpdate,
		GameID:       state.ID,
		Board:        &board,
		Status:       state.Status,
		Next:         state.Next,
		Winner:       state.Winner,
		Line:         state.Line,
		ComputerMove: computerMove,
	}
}

func errorMessage(err error) *proto.ServerToClientMessage {
	return &proto.ServerToClientMessage{
		Type:   proto.TypeError,
		Reason: err.Error(),
	}
}
