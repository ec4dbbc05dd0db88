package bot

import (
	"context"
	"ctchen222/Tic-Tac-Toe-Solo/internal/game"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("bot")

// Opponent is the computer player. It implements session.MoveCalculator.
type Opponent struct {
	mu       sync.Mutex
	strategy *Strategy
}

// NewOpponent creates an opponent that draws random fallback moves from rnd.
// Calls are serialized, so a single seeded source may back every session.
func NewOpponent(rnd Random) *Opponent {
	return &Opponent{strategy: NewStrategy(rnd)}
}

// CalculateNextMove picks the next cell for me on grid.
func (o *Opponent) CalculateNextMove(ctx context.Context, grid game.Grid, me game.Player) (game.Move, error) {
	ctx, span := tracer.Start(ctx, "bot.CalculateNextMove", trace.WithAttributes(
		attribute.String("bot.mark", me.Glyph()),
		attribute.Int("board.empty", len(grid.EmptyCells())),
	))
	defer span.End()

	o.mu.Lock()
	move, rule, err := o.strategy.chooseMove(grid, me, me.Opponent())
	o.mu.Unlock()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "No move available")
		return game.Move{}, err
	}

	span.SetAttributes(
		attribute.String("bot.rule", string(rule)),
		attribute.Int("move.row", move.Row),
		attribute.Int("move.col", move.Col),
	)
	slog.DebugContext(ctx, "Bot chose move", "bot.rule", rule, "move.row", move.Row, "move.col", move.Col)
	return move, nil
}
