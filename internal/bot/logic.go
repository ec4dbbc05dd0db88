package bot

import (
	"ctchen222/Tic-Tac-Toe-Solo/internal/game"
	"fmt"
	"math/rand/v2"
)

// Random is the source used for the fallback move. *rand.Rand satisfies it.
type Random interface {
	IntN(n int) int
}

type globalRandom struct{}

func (globalRandom) IntN(n int) int { return rand.IntN(n) }

// NewSeededRandom returns a deterministic source for the given seed.
// The returned source is not safe for concurrent use.
func NewSeededRandom(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Rule names the heuristic that produced a move.
type Rule string

const (
	RuleWin    Rule = "win"
	RuleBlock  Rule = "block"
	RuleRandom Rule = "random"
)

// Strategy picks the computer's move: complete its own line, otherwise block
// the opponent's line, otherwise any empty cell at random. It looks one ply
// ahead only and can lose to a fork.
type Strategy struct {
	rnd Random
}

// NewStrategy returns a Strategy drawing from rnd. A nil rnd uses the
// goroutine-safe top-level math/rand/v2 functions.
func NewStrategy(rnd Random) *Strategy {
	if rnd == nil {
		rnd = globalRandom{}
	}
	return &Strategy{rnd: rnd}
}

// ChooseMove returns an empty cell for me to mark.
func (s *Strategy) ChooseMove(grid game.Grid, me, opponent game.Player) (game.Move, error) {
	move, _, err := s.chooseMove(grid, me, opponent)
	return move, err
}

func (s *Strategy) chooseMove(grid game.Grid, me, opponent game.Player) (game.Move, Rule, error) {
	if !me.Valid() || !opponent.Valid() || me == opponent {
		return game.Move{}, "", fmt.Errorf("%w: me=%s opponent=%s", game.ErrInvalidPlayer, me, opponent)
	}

	empty := grid.EmptyCells()
	if len(empty) == 0 {
		return game.Move{}, "", game.ErrBoardFull
	}

	// 1. Win: complete a line holding two of ours and none of theirs
	if move, found := findCompletingMove(grid, me, opponent); found {
		return move, RuleWin, nil
	}

	// 2. Block: take the open cell of a line where the opponent holds two
	if move, found := findCompletingMove(grid, opponent, me); found {
		return move, RuleBlock, nil
	}

	// 3. Random: any empty cell
	return empty[s.rnd.IntN(len(empty))], RuleRandom, nil
}

// findCompletingMove scans rows, then columns, then both diagonals for a line
// where owner holds two cells and other holds none, and returns its empty cell.
func findCompletingMove(grid game.Grid, owner, other game.Player) (game.Move, bool) {
	for _, line := range game.Lines() {
		var owned, blocked int
		var open game.Move
		for _, cell := range line.Cells() {
			switch grid.At(cell) {
			case owner:
				owned++
			case other:
				blocked++
			default:
				open = cell
			}
		}
		if owned == game.Size-1 && blocked == 0 {
			return open, true
		}
	}
	return game.Move{}, false
}
