package game

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfRange    = errors.New("cell out of range")
	ErrCellOccupied  = errors.New("cell already occupied")
	ErrBoardFull     = errors.New("board is full")
	ErrInvalidPlayer = errors.New("invalid player")
	ErrGameOver      = errors.New("game already finished")
	ErrInvalidGrid   = errors.New("invalid grid")
)

// Status is the outcome of a single mark.
type Status string

const (
	StatusContinue Status = "continue"
	StatusDraw     Status = "draw"
	StatusWin      Status = "win"
)

// Terminal reports whether no further marks are accepted.
func (s Status) Terminal() bool {
	return s == StatusDraw || s == StatusWin
}

// TurnResult is returned by Board.Mark. Line and Winner are set only on a win.
type TurnResult struct {
	Status Status       `json:"status"`
	Line   *WinningLine `json:"line,omitempty"`
	Winner Player       `json:"winner,omitempty"`
}

// tally counts marks per player along every line.
// Index 0 holds Player1 counts, index 1 Player2.
type tally struct {
	rows  [2][Size]int
	cols  [2][Size]int
	diags [2][2]int
	total int
}

func (t *tally) add(row, col int, p Player) {
	i := int(p) - 1
	t.rows[i][row]++
	t.cols[i][col]++
	if row == col {
		t.diags[i][0]++
	}
	if row+col == BorderMax {
		t.diags[i][1]++
	}
	t.total++
}

// completed returns the first line p owns outright, in row, column, diagonal order.
func (t *tally) completed(p Player) *WinningLine {
	i := int(p) - 1
	for r := range Size {
		if t.rows[i][r] == Size {
			return &WinningLine{Kind: Row, Index: r}
		}
	}
	for c := range Size {
		if t.cols[i][c] == Size {
			return &WinningLine{Kind: Column, Index: c}
		}
	}
	if t.diags[i][0] == Size {
		return &WinningLine{Kind: Diagonal, Index: MainDiagonal}
	}
	if t.diags[i][1] == Size {
		return &WinningLine{Kind: Diagonal, Index: AntiDiagonal}
	}
	return nil
}

// Board owns the 3x3 grid for one game. The zero value is an empty board
// ready for play.
type Board struct {
	cells  Grid
	counts tally
	status Status
}

// NewBoard returns an initialized board.
func NewBoard() *Board {
	b := &Board{}
	b.Init()
	return b
}

// Init clears every cell and the running tallies.
func (b *Board) Init() {
	b.cells = Grid{}
	b.counts = tally{}
	b.status = StatusContinue
}

// Cell returns the occupant of (row, col), or Empty.
func (b *Board) Cell(row, col int) (Player, error) {
	m := Move{Row: row, Col: col}
	if !m.InRange() {
		return Empty, fmt.Errorf("%w: %s", ErrOutOfRange, m)
	}
	return b.cells.At(m), nil
}

// Mark places player on an empty cell and reports whether the move won,
// filled the board, or leaves the game open. A win is checked before a draw.
func (b *Board) Mark(row, col int, player Player) (TurnResult, error) {
	m := Move{Row: row, Col: col}
	if !m.InRange() {
		return TurnResult{}, fmt.Errorf("%w: %s", ErrOutOfRange, m)
	}
	if !player.Valid() {
		return TurnResult{}, fmt.Errorf("%w: %s", ErrInvalidPlayer, player)
	}
	if b.status.Terminal() {
		return TurnResult{}, ErrGameOver
	}
	if occupant := b.cells[row][col]; occupant != Empty {
		return TurnResult{}, fmt.Errorf("%w: %s holds %s", ErrCellOccupied, m, occupant)
	}

	b.cells[row][col] = player
	b.counts.add(row, col, player)

	if line := b.counts.completed(player); line != nil {
		b.status = StatusWin
		return TurnResult{Status: StatusWin, Line: line, Winner: player}, nil
	}
	if b.counts.total == Size*Size {
		b.status = StatusDraw
		return TurnResult{Status: StatusDraw}, nil
	}
	return TurnResult{Status: StatusContinue}, nil
}

// Status returns the result of the most recent mark, StatusContinue after Init.
func (b *Board) Status() Status {
	if b.status == "" {
		return StatusContinue
	}
	return b.status
}

// Snapshot returns a copy of the cells.
func (b *Board) Snapshot() Grid {
	return b.cells
}

// Restore replaces the board with g and rebuilds the tallies. g must be
// reachable by alternating play: Player1 moves first, so it holds the same
// number of marks as Player2 or one more, and at most one player owns a line.
// The game stops at the first line, so a line owned by Player1 means Player1
// made the last move (one mark more) and a line owned by Player2 means the
// counts are equal.
func (b *Board) Restore(g Grid) (TurnResult, error) {
	p1, p2 := g.Count(Player1), g.Count(Player2)
	if p1+p2+g.Count(Empty) != Size*Size {
		return TurnResult{}, fmt.Errorf("%w: unknown occupant", ErrInvalidGrid)
	}
	if p1 != p2 && p1 != p2+1 {
		return TurnResult{}, fmt.Errorf("%w: %d marks for player1, %d for player2", ErrInvalidGrid, p1, p2)
	}

	b.Init()
	b.cells = g
	for r := range Size {
		for c := range Size {
			if p := g[r][c]; p != Empty {
				b.counts.add(r, c, p)
			}
		}
	}

	line1, line2 := b.counts.completed(Player1), b.counts.completed(Player2)
	switch {
	case line1 != nil && line2 != nil:
		b.Init()
		return TurnResult{}, fmt.Errorf("%w: both players own a line", ErrInvalidGrid)
	case line1 != nil:
		if p1 != p2+1 {
			b.Init()
			return TurnResult{}, fmt.Errorf("%w: player1 owns a line after player2 moved", ErrInvalidGrid)
		}
		b.status = StatusWin
		return TurnResult{Status: StatusWin, Line: line1, Winner: Player1}, nil
	case line2 != nil:
		if p1 != p2 {
			b.Init()
			return TurnResult{}, fmt.Errorf("%w: player2 owns a line after player1 moved", ErrInvalidGrid)
		}
		b.status = StatusWin
		return TurnResult{Status: StatusWin, Line: line2, Winner: Player2}, nil
	case g.Full():
		b.status = StatusDraw
		return TurnResult{Status: StatusDraw}, nil
	}
	return TurnResult{Status: StatusContinue}, nil
}
