package game

import "fmt"

const (
	// Board boundaries
	BorderMin = 0
	BorderMax = 2

	Size = BorderMax + 1
)

// Move is a (row, column) coordinate on the board.
type Move struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// InRange reports whether both coordinates lie on the board.
func (m Move) InRange() bool {
	return m.Row >= BorderMin && m.Row <= BorderMax && m.Col >= BorderMin && m.Col <= BorderMax
}

func (m Move) String() string {
	return fmt.Sprintf("(%d, %d)", m.Row, m.Col)
}

// LineKind is the shape of a winning line.
type LineKind string

const (
	Row      LineKind = "row"
	Column   LineKind = "column"
	Diagonal LineKind = "diagonal"
)

// Diagonal indexes. The first runs top-left to bottom-right, the second
// top-right to bottom-left.
const (
	MainDiagonal = 1
	AntiDiagonal = 2
)

// WinningLine identifies one of the 8 lines on the board.
type WinningLine struct {
	Kind  LineKind `json:"kind"`
	Index int      `json:"index"`
}

// Cells returns the three coordinates of the line in scan order.
func (l WinningLine) Cells() [Size]Move {
	var cells [Size]Move
	for i := range cells {
		switch {
		case l.Kind == Row:
			cells[i] = Move{Row: l.Index, Col: i}
		case l.Kind == Column:
			cells[i] = Move{Row: i, Col: l.Index}
		case l.Kind == Diagonal && l.Index == MainDiagonal:
			cells[i] = Move{Row: i, Col: i}
		default:
			cells[i] = Move{Row: i, Col: BorderMax - i}
		}
	}
	return cells
}

func (l WinningLine) String() string {
	return fmt.Sprintf("%s %d", l.Kind, l.Index)
}

var lines = [8]WinningLine{
	{Kind: Row, Index: 0},
	{Kind: Row, Index: 1},
	{Kind: Row, Index: 2},
	{Kind: Column, Index: 0},
	{Kind: Column, Index: 1},
	{Kind: Column, Index: 2},
	{Kind: Diagonal, Index: MainDiagonal},
	{Kind: Diagonal, Index: AntiDiagonal},
}

// Lines returns all 8 lines: rows, then columns, then both diagonals.
func Lines() [8]WinningLine {
	return lines
}

// Grid is a read-only value copy of the board cells, indexed [row][col].
type Grid [Size][Size]Player

// At returns the occupant of m. m must be in range.
func (g Grid) At(m Move) Player {
	return g[m.Row][m.Col]
}

// EmptyCells lists unoccupied cells in row-major order.
func (g Grid) EmptyCells() []Move {
	var empty []Move
	for r := range Size {
		for c := range Size {
			if g[r][c] == Empty {
				empty = append(empty, Move{Row: r, Col: c})
			}
		}
	}
	return empty
}

// Count returns how many cells p occupies.
func (g Grid) Count(p Player) int {
	n := 0
	for r := range Size {
		for c := range Size {
			if g[r][c] == p {
				n++
			}
		}
	}
	return n
}

// Full reports whether no cell is empty.
func (g Grid) Full() bool {
	return g.Count(Empty) == 0
}

// Winner rescans all lines and returns the first one fully owned by a single
// player. It does not use the running tallies kept by Board.
func (g Grid) Winner() (Player, *WinningLine) {
	for _, line := range lines {
		cells := line.Cells()
		first := g.At(cells[0])
		if first != Empty && first == g.At(cells[1]) && first == g.At(cells[2]) {
			l := line
			return first, &l
		}
	}
	return Empty, nil
}
