package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoard_InitLeavesEveryCellEmpty(t *testing.T) {
	b := NewBoard()
	for r := range Size {
		for c := range Size {
			got, err := b.Cell(r, c)
			require.NoError(t, err)
			assert.Equal(t, Empty, got, "cell (%d, %d)", r, c)
		}
	}
	assert.Equal(t, StatusContinue, b.Status())
}

func TestBoard_MarkSetsOnlyTargetCell(t *testing.T) {
	b := NewBoard()

	result, err := b.Mark(2, 1, Player2)
	require.NoError(t, err)
	assert.Equal(t, TurnResult{Status: StatusContinue}, result)

	for r := range Size {
		for c := range Size {
			got, err := b.Cell(r, c)
			require.NoError(t, err)
			if r == 2 && c == 1 {
				assert.Equal(t, Player2, got)
			} else {
				assert.Equal(t, Empty, got, "cell (%d, %d)", r, c)
			}
		}
	}
}

func TestBoard_CellOutOfRange(t *testing.T) {
	b := NewBoard()
	for _, m := range []Move{{-1, 0}, {0, -1}, {3, 0}, {0, 3}, {5, 5}} {
		_, err := b.Cell(m.Row, m.Col)
		assert.ErrorIs(t, err, ErrOutOfRange, "cell %s", m)
	}
}

func TestBoard_MarkErrors(t *testing.T) {
	t.Run("Out of range", func(t *testing.T) {
		b := NewBoard()
		_, err := b.Mark(3, 1, Player1)
		assert.ErrorIs(t, err, ErrOutOfRange)
		assert.Equal(t, Grid{}, b.Snapshot())
	})

	t.Run("Invalid player", func(t *testing.T) {
		b := NewBoard()
		_, err := b.Mark(0, 0, Empty)
		assert.ErrorIs(t, err, ErrInvalidPlayer)
		_, err = b.Mark(0, 0, Player(7))
		assert.ErrorIs(t, err, ErrInvalidPlayer)
	})

	t.Run("Occupied cell is never overwritten", func(t *testing.T) {
		b := NewBoard()
		_, err := b.Mark(1, 1, Player1)
		require.NoError(t, err)

		_, err = b.Mark(1, 1, Player2)
		require.ErrorIs(t, err, ErrCellOccupied)
		_, err = b.Mark(1, 1, Player1)
		require.ErrorIs(t, err, ErrCellOccupied)

		got, err := b.Cell(1, 1)
		require.NoError(t, err)
		assert.Equal(t, Player1, got)
	})

	t.Run("Mark after win", func(t *testing.T) {
		b := NewBoard()
		for c := range Size {
			_, err := b.Mark(0, c, Player1)
			require.NoError(t, err)
		}
		_, err := b.Mark(2, 2, Player2)
		assert.ErrorIs(t, err, ErrGameOver)
	})
}

func TestBoard_EveryLineWins(t *testing.T) {
	orders := [][Size]int{{0, 1, 2}, {2, 0, 1}, {1, 2, 0}}
	for _, line := range Lines() {
		for _, order := range orders {
			for _, p := range []Player{Player1, Player2} {
				t.Run(line.String()+" "+p.String(), func(t *testing.T) {
					b := NewBoard()
					cells := line.Cells()

					var result TurnResult
					var err error
					for i, idx := range order {
						result, err = b.Mark(cells[idx].Row, cells[idx].Col, p)
						require.NoError(t, err)
						if i < Size-1 {
							require.Equal(t, StatusContinue, result.Status)
						}
					}

					require.Equal(t, StatusWin, result.Status)
					require.NotNil(t, result.Line)
					assert.Equal(t, line, *result.Line)
					assert.Equal(t, p, result.Winner)
					assert.Equal(t, StatusWin, b.Status())
				})
			}
		}
	}
}

func TestBoard_Draw(t *testing.T) {
	// X O X
	// X O O
	// O X X
	moves := []struct {
		row, col int
		p        Player
	}{
		{0, 0, Player1}, {0, 1, Player2}, {0, 2, Player1},
		{1, 1, Player2}, {1, 0, Player1}, {1, 2, Player2},
		{2, 1, Player1}, {2, 0, Player2}, {2, 2, Player1},
	}

	b := NewBoard()
	for i, m := range moves {
		result, err := b.Mark(m.row, m.col, m.p)
		require.NoError(t, err)
		if i < len(moves)-1 {
			require.Equal(t, StatusContinue, result.Status, "move %d", i)
		} else {
			assert.Equal(t, TurnResult{Status: StatusDraw}, result)
		}
	}
	assert.True(t, b.Snapshot().Full())
}

func TestBoard_WinOnLastCellIsNotDraw(t *testing.T) {
	// X O X
	// O X O
	// O X .   last X on (2,2) completes the main diagonal and fills the board
	b := NewBoard()
	setup := []struct {
		row, col int
		p        Player
	}{
		{0, 0, Player1}, {0, 1, Player2}, {0, 2, Player1},
		{1, 0, Player2}, {1, 1, Player1}, {1, 2, Player2},
		{2, 0, Player2}, {2, 1, Player1},
	}
	for _, m := range setup {
		result, err := b.Mark(m.row, m.col, m.p)
		require.NoError(t, err)
		require.Equal(t, StatusContinue, result.Status)
	}

	result, err := b.Mark(2, 2, Player1)
	require.NoError(t, err)
	assert.Equal(t, StatusWin, result.Status)
	assert.Equal(t, &WinningLine{Kind: Diagonal, Index: MainDiagonal}, result.Line)
}

func TestBoard_EndToEndRowWin(t *testing.T) {
	b := NewBoard()
	b.Init()

	plays := []struct {
		row, col int
		p        Player
	}{
		{0, 0, Player1}, {1, 1, Player2}, {0, 1, Player1}, {1, 0, Player2},
	}
	for _, m := range plays {
		result, err := b.Mark(m.row, m.col, m.p)
		require.NoError(t, err)
		require.Equal(t, StatusContinue, result.Status)
	}

	result, err := b.Mark(0, 2, Player1)
	require.NoError(t, err)
	assert.Equal(t, TurnResult{
		Status: StatusWin,
		Line:   &WinningLine{Kind: Row, Index: 0},
		Winner: Player1,
	}, result)
}

func TestBoard_InitAfterGameClearsTallies(t *testing.T) {
	b := NewBoard()
	for c := range Size {
		_, err := b.Mark(2, c, Player2)
		require.NoError(t, err)
	}
	require.Equal(t, StatusWin, b.Status())

	b.Init()
	result, err := b.Mark(2, 0, Player2)
	require.NoError(t, err)
	assert.Equal(t, StatusContinue, result.Status)
	assert.Equal(t, 1, b.Snapshot().Count(Player2))
}

// Every reachable game must report the same winner through the tallies and
// through a full rescan of the grid.
func TestBoard_TalliesAgreeWithRescan(t *testing.T) {
	var walk func(b *Board, next Player)
	finished := 0
	walk = func(b *Board, next Player) {
		for _, m := range b.Snapshot().EmptyCells() {
			child := *b
			result, err := child.Mark(m.Row, m.Col, next)
			require.NoError(t, err)

			winner, line := child.Snapshot().Winner()
			switch result.Status {
			case StatusWin:
				if winner != next || line == nil || *line != *result.Line {
					t.Fatalf("tallies report %s on %s, rescan reports %s on %v\n%v", next, result.Line, winner, line, child.Snapshot())
				}
				finished++
			case StatusDraw:
				if winner != Empty || !child.Snapshot().Full() {
					t.Fatalf("draw reported on %v", child.Snapshot())
				}
				finished++
			default:
				if winner != Empty {
					t.Fatalf("tallies missed a win for %s on %v", winner, child.Snapshot())
				}
				walk(&child, next.Opponent())
			}
		}
	}
	walk(NewBoard(), Player1)
	assert.Equal(t, 255168, finished)
}

func TestBoard_Restore(t *testing.T) {
	t.Run("Rebuilds tallies", func(t *testing.T) {
		g := Grid{
			{Player1, Player1, Empty},
			{Player2, Player2, Empty},
			{Empty, Empty, Empty},
		}
		b := &Board{}
		result, err := b.Restore(g)
		require.NoError(t, err)
		assert.Equal(t, StatusContinue, result.Status)

		result, err = b.Mark(0, 2, Player1)
		require.NoError(t, err)
		assert.Equal(t, &WinningLine{Kind: Row, Index: 0}, result.Line)
	})

	t.Run("Finished grid", func(t *testing.T) {
		g := Grid{
			{Player2, Player1, Player1},
			{Player1, Player2, Empty},
			{Empty, Empty, Player2},
		}
		b := &Board{}
		result, err := b.Restore(g)
		require.NoError(t, err)
		assert.Equal(t, StatusWin, result.Status)
		assert.Equal(t, Player2, result.Winner)

		_, err = b.Mark(1, 2, Player1)
		assert.ErrorIs(t, err, ErrGameOver)
	})

	t.Run("Rejects impossible counts", func(t *testing.T) {
		g := Grid{{Player2, Player2, Empty}}
		_, err := (&Board{}).Restore(g)
		assert.ErrorIs(t, err, ErrInvalidGrid)
	})

	t.Run("Rejects unknown occupant", func(t *testing.T) {
		g := Grid{{Player(9)}}
		_, err := (&Board{}).Restore(g)
		assert.ErrorIs(t, err, ErrInvalidGrid)
	})

	unreachable := []struct {
		name string
		grid Grid
	}{
		{
			name: "Player1 line with equal counts",
			grid: Grid{
				{Player1, Player1, Player1},
				{Player2, Player2, Empty},
				{Player2, Empty, Empty},
			},
		},
		{
			name: "Player2 line after Player1 moved",
			grid: Grid{
				{Player2, Player2, Player2},
				{Player1, Player1, Empty},
				{Player1, Empty, Player1},
			},
		},
	}
	for _, tt := range unreachable {
		t.Run(tt.name, func(t *testing.T) {
			b := &Board{}
			_, err := b.Restore(tt.grid)
			assert.ErrorIs(t, err, ErrInvalidGrid)
			assert.Equal(t, Grid{}, b.Snapshot())
			assert.Equal(t, StatusContinue, b.Status())
		})
	}

	t.Run("Full grid without a line is a draw", func(t *testing.T) {
		g := Grid{
			{Player1, Player2, Player1},
			{Player1, Player2, Player2},
			{Player2, Player1, Player1},
		}
		require.True(t, g.Full())
		winner, _ := g.Winner()
		require.Equal(t, Empty, winner)

		b := &Board{}
		result, err := b.Restore(g)
		require.NoError(t, err)
		assert.Equal(t, StatusDraw, result.Status)
		assert.Equal(t, StatusDraw, b.Status())
	})
}

func TestGrid_EmptyCellsRowMajor(t *testing.T) {
	g := Grid{
		{Player1, Empty, Player2},
		{Empty, Player1, Player2},
		{Player2, Player1, Empty},
	}
	assert.Equal(t, []Move{{0, 1}, {1, 0}, {2, 2}}, g.EmptyCells())
	assert.False(t, g.Full())
}

func TestWinningLine_Cells(t *testing.T) {
	assert.Equal(t, [Size]Move{{1, 0}, {1, 1}, {1, 2}}, WinningLine{Kind: Row, Index: 1}.Cells())
	assert.Equal(t, [Size]Move{{0, 2}, {1, 2}, {2, 2}}, WinningLine{Kind: Column, Index: 2}.Cells())
	assert.Equal(t, [Size]Move{{0, 0}, {1, 1}, {2, 2}}, WinningLine{Kind: Diagonal, Index: MainDiagonal}.Cells())
	assert.Equal(t, [Size]Move{{0, 2}, {1, 1}, {2, 0}}, WinningLine{Kind: Diagonal, Index: AntiDiagonal}.Cells())
}

func TestPlayer_JSON(t *testing.T) {
	g := Grid{{Player1, Empty, Player2}}
	data, err := json.Marshal(g)
	require.NoError(t, err)
	assert.JSONEq(t, `[["X","","O"],["","",""],["","",""]]`, string(data))

	var back Grid
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, g, back)

	var p Player
	assert.ErrorIs(t, json.Unmarshal([]byte(`"Z"`), &p), ErrInvalidPlayer)
}
