package game

import "fmt"

// Player identifies the occupant of a cell. The zero value is an empty cell.
type Player uint8

const (
	Empty   Player = iota
	Player1        // human, marks with X
	Player2        // computer, marks with O
)

// Glyph returns the mark drawn for the player.
func (p Player) Glyph() string {
	switch p {
	case Player1:
		return "X"
	case Player2:
		return "O"
	default:
		return ""
	}
}

func (p Player) String() string {
	switch p {
	case Empty:
		return "empty"
	case Player1:
		return "player1"
	case Player2:
		return "player2"
	default:
		return fmt.Sprintf("player(%d)", uint8(p))
	}
}

// Valid reports whether p can place a mark.
func (p Player) Valid() bool {
	return p == Player1 || p == Player2
}

// Opponent returns the other player. Empty has no opponent.
func (p Player) Opponent() Player {
	switch p {
	case Player1:
		return Player2
	case Player2:
		return Player1
	default:
		return Empty
	}
}

// MarshalText encodes the player as its glyph so boards serialize as ["X","","O"].
func (p Player) MarshalText() ([]byte, error) {
	if p != Empty && !p.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPlayer, uint8(p))
	}
	return []byte(p.Glyph()), nil
}

func (p *Player) UnmarshalText(text []byte) error {
	switch string(text) {
	case "":
		*p = Empty
	case "X":
		*p = Player1
	case "O":
		*p = Player2
	default:
		return fmt.Errorf("%w: %q", ErrInvalidPlayer, text)
	}
	return nil
}
