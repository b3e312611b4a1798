package engine

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/gridfall/gridfall-server-go/internal/engine/modifiers"
)

// Team is the two-valued ownership tag distinguishing the player's pieces
// from the opposing side.
type Team uint8

const (
	TeamPlayer Team = iota
	TeamEnemy
)

// Opposite returns the other team.
func (t Team) Opposite() Team {
	if t == TeamPlayer {
		return TeamEnemy
	}
	return TeamPlayer
}

func (t Team) String() string {
	if t == TeamPlayer {
		return "player"
	}
	return "enemy"
}

func (t Team) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *Team) UnmarshalText(text []byte) error {
	switch string(text) {
	case "player":
		*t = TeamPlayer
	case "enemy":
		*t = TeamEnemy
	default:
		return fmt.Errorf("invalid team %q", text)
	}
	return nil
}

// Kind identifies a piece kind. The set is closed; move generation
// dispatches on the tag rather than on open-ended interfaces.
type Kind uint8

const (
	// The zero Kind is reserved so events without a piece omit the field.
	Pawn Kind = iota + 1
	Rook
	Knight
	Bishop
	Queen
	King
)

func (k Kind) String() string {
	switch k {
	case Pawn:
		return "pawn"
	case Rook:
		return "rook"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Queen:
		return "queen"
	case King:
		return "king"
	default:
		return fmt.Sprintf("kind(%d)", k)
	}
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(text []byte) error {
	for _, cand := range []Kind{Pawn, Rook, Knight, Bishop, Queen, King} {
		if cand.String() == string(text) {
			*k = cand
			return nil
		}
	}
	return fmt.Errorf("invalid piece kind %q", text)
}

// Position is a (row, col) board coordinate. Row 0 is the enemy back rank;
// player pawns advance toward it.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// ManhattanDistance returns |Δrow| + |Δcol| between two positions.
func (p Position) ManhattanDistance(o Position) int {
	return abs(p.Row-o.Row) + abs(p.Col-o.Col)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Move is an ephemeral (from, to) pair computed by move generation; it is
// never persisted.
type Move struct {
	From    Position `json:"from"`
	To      Position `json:"to"`
	Capture bool     `json:"capture"`
}

// Piece is a single combatant. The Board is authoritative for occupancy; a
// piece's cached Pos matches its cell in any committed state.
type Piece struct {
	ID        string
	Kind      Kind
	Team      Team
	Pos       Position
	HitPoints int
	// Moved tracks whether the piece has moved this run; it only affects
	// pawn double-step eligibility.
	Moved     bool
	Modifiers *modifiers.Set
}

// NewPiece creates a piece of the given kind and team with 1 hit point and
// no modifiers.
func NewPiece(kind Kind, team Team) *Piece {
	return &Piece{
		ID:        uuid.NewString(),
		Kind:      kind,
		Team:      team,
		HitPoints: 1,
		Modifiers: modifiers.NewSet(),
	}
}

func (p *Piece) String() string {
	return fmt.Sprintf("%s %s at %s", p.Team, p.Kind, p.Pos)
}
