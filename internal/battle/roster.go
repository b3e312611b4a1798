package battle

import (
	"github.com/gridfall/gridfall-server-go/internal/engine"
)

// Roster is the run-progression state: the ordered set of pieces the player
// currently owns, the gold balance, the stage counter, and the purchased
// board dimensions. A piece captured in battle is deleted here permanently;
// nothing in the engine resurrects it. Purchases and upgrades mutate the
// roster between battles, outside the engine.
type Roster struct {
	pieces []*engine.Piece
	Gold   int
	Stage  int
	Rows   int
	Cols   int
}

// NewRoster creates an empty roster at stage 1 with the default board size.
func NewRoster() *Roster {
	return &Roster{
		Stage: 1,
		Rows:  engine.DefaultBoardSize,
		Cols:  engine.DefaultBoardSize,
	}
}

// StarterRoster builds the opening roster for a fresh run: three pawns, a
// knight, and a bishop on a board of the given dimensions.
func StarterRoster(rows, cols, stage, gold int) *Roster {
	r := NewRoster()
	if rows > 0 {
		r.Rows = rows
	}
	if cols > 0 {
		r.Cols = cols
	}
	if stage > 0 {
		r.Stage = stage
	}
	r.Gold = gold
	for _, kind := range []engine.Kind{engine.Pawn, engine.Pawn, engine.Pawn, engine.Knight, engine.Bishop} {
		r.Add(engine.NewPiece(kind, engine.TeamPlayer))
	}
	return r
}

// Pieces returns the owned pieces in acquisition order.
func (r *Roster) Pieces() []*engine.Piece {
	out := make([]*engine.Piece, len(r.pieces))
	copy(out, r.pieces)
	return out
}

// Contains reports whether the piece is owned.
func (r *Roster) Contains(pc *engine.Piece) bool {
	for _, owned := range r.pieces {
		if owned == pc {
			return true
		}
	}
	return false
}

// Add appends a piece. Duplicates are refused; the roster holds each piece
// exactly once.
func (r *Roster) Add(pc *engine.Piece) bool {
	if pc == nil || r.Contains(pc) {
		return false
	}
	r.pieces = append(r.pieces, pc)
	return true
}

// Remove deletes a piece permanently. Returns false if it was not owned.
func (r *Roster) Remove(pc *engine.Piece) bool {
	for i, owned := range r.pieces {
		if owned == pc {
			r.pieces = append(r.pieces[:i], r.pieces[i+1:]...)
			return true
		}
	}
	return false
}

// Replace swaps old for new in place, keeping acquisition order. Used by
// promotion, where the pawn is deleted and its successor takes its slot.
func (r *Roster) Replace(old, fresh *engine.Piece) bool {
	for i, owned := range r.pieces {
		if owned == old {
			r.pieces[i] = fresh
			return true
		}
	}
	return false
}

// Len returns the number of owned pieces.
func (r *Roster) Len() int {
	return len(r.pieces)
}

// AddGold credits the balance. Negative amounts are ignored.
func (r *Roster) AddGold(amount int) {
	if amount > 0 {
		r.Gold += amount
	}
}

// SpendGold debits the balance, refusing overdrafts.
func (r *Roster) SpendGold(amount int) bool {
	if amount < 0 || amount > r.Gold {
		return false
	}
	r.Gold -= amount
	return true
}

// ExpandBoard records purchased board growth. Dimensions never shrink.
func (r *Roster) ExpandBoard(rows, cols int) {
	if rows > 0 {
		r.Rows += rows
	}
	if cols > 0 {
		r.Cols += cols
	}
}
