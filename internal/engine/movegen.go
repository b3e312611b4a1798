package engine

import (
	"github.com/gridfall/gridfall-server-go/internal/engine/modifiers"
)

// Ray caps bound the sliding loops on pathological board sizes; they rarely
// bind on shop-economy boards.
const (
	rayCap        = 8
	boostedRayCap = 10
)

var (
	rookDirs   = [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	bishopDirs = [][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	queenDirs  = [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}

	knightOffsets = [][2]int{{2, 1}, {2, -1}, {-2, 1}, {-2, -1}, {1, 2}, {1, -2}, {-1, 2}, {-1, -2}}
	kingOffsets   = [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

// moveGenerators maps each piece kind to its generator. The kind set is
// closed, so a table keeps the one-function-per-kind shape without open
// dispatch.
var moveGenerators = map[Kind]func(*Board, *Piece) []Move{
	Pawn:   pawnMoves,
	Rook:   func(b *Board, pc *Piece) []Move { return slidingMoves(b, pc, rookDirs) },
	Bishop: func(b *Board, pc *Piece) []Move { return slidingMoves(b, pc, bishopDirs) },
	Queen:  func(b *Board, pc *Piece) []Move { return slidingMoves(b, pc, queenDirs) },
	Knight: knightMoves,
	King:   kingMoves,
}

// LegalMoves returns every legal move for the piece at pos, already
// filtered against capturing the mover's own team. An empty or invalid pos
// yields nil.
func LegalMoves(b *Board, pos Position) []Move {
	pc := b.PieceAt(pos)
	if pc == nil {
		return nil
	}
	gen, ok := moveGenerators[pc.Kind]
	if !ok {
		return nil
	}
	return gen(b, pc)
}

// admissible reports whether dest is in bounds and either empty or held by
// the opposing team. Own-team cells are never admissible.
func admissible(b *Board, pc *Piece, dest Position) bool {
	if !b.IsValidPosition(dest) {
		return false
	}
	occ := b.PieceAt(dest)
	return occ == nil || occ.Team != pc.Team
}

func appendMove(moves []Move, b *Board, pc *Piece, dest Position) []Move {
	return append(moves, Move{
		From:    pc.Pos,
		To:      dest,
		Capture: b.PieceAt(dest) != nil,
	})
}

// slidingMoves walks each ray outward one cell at a time, stopping at the
// board edge or the first occupied cell; that cell is included only when it
// holds an enemy, so a capture terminates the ray.
func slidingMoves(b *Board, pc *Piece, dirs [][2]int) []Move {
	limit := rayCap
	if pc.Modifiers.Has(modifiers.TypeRangeBoost) {
		limit = boostedRayCap
	}
	var moves []Move
	for _, d := range dirs {
		for step := 1; step <= limit; step++ {
			dest := Position{Row: pc.Pos.Row + d[0]*step, Col: pc.Pos.Col + d[1]*step}
			if !b.IsValidPosition(dest) {
				break
			}
			occ := b.PieceAt(dest)
			if occ == nil {
				moves = appendMove(moves, b, pc, dest)
				continue
			}
			if occ.Team != pc.Team {
				moves = appendMove(moves, b, pc, dest)
			}
			break
		}
	}
	return moves
}

// knightMoves generates the 8 fixed offsets. Under the double-move modifier
// the set is composed with itself: every first-hop destination becomes a
// new origin whose own admissible hops are unioned in, de-duplicated, with
// no requirement that the intermediate cell be empty.
func knightMoves(b *Board, pc *Piece) []Move {
	var moves []Move
	seen := make(map[Position]bool)
	seen[pc.Pos] = true
	for _, o := range knightOffsets {
		dest := Position{Row: pc.Pos.Row + o[0], Col: pc.Pos.Col + o[1]}
		if admissible(b, pc, dest) && !seen[dest] {
			seen[dest] = true
			moves = appendMove(moves, b, pc, dest)
		}
	}
	if !pc.Modifiers.Has(modifiers.TypeDoubleMove) {
		return moves
	}
	firstHops := make([]Move, len(moves))
	copy(firstHops, moves)
	for _, hop := range firstHops {
		for _, o := range knightOffsets {
			dest := Position{Row: hop.To.Row + o[0], Col: hop.To.Col + o[1]}
			if admissible(b, pc, dest) && !seen[dest] {
				seen[dest] = true
				moves = appendMove(moves, b, pc, dest)
			}
		}
	}
	return moves
}

// forwardDir is the row delta that advances a pawn toward the opposing back
// rank. Player pawns climb toward row 0.
func forwardDir(team Team) int {
	if team == TeamPlayer {
		return -1
	}
	return 1
}

// opposingBackRank is the row a pawn of the given team promotes on.
func opposingBackRank(b *Board, team Team) int {
	if team == TeamPlayer {
		return 0
	}
	return b.Rows() - 1
}

func pawnMoves(b *Board, pc *Piece) []Move {
	dir := forwardDir(pc.Team)
	var moves []Move

	// Forward steps only into empty cells.
	one := Position{Row: pc.Pos.Row + dir, Col: pc.Pos.Col}
	if b.IsValidPosition(one) && b.PieceAt(one) == nil {
		moves = appendMove(moves, b, pc, one)
		two := Position{Row: pc.Pos.Row + 2*dir, Col: pc.Pos.Col}
		if !pc.Moved && b.IsValidPosition(two) && b.PieceAt(two) == nil {
			moves = appendMove(moves, b, pc, two)
		}
	}

	// Diagonal captures require an enemy occupant; pawns never move
	// diagonally into an empty cell.
	for _, dc := range []int{-1, 1} {
		dest := Position{Row: pc.Pos.Row + dir, Col: pc.Pos.Col + dc}
		if occ := b.PieceAt(dest); occ != nil && occ.Team != pc.Team {
			moves = appendMove(moves, b, pc, dest)
		}
	}

	if pc.Modifiers.Has(modifiers.TypeBackstep) {
		back := Position{Row: pc.Pos.Row - dir, Col: pc.Pos.Col}
		if b.IsValidPosition(back) && b.PieceAt(back) == nil {
			moves = appendMove(moves, b, pc, back)
		}
	}
	return moves
}

func kingMoves(b *Board, pc *Piece) []Move {
	var moves []Move
	for _, o := range kingOffsets {
		dest := Position{Row: pc.Pos.Row + o[0], Col: pc.Pos.Col + o[1]}
		if admissible(b, pc, dest) {
			moves = appendMove(moves, b, pc, dest)
		}
	}
	return moves
}
