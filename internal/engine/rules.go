package engine

// findKing returns the team's king, or nil when none is on the board.
func findKing(b *Board, team Team) *Piece {
	for _, pc := range b.PiecesByTeam(team) {
		if pc.Kind == King {
			return pc
		}
	}
	return nil
}

// IsInCheck reports whether the team's king's cell is covered by any enemy
// piece's move set. A team with no king on the board is never in check;
// boss-less battles therefore cannot reach check or checkmate at all, which
// is preserved deliberately.
func IsInCheck(b *Board, team Team) bool {
	king := findKing(b, team)
	if king == nil {
		return false
	}
	return attackedBy(b, king.Pos, team.Opposite())
}

// attackedBy reports whether any piece of the given team has pos in its
// legal-move set on the current board.
func attackedBy(b *Board, pos Position, team Team) bool {
	for _, pc := range b.PiecesByTeam(team) {
		for _, mv := range LegalMoves(b, pc.Pos) {
			if mv.To == pos {
				return true
			}
		}
	}
	return false
}

// IsCheckmate reports whether the team is in check and no legal move by any
// of its pieces escapes it. Every candidate is applied, verified, and fully
// undone; attack information is recomputed from scratch each call, which is
// fine on shop-economy board sizes and would need restructuring beyond them.
func IsCheckmate(b *Board, team Team) bool {
	if !IsInCheck(b, team) {
		return false
	}
	for _, pc := range b.PiecesByTeam(team) {
		for _, mv := range LegalMoves(b, pc.Pos) {
			if !movePutsInCheck(b, mv, team) {
				return false
			}
		}
	}
	return true
}

// movePutsInCheck simulates mv, evaluates check for team, then restores the
// source and destination cells and the mover's cached position exactly. The
// simulated state never escapes this function.
func movePutsInCheck(b *Board, mv Move, team Team) bool {
	mover := b.PieceAt(mv.From)
	if mover == nil {
		return false
	}
	captured := b.PieceAt(mv.To)

	b.setCell(mv.From, nil)
	b.setCell(mv.To, mover)
	mover.Pos = mv.To

	inCheck := IsInCheck(b, team)

	b.setCell(mv.To, captured)
	b.setCell(mv.From, mover)
	mover.Pos = mv.From
	return inCheck
}

// HasAnyLegalMove reports whether any piece of the team has at least one
// legal move.
func HasAnyLegalMove(b *Board, team Team) bool {
	for _, pc := range b.PiecesByTeam(team) {
		if len(LegalMoves(b, pc.Pos)) > 0 {
			return true
		}
	}
	return false
}
