package engine

// DefaultBoardSize is the starting dimension of a run's board before any
// expansion purchases.
const DefaultBoardSize = 5

// Board owns the grid of cells. Every occupied cell holds exactly one piece
// whose cached position equals the cell coordinates; all mutation goes
// through the methods here so that invariant holds in committed states.
// Boards grow via the expand operations and are never shrunk.
type Board struct {
	rows  int
	cols  int
	cells [][]*Piece
}

// NewBoard creates an empty board with the given dimensions. Non-positive
// dimensions fall back to the default size.
func NewBoard(rows, cols int) *Board {
	if rows <= 0 {
		rows = DefaultBoardSize
	}
	if cols <= 0 {
		cols = DefaultBoardSize
	}
	b := &Board{rows: rows, cols: cols}
	b.cells = make([][]*Piece, rows)
	for r := range b.cells {
		b.cells[r] = make([]*Piece, cols)
	}
	return b
}

// Rows returns the current row count.
func (b *Board) Rows() int { return b.rows }

// Cols returns the current column count.
func (b *Board) Cols() int { return b.cols }

// IsValidPosition reports whether pos is inside the grid. Bounds check only.
func (b *Board) IsValidPosition(pos Position) bool {
	return pos.Row >= 0 && pos.Row < b.rows && pos.Col >= 0 && pos.Col < b.cols
}

// PieceAt returns the piece occupying pos, or nil if the cell is empty or
// out of bounds.
func (b *Board) PieceAt(pos Position) *Piece {
	if !b.IsValidPosition(pos) {
		return nil
	}
	return b.cells[pos.Row][pos.Col]
}

// Place puts a piece on an empty cell. It refuses invalid positions and
// occupied cells; it never overwrites.
func (b *Board) Place(pc *Piece, pos Position) bool {
	if pc == nil || !b.IsValidPosition(pos) || b.cells[pos.Row][pos.Col] != nil {
		return false
	}
	b.cells[pos.Row][pos.Col] = pc
	pc.Pos = pos
	return true
}

// Move relocates the piece at from to to, returning whatever previously
// occupied to (the captured piece) or nil. If from is empty or either
// position is invalid, nothing changes and nil is returned.
func (b *Board) Move(from, to Position) *Piece {
	if !b.IsValidPosition(from) || !b.IsValidPosition(to) {
		return nil
	}
	pc := b.cells[from.Row][from.Col]
	if pc == nil {
		return nil
	}
	captured := b.cells[to.Row][to.Col]
	b.cells[from.Row][from.Col] = nil
	b.cells[to.Row][to.Col] = pc
	pc.Pos = to
	return captured
}

// Remove clears pos and returns the piece that occupied it, if any.
func (b *Board) Remove(pos Position) *Piece {
	if !b.IsValidPosition(pos) {
		return nil
	}
	pc := b.cells[pos.Row][pos.Col]
	b.cells[pos.Row][pos.Col] = nil
	return pc
}

// ExpandRows grows the grid by count rows, inserted at the top edge when
// atTop is true and at the bottom otherwise. Inserting at the top shifts
// every occupant's row coordinate by count so piece identity and relative
// geometry survive the re-index.
func (b *Board) ExpandRows(count int, atTop bool) {
	if count <= 0 {
		return
	}
	fresh := make([][]*Piece, count)
	for r := range fresh {
		fresh[r] = make([]*Piece, b.cols)
	}
	if atTop {
		b.cells = append(fresh, b.cells...)
	} else {
		b.cells = append(b.cells, fresh...)
	}
	b.rows += count
	if atTop {
		b.reindex()
	}
}

// ExpandCols grows the grid by count columns, inserted at the left edge when
// atLeft is true and at the right otherwise. Left insertion shifts every
// occupant's column coordinate by count.
func (b *Board) ExpandCols(count int, atLeft bool) {
	if count <= 0 {
		return
	}
	for r := range b.cells {
		fresh := make([]*Piece, count)
		if atLeft {
			b.cells[r] = append(fresh, b.cells[r]...)
		} else {
			b.cells[r] = append(b.cells[r], fresh...)
		}
	}
	b.cols += count
	if atLeft {
		b.reindex()
	}
}

// reindex rewrites every occupant's cached position from its actual cell.
func (b *Board) reindex() {
	for r := range b.cells {
		for c := range b.cells[r] {
			if pc := b.cells[r][c]; pc != nil {
				pc.Pos = Position{Row: r, Col: c}
			}
		}
	}
}

// PiecesByTeam scans the grid and returns the given team's pieces in
// row-major order. The grid is small; no secondary index is kept.
func (b *Board) PiecesByTeam(team Team) []*Piece {
	var out []*Piece
	for r := range b.cells {
		for c := range b.cells[r] {
			if pc := b.cells[r][c]; pc != nil && pc.Team == team {
				out = append(out, pc)
			}
		}
	}
	return out
}

// EmptyPositions returns every unoccupied in-bounds position in row-major
// order.
func (b *Board) EmptyPositions() []Position {
	var out []Position
	for r := range b.cells {
		for c := range b.cells[r] {
			if b.cells[r][c] == nil {
				out = append(out, Position{Row: r, Col: c})
			}
		}
	}
	return out
}

// setCell writes a cell directly without touching cached positions. It is
// the primitive under the simulate/undo cycle in checkmate search and must
// not be used for committed mutation.
func (b *Board) setCell(pos Position, pc *Piece) {
	b.cells[pos.Row][pos.Col] = pc
}
