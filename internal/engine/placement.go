package engine

import (
	"math/rand"

	"go.uber.org/zap"
)

// repairAttemptBudget bounds how many relocations a repair pass may try
// before giving up and reporting the position as-is.
const repairAttemptBudget = 12

// Planner enforces the post-spawn guarantees: the player side has at least
// one legal move, and every player pawn has a reachable enemy in its lane.
// Repairs relocate enemy pieces and are best-effort; an exhausted budget is
// reported, never papered over. Randomness is injected so repairs are
// reproducible under test.
type Planner struct {
	board *Board
	rng   *rand.Rand
	log   *zap.Logger
}

// NewPlanner creates a planner over the given board.
func NewPlanner(b *Board, rng *rand.Rand, logger *zap.Logger) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{board: b, rng: rng, log: logger}
}

// EnsureSolvable verifies the player side has at least one legal move,
// repairing by relocating enemies when it does not. The strategies are
// tried in order each attempt: threaten a pawn diagonally, unblock a
// blocked friendly move, then relocate any enemy at random. Solvability is
// re-checked after every relocation. Returns false when the budget runs out
// with the position still unplayable.
func (p *Planner) EnsureSolvable() bool {
	if HasAnyLegalMove(p.board, TeamPlayer) {
		return true
	}
	for attempt := 0; attempt < repairAttemptBudget; attempt++ {
		if p.threatenPawnDiagonal() && HasAnyLegalMove(p.board, TeamPlayer) {
			return true
		}
		if p.relocateBlocker() && HasAnyLegalMove(p.board, TeamPlayer) {
			return true
		}
		if p.relocateRandomEnemy() && HasAnyLegalMove(p.board, TeamPlayer) {
			return true
		}
	}
	p.log.Warn("solvability repair budget exhausted",
		zap.Int("attempts", repairAttemptBudget),
	)
	return false
}

// threatenPawnDiagonal moves a random enemy onto an empty capture diagonal
// of a player pawn, handing that pawn a legal capture.
func (p *Planner) threatenPawnDiagonal() bool {
	var targets []Position
	for _, pc := range p.board.PiecesByTeam(TeamPlayer) {
		if pc.Kind != Pawn {
			continue
		}
		dir := forwardDir(pc.Team)
		for _, dc := range []int{-1, 1} {
			dest := Position{Row: pc.Pos.Row + dir, Col: pc.Pos.Col + dc}
			if p.board.IsValidPosition(dest) && p.board.PieceAt(dest) == nil {
				targets = append(targets, dest)
			}
		}
	}
	enemies := p.board.PiecesByTeam(TeamEnemy)
	if len(targets) == 0 || len(enemies) == 0 {
		return false
	}
	enemy := enemies[p.rng.Intn(len(enemies))]
	return p.relocate(enemy, targets[p.rng.Intn(len(targets))])
}

// relocateBlocker finds an enemy piece whose removal would give the player
// side a legal move and relocates it to one of its own empty destinations.
func (p *Planner) relocateBlocker() bool {
	for _, enemy := range p.board.PiecesByTeam(TeamEnemy) {
		dests := p.emptyDestinations(enemy)
		if len(dests) == 0 {
			continue
		}
		p.board.setCell(enemy.Pos, nil)
		unblocks := HasAnyLegalMove(p.board, TeamPlayer)
		p.board.setCell(enemy.Pos, enemy)
		if unblocks {
			return p.relocate(enemy, dests[p.rng.Intn(len(dests))])
		}
	}
	return false
}

// relocateRandomEnemy moves a uniformly chosen enemy to a uniformly chosen
// empty destination of its own.
func (p *Planner) relocateRandomEnemy() bool {
	var movable []*Piece
	for _, enemy := range p.board.PiecesByTeam(TeamEnemy) {
		if len(p.emptyDestinations(enemy)) > 0 {
			movable = append(movable, enemy)
		}
	}
	if len(movable) == 0 {
		return false
	}
	enemy := movable[p.rng.Intn(len(movable))]
	dests := p.emptyDestinations(enemy)
	return p.relocate(enemy, dests[p.rng.Intn(len(dests))])
}

// EnsureReachable guarantees every player pawn at column C has an enemy
// within columns C-1..C+1. Pawns cannot move sideways and only capture
// diagonally, so a pawn whose lane band holds no enemy could never meet
// one. The column-nearest enemy is relocated into the band, preferring
// columns C+1, C, C-1 and a random row strictly inside the pawn's
// traversable rows. Returns false when any pawn could not be repaired.
func (p *Planner) EnsureReachable() bool {
	ok := true
	for _, pc := range p.board.PiecesByTeam(TeamPlayer) {
		if pc.Kind != Pawn {
			continue
		}
		if p.enemyInLane(pc.Pos.Col) {
			continue
		}
		if !p.pullEnemyIntoLane(pc) {
			p.log.Warn("pawn reachability repair failed",
				zap.Int("pawn_col", pc.Pos.Col),
				zap.Int("pawn_row", pc.Pos.Row),
			)
			ok = false
		}
	}
	return ok
}

func (p *Planner) enemyInLane(col int) bool {
	for _, enemy := range p.board.PiecesByTeam(TeamEnemy) {
		if abs(enemy.Pos.Col-col) <= 1 {
			return true
		}
	}
	return false
}

func (p *Planner) pullEnemyIntoLane(pawn *Piece) bool {
	enemies := p.board.PiecesByTeam(TeamEnemy)
	if len(enemies) == 0 {
		return false
	}
	nearest := enemies[0]
	for _, enemy := range enemies[1:] {
		if abs(enemy.Pos.Col-pawn.Pos.Col) < abs(nearest.Pos.Col-pawn.Pos.Col) {
			nearest = enemy
		}
	}
	for _, col := range []int{pawn.Pos.Col + 1, pawn.Pos.Col, pawn.Pos.Col - 1} {
		rows := p.traversableRows(pawn, col)
		if len(rows) == 0 {
			continue
		}
		dest := Position{Row: rows[p.rng.Intn(len(rows))], Col: col}
		if p.relocate(nearest, dest) {
			return true
		}
	}
	return false
}

// traversableRows lists the empty rows of col strictly between the pawn's
// row and the opposing back rank.
func (p *Planner) traversableRows(pawn *Piece, col int) []int {
	edge := opposingBackRank(p.board, pawn.Team)
	lo, hi := edge, pawn.Pos.Row
	if lo > hi {
		lo, hi = hi, lo
	}
	var rows []int
	for r := lo + 1; r < hi; r++ {
		pos := Position{Row: r, Col: col}
		if p.board.IsValidPosition(pos) && p.board.PieceAt(pos) == nil {
			rows = append(rows, r)
		}
	}
	return rows
}

// relocate moves pc to an empty valid cell, preserving board piece counts.
func (p *Planner) relocate(pc *Piece, to Position) bool {
	if !p.board.IsValidPosition(to) || p.board.PieceAt(to) != nil {
		return false
	}
	p.board.Remove(pc.Pos)
	return p.board.Place(pc, to)
}

// emptyDestinations returns the piece's legal destinations that are empty
// cells; relocation repairs never resolve captures.
func (p *Planner) emptyDestinations(pc *Piece) []Position {
	var out []Position
	for _, mv := range LegalMoves(p.board, pc.Pos) {
		if !mv.Capture {
			out = append(out, mv.To)
		}
	}
	return out
}
