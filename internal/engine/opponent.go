package engine

import (
	"math/rand"

	"go.uber.org/zap"
)

// Opponent selects one enemy move per turn: either a deliberate blunder at
// a stage-scaled probability or the best move under a small heuristic. It
// is built entirely on the legal-move queries and never mutates the board
// itself; callers execute the selected move so capture resolution stays in
// one place. Randomness is injected for reproducibility.
type Opponent struct {
	board *Board
	rng   *rand.Rand
	log   *zap.Logger
}

// NewOpponent creates an opponent over the given board.
func NewOpponent(b *Board, rng *rand.Rand, logger *zap.Logger) *Opponent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Opponent{board: b, rng: rng, log: logger}
}

// BlunderProbability is the chance the opponent plays a uniformly random
// move instead of its heuristic best at the given stage: 0.4 at stage 1,
// ramping linearly to 0.2 at stage 5, flat 0.2 through stage 9, and 0 from
// stage 10 on.
func BlunderProbability(stage int) float64 {
	switch {
	case stage >= 10:
		return 0
	case stage >= 5:
		return 0.2
	case stage < 1:
		return 0.4
	default:
		return 0.4 - float64(stage-1)/4*0.2
	}
}

// SelectMove picks the enemy move for this turn. The second return is false
// when no enemy piece has a legal move and the turn is a no-op.
func (o *Opponent) SelectMove(stage int) (Move, bool) {
	var movable []*Piece
	for _, pc := range o.board.PiecesByTeam(TeamEnemy) {
		if len(LegalMoves(o.board, pc.Pos)) > 0 {
			movable = append(movable, pc)
		}
	}
	if len(movable) == 0 {
		return Move{}, false
	}
	pc := movable[o.rng.Intn(len(movable))]
	moves := LegalMoves(o.board, pc.Pos)

	if o.rng.Float64() < BlunderProbability(stage) {
		mv := moves[o.rng.Intn(len(moves))]
		o.log.Debug("opponent blunders",
			zap.Int("stage", stage),
			zap.Stringer("from", mv.From),
			zap.Stringer("to", mv.To),
		)
		return mv, true
	}

	best := moves[0]
	bestScore := o.scoreMove(best, stage)
	for _, mv := range moves[1:] {
		// Ties keep the first move in generation order.
		if s := o.scoreMove(mv, stage); s > bestScore {
			best, bestScore = mv, s
		}
	}
	return best, true
}

// scoreMove applies the heuristic: +100 for capturing a player piece, -50
// when the destination is attackable by the player side (only from stage 5
// up; lower stages ignore safety entirely), +10 for strictly closing the
// Manhattan distance to the nearest player piece.
func (o *Opponent) scoreMove(mv Move, stage int) int {
	score := 0
	if target := o.board.PieceAt(mv.To); target != nil && target.Team == TeamPlayer {
		score += 100
	}
	if stage > 4 && attackedBy(o.board, mv.To, TeamPlayer) {
		score -= 50
	}
	if after, ok := o.nearestPlayerDistance(mv.To); ok {
		if before, _ := o.nearestPlayerDistance(mv.From); after < before {
			score += 10
		}
	}
	return score
}

func (o *Opponent) nearestPlayerDistance(from Position) (int, bool) {
	players := o.board.PiecesByTeam(TeamPlayer)
	if len(players) == 0 {
		return 0, false
	}
	best := from.ManhattanDistance(players[0].Pos)
	for _, pc := range players[1:] {
		if d := from.ManhattanDistance(pc.Pos); d < best {
			best = d
		}
	}
	return best, true
}
