package battle

import (
	"errors"
	"math/rand"

	"github.com/google/uuid"
	"github.com/gridfall/gridfall-server-go/internal/engine"
	"github.com/gridfall/gridfall-server-go/internal/engine/modifiers"
	"go.uber.org/zap"
)

var (
	ErrBattleOver  = errors.New("battle is already over")
	ErrNoPiece     = errors.New("no piece at source position")
	ErrNotYours    = errors.New("piece does not belong to the player")
	ErrIllegalMove = errors.New("illegal move")
)

// promotionPool is what a player pawn may become on the enemy back rank.
// Queen is excluded to bound power on small boards.
var promotionPool = []engine.Kind{engine.Rook, engine.Knight, engine.Bishop}

// Battle is one fight on one board. Turns are discrete and atomic:
// validate, mutate the board, resolve capture and promotion, test end
// conditions. The enemy turn runs strictly after the player's turn when the
// battle is still active; any delay a presentation layer inserts is pacing,
// not concurrency.
type Battle struct {
	ID       string
	board    *engine.Board
	roster   *Roster
	stage    int
	rng      *rand.Rand
	opponent *engine.Opponent
	log      *zap.Logger

	over   bool
	winner engine.Team
}

// New assembles a battle for the roster's current stage: the player's
// pieces on their home rows, a stage-scaled enemy force on the far rows,
// and the placement repairs applied. Repair exhaustion is reported as
// events and logged; it never aborts the battle.
func New(roster *Roster, rng *rand.Rand, logger *zap.Logger) (*Battle, []Event) {
	if logger == nil {
		logger = zap.NewNop()
	}
	board := engine.NewBoard(roster.Rows, roster.Cols)
	b := &Battle{
		ID:       uuid.NewString(),
		board:    board,
		roster:   roster,
		stage:    roster.Stage,
		rng:      rng,
		opponent: engine.NewOpponent(board, rng, logger),
		log:      logger.With(zap.Int("stage", roster.Stage)),
	}
	b.placePlayerPieces()
	b.spawnEnemies()

	var events []Event
	planner := engine.NewPlanner(board, rng, logger)
	if !planner.EnsureSolvable() {
		events = append(events, Event{Type: EventRepairWarn, Team: engine.TeamPlayer})
	}
	if !planner.EnsureReachable() {
		events = append(events, Event{Type: EventRepairWarn, Team: engine.TeamPlayer})
	}
	b.log.Info("battle started",
		zap.String("battle_id", b.ID),
		zap.Int("player_pieces", roster.Len()),
		zap.Int("enemy_pieces", len(board.PiecesByTeam(engine.TeamEnemy))),
	)
	return b, events
}

// Board exposes the battle's board for queries.
func (b *Battle) Board() *engine.Board { return b.board }

// Stage returns the stage this battle was assembled for.
func (b *Battle) Stage() int { return b.stage }

// Over reports whether the battle has ended, and for whom.
func (b *Battle) Over() (bool, engine.Team) { return b.over, b.winner }

// placePlayerPieces fills the player's two home rows in acquisition order.
func (b *Battle) placePlayerPieces() {
	row := b.board.Rows() - 1
	col := 0
	for _, pc := range b.roster.Pieces() {
		for !b.board.Place(pc, engine.Position{Row: row, Col: col}) {
			col++
			if col >= b.board.Cols() {
				col = 0
				row--
			}
			if row < 0 {
				return
			}
		}
		pc.Moved = false
		col++
		if col >= b.board.Cols() {
			col = 0
			row--
		}
	}
}

// spawnEnemies builds the stage-scaled enemy force on the far rows. Every
// fifth stage fields a king, which makes check and checkmate live for that
// battle.
func (b *Battle) spawnEnemies() {
	kinds := enemyLoadout(b.stage, b.rng)
	spawnRows := 2
	if b.board.Rows() < 4 {
		spawnRows = 1
	}
	var open []engine.Position
	for r := 0; r < spawnRows; r++ {
		for c := 0; c < b.board.Cols(); c++ {
			pos := engine.Position{Row: r, Col: c}
			if b.board.PieceAt(pos) == nil {
				open = append(open, pos)
			}
		}
	}
	b.rng.Shuffle(len(open), func(i, j int) { open[i], open[j] = open[j], open[i] })
	for i, kind := range kinds {
		if i >= len(open) {
			break
		}
		b.board.Place(engine.NewPiece(kind, engine.TeamEnemy), open[i])
	}
}

// enemyLoadout scales the enemy force with the stage: more pieces and a
// richer kind pool as the run goes on.
func enemyLoadout(stage int, rng *rand.Rand) []engine.Kind {
	pool := []engine.Kind{engine.Pawn}
	switch {
	case stage >= 10:
		pool = append(pool, engine.Knight, engine.Bishop, engine.Rook, engine.Queen)
	case stage >= 6:
		pool = append(pool, engine.Knight, engine.Bishop, engine.Rook)
	case stage >= 3:
		pool = append(pool, engine.Knight, engine.Bishop)
	}
	count := 2 + (stage+1)/2
	if count > 8 {
		count = 8
	}
	kinds := make([]engine.Kind, 0, count+1)
	for i := 0; i < count; i++ {
		kinds = append(kinds, pool[rng.Intn(len(pool))])
	}
	if stage%5 == 0 {
		kinds = append(kinds, engine.King)
	}
	return kinds
}

// ApplyPlayerMove executes one player move, resolving capture, shield
// consumption, promotion, and end conditions.
func (b *Battle) ApplyPlayerMove(from, to engine.Position) (Outcome, error) {
	if b.over {
		return Outcome{Over: true, Winner: b.winner}, ErrBattleOver
	}
	pc := b.board.PieceAt(from)
	if pc == nil {
		return Outcome{}, ErrNoPiece
	}
	if pc.Team != engine.TeamPlayer {
		return Outcome{}, ErrNotYours
	}
	var chosen *engine.Move
	for _, mv := range engine.LegalMoves(b.board, from) {
		if mv.To == to {
			m := mv
			chosen = &m
			break
		}
	}
	if chosen == nil {
		return Outcome{}, ErrIllegalMove
	}
	events := b.applyMove(*chosen, engine.TeamPlayer)
	return b.finishTurn(events), nil
}

// TakeEnemyTurn runs the opponent for the battle's stage. A turn with no
// movable enemy piece is a no-op outcome.
func (b *Battle) TakeEnemyTurn() Outcome {
	if b.over {
		return Outcome{Over: true, Winner: b.winner}
	}
	mv, ok := b.opponent.SelectMove(b.stage)
	if !ok {
		return Outcome{Moved: false}
	}
	events := b.applyMove(mv, engine.TeamEnemy)
	return b.finishTurn(events)
}

// PlayTurn is the full turn cycle: the player's move, then, if the battle
// is still active, the enemy's reply. Events from both halves are returned
// in order.
func (b *Battle) PlayTurn(from, to engine.Position) (Outcome, error) {
	out, err := b.ApplyPlayerMove(from, to)
	if err != nil || out.Over {
		return out, err
	}
	reply := b.TakeEnemyTurn()
	out.Events = append(out.Events, reply.Events...)
	out.Over = reply.Over
	out.Winner = reply.Winner
	return out, nil
}

// applyMove performs the single board mutation of a turn and resolves its
// consequences. A defender holding a shield consumes one shield instead of
// dying: the attacker stays on its origin cell and the turn is still spent.
func (b *Battle) applyMove(mv engine.Move, team engine.Team) []Event {
	mover := b.board.PieceAt(mv.From)
	target := b.board.PieceAt(mv.To)

	if target != nil && target.Modifiers.Consume(modifiers.TypeShield) {
		mover.Moved = true
		b.log.Debug("shield absorbed capture",
			zap.Stringer("attacker", mv.From),
			zap.Stringer("defender", mv.To),
		)
		return []Event{{Type: EventShieldBlock, Team: target.Team, From: mv.From, To: mv.To, Kind: target.Kind}}
	}

	captured := b.board.Move(mv.From, mv.To)
	mover.Moved = true
	events := []Event{{Type: EventMove, Team: team, From: mv.From, To: mv.To, Kind: mover.Kind}}

	if captured != nil {
		captured.HitPoints = 0
		if captured.Team == engine.TeamPlayer {
			// Permadeath: the piece leaves the roster for good.
			b.roster.Remove(captured)
		}
		events = append(events, Event{Type: EventCapture, Team: captured.Team, From: mv.From, To: mv.To, Kind: captured.Kind})
	}

	if mover.Team == engine.TeamPlayer && mover.Kind == engine.Pawn &&
		mover.Pos.Row == 0 {
		events = append(events, b.promote(mover))
	}
	return events
}

// promote replaces a back-rank pawn in place with a piece drawn from the
// promotion pool. Modifiers transfer; the pawn is deleted from roster and
// board.
func (b *Battle) promote(pawn *engine.Piece) Event {
	kind := promotionPool[b.rng.Intn(len(promotionPool))]
	fresh := engine.NewPiece(kind, pawn.Team)
	fresh.Modifiers = pawn.Modifiers.Copy()
	fresh.Moved = true
	pos := pawn.Pos
	b.board.Remove(pos)
	b.board.Place(fresh, pos)
	b.roster.Replace(pawn, fresh)
	b.log.Info("pawn promoted", zap.Stringer("kind", kind), zap.Stringer("pos", pos))
	return Event{Type: EventPromotion, Team: fresh.Team, To: pos, Kind: kind}
}

// finishTurn evaluates end conditions and check after a half-turn.
func (b *Battle) finishTurn(events []Event) Outcome {
	out := Outcome{Events: events, Moved: true}
	switch {
	case len(b.board.PiecesByTeam(engine.TeamEnemy)) == 0:
		b.over, b.winner = true, engine.TeamPlayer
	case len(b.board.PiecesByTeam(engine.TeamPlayer)) == 0:
		b.over, b.winner = true, engine.TeamEnemy
	case engine.IsCheckmate(b.board, engine.TeamEnemy):
		b.over, b.winner = true, engine.TeamPlayer
	case engine.IsCheckmate(b.board, engine.TeamPlayer):
		b.over, b.winner = true, engine.TeamEnemy
	default:
		for _, team := range []engine.Team{engine.TeamPlayer, engine.TeamEnemy} {
			if engine.IsInCheck(b.board, team) {
				out.Events = append(out.Events, Event{Type: EventCheck, Team: team})
			}
		}
	}
	if b.over {
		out.Over = true
		out.Winner = b.winner
		out.Events = append(out.Events, Event{Type: EventBattleEnded, Team: b.winner})
		b.log.Info("battle ended", zap.Stringer("winner", b.winner))
	}
	return out
}
