package battle

import (
	"math/rand"
	"testing"

	"github.com/gridfall/gridfall-server-go/internal/engine"
	"github.com/gridfall/gridfall-server-go/internal/engine/modifiers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// newBareBattle wires a battle around a hand-built board, skipping spawn
// and placement repair.
func newBareBattle(t *testing.T, board *engine.Board, roster *Roster, stage int, seed int64) *Battle {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	logger := zaptest.NewLogger(t)
	return &Battle{
		ID:       "test-battle",
		board:    board,
		roster:   roster,
		stage:    stage,
		rng:      rng,
		opponent: engine.NewOpponent(board, rng, logger),
		log:      logger,
	}
}

func TestApplyPlayerMoveValidation(t *testing.T) {
	board := engine.NewBoard(5, 5)
	roster := NewRoster()
	rook := engine.NewPiece(engine.Rook, engine.TeamPlayer)
	roster.Add(rook)
	require.True(t, board.Place(rook, engine.Position{Row: 4, Col: 0}))
	enemy := engine.NewPiece(engine.Pawn, engine.TeamEnemy)
	require.True(t, board.Place(enemy, engine.Position{Row: 0, Col: 4}))

	b := newBareBattle(t, board, roster, 1, 1)

	_, err := b.ApplyPlayerMove(engine.Position{Row: 2, Col: 2}, engine.Position{Row: 1, Col: 2})
	assert.ErrorIs(t, err, ErrNoPiece)

	_, err = b.ApplyPlayerMove(engine.Position{Row: 0, Col: 4}, engine.Position{Row: 1, Col: 4})
	assert.ErrorIs(t, err, ErrNotYours)

	_, err = b.ApplyPlayerMove(engine.Position{Row: 4, Col: 0}, engine.Position{Row: 3, Col: 1})
	assert.ErrorIs(t, err, ErrIllegalMove)

	// Rejections leave the board untouched.
	assert.Equal(t, rook, board.PieceAt(engine.Position{Row: 4, Col: 0}))
}

func TestCapturedRosterPieceIsPermanentlyDeleted(t *testing.T) {
	board := engine.NewBoard(5, 5)
	roster := NewRoster()
	pawn := engine.NewPiece(engine.Pawn, engine.TeamPlayer)
	roster.Add(pawn)
	require.True(t, board.Place(pawn, engine.Position{Row: 2, Col: 2}))
	rook := engine.NewPiece(engine.Rook, engine.TeamEnemy)
	require.True(t, board.Place(rook, engine.Position{Row: 2, Col: 4}))

	b := newBareBattle(t, board, roster, 10, 1)
	out := b.TakeEnemyTurn()

	require.True(t, out.Moved)
	assert.False(t, roster.Contains(pawn), "permadeath removes the piece from the roster")
	assert.Zero(t, roster.Len())
	assert.True(t, out.Over)
	assert.Equal(t, engine.TeamEnemy, out.Winner)
}

func TestPlayerCaptureEndsBattleWhenLastEnemyFalls(t *testing.T) {
	board := engine.NewBoard(5, 5)
	roster := NewRoster()
	rook := engine.NewPiece(engine.Rook, engine.TeamPlayer)
	roster.Add(rook)
	require.True(t, board.Place(rook, engine.Position{Row: 4, Col: 2}))
	require.True(t, board.Place(engine.NewPiece(engine.Pawn, engine.TeamEnemy), engine.Position{Row: 1, Col: 2}))

	b := newBareBattle(t, board, roster, 1, 1)
	out, err := b.ApplyPlayerMove(engine.Position{Row: 4, Col: 2}, engine.Position{Row: 1, Col: 2})

	require.NoError(t, err)
	assert.True(t, out.Over)
	assert.Equal(t, engine.TeamPlayer, out.Winner)
	assert.Empty(t, board.PiecesByTeam(engine.TeamEnemy))

	var types []EventType
	for _, ev := range out.Events {
		types = append(types, ev.Type)
	}
	assert.Contains(t, types, EventCapture)
	assert.Contains(t, types, EventBattleEnded)
}

func TestShieldAbsorbsCapture(t *testing.T) {
	board := engine.NewBoard(5, 5)
	roster := NewRoster()
	rook := engine.NewPiece(engine.Rook, engine.TeamPlayer)
	roster.Add(rook)
	require.True(t, board.Place(rook, engine.Position{Row: 3, Col: 0}))

	guarded := engine.NewPiece(engine.Pawn, engine.TeamEnemy)
	guarded.Modifiers.Add(modifiers.TypeShield.CreateInstance(0))
	require.True(t, board.Place(guarded, engine.Position{Row: 3, Col: 2}))

	b := newBareBattle(t, board, roster, 1, 1)
	out, err := b.ApplyPlayerMove(engine.Position{Row: 3, Col: 0}, engine.Position{Row: 3, Col: 2})

	require.NoError(t, err)
	require.Len(t, out.Events, 1)
	assert.Equal(t, EventShieldBlock, out.Events[0].Type)

	// Defender survives in place, attacker stays home, shield is spent.
	assert.Equal(t, guarded, board.PieceAt(engine.Position{Row: 3, Col: 2}))
	assert.Equal(t, rook, board.PieceAt(engine.Position{Row: 3, Col: 0}))
	assert.Zero(t, guarded.Modifiers.Count(modifiers.TypeShield))
	assert.False(t, out.Over)

	// A second attack goes through.
	out, err = b.ApplyPlayerMove(engine.Position{Row: 3, Col: 0}, engine.Position{Row: 3, Col: 2})
	require.NoError(t, err)
	assert.True(t, out.Over)
	assert.Empty(t, board.PiecesByTeam(engine.TeamEnemy))
}

func TestPawnPromotesOnEnemyBackRank(t *testing.T) {
	board := engine.NewBoard(5, 5)
	roster := NewRoster()
	pawn := engine.NewPiece(engine.Pawn, engine.TeamPlayer)
	pawn.Modifiers.Add(modifiers.TypeShield.CreateInstance(0))
	roster.Add(pawn)
	require.True(t, board.Place(pawn, engine.Position{Row: 1, Col: 2}))
	require.True(t, board.Place(engine.NewPiece(engine.Rook, engine.TeamEnemy), engine.Position{Row: 4, Col: 4}))

	b := newBareBattle(t, board, roster, 1, 1)
	out, err := b.ApplyPlayerMove(engine.Position{Row: 1, Col: 2}, engine.Position{Row: 0, Col: 2})
	require.NoError(t, err)

	promoted := board.PieceAt(engine.Position{Row: 0, Col: 2})
	require.NotNil(t, promoted)
	assert.Contains(t, promotionPool, promoted.Kind, "queen stays out of the pool")
	assert.Equal(t, engine.TeamPlayer, promoted.Team)
	assert.True(t, promoted.Modifiers.Has(modifiers.TypeShield), "modifiers transfer")

	// The pawn is gone from roster and board; its successor takes its slot.
	assert.False(t, roster.Contains(pawn))
	assert.True(t, roster.Contains(promoted))
	assert.Equal(t, 1, roster.Len())

	var types []EventType
	for _, ev := range out.Events {
		types = append(types, ev.Type)
	}
	assert.Contains(t, types, EventPromotion)
}

func TestPlayTurnSequencesEnemyReply(t *testing.T) {
	board := engine.NewBoard(5, 5)
	roster := NewRoster()
	rook := engine.NewPiece(engine.Rook, engine.TeamPlayer)
	roster.Add(rook)
	require.True(t, board.Place(rook, engine.Position{Row: 4, Col: 0}))
	require.True(t, board.Place(engine.NewPiece(engine.Pawn, engine.TeamEnemy), engine.Position{Row: 0, Col: 4}))

	b := newBareBattle(t, board, roster, 10, 1)
	out, err := b.PlayTurn(engine.Position{Row: 4, Col: 0}, engine.Position{Row: 3, Col: 0})
	require.NoError(t, err)

	moves := 0
	for _, ev := range out.Events {
		if ev.Type == EventMove {
			moves++
		}
	}
	assert.Equal(t, 2, moves, "player move then enemy reply")
	assert.False(t, out.Over)
}

func TestTakeEnemyTurnNoMovablePieces(t *testing.T) {
	board := engine.NewBoard(5, 5)
	roster := NewRoster()
	rook := engine.NewPiece(engine.Rook, engine.TeamPlayer)
	roster.Add(rook)
	require.True(t, board.Place(rook, engine.Position{Row: 4, Col: 0}))

	b := newBareBattle(t, board, roster, 1, 1)
	b.over = false
	// No enemy pieces at all: the enemy turn is a no-op.
	out := b.TakeEnemyTurn()
	assert.False(t, out.Moved)
	assert.Empty(t, out.Events)
}

func TestNewBattlePlacesRosterAndSpawnsEnemies(t *testing.T) {
	roster := StarterRoster(5, 5, 1, 0)
	b, _ := New(roster, rand.New(rand.NewSource(42)), zaptest.NewLogger(t))

	players := b.Board().PiecesByTeam(engine.TeamPlayer)
	enemies := b.Board().PiecesByTeam(engine.TeamEnemy)

	assert.Len(t, players, roster.Len())
	assert.NotEmpty(t, enemies)
	// The solvability guarantee: the player can always act turn one.
	assert.True(t, engine.HasAnyLegalMove(b.Board(), engine.TeamPlayer))
	over, _ := b.Over()
	assert.False(t, over)
}

func TestBossStageFieldsAKing(t *testing.T) {
	roster := StarterRoster(5, 5, 5, 0)
	b, _ := New(roster, rand.New(rand.NewSource(7)), zaptest.NewLogger(t))

	hasKing := false
	for _, pc := range b.Board().PiecesByTeam(engine.TeamEnemy) {
		if pc.Kind == engine.King {
			hasKing = true
		}
	}
	assert.True(t, hasKing, "every fifth stage is a boss battle")
}

func TestBattleIsReproducibleUnderSeed(t *testing.T) {
	layout := func(seed int64) []string {
		roster := StarterRoster(5, 5, 3, 0)
		b, _ := New(roster, rand.New(rand.NewSource(seed)), zaptest.NewLogger(t))
		var out []string
		for _, pc := range b.Board().PiecesByTeam(engine.TeamEnemy) {
			out = append(out, pc.Kind.String()+pc.Pos.String())
		}
		return out
	}

	assert.Equal(t, layout(99), layout(99))
}
