package battle

import (
	"github.com/gridfall/gridfall-server-go/internal/engine"
)

// PieceView is the wire shape of one piece.
type PieceView struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Team      string          `json:"team"`
	Pos       engine.Position `json:"pos"`
	HitPoints int             `json:"hit_points"`
	Moved     bool            `json:"moved"`
	Modifiers []string        `json:"modifiers,omitempty"`
}

// View is the complete externally visible state of a battle.
type View struct {
	ID     string      `json:"id"`
	Stage  int         `json:"stage"`
	Rows   int         `json:"rows"`
	Cols   int         `json:"cols"`
	Pieces []PieceView `json:"pieces"`
	Over   bool        `json:"over"`
	Winner string      `json:"winner,omitempty"`
}

// Snapshot builds the current view of the battle.
func (b *Battle) Snapshot() View {
	v := View{
		ID:    b.ID,
		Stage: b.stage,
		Rows:  b.board.Rows(),
		Cols:  b.board.Cols(),
	}
	for _, team := range []engine.Team{engine.TeamPlayer, engine.TeamEnemy} {
		for _, pc := range b.board.PiecesByTeam(team) {
			v.Pieces = append(v.Pieces, pieceView(pc))
		}
	}
	if over, winner := b.Over(); over {
		v.Over = true
		v.Winner = winner.String()
	}
	return v
}

func pieceView(pc *engine.Piece) PieceView {
	pv := PieceView{
		ID:        pc.ID,
		Kind:      pc.Kind.String(),
		Team:      pc.Team.String(),
		Pos:       pc.Pos,
		HitPoints: pc.HitPoints,
		Moved:     pc.Moved,
	}
	for _, m := range pc.Modifiers.All() {
		pv.Modifiers = append(pv.Modifiers, m.Type.String())
	}
	return pv
}

// LegalMovesAt returns the legal destinations for the piece at pos, for
// callers mapping pointer input to cells.
func (b *Battle) LegalMovesAt(pos engine.Position) []engine.Position {
	var out []engine.Position
	for _, mv := range engine.LegalMoves(b.board, pos) {
		out = append(out, mv.To)
	}
	return out
}
