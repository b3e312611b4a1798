package battle

import (
	"github.com/gridfall/gridfall-server-go/internal/engine"
)

// EventType labels a discrete result emitted by a battle turn. External
// collaborators consume these instead of polling engine state.
type EventType string

const (
	EventMove        EventType = "move"
	EventCapture     EventType = "capture"
	EventShieldBlock EventType = "shield_block"
	EventPromotion   EventType = "promotion"
	EventCheck       EventType = "check"
	EventBattleEnded EventType = "battle_ended"
	EventRepairWarn  EventType = "repair_warning"
)

// Event is a single discrete battle result.
type Event struct {
	Type EventType       `json:"type"`
	Team engine.Team     `json:"team"`
	From engine.Position `json:"from"`
	To   engine.Position `json:"to"`
	// Kind is the piece kind the event concerns: the captured kind for
	// captures, the new kind for promotions.
	Kind engine.Kind `json:"kind,omitempty"`
}

// Outcome is what a single turn returns: the events it produced and whether
// it ended the battle.
type Outcome struct {
	Events []Event     `json:"events"`
	Over   bool        `json:"over"`
	Winner engine.Team `json:"winner"`
	// Moved is false when the turn was a no-op (the opponent had no piece
	// with a legal move).
	Moved bool `json:"moved"`
}
