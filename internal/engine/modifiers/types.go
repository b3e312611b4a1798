package modifiers

// Type identifies a kind of modifier.
type Type string

const (
	// TypeShield absorbs one capture; each attached shield is consumed
	// independently.
	TypeShield Type = "shield"
	// TypeRangeBoost extends the sliding-piece ray cap.
	TypeRangeBoost Type = "range_boost"
	// TypeDoubleMove lets a knight chain a second hop in the same move.
	TypeDoubleMove Type = "double_move"
	// TypeBackstep lets a pawn step one cell backward into an empty cell.
	TypeBackstep Type = "backstep"
)

// String returns the string representation of the modifier type.
func (t Type) String() string {
	return string(t)
}

// CreateInstance creates a modifier of this type with the given magnitude.
func (t Type) CreateInstance(magnitude int) Modifier {
	return Modifier{Type: t, Magnitude: magnitude}
}
