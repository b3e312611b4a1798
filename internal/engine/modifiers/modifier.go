package modifiers

// Modifier is a named effect attached to a piece. Duplicates of the same
// type are permitted and are consumed independently, so two shields absorb
// two hits.
type Modifier struct {
	Type      Type
	Magnitude int
}

// Set holds the modifiers attached to a single piece, in attachment order.
type Set struct {
	mods []Modifier
}

// NewSet creates an empty modifier set.
func NewSet() *Set {
	return &Set{}
}

// Add attaches a modifier to the set. Duplicates are kept.
func (s *Set) Add(m Modifier) {
	s.mods = append(s.mods, m)
}

// Has reports whether at least one modifier of the given type is attached.
func (s *Set) Has(t Type) bool {
	for _, m := range s.mods {
		if m.Type == t {
			return true
		}
	}
	return false
}

// Count returns the number of attached modifiers of the given type.
func (s *Set) Count(t Type) int {
	n := 0
	for _, m := range s.mods {
		if m.Type == t {
			n++
		}
	}
	return n
}

// Magnitude returns the magnitude of the first attached modifier of the
// given type, or 0 if none is attached.
func (s *Set) Magnitude(t Type) int {
	for _, m := range s.mods {
		if m.Type == t {
			return m.Magnitude
		}
	}
	return 0
}

// Consume removes one modifier of the given type, oldest first.
// Returns false if none was attached.
func (s *Set) Consume(t Type) bool {
	for i, m := range s.mods {
		if m.Type == t {
			s.mods = append(s.mods[:i], s.mods[i+1:]...)
			return true
		}
	}
	return false
}

// All returns the attached modifiers in attachment order.
func (s *Set) All() []Modifier {
	out := make([]Modifier, len(s.mods))
	copy(out, s.mods)
	return out
}

// Len returns the total number of attached modifiers.
func (s *Set) Len() int {
	return len(s.mods)
}

// Copy creates a deep copy of the set.
func (s *Set) Copy() *Set {
	c := &Set{mods: make([]Modifier, len(s.mods))}
	copy(c.mods, s.mods)
	return c
}
