package machine

// A State is a node in the transition graph of an automaton.
//
// The id is unique within the owning automaton and stable across mutations.
// Active and Selected are renderer-facing flags: Active is set by the
// simulation while the state is part of the current configuration set,
// Selected belongs to the editor.
type State struct {
	ID   int
	Name string

	X float64
	Y float64

	IsInitial bool
	IsFinal   bool

	// IsHalt marks a Turing machine halt state. A halting state that is
	// also final accepts; halting without final rejects.
	IsHalt bool

	Active   bool
	Selected bool
}

// NewState creates an unattached state. The id is issued when the state is
// added to an automaton.
func NewState(name string, x, y float64) *State {
	return &State{
		Name: name,
		X:    x,
		Y:    y,
	}
}
