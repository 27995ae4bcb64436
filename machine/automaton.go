package machine

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// An Automaton is the shared container behind every machine variant.
//
// It owns a flat store of states and transitions; transitions reference
// their endpoints by state id. The container also carries the mutable
// simulation state of the current run and the snapshot history used for
// undo/redo. Each mutating operation records a snapshot before it applies.
//
// The container is not safe for concurrent use. The simulator, editor and
// renderer are expected to call into it from a single flow of control.
type Automaton struct {
	kind Kind

	// self points back to the variant embedding this container so that the
	// container can take and restore full snapshots.
	self Machine

	States      []*State
	Transitions []*Transition

	// InitialID is the id of the initial state, -1 when unset.
	InitialID int

	alphabet map[string]struct{}
	blank    string

	nextStateID int
	nextTransID int

	// Simulation state of the current run.
	Input   string
	input   []rune
	Cursor  int
	Trace   []TraceEntry
	Verdict Verdict
	Running bool

	// The ids of the states in the current configuration set.
	active map[int]struct{}

	hist *history
}

func newAutomaton(kind Kind, self Machine) Automaton {
	return Automaton{
		kind:      kind,
		self:      self,
		InitialID: -1,
		alphabet:  map[string]struct{}{},
		blank:     DefaultBlank,
		active:    map[int]struct{}{},
		hist:      &history{},
	}
}

// Base returns the shared container itself. It exists so that the Machine
// interface exposes the container without each variant repeating it.
func (a *Automaton) Base() *Automaton { return a }

// Kind returns the type tag of the machine.
func (a *Automaton) Kind() Kind { return a.kind }

// AddState appends the state and issues its id.
//
// The first state of an automaton becomes initial. A state added with
// IsInitial set displaces the previous initial state.
func (a *Automaton) AddState(s *State) *State {
	if s == nil {
		return nil
	}
	a.pushHistory()
	s.ID = a.nextStateID
	a.nextStateID++
	if s.IsInitial {
		a.clearInitial()
		a.InitialID = s.ID
	}
	a.States = append(a.States, s)
	if len(a.States) == 1 {
		s.IsInitial = true
		a.InitialID = s.ID
	}
	return s
}

// RemoveState deletes the state and every transition incident to it.
//
// Removing the initial state promotes the first remaining state, if any.
// Removing an unknown id is a no-op.
func (a *Automaton) RemoveState(id int) {
	i := slices.IndexFunc(a.States, func(s *State) bool { return s.ID == id })
	if i < 0 {
		return
	}
	a.pushHistory()
	wasInitial := a.States[i].IsInitial
	a.States = slices.Delete(a.States, i, i+1)
	a.Transitions = slices.DeleteFunc(a.Transitions, func(t *Transition) bool {
		return t.From == id || t.To == id
	})
	if wasInitial {
		a.InitialID = -1
		if len(a.States) > 0 {
			a.States[0].IsInitial = true
			a.InitialID = a.States[0].ID
		}
	}
	a.refreshAlphabet()
}

// AddTransition appends the transition and issues its id.
//
// Both endpoints must reference live states; otherwise the call is a no-op
// and returns nil. The derived input alphabet picks up the transition's
// symbols.
func (a *Automaton) AddTransition(t *Transition) *Transition {
	if t == nil || a.StateByID(t.From) == nil || a.StateByID(t.To) == nil {
		return nil
	}
	a.pushHistory()
	t.ID = a.nextTransID
	a.nextTransID++
	a.Transitions = append(a.Transitions, t)
	for _, sym := range a.inputSymbols(t) {
		a.alphabet[sym] = struct{}{}
	}
	return t
}

// RemoveTransition deletes the transition with the given id, if present.
func (a *Automaton) RemoveTransition(id int) {
	i := slices.IndexFunc(a.Transitions, func(t *Transition) bool { return t.ID == id })
	if i < 0 {
		return
	}
	a.pushHistory()
	a.Transitions = slices.Delete(a.Transitions, i, i+1)
	a.refreshAlphabet()
}

// SetInitialState makes the state with the given id the single initial state.
func (a *Automaton) SetInitialState(id int) {
	s := a.StateByID(id)
	if s == nil {
		return
	}
	a.pushHistory()
	a.clearInitial()
	s.IsInitial = true
	a.InitialID = id
}

// Clear empties the model and resets the identity counters.
func (a *Automaton) Clear() {
	a.pushHistory()
	a.States = nil
	a.Transitions = nil
	a.InitialID = -1
	a.alphabet = map[string]struct{}{}
	a.nextStateID = 0
	a.nextTransID = 0
	a.resetSimulation("")
	a.Running = false
}

func (a *Automaton) clearInitial() {
	for _, s := range a.States {
		s.IsInitial = false
	}
	a.InitialID = -1
}

// StateByID resolves a state id, returning nil for unknown ids.
func (a *Automaton) StateByID(id int) *State {
	for _, s := range a.States {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// InitialState returns the initial state, nil when unset.
func (a *Automaton) InitialState() *State {
	if a.InitialID < 0 {
		return nil
	}
	return a.StateByID(a.InitialID)
}

// TransitionsFrom returns the transitions leaving the state, in insertion order.
func (a *Automaton) TransitionsFrom(id int) []*Transition {
	var out []*Transition
	for _, t := range a.Transitions {
		if t.From == id {
			out = append(out, t)
		}
	}
	return out
}

// TransitionsTo returns the transitions entering the state, in insertion order.
func (a *Automaton) TransitionsTo(id int) []*Transition {
	var out []*Transition
	for _, t := range a.Transitions {
		if t.To == id {
			out = append(out, t)
		}
	}
	return out
}

// TransitionsBetween returns the transitions from one state to another,
// in insertion order.
func (a *Automaton) TransitionsBetween(from, to int) []*Transition {
	var out []*Transition
	for _, t := range a.Transitions {
		if t.From == from && t.To == to {
			out = append(out, t)
		}
	}
	return out
}

// FinalStates returns the states flagged final, in insertion order.
func (a *Automaton) FinalStates() []*State {
	var out []*State
	for _, s := range a.States {
		if s.IsFinal {
			out = append(out, s)
		}
	}
	return out
}

// Alphabet returns the derived input alphabet in sorted order.
func (a *Automaton) Alphabet() []string {
	syms := maps.Keys(a.alphabet)
	slices.Sort(syms)
	return syms
}

// inputSymbols lists the non-ε input symbols a transition contributes to
// the derived alphabet. For tape machines the blank does not count as an
// input symbol.
func (a *Automaton) inputSymbols(t *Transition) []string {
	var out []string
	switch a.kind {
	case KindDFA, KindNFA:
		for _, s := range t.Symbols {
			if s != Epsilon {
				out = append(out, s)
			}
		}
	case KindPDA:
		if s := t.InputSymbol(); s != Epsilon {
			out = append(out, s)
		}
	case KindTM:
		if s := t.ReadSymbol; s != Epsilon && s != a.blank && s != "_" {
			out = append(out, s)
		}
	}
	return out
}

func (a *Automaton) refreshAlphabet() {
	a.alphabet = map[string]struct{}{}
	for _, t := range a.Transitions {
		for _, sym := range a.inputSymbols(t) {
			a.alphabet[sym] = struct{}{}
		}
	}
}

// resetSimulation prepares the container for a new run over the input.
func (a *Automaton) resetSimulation(input string) {
	a.Input = input
	a.input = []rune(input)
	a.Cursor = 0
	a.Trace = nil
	a.Verdict = Undecided
	a.Running = true
	a.active = map[int]struct{}{}
	a.clearStepFlags()
}

// clearStepFlags resets the renderer-facing snapshot set by the previous step.
func (a *Automaton) clearStepFlags() {
	for _, s := range a.States {
		s.Active = false
	}
	for _, t := range a.Transitions {
		t.Highlight = false
	}
}

// setActive replaces the active state set and refreshes the states'
// Active flags.
func (a *Automaton) setActive(ids map[int]struct{}) {
	a.active = ids
	for _, s := range a.States {
		_, ok := ids[s.ID]
		s.Active = ok
	}
}

// ActiveStateIDs returns the ids of the active configuration states,
// sorted for deterministic display.
func (a *Automaton) ActiveStateIDs() []int {
	ids := maps.Keys(a.active)
	slices.Sort(ids)
	return ids
}

// ActiveStateNames returns the display names of the active states in id order.
func (a *Automaton) ActiveStateNames() []string {
	var names []string
	for _, id := range a.ActiveStateIDs() {
		if s := a.StateByID(id); s != nil {
			names = append(names, s.Name)
		}
	}
	return names
}

// Remaining returns the not-yet-consumed suffix of the input.
func (a *Automaton) Remaining() string {
	if a.Cursor >= len(a.input) {
		return ""
	}
	return string(a.input[a.Cursor:])
}

// CurrentSymbol returns the input symbol under the cursor, ε at end of input.
func (a *Automaton) CurrentSymbol() string {
	if a.Cursor >= len(a.input) {
		return Epsilon
	}
	return string(a.input[a.Cursor])
}

// InputLen returns the input length in symbols.
func (a *Automaton) InputLen() int {
	return len(a.input)
}
