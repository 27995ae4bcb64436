package machine

import (
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/exp/slices"
)

// Structured is the round-trip serialization record of a machine.
//
// It is the shape written to and read from JSON, the snapshot format of
// the undo history, and the working-copy format of the simulator's
// test runs.
type Structured struct {
	Type        Kind                   `json:"type"`
	States      []StructuredState      `json:"states"`
	Transitions []StructuredTransition `json:"transitions"`
	Alphabet    []string               `json:"alphabet"`

	// InitialStateID is nil when no initial state is set.
	InitialStateID *int `json:"initialStateId"`

	// Turing machine fields.
	BlankSymbol  string   `json:"blankSymbol,omitempty"`
	TapeAlphabet []string `json:"tapeAlphabet,omitempty"`

	// Pushdown fields.
	InitialStackSymbol string   `json:"initialStackSymbol,omitempty"`
	AcceptByFinalState *bool    `json:"acceptByFinalState,omitempty"`
	AcceptByEmptyStack *bool    `json:"acceptByEmptyStack,omitempty"`
	StackAlphabet      []string `json:"stackAlphabet,omitempty"`
}

type StructuredState struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	IsInitial bool    `json:"isInitial"`
	IsFinal   bool    `json:"isFinal"`
	IsHalt    bool    `json:"isHalt,omitempty"`
}

type StructuredTransition struct {
	ID          int      `json:"id"`
	FromState   int      `json:"fromState"`
	ToState     int      `json:"toState"`
	Symbols     []string `json:"symbols,omitempty"`
	StackRead   string   `json:"stackRead,omitempty"`
	StackWrite  string   `json:"stackWrite,omitempty"`
	ReadSymbol  string   `json:"readSymbol,omitempty"`
	WriteSymbol string   `json:"writeSymbol,omitempty"`
	Direction   string   `json:"direction,omitempty"`

	ControlPoint *Point `json:"controlPoint,omitempty"`
	LabelOffset  *Point `json:"labelOffset,omitempty"`
}

// Encode writes the record as indented JSON.
func (s *Structured) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// DecodeStructured reads a structured record from JSON.
func DecodeStructured(r io.Reader) (*Structured, error) {
	var s Structured
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("machine: decoding structured form: %w", err)
	}
	return &s, nil
}

// Load constructs a machine of the record's type and populates it.
func Load(s *Structured) (Machine, error) {
	m, err := New(s.Type)
	if err != nil {
		return nil, err
	}
	if err := m.FromStructured(s); err != nil {
		return nil, err
	}
	return m, nil
}

// toStructuredBase serializes the fields shared by every variant.
func (a *Automaton) toStructuredBase() *Structured {
	s := &Structured{
		Type:        a.kind,
		States:      []StructuredState{},
		Transitions: []StructuredTransition{},
		Alphabet:    a.Alphabet(),
	}
	if a.InitialID >= 0 {
		id := a.InitialID
		s.InitialStateID = &id
	}
	for _, st := range a.States {
		s.States = append(s.States, StructuredState{
			ID:        st.ID,
			Name:      st.Name,
			X:         st.X,
			Y:         st.Y,
			IsInitial: st.IsInitial,
			IsFinal:   st.IsFinal,
			IsHalt:    st.IsHalt,
		})
	}
	for _, t := range a.Transitions {
		s.Transitions = append(s.Transitions, StructuredTransition{
			ID:           t.ID,
			FromState:    t.From,
			ToState:      t.To,
			Symbols:      slices.Clone(t.Symbols),
			StackRead:    t.StackRead,
			StackWrite:   t.StackWrite,
			ReadSymbol:   t.ReadSymbol,
			WriteSymbol:  t.WriteSymbol,
			Direction:    string(t.Direction),
			ControlPoint: t.ControlPoint,
			LabelOffset:  t.LabelOffset,
		})
	}
	return s
}

// checkStructured verifies the record without touching the model.
func (a *Automaton) checkStructured(s *Structured) error {
	if s == nil {
		return fmt.Errorf("machine: nil structured record")
	}
	if s.Type != a.kind {
		return fmt.Errorf("machine: cannot load %q record into %q machine", string(s.Type), string(a.kind))
	}
	ids := map[int]struct{}{}
	for _, st := range s.States {
		if _, ok := ids[st.ID]; ok {
			return fmt.Errorf("machine: duplicate state id %v", st.ID)
		}
		ids[st.ID] = struct{}{}
	}
	for _, t := range s.Transitions {
		if _, ok := ids[t.FromState]; !ok {
			return fmt.Errorf("machine: transition %v references unknown state %v", t.ID, t.FromState)
		}
		if _, ok := ids[t.ToState]; !ok {
			return fmt.Errorf("machine: transition %v references unknown state %v", t.ID, t.ToState)
		}
	}
	if s.InitialStateID != nil {
		if _, ok := ids[*s.InitialStateID]; !ok {
			return fmt.Errorf("machine: initial state id %v references unknown state", *s.InitialStateID)
		}
	}
	return nil
}

// applyStructured rebuilds the container from a checked record.
//
// State identity is reconstructed as given, endpoints are rewired, the
// alphabet repopulated and the identity counters reset to max(id)+1.
// No history snapshot is recorded.
func (a *Automaton) applyStructured(s *Structured) {
	a.States = nil
	a.Transitions = nil
	a.InitialID = -1
	a.nextStateID = 0
	a.nextTransID = 0

	for _, st := range s.States {
		state := &State{
			ID:        st.ID,
			Name:      st.Name,
			X:         st.X,
			Y:         st.Y,
			IsInitial: st.IsInitial,
			IsFinal:   st.IsFinal,
			IsHalt:    st.IsHalt,
		}
		a.States = append(a.States, state)
		if st.ID >= a.nextStateID {
			a.nextStateID = st.ID + 1
		}
	}
	for _, t := range s.Transitions {
		tr := &Transition{
			ID:           t.ID,
			From:         t.FromState,
			To:           t.ToState,
			Symbols:      slices.Clone(t.Symbols),
			StackRead:    t.StackRead,
			StackWrite:   t.StackWrite,
			ReadSymbol:   t.ReadSymbol,
			WriteSymbol:  t.WriteSymbol,
			Direction:    Direction(t.Direction),
			ControlPoint: t.ControlPoint,
			LabelOffset:  t.LabelOffset,
		}
		a.Transitions = append(a.Transitions, tr)
		if t.ID >= a.nextTransID {
			a.nextTransID = t.ID + 1
		}
	}

	// Resolve the single initial state: an explicit id wins over flags.
	initial := -1
	if s.InitialStateID != nil {
		initial = *s.InitialStateID
	} else {
		for _, st := range a.States {
			if st.IsInitial {
				initial = st.ID
				break
			}
		}
	}
	for _, st := range a.States {
		st.IsInitial = st.ID == initial
	}
	a.InitialID = initial

	a.refreshAlphabet()
	a.resetSimulation("")
	a.Running = false
}

// ToStructured serializes the automaton.
func (d *DFA) ToStructured() *Structured {
	return d.toStructuredBase()
}

// FromStructured loads the automaton, leaving the model intact on error.
func (d *DFA) FromStructured(s *Structured) error {
	if err := d.checkStructured(s); err != nil {
		return err
	}
	d.applyStructured(s)
	return nil
}

// ToStructured serializes the automaton.
func (n *NFA) ToStructured() *Structured {
	return n.toStructuredBase()
}

// FromStructured loads the automaton, leaving the model intact on error.
func (n *NFA) FromStructured(s *Structured) error {
	if err := n.checkStructured(s); err != nil {
		return err
	}
	n.applyStructured(s)
	return nil
}

// ToStructured serializes the automaton including its acceptance modes
// and stack configuration.
func (p *PDA) ToStructured() *Structured {
	s := p.toStructuredBase()
	s.InitialStackSymbol = p.InitialStackSymbol
	final, empty := p.AcceptByFinalState, p.AcceptByEmptyStack
	s.AcceptByFinalState = &final
	s.AcceptByEmptyStack = &empty
	s.StackAlphabet = p.StackAlphabet()
	return s
}

// FromStructured loads the automaton, leaving the model intact on error.
// Missing pushdown fields fall back to their defaults: the stack symbol Z
// and acceptance by final state.
func (p *PDA) FromStructured(s *Structured) error {
	if err := p.checkStructured(s); err != nil {
		return err
	}
	p.applyStructured(s)
	p.InitialStackSymbol = s.InitialStackSymbol
	if p.InitialStackSymbol == "" {
		p.InitialStackSymbol = DefaultStackSymbol
	}
	p.AcceptByFinalState = s.AcceptByFinalState == nil || *s.AcceptByFinalState
	p.AcceptByEmptyStack = s.AcceptByEmptyStack != nil && *s.AcceptByEmptyStack
	p.Configs = nil
	return nil
}

// ToStructured serializes the machine including its tape configuration.
func (m *TM) ToStructured() *Structured {
	s := m.toStructuredBase()
	s.BlankSymbol = m.BlankSymbol
	s.TapeAlphabet = m.TapeAlphabet()
	return s
}

// FromStructured loads the machine, leaving the model intact on error.
// A missing blank symbol falls back to the default.
func (m *TM) FromStructured(s *Structured) error {
	if err := m.checkStructured(s); err != nil {
		return err
	}
	m.BlankSymbol = s.BlankSymbol
	if m.BlankSymbol == "" {
		m.BlankSymbol = DefaultBlank
	}
	m.blank = m.BlankSymbol
	m.applyStructured(s)
	m.Tape = nil
	m.Head = 0
	return nil
}
