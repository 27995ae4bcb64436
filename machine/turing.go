package machine

import (
	"fmt"

	"golang.org/x/exp/slices"

	"automata/tape"
)

// A TM is a single-tape Turing machine.
//
// The tape is logically two-way-infinite; the head coordinate is logical
// and stays stable when the materialized window grows. The active
// configuration is a single control state.
type TM struct {
	Automaton

	Tape *tape.Tape
	Head int

	BlankSymbol string
}

// NewTM creates an empty Turing machine with the default blank symbol.
func NewTM() *TM {
	m := &TM{
		BlankSymbol: DefaultBlank,
	}
	m.Automaton = newAutomaton(KindTM, m)
	return m
}

// isBlank reports whether the symbol is one of the blank spellings:
// the machine's blank, the underscore alias, or the empty string.
func (m *TM) isBlank(s string) bool {
	return s == Epsilon || s == m.BlankSymbol || s == "_"
}

// TapeAlphabet returns the derived tape alphabet in sorted order: the
// blank plus every symbol read or written by a transition.
func (m *TM) TapeAlphabet() []string {
	set := map[string]struct{}{m.BlankSymbol: {}}
	for _, t := range m.Transitions {
		if !m.isBlank(t.ReadSymbol) {
			set[t.ReadSymbol] = struct{}{}
		}
		if !m.isBlank(t.WriteSymbol) {
			set[t.WriteSymbol] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

// InitSimulation loads the input onto a fresh tape with the head on the
// first symbol.
func (m *TM) InitSimulation(input string) {
	m.resetSimulation(input)
	m.Tape = tape.Load(input, m.BlankSymbol)
	m.Head = 0
	init := m.InitialState()
	if init == nil {
		m.Verdict = Rejected
		m.Running = false
		m.AppendTrace(TraceEntry{Description: "No initial state set"})
		return
	}
	m.setActive(map[int]struct{}{init.ID: {}})
	m.AppendTrace(TraceEntry{
		Tape:        m.Tape.String(),
		Head:        m.Head,
		Description: fmt.Sprintf("Starting in state %v", init.Name),
	})
}

// selectTransition picks the first transition from the state whose read
// symbol matches the current cell, with all blank spellings unified.
func (m *TM) selectTransition(id int, cur string) *Transition {
	for _, t := range m.TransitionsFrom(id) {
		if m.isBlank(t.ReadSymbol) && m.isBlank(cur) {
			return t
		}
		if t.ReadSymbol == cur {
			return t
		}
	}
	return nil
}

// Step executes one write/move/transition cycle.
//
// Reaching a final or halt state terminates the run; the verdict is
// acceptance iff the state is final. A missing transition from a
// non-halting state rejects immediately.
func (m *TM) Step() {
	if !m.Running || m.Verdict != Undecided {
		return
	}
	m.clearStepFlags()

	ids := m.ActiveStateIDs()
	if len(ids) == 0 {
		m.Verdict = Rejected
		m.Running = false
		return
	}
	q := m.StateByID(ids[0])

	if q.IsFinal || q.IsHalt {
		m.halt(q)
		return
	}

	cur := m.Tape.Read(m.Head)
	t := m.selectTransition(q.ID, cur)
	if t == nil {
		m.Verdict = Rejected
		m.Running = false
		m.setActive(m.active)
		m.AppendTrace(TraceEntry{
			Tape:        m.Tape.String(),
			Head:        m.Head,
			Description: fmt.Sprintf("No transition from %v on '%v'", q.Name, DisplaySymbol(cur)),
		})
		return
	}

	write := t.WriteSymbol
	if m.isBlank(write) {
		write = m.BlankSymbol
	}
	m.Tape.Write(m.Head, write)

	switch t.Direction {
	case DirLeft:
		m.Head--
	case DirRight:
		m.Head++
	}
	m.Tape.Materialize(m.Head)

	t.Highlight = true
	target := m.StateByID(t.To)
	m.setActive(map[int]struct{}{target.ID: {}})
	m.AppendTrace(TraceEntry{
		Tape: m.Tape.String(),
		Head: m.Head,
		Description: fmt.Sprintf("Read '%v', wrote '%v', moved %v to %v",
			DisplaySymbol(cur), write, string(t.Direction), target.Name),
	})

	if m.loopSuspected() {
		m.Verdict = Rejected
		m.Running = false
		m.AppendTrace(TraceEntry{
			Tape:        m.Tape.String(),
			Head:        m.Head,
			Description: "Potential infinite loop detected, stopping simulation",
		})
		return
	}

	if target.IsFinal || target.IsHalt {
		m.halt(target)
	}
}

// halt terminates the run in the given state: accept iff it is final.
func (m *TM) halt(q *State) {
	if q.IsFinal {
		m.Verdict = Accepted
	} else {
		m.Verdict = Rejected
	}
	m.Running = false
	m.setActive(map[int]struct{}{q.ID: {}})
	m.AppendTrace(TraceEntry{
		Tape:        m.Tape.String(),
		Head:        m.Head,
		Description: fmt.Sprintf("Halted in state %v: %v", q.Name, m.Verdict),
	})
}

// loopSuspected is a heuristic nontermination check: once the trace is
// long enough, seeing the same (state, head, tape) configuration more than
// twice within the most recent 50 entries suggests the machine is cycling.
func (m *TM) loopSuspected() bool {
	if len(m.Trace) <= 100 {
		return false
	}
	recent := m.Trace[len(m.Trace)-50:]
	last := recent[len(recent)-1]
	count := 0
	for _, e := range recent {
		if e.Head == last.Head && e.Tape == last.Tape && slices.Equal(e.States, last.States) {
			count++
		}
	}
	return count > 2
}

// CheckAcceptance reports whether the machine has halted in a final state.
func (m *TM) CheckAcceptance() bool {
	for id := range m.active {
		if s := m.StateByID(id); s != nil && s.IsFinal {
			return true
		}
	}
	return false
}

// Validate warns about dead ends. A Turing machine is valid without any
// final state; a missing initial state is still an error.
func (m *TM) Validate() Report {
	var r Report
	if m.InitialState() == nil {
		r.errorf("No initial state set")
	}
	for _, s := range m.States {
		if s.IsFinal || s.IsHalt {
			continue
		}
		if len(m.TransitionsFrom(s.ID)) == 0 {
			r.warnf("State %v has no outgoing transitions", s.Name)
		}
	}
	return r
}
