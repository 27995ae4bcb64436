package machine

import "fmt"

// A DFA is a deterministic finite automaton.
//
// Every state has at most one transition per input symbol and
// ε-transitions are forbidden. The active configuration is a single state.
type DFA struct {
	Automaton
}

// NewDFA creates an empty deterministic finite automaton.
func NewDFA() *DFA {
	d := &DFA{}
	d.Automaton = newAutomaton(KindDFA, d)
	return d
}

// InitSimulation prepares a run over the input, starting in the initial state.
func (d *DFA) InitSimulation(input string) {
	d.resetSimulation(input)
	init := d.InitialState()
	if init == nil {
		d.Verdict = Rejected
		d.Running = false
		d.AppendTrace(TraceEntry{Description: "No initial state set"})
		return
	}
	d.setActive(map[int]struct{}{init.ID: {}})
	d.AppendTrace(TraceEntry{
		Symbol:      DisplaySymbol(d.CurrentSymbol()),
		Description: fmt.Sprintf("Starting in state %v", init.Name),
	})
}

// Step consumes one input symbol by taking the unique matching transition.
//
// A missing transition rejects immediately. Once the input is consumed the
// verdict is decided by the active state's final flag.
func (d *DFA) Step() {
	if !d.Running || d.Verdict != Undecided {
		return
	}
	d.clearStepFlags()

	ids := d.ActiveStateIDs()
	if len(ids) == 0 {
		d.Verdict = Rejected
		d.Running = false
		return
	}
	q := d.StateByID(ids[0])

	if d.Cursor >= d.InputLen() {
		if d.CheckAcceptance() {
			d.Verdict = Accepted
		} else {
			d.Verdict = Rejected
		}
		d.Running = false
		d.setActive(d.active)
		d.AppendTrace(TraceEntry{
			Description: fmt.Sprintf("Input consumed in state %v: %v", q.Name, d.Verdict),
		})
		return
	}

	sym := d.CurrentSymbol()
	var chosen *Transition
	for _, t := range d.TransitionsFrom(q.ID) {
		if t.AcceptsSymbol(sym) {
			chosen = t
			break
		}
	}
	if chosen == nil {
		d.Verdict = Rejected
		d.Running = false
		d.setActive(d.active)
		d.AppendTrace(TraceEntry{
			Symbol:      sym,
			Description: fmt.Sprintf("No transition from %v on '%v'", q.Name, sym),
		})
		return
	}

	chosen.Highlight = true
	target := d.StateByID(chosen.To)
	d.Cursor++
	d.setActive(map[int]struct{}{target.ID: {}})
	d.AppendTrace(TraceEntry{
		Symbol:      sym,
		Description: fmt.Sprintf("Read '%v', moved from %v to %v", sym, q.Name, target.Name),
	})
}

// CheckAcceptance reports whether the input is consumed and the active
// state is final.
func (d *DFA) CheckAcceptance() bool {
	if d.Cursor < d.InputLen() {
		return false
	}
	for id := range d.active {
		if s := d.StateByID(id); s != nil && s.IsFinal {
			return true
		}
	}
	return false
}

// Validate checks the determinism contract.
//
// Errors: a missing initial state, an ε-transition, or two transitions
// from the same state accepting the same symbol. Warnings: missing
// (state, symbol) pairs and unreachable states.
func (d *DFA) Validate() Report {
	var r Report
	if d.InitialState() == nil {
		r.errorf("No initial state set")
	}
	for _, s := range d.States {
		seen := map[string]bool{}
		for _, t := range d.TransitionsFrom(s.ID) {
			if t.IsEpsilon() {
				r.errorf("State %v has an ε-transition, which a DFA forbids", s.Name)
				continue
			}
			for _, sym := range t.Symbols {
				if seen[sym] {
					r.errorf("State %v has multiple transitions on '%v'", s.Name, sym)
				}
				seen[sym] = true
			}
		}
		for _, sym := range d.Alphabet() {
			if !seen[sym] {
				r.warnf("State %v has no transition on '%v'", s.Name, sym)
			}
		}
	}
	d.warnUnreachable(&r)
	return r
}

// ToNFA returns a structurally identical nondeterministic automaton:
// same states, same transitions, only the type tag changes.
func (d *DFA) ToNFA() *NFA {
	s := d.ToStructured()
	s.Type = KindNFA
	n := NewNFA()
	_ = n.FromStructured(s)
	return n
}
