package machine

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// An NFA is a nondeterministic finite automaton with ε-transitions.
//
// The active configuration is a set of states, kept ε-closed between steps.
type NFA struct {
	Automaton
}

// NewNFA creates an empty nondeterministic finite automaton.
func NewNFA() *NFA {
	n := &NFA{}
	n.Automaton = newAutomaton(KindNFA, n)
	return n
}

// EpsilonClosure returns the least superset of the given state set closed
// under ε-transitions, computed with a worklist.
func (n *NFA) EpsilonClosure(set map[int]struct{}) map[int]struct{} {
	closure := maps.Clone(set)
	if closure == nil {
		closure = map[int]struct{}{}
	}
	stack := maps.Keys(closure)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, t := range n.TransitionsFrom(id) {
			if !t.IsEpsilon() {
				continue
			}
			if _, ok := closure[t.To]; !ok {
				closure[t.To] = struct{}{}
				stack = append(stack, t.To)
			}
		}
	}
	return closure
}

// InitSimulation prepares a run; the active set starts as the ε-closure of
// the initial state.
func (n *NFA) InitSimulation(input string) {
	n.resetSimulation(input)
	init := n.InitialState()
	if init == nil {
		n.Verdict = Rejected
		n.Running = false
		n.AppendTrace(TraceEntry{Description: "No initial state set"})
		return
	}
	n.setActive(n.EpsilonClosure(map[int]struct{}{init.ID: {}}))
	n.AppendTrace(TraceEntry{
		Symbol:      DisplaySymbol(n.CurrentSymbol()),
		Description: fmt.Sprintf("Starting in {%v}", strings.Join(n.ActiveStateNames(), ",")),
	})
}

// Step consumes one input symbol across the whole active set.
//
// The move set is the union of the non-ε successors on the current symbol;
// the new active set is its ε-closure. An empty result rejects the run.
func (n *NFA) Step() {
	if !n.Running || n.Verdict != Undecided {
		return
	}
	n.clearStepFlags()

	if len(n.active) == 0 {
		n.Verdict = Rejected
		n.Running = false
		n.AppendTrace(TraceEntry{Description: "No active states remain"})
		return
	}

	if n.Cursor >= n.InputLen() {
		if n.CheckAcceptance() {
			n.Verdict = Accepted
		} else {
			n.Verdict = Rejected
		}
		n.Running = false
		n.setActive(n.active)
		n.AppendTrace(TraceEntry{
			Description: fmt.Sprintf("Input consumed in {%v}: %v", strings.Join(n.ActiveStateNames(), ","), n.Verdict),
		})
		return
	}

	sym := n.CurrentSymbol()
	moved := map[int]struct{}{}
	for _, id := range n.ActiveStateIDs() {
		for _, t := range n.TransitionsFrom(id) {
			if t.IsEpsilon() || !t.AcceptsSymbol(sym) {
				continue
			}
			moved[t.To] = struct{}{}
			t.Highlight = true
		}
	}
	if len(moved) == 0 {
		n.Verdict = Rejected
		n.Running = false
		n.setActive(map[int]struct{}{})
		n.AppendTrace(TraceEntry{
			Symbol:      sym,
			Description: fmt.Sprintf("No transition on '%v' from any active state", sym),
		})
		return
	}

	n.Cursor++
	n.setActive(n.EpsilonClosure(moved))
	n.AppendTrace(TraceEntry{
		Symbol:      sym,
		Description: fmt.Sprintf("Read '%v', active set is {%v}", sym, strings.Join(n.ActiveStateNames(), ",")),
	})
}

// CheckAcceptance reports whether the whole input is consumed and some
// active state is final. Mid-input acceptance is never claimed.
func (n *NFA) CheckAcceptance() bool {
	if n.Cursor < n.InputLen() {
		return false
	}
	for id := range n.active {
		if s := n.StateByID(id); s != nil && s.IsFinal {
			return true
		}
	}
	return false
}

// Validate checks for a missing initial state and warns about states
// unreachable from it.
func (n *NFA) Validate() Report {
	var r Report
	if n.InitialState() == nil {
		r.errorf("No initial state set")
	}
	n.warnUnreachable(&r)
	return r
}

// subsetKey is the canonical identity of an ε-closed subset: the sorted
// state ids joined by commas.
func subsetKey(set map[int]struct{}) string {
	ids := maps.Keys(set)
	slices.Sort(ids)
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.Itoa(id))
	}
	return strings.Join(parts, ",")
}

// subsetName renders a subset as a display name, e.g. {q0,q1}.
func (n *NFA) subsetName(set map[int]struct{}) string {
	ids := maps.Keys(set)
	slices.Sort(ids)
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if s := n.StateByID(id); s != nil {
			names = append(names, s.Name)
		}
	}
	return "{" + strings.Join(names, ",") + "}"
}

// ToDFA determinizes the automaton by the subset construction.
//
// DFA states are the ε-closed subsets reachable from the initial closure
// under the non-ε alphabet. A subset state is final iff it contains a
// final NFA state.
func (n *NFA) ToDFA() *DFA {
	d := NewDFA()
	if n.InitialState() == nil {
		return d
	}

	alphabet := n.Alphabet()
	start := n.EpsilonClosure(map[int]struct{}{n.InitialID: {}})

	subsetState := map[string]*State{}
	worklist := []map[int]struct{}{start}

	place := func(set map[int]struct{}) *State {
		s := NewState(n.subsetName(set), 120+160*float64(len(subsetState)), 200)
		for id := range set {
			if q := n.StateByID(id); q != nil && q.IsFinal {
				s.IsFinal = true
				break
			}
		}
		d.AddState(s)
		subsetState[subsetKey(set)] = s
		return s
	}
	place(start)

	for len(worklist) > 0 {
		set := worklist[0]
		worklist = worklist[1:]
		from := subsetState[subsetKey(set)]

		for _, sym := range alphabet {
			moved := map[int]struct{}{}
			for id := range set {
				for _, t := range n.TransitionsFrom(id) {
					if !t.IsEpsilon() && t.AcceptsSymbol(sym) {
						moved[t.To] = struct{}{}
					}
				}
			}
			if len(moved) == 0 {
				continue
			}
			target := n.EpsilonClosure(moved)
			to, ok := subsetState[subsetKey(target)]
			if !ok {
				to = place(target)
				worklist = append(worklist, target)
			}
			t := NewTransition(from.ID, to.ID)
			t.Symbols = []string{sym}
			d.AddTransition(t)
		}
	}
	return d
}
