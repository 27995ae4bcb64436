package machine

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// A PDAConfig is one concurrent configuration of a pushdown run:
// the control state, the stack (top at the right end) and the position
// reached in the input.
type PDAConfig struct {
	StateID    int
	Stack      []string
	InputIndex int
}

// key is the set identity of a configuration.
func (c PDAConfig) key() string {
	return fmt.Sprintf("%v|%v|%v", c.StateID, strings.Join(c.Stack, ""), c.InputIndex)
}

// StackString renders the stack top-first.
func (c PDAConfig) StackString() string {
	var b strings.Builder
	for i := len(c.Stack) - 1; i >= 0; i-- {
		b.WriteString(c.Stack[i])
	}
	return b.String()
}

// A PDA is a nondeterministic pushdown automaton.
//
// It simulates a set of configurations concurrently. Acceptance is decided
// over the configurations that have consumed the whole input, by final
// state and/or by empty stack.
type PDA struct {
	Automaton

	Configs []PDAConfig

	InitialStackSymbol string
	AcceptByFinalState bool
	AcceptByEmptyStack bool
}

// NewPDA creates an empty pushdown automaton accepting by final state,
// with the default initial stack symbol.
func NewPDA() *PDA {
	p := &PDA{
		InitialStackSymbol: DefaultStackSymbol,
		AcceptByFinalState: true,
	}
	p.Automaton = newAutomaton(KindPDA, p)
	return p
}

// StackAlphabet returns the derived stack alphabet in sorted order: the
// initial stack symbol plus every symbol read from or written to the stack.
func (p *PDA) StackAlphabet() []string {
	set := map[string]struct{}{}
	if p.InitialStackSymbol != "" {
		set[p.InitialStackSymbol] = struct{}{}
	}
	for _, t := range p.Transitions {
		if t.StackRead != Epsilon {
			set[t.StackRead] = struct{}{}
		}
		for _, r := range t.StackWrite {
			set[string(r)] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

// InitSimulation seeds the run with a single configuration: the initial
// state, a stack holding the initial stack symbol, and input position 0.
func (p *PDA) InitSimulation(input string) {
	p.resetSimulation(input)
	p.Configs = nil
	init := p.InitialState()
	if init == nil {
		p.Verdict = Rejected
		p.Running = false
		p.AppendTrace(TraceEntry{Description: "No initial state set"})
		return
	}
	start := PDAConfig{
		StateID:    init.ID,
		Stack:      []string{p.InitialStackSymbol},
		InputIndex: 0,
	}
	p.Configs = []PDAConfig{start}
	p.syncActive()
	p.AppendTrace(TraceEntry{
		Symbol:      DisplaySymbol(p.CurrentSymbol()),
		Stack:       start.StackString(),
		Description: fmt.Sprintf("Starting in state %v with stack %v", init.Name, start.StackString()),
	})
	if p.CheckAcceptance() {
		p.Verdict = Accepted
		p.Running = false
		p.AppendTrace(TraceEntry{Stack: start.StackString(), Description: "Accepting configuration reached"})
	}
}

// applicable reports whether the transition can fire from the configuration.
func (p *PDA) applicable(t *Transition, c PDAConfig) bool {
	if t.From != c.StateID {
		return false
	}
	sym := t.InputSymbol()
	if sym != Epsilon {
		if c.InputIndex >= p.InputLen() {
			return false
		}
		if sym != string(p.input[c.InputIndex]) {
			return false
		}
	}
	if t.StackRead != Epsilon {
		if len(c.Stack) == 0 || c.Stack[len(c.Stack)-1] != t.StackRead {
			return false
		}
	}
	return true
}

// apply fires the transition on a copy of the configuration.
//
// A non-ε stack read pops the top; the stack write string is pushed
// right-to-left so its first symbol ends up on top. An ε input move does
// not advance the input position.
func (p *PDA) apply(t *Transition, c PDAConfig) PDAConfig {
	stack := slices.Clone(c.Stack)
	if t.StackRead != Epsilon {
		stack = stack[:len(stack)-1]
	}
	if t.StackWrite != Epsilon {
		chars := []rune(t.StackWrite)
		for i := len(chars) - 1; i >= 0; i-- {
			stack = append(stack, string(chars[i]))
		}
	}
	index := c.InputIndex
	if t.InputSymbol() != Epsilon {
		index++
	}
	return PDAConfig{StateID: t.To, Stack: stack, InputIndex: index}
}

// Step performs one micro-step of the whole configuration set.
//
// Every applicable transition of every configuration fires; the results,
// deduplicated, form the next set. Acceptance is a terminating side effect:
// as soon as some finished configuration satisfies an enabled acceptance
// mode the run accepts and no further configurations are explored.
func (p *PDA) Step() {
	if !p.Running || p.Verdict != Undecided {
		return
	}
	p.clearStepFlags()

	var next []PDAConfig
	seen := map[string]struct{}{}
	var parts []string
	for _, c := range p.Configs {
		for _, t := range p.TransitionsFrom(c.StateID) {
			if !p.applicable(t, c) {
				continue
			}
			nc := p.apply(t, c)
			t.Highlight = true
			if _, ok := seen[nc.key()]; ok {
				continue
			}
			seen[nc.key()] = struct{}{}
			next = append(next, nc)
			name := ""
			if s := p.StateByID(nc.StateID); s != nil {
				name = s.Name
			}
			parts = append(parts, fmt.Sprintf("(%v, %v, %v)",
				name, p.remainingAt(nc.InputIndex), nc.StackString()))
		}
	}

	p.Configs = next
	p.syncActive()

	entry := TraceEntry{Description: "No applicable transitions"}
	if len(next) > 0 {
		entry = TraceEntry{
			Stack:       next[0].StackString(),
			Description: "Configurations: " + strings.Join(parts, "; "),
		}
	}
	p.AppendTrace(entry)

	if p.CheckAcceptance() {
		p.Verdict = Accepted
		p.Running = false
		p.AppendTrace(TraceEntry{Description: "Accepting configuration reached"})
		return
	}
	if len(p.Configs) == 0 {
		p.Verdict = Rejected
		p.Running = false
	}
}

// CheckAcceptance inspects the configurations that have consumed the whole
// input. The run accepts if some such configuration is in a final state
// (when accepting by final state) or has an empty stack (when accepting by
// empty stack).
func (p *PDA) CheckAcceptance() bool {
	for _, c := range p.Configs {
		if c.InputIndex != p.InputLen() {
			continue
		}
		if p.AcceptByFinalState {
			if s := p.StateByID(c.StateID); s != nil && s.IsFinal {
				return true
			}
		}
		if p.AcceptByEmptyStack && len(c.Stack) == 0 {
			return true
		}
	}
	return false
}

// Validate checks for a missing initial state and a model that cannot
// accept because both acceptance modes are disabled.
func (p *PDA) Validate() Report {
	var r Report
	if p.InitialState() == nil {
		r.errorf("No initial state set")
	}
	if !p.AcceptByFinalState && !p.AcceptByEmptyStack {
		r.warnf("Both acceptance modes are disabled; no input can be accepted")
	}
	if p.AcceptByFinalState && len(p.FinalStates()) == 0 {
		r.warnf("Accepting by final state but no state is final")
	}
	return r
}

// syncActive mirrors the configuration set into the shared active-state
// view and keeps the display cursor on the first configuration.
func (p *PDA) syncActive() {
	ids := map[int]struct{}{}
	for _, c := range p.Configs {
		ids[c.StateID] = struct{}{}
	}
	p.setActive(ids)
	if len(p.Configs) > 0 {
		p.Cursor = p.Configs[0].InputIndex
	}
}

// remainingAt renders the unconsumed input suffix at a configuration's
// position, ε when everything is consumed.
func (p *PDA) remainingAt(index int) string {
	if index >= p.InputLen() {
		return EpsilonGlyph
	}
	return string(p.input[index:])
}
