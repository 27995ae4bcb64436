package machine

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// A Point is a 2D coordinate used for edge geometry hints.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// A Transition is a labeled edge between two states of an automaton.
//
// Endpoints are held by state id and resolved against the owning automaton
// on access. Which label fields are meaningful depends on the kind of the
// owning machine:
//
//	DFA/NFA: Symbols (an empty set denotes an ε-transition)
//	PDA:     Symbols[0] as input symbol, StackRead, StackWrite
//	TM:      ReadSymbol, WriteSymbol, Direction
//
// The empty string stands for ε throughout.
type Transition struct {
	ID   int
	From int
	To   int

	Symbols     []string
	StackRead   string
	StackWrite  string
	ReadSymbol  string
	WriteSymbol string
	Direction   Direction

	ControlPoint *Point
	LabelOffset  *Point

	// Highlight is set while the transition was used by the most recent
	// step and cleared at the start of the next one.
	Highlight bool
}

// NewTransition creates an unattached transition between the two state ids.
// The id is issued when the transition is added to an automaton.
func NewTransition(from, to int) *Transition {
	return &Transition{
		From: from,
		To:   to,
	}
}

// Whether the transition carries no input symbol (FA and PDA semantics).
func (t *Transition) IsEpsilon() bool {
	for _, s := range t.Symbols {
		if s != Epsilon {
			return false
		}
	}
	return true
}

// Whether the transition accepts the given input symbol (FA semantics).
func (t *Transition) AcceptsSymbol(sym string) bool {
	return slices.Contains(t.Symbols, sym)
}

// The single input symbol of a PDA transition, ε when absent.
func (t *Transition) InputSymbol() string {
	if len(t.Symbols) == 0 {
		return Epsilon
	}
	return t.Symbols[0]
}

// NormalizeSymbol maps the ε glyph and the empty string to the internal
// ε representation and leaves every other symbol untouched.
func NormalizeSymbol(s string) string {
	s = strings.TrimSpace(s)
	if s == EpsilonGlyph {
		return Epsilon
	}
	return s
}

// DisplaySymbol renders a symbol for traces and labels, mapping ε to its glyph.
func DisplaySymbol(s string) string {
	if s == Epsilon {
		return EpsilonGlyph
	}
	return s
}

// ParseLabel fills the transition's label fields from the textual
// mini-grammar of the given kind:
//
//	DFA: a single symbol; empty or ε means ε
//	NFA: comma-separated symbols; empty or ε means ε
//	PDA: input,pop;push  or  input,pop→push
//	TM:  read;write,dir  or  read→write,dir  with dir ∈ {L,R,S}
func ParseLabel(kind Kind, label string, t *Transition) error {
	label = strings.TrimSpace(label)
	switch kind {
	case KindDFA:
		sym := NormalizeSymbol(label)
		if sym == Epsilon {
			t.Symbols = nil
		} else {
			t.Symbols = []string{sym}
		}
		return nil

	case KindNFA:
		t.Symbols = nil
		if label == "" {
			return nil
		}
		for _, part := range strings.Split(label, ",") {
			sym := NormalizeSymbol(part)
			if sym == Epsilon {
				continue
			}
			if !slices.Contains(t.Symbols, sym) {
				t.Symbols = append(t.Symbols, sym)
			}
		}
		return nil

	case KindPDA:
		body, push := splitArrow(label)
		input, pop := "", ""
		if i := strings.Index(body, ","); i >= 0 {
			input, pop = body[:i], body[i+1:]
		} else {
			input = body
		}
		t.Symbols = nil
		if sym := NormalizeSymbol(input); sym != Epsilon {
			t.Symbols = []string{sym}
		}
		t.StackRead = NormalizeSymbol(pop)
		t.StackWrite = NormalizeSymbol(push)
		return nil

	case KindTM:
		body, rest := splitArrow(label)
		write, dir := rest, ""
		if i := strings.LastIndex(rest, ","); i >= 0 {
			write, dir = rest[:i], rest[i+1:]
		}
		t.ReadSymbol = NormalizeSymbol(body)
		t.WriteSymbol = NormalizeSymbol(write)
		switch strings.ToUpper(strings.TrimSpace(dir)) {
		case "L":
			t.Direction = DirLeft
		case "R":
			t.Direction = DirRight
		case "S", "":
			t.Direction = DirStay
		default:
			return fmt.Errorf("machine: bad head direction %q in label %q", dir, label)
		}
		return nil
	}
	return fmt.Errorf("machine: unknown kind %q", string(kind))
}

// splitArrow splits a label on the first ";" or "→" separator.
// A label with no separator yields an empty right-hand side.
func splitArrow(label string) (left, right string) {
	for _, sep := range []string{";", "→"} {
		if i := strings.Index(label, sep); i >= 0 {
			return strings.TrimSpace(label[:i]), strings.TrimSpace(label[i+len(sep):])
		}
	}
	return strings.TrimSpace(label), ""
}

// FormatLabel renders the transition's label in the mini-grammar of the kind.
func FormatLabel(kind Kind, t *Transition) string {
	switch kind {
	case KindDFA:
		if t.IsEpsilon() {
			return EpsilonGlyph
		}
		return t.Symbols[0]

	case KindNFA:
		if t.IsEpsilon() {
			return EpsilonGlyph
		}
		parts := make([]string, 0, len(t.Symbols))
		for _, s := range t.Symbols {
			parts = append(parts, DisplaySymbol(s))
		}
		return strings.Join(parts, ",")

	case KindPDA:
		return fmt.Sprintf("%v,%v→%v",
			DisplaySymbol(t.InputSymbol()),
			DisplaySymbol(t.StackRead),
			DisplaySymbol(t.StackWrite))

	case KindTM:
		dir := t.Direction
		if dir == "" {
			dir = DirStay
		}
		return fmt.Sprintf("%v→%v,%v",
			DisplaySymbol(t.ReadSymbol),
			DisplaySymbol(t.WriteSymbol),
			string(dir))
	}
	return ""
}
