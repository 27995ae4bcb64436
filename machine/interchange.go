package machine

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Interchange XML is the minimal dialect shared with the established
// desktop tool: a <structure> root carrying a <type> element and an
// <automaton> with <state> and <transition> children. The type values are
// "fa" for finite automata, "pda" and "turing". A "fa" document always
// loads as an NFA; an inbound DFA is a well-formed NFA.

type xmlStructure struct {
	XMLName   xml.Name     `xml:"structure"`
	Type      string       `xml:"type"`
	Automaton xmlAutomaton `xml:"automaton"`
}

type xmlAutomaton struct {
	States      []xmlState      `xml:"state"`
	Transitions []xmlTransition `xml:"transition"`
}

type xmlState struct {
	ID      int      `xml:"id,attr"`
	Name    string   `xml:"name,attr"`
	X       float64  `xml:"x"`
	Y       float64  `xml:"y"`
	Initial *xmlFlag `xml:"initial"`
	Final   *xmlFlag `xml:"final"`
}

// xmlFlag marks presence-only elements such as <initial/>.
type xmlFlag struct{}

type xmlTransition struct {
	From int `xml:"from"`
	To   int `xml:"to"`

	// One <read> per accepted symbol for finite automata; a single
	// <read> for pushdown and tape machines. Empty means ε.
	Read []string `xml:"read"`

	Pop   *string `xml:"pop"`
	Push  *string `xml:"push"`
	Write *string `xml:"write"`
	Move  *string `xml:"move"`
}

func interchangeType(kind Kind) string {
	switch kind {
	case KindDFA, KindNFA:
		return "fa"
	case KindPDA:
		return "pda"
	default:
		return "turing"
	}
}

// ToInterchangeXML writes the machine in the interchange dialect.
func ToInterchangeXML(m Machine, w io.Writer) error {
	a := m.Base()
	doc := xmlStructure{Type: interchangeType(m.Kind())}

	for _, s := range a.States {
		xs := xmlState{
			ID:   s.ID,
			Name: s.Name,
			X:    s.X,
			Y:    s.Y,
		}
		if s.IsInitial {
			xs.Initial = &xmlFlag{}
		}
		if s.IsFinal {
			xs.Final = &xmlFlag{}
		}
		doc.Automaton.States = append(doc.Automaton.States, xs)
	}

	for _, t := range a.Transitions {
		xt := xmlTransition{From: t.From, To: t.To}
		switch m.Kind() {
		case KindDFA, KindNFA:
			if t.IsEpsilon() {
				xt.Read = []string{""}
			} else {
				xt.Read = append(xt.Read, t.Symbols...)
			}
		case KindPDA:
			xt.Read = []string{t.InputSymbol()}
			pop, push := t.StackRead, t.StackWrite
			xt.Pop = &pop
			xt.Push = &push
		case KindTM:
			read, write := t.ReadSymbol, t.WriteSymbol
			move := string(t.Direction)
			if move == "" {
				move = string(DirStay)
			}
			xt.Read = []string{read}
			xt.Write = &write
			xt.Move = &move
		}
		doc.Automaton.Transitions = append(doc.Automaton.Transitions, xt)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("machine: encoding interchange XML: %w", err)
	}
	return enc.Flush()
}

// FromInterchangeXML reads a machine from the interchange dialect.
func FromInterchangeXML(r io.Reader) (Machine, error) {
	var doc xmlStructure
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("machine: decoding interchange XML: %w", err)
	}

	var kind Kind
	switch strings.TrimSpace(doc.Type) {
	case "fa":
		kind = KindNFA
	case "pda":
		kind = KindPDA
	case "turing":
		kind = KindTM
	default:
		return nil, fmt.Errorf("machine: unknown interchange type %q", doc.Type)
	}

	s := &Structured{Type: kind}
	for _, xs := range doc.Automaton.States {
		st := StructuredState{
			ID:        xs.ID,
			Name:      xs.Name,
			X:         xs.X,
			Y:         xs.Y,
			IsInitial: xs.Initial != nil,
			IsFinal:   xs.Final != nil,
		}
		if st.IsInitial {
			id := xs.ID
			s.InitialStateID = &id
		}
		s.States = append(s.States, st)
	}

	for i, xt := range doc.Automaton.Transitions {
		tr := StructuredTransition{
			ID:        i,
			FromState: xt.From,
			ToState:   xt.To,
		}
		switch kind {
		case KindNFA:
			for _, read := range xt.Read {
				if sym := NormalizeSymbol(read); sym != Epsilon {
					tr.Symbols = append(tr.Symbols, sym)
				}
			}
		case KindPDA:
			if sym := NormalizeSymbol(first(xt.Read)); sym != Epsilon {
				tr.Symbols = []string{sym}
			}
			tr.StackRead = NormalizeSymbol(deref(xt.Pop))
			tr.StackWrite = NormalizeSymbol(deref(xt.Push))
		case KindTM:
			tr.ReadSymbol = NormalizeSymbol(first(xt.Read))
			tr.WriteSymbol = NormalizeSymbol(deref(xt.Write))
			move := strings.ToUpper(strings.TrimSpace(deref(xt.Move)))
			switch move {
			case "L":
				tr.Direction = string(DirLeft)
			case "R":
				tr.Direction = string(DirRight)
			case "S", "":
				tr.Direction = string(DirStay)
			default:
				return nil, fmt.Errorf("machine: bad head direction %q in interchange transition", move)
			}
		}
		s.Transitions = append(s.Transitions, tr)
	}

	return Load(s)
}

func first(xs []string) string {
	if len(xs) == 0 {
		return ""
	}
	return xs[0]
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
