package machine

import "fmt"

// The kind of machine a model represents.
type Kind string

const (
	KindDFA Kind = "dfa"
	KindNFA Kind = "nfa"
	KindPDA Kind = "pda"
	KindTM  Kind = "tm"
)

// Epsilon is the empty symbol. Internally it is represented as the empty
// string; the parser also accepts the literal "ε".
const Epsilon = ""

// EpsilonGlyph is the display form of the empty symbol.
const EpsilonGlyph = "ε"

// DefaultBlank is the default Turing machine blank symbol.
const DefaultBlank = "□"

// DefaultStackSymbol is the default initial pushdown stack symbol.
const DefaultStackSymbol = "Z"

// The direction the Turing machine head moves after a transition.
type Direction string

const (
	DirLeft  Direction = "L"
	DirRight Direction = "R"
	DirStay  Direction = "S"
)

// The verdict of a simulation run.
//
// A run starts Undecided and moves to Accepted or Rejected exactly once.
type Verdict int

const (
	Undecided Verdict = iota
	Accepted
	Rejected
)

func (v Verdict) String() string {
	switch v {
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	default:
		return "undecided"
	}
}

// A Machine is one of the four automaton variants behind a common contract.
//
// The shared container and the operations common to all variants are
// provided by the embedded Automaton, accessible through Base.
// InitSimulation, Step, CheckAcceptance and Validate refine the
// per-variant operational semantics.
type Machine interface {
	// The kind tag of the variant.
	Kind() Kind

	// The shared container holding states, transitions and simulation state.
	Base() *Automaton

	// Prepare a new run over the provided input string.
	InitSimulation(input string)

	// Perform one atomic step of the run.
	//
	// A step never suspends. When the run terminates the step records the
	// verdict and clears the running flag; calling Step on a finished run
	// is a no-op.
	Step()

	// Report whether the current configurations satisfy the variant's
	// acceptance condition.
	CheckAcceptance() bool

	// Check the model against the contract of its kind.
	Validate() Report

	// Serialize the machine to its structured form.
	ToStructured() *Structured

	// Load the machine from its structured form, replacing the current
	// model. Loading does not record a history snapshot. On error the
	// existing model is left intact.
	FromStructured(s *Structured) error
}

// New creates an empty machine of the provided kind.
func New(kind Kind) (Machine, error) {
	switch kind {
	case KindDFA:
		return NewDFA(), nil
	case KindNFA:
		return NewNFA(), nil
	case KindPDA:
		return NewPDA(), nil
	case KindTM:
		return NewTM(), nil
	default:
		return nil, fmt.Errorf("machine: unknown kind %q", string(kind))
	}
}

// DefaultMaxSteps is the default step budget for a run of the given kind.
func DefaultMaxSteps(kind Kind) int {
	if kind == KindTM {
		return 10000
	}
	return 1000
}

// Run drives the machine until the verdict is decided, the active
// configurations are exhausted, or the step budget runs out.
//
// Exhausting the budget rejects the run and records a dedicated trace entry.
// Returns true iff the run accepted.
func Run(m Machine, maxSteps int) bool {
	a := m.Base()
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps(m.Kind())
	}
	for i := 0; i < maxSteps; i++ {
		if !a.Running || a.Verdict != Undecided {
			break
		}
		m.Step()
	}
	if a.Running && a.Verdict == Undecided {
		a.Verdict = Rejected
		a.Running = false
		a.AppendTrace(TraceEntry{
			Description: fmt.Sprintf("Step limit of %v reached, stopping simulation", maxSteps),
		})
	}
	return a.Verdict == Accepted
}

// Accepts initializes a run over the input and drives it to completion
// with the default step budget for the machine's kind.
func Accepts(m Machine, input string) bool {
	m.InitSimulation(input)
	return Run(m, DefaultMaxSteps(m.Kind()))
}
