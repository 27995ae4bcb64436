package machine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildABPlusDFA builds the DFA for (ab)+: q0 -a-> q1 -b-> q2(final) -a-> q1.
func buildABPlusDFA() *DFA {
	d := NewDFA()
	q0 := d.AddState(NewState("q0", 0, 0))
	q1 := d.AddState(NewState("q1", 150, 0))
	q2 := NewState("q2", 300, 0)
	q2.IsFinal = true
	d.AddState(q2)

	a := NewTransition(q0.ID, q1.ID)
	a.Symbols = []string{"a"}
	d.AddTransition(a)
	b := NewTransition(q1.ID, q2.ID)
	b.Symbols = []string{"b"}
	d.AddTransition(b)
	back := NewTransition(q2.ID, q1.ID)
	back.Symbols = []string{"a"}
	d.AddTransition(back)
	return d
}

func TestDFAAcceptsABPlus(t *testing.T) {
	tests := []struct {
		input    string
		accepted bool
	}{
		{"ab", true},
		{"abab", true},
		{"", false},
		{"a", false},
		{"abb", false},
		{"ba", false},
	}
	for _, test := range tests {
		d := buildABPlusDFA()
		require.Equal(t, test.accepted, Accepts(d, test.input), "input %q", test.input)
	}
}

func TestDFARejectsImmediatelyWithoutTransition(t *testing.T) {
	d := buildABPlusDFA()
	d.InitSimulation("ba")
	d.Step()

	require.Equal(t, Rejected, d.Verdict)
	require.False(t, d.Running)
	last := d.Trace[len(d.Trace)-1]
	require.Contains(t, last.Description, "No transition")
}

func TestDFAStepHighlightsTransition(t *testing.T) {
	d := buildABPlusDFA()
	d.InitSimulation("ab")
	d.Step()

	highlighted := 0
	for _, tr := range d.Transitions {
		if tr.Highlight {
			highlighted++
		}
	}
	require.Equal(t, 1, highlighted)

	// The highlight lasts exactly one step.
	d.Step()
	for _, tr := range d.Transitions {
		if tr.Highlight {
			require.Equal(t, "b", tr.Symbols[0])
		}
	}
}

func TestDFAValidateDeterminismErrors(t *testing.T) {
	d := NewDFA()
	q0 := d.AddState(NewState("q0", 0, 0))
	q1 := d.AddState(NewState("q1", 150, 0))

	first := NewTransition(q0.ID, q1.ID)
	first.Symbols = []string{"a"}
	d.AddTransition(first)
	second := NewTransition(q0.ID, q0.ID)
	second.Symbols = []string{"a"}
	d.AddTransition(second)
	eps := NewTransition(q1.ID, q0.ID)
	d.AddTransition(eps)

	r := d.Validate()
	require.False(t, r.Valid())
	require.Len(t, r.Errors, 2)
	require.Contains(t, r.Errors[0], "multiple transitions on 'a'")
	require.Contains(t, r.Errors[1], "ε-transition")
}

func TestDFAValidateWarnings(t *testing.T) {
	d := buildABPlusDFA()
	orphan := d.AddState(NewState("q3", 450, 0))

	r := d.Validate()
	require.True(t, r.Valid())

	// Incomplete: q0 has no 'b', q1 no 'a', q2 no 'b', q3 neither.
	missing := 0
	unreachable := 0
	for _, w := range r.Warnings {
		switch {
		case strings.Contains(w, "no transition on"):
			missing++
		case strings.Contains(w, "unreachable"):
			unreachable++
		}
	}
	require.Equal(t, 5, missing)
	require.Equal(t, 1, unreachable)

	// The initial state is never reported unreachable, even with no
	// incoming transitions.
	d.SetInitialState(orphan.ID)
	for _, w := range d.Validate().Warnings {
		if strings.Contains(w, "unreachable") {
			require.NotContains(t, w, "q3")
		}
	}
}

func TestDFAToNFA(t *testing.T) {
	d := buildABPlusDFA()
	n := d.ToNFA()

	require.Equal(t, KindNFA, n.Kind())
	require.Len(t, n.States, len(d.States))
	require.Len(t, n.Transitions, len(d.Transitions))

	for _, input := range []string{"ab", "abab", "", "a", "abb", "ba"} {
		require.Equal(t, Accepts(d, input), Accepts(n, input), "input %q", input)
	}
}
