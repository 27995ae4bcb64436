package machine

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/maps"
)

// buildAStarBNFA builds the NFA for a*b:
// q0 -ε-> q1, q1 -a-> q1, q1 -b-> q2(final).
func buildAStarBNFA() *NFA {
	n := NewNFA()
	q0 := n.AddState(NewState("q0", 0, 0))
	q1 := n.AddState(NewState("q1", 150, 0))
	q2 := NewState("q2", 300, 0)
	q2.IsFinal = true
	n.AddState(q2)

	n.AddTransition(NewTransition(q0.ID, q1.ID)) // ε
	loop := NewTransition(q1.ID, q1.ID)
	loop.Symbols = []string{"a"}
	n.AddTransition(loop)
	b := NewTransition(q1.ID, q2.ID)
	b.Symbols = []string{"b"}
	n.AddTransition(b)
	return n
}

func TestEpsilonClosureContainsInput(t *testing.T) {
	n := buildAStarBNFA()
	set := map[int]struct{}{0: {}}
	closure := n.EpsilonClosure(set)

	// S ⊆ εClosure(S).
	for id := range set {
		require.Contains(t, closure, id)
	}
	// q0's closure pulls in q1 via the ε-edge.
	require.Contains(t, closure, 1)
	require.NotContains(t, closure, 2)
}

func TestEpsilonClosureIdempotent(t *testing.T) {
	n := buildAStarBNFA()
	once := n.EpsilonClosure(map[int]struct{}{0: {}})
	twice := n.EpsilonClosure(once)
	require.True(t, maps.Equal(once, twice))
}

func TestEpsilonClosureChain(t *testing.T) {
	n := NewNFA()
	q0 := n.AddState(NewState("q0", 0, 0))
	q1 := n.AddState(NewState("q1", 0, 0))
	q2 := n.AddState(NewState("q2", 0, 0))
	n.AddTransition(NewTransition(q0.ID, q1.ID))
	n.AddTransition(NewTransition(q1.ID, q2.ID))

	closure := n.EpsilonClosure(map[int]struct{}{q0.ID: {}})
	require.Len(t, closure, 3)
}

func TestNFAAcceptsAStarB(t *testing.T) {
	tests := []struct {
		input    string
		accepted bool
	}{
		{"b", true},
		{"ab", true},
		{"aaab", true},
		{"", false},
		{"a", false},
		{"ba", false},
	}
	for _, test := range tests {
		n := buildAStarBNFA()
		require.Equal(t, test.accepted, Accepts(n, test.input), "input %q", test.input)
	}
}

func TestNFAInitialClosureIsActive(t *testing.T) {
	n := buildAStarBNFA()
	n.InitSimulation("b")
	require.Equal(t, []int{0, 1}, n.ActiveStateIDs())
}

func TestNFAValidateWarnsUnreachable(t *testing.T) {
	n := buildAStarBNFA()
	n.AddState(NewState("island", 450, 0))

	r := n.Validate()
	require.True(t, r.Valid())
	require.Len(t, r.Warnings, 1)
	require.Contains(t, r.Warnings[0], "island")
}

func TestSubsetConstructionNames(t *testing.T) {
	n := buildAStarBNFA()
	d := n.ToDFA()

	require.Equal(t, KindDFA, d.Kind())
	init := d.InitialState()
	require.NotNil(t, init)
	require.Equal(t, "{q0,q1}", init.Name)

	// The determinized machine carries no ε-transitions and is valid.
	require.True(t, d.Validate().Valid())
}

func TestSubsetConstructionEquivalence(t *testing.T) {
	n := buildAStarBNFA()
	d := n.ToDFA()

	for _, input := range []string{"", "a", "b", "ab", "aaab", "ba"} {
		require.Equal(t, Accepts(n, input), Accepts(d, input), "input %q", input)
	}
}

func TestSubsetConstructionFinalFlags(t *testing.T) {
	n := buildAStarBNFA()
	d := n.ToDFA()

	for _, s := range d.States {
		if s.Name == "{q2}" {
			require.True(t, s.IsFinal)
		} else {
			require.False(t, s.IsFinal)
		}
	}
}
