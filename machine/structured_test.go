package machine

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStructuredRoundTripDFA(t *testing.T) {
	d := buildABPlusDFA()
	rec := d.ToStructured()

	var buf bytes.Buffer
	require.NoError(t, rec.Encode(&buf))
	decoded, err := DecodeStructured(&buf)
	require.NoError(t, err)

	m, err := Load(decoded)
	require.NoError(t, err)
	copy, ok := m.(*DFA)
	require.True(t, ok)

	require.Len(t, copy.States, len(d.States))
	require.Len(t, copy.Transitions, len(d.Transitions))
	require.Equal(t, d.InitialID, copy.InitialID)
	require.Equal(t, d.Alphabet(), copy.Alphabet())

	for _, input := range []string{"ab", "abab", "", "a", "abb", "ba"} {
		require.Equal(t, Accepts(d, input), Accepts(copy, input), "input %q", input)
	}
}

func TestStructuredRoundTripPDA(t *testing.T) {
	p := buildAnBnPDA()
	p.AcceptByEmptyStack = true

	m, err := Load(p.ToStructured())
	require.NoError(t, err)
	copy, ok := m.(*PDA)
	require.True(t, ok)

	require.Equal(t, p.InitialStackSymbol, copy.InitialStackSymbol)
	require.True(t, copy.AcceptByFinalState)
	require.True(t, copy.AcceptByEmptyStack)
	require.Equal(t, p.StackAlphabet(), copy.StackAlphabet())
	require.True(t, Accepts(copy, "aabb"))
	require.False(t, Accepts(copy, "aab"))
}

func TestStructuredRoundTripTM(t *testing.T) {
	tm := buildFlipTM()
	m, err := Load(tm.ToStructured())
	require.NoError(t, err)
	copy, ok := m.(*TM)
	require.True(t, ok)

	require.Equal(t, tm.BlankSymbol, copy.BlankSymbol)
	require.Equal(t, tm.TapeAlphabet(), copy.TapeAlphabet())
	require.True(t, Accepts(copy, "0110"))
}

func TestStructuredDefaultsOnLoad(t *testing.T) {
	// Missing pushdown fields fall back to Z and accept-by-final-state.
	rec := &Structured{
		Type:   KindPDA,
		States: []StructuredState{{ID: 0, Name: "q0", IsInitial: true}},
	}
	m, err := Load(rec)
	require.NoError(t, err)
	p := m.(*PDA)
	require.Equal(t, DefaultStackSymbol, p.InitialStackSymbol)
	require.True(t, p.AcceptByFinalState)
	require.False(t, p.AcceptByEmptyStack)
}

func TestFromStructuredErrorLeavesModelIntact(t *testing.T) {
	d := buildABPlusDFA()
	bad := &Structured{
		Type:   KindDFA,
		States: []StructuredState{{ID: 0, Name: "s"}},
		Transitions: []StructuredTransition{
			{ID: 0, FromState: 0, ToState: 7, Symbols: []string{"a"}},
		},
	}
	err := d.FromStructured(bad)
	require.Error(t, err)
	require.Len(t, d.States, 3)
	require.Len(t, d.Transitions, 3)
}

func TestFromStructuredRejectsKindMismatch(t *testing.T) {
	d := NewDFA()
	err := d.FromStructured(&Structured{Type: KindPDA})
	require.Error(t, err)
}

func TestLoadResetsIdentityCounters(t *testing.T) {
	rec := &Structured{
		Type: KindNFA,
		States: []StructuredState{
			{ID: 3, Name: "q3", IsInitial: true},
			{ID: 7, Name: "q7"},
		},
		Transitions: []StructuredTransition{
			{ID: 5, FromState: 3, ToState: 7, Symbols: []string{"a"}},
		},
	}
	m, err := Load(rec)
	require.NoError(t, err)
	n := m.(*NFA)

	s := n.AddState(NewState("fresh", 0, 0))
	require.Equal(t, 8, s.ID)
	tr := NewTransition(3, 7)
	tr.Symbols = []string{"b"}
	n.AddTransition(tr)
	require.Equal(t, 6, tr.ID)
}

func TestLoadDoesNotRecordHistory(t *testing.T) {
	m, err := Load(buildABPlusDFA().ToStructured())
	require.NoError(t, err)
	require.False(t, m.Base().CanUndo())
}

func TestDecodeStructuredMalformed(t *testing.T) {
	_, err := DecodeStructured(bytes.NewBufferString("{not json"))
	require.Error(t, err)
}
