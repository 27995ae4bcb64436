package machine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLabelDFA(t *testing.T) {
	var tr Transition
	require.NoError(t, ParseLabel(KindDFA, "a", &tr))
	require.Equal(t, []string{"a"}, tr.Symbols)

	require.NoError(t, ParseLabel(KindDFA, "ε", &tr))
	require.True(t, tr.IsEpsilon())

	require.NoError(t, ParseLabel(KindDFA, "", &tr))
	require.True(t, tr.IsEpsilon())
}

func TestParseLabelNFA(t *testing.T) {
	var tr Transition
	require.NoError(t, ParseLabel(KindNFA, "a, b,c", &tr))
	require.Equal(t, []string{"a", "b", "c"}, tr.Symbols)

	// Duplicates collapse; a lone ε is the empty label.
	require.NoError(t, ParseLabel(KindNFA, "a,a", &tr))
	require.Equal(t, []string{"a"}, tr.Symbols)
	require.NoError(t, ParseLabel(KindNFA, "ε", &tr))
	require.True(t, tr.IsEpsilon())
}

func TestParseLabelPDA(t *testing.T) {
	var tr Transition
	require.NoError(t, ParseLabel(KindPDA, "a,Z;AZ", &tr))
	require.Equal(t, "a", tr.InputSymbol())
	require.Equal(t, "Z", tr.StackRead)
	require.Equal(t, "AZ", tr.StackWrite)

	// The arrow is a synonym for the semicolon.
	require.NoError(t, ParseLabel(KindPDA, "b,A→ε", &tr))
	require.Equal(t, "b", tr.InputSymbol())
	require.Equal(t, "A", tr.StackRead)
	require.Equal(t, Epsilon, tr.StackWrite)

	// An ε input symbol parses to the empty input.
	require.NoError(t, ParseLabel(KindPDA, "ε,Z;Z", &tr))
	require.Equal(t, Epsilon, tr.InputSymbol())
}

func TestParseLabelTM(t *testing.T) {
	var tr Transition
	require.NoError(t, ParseLabel(KindTM, "0;1,R", &tr))
	require.Equal(t, "0", tr.ReadSymbol)
	require.Equal(t, "1", tr.WriteSymbol)
	require.Equal(t, DirRight, tr.Direction)

	require.NoError(t, ParseLabel(KindTM, "1→0,l", &tr))
	require.Equal(t, DirLeft, tr.Direction)

	require.NoError(t, ParseLabel(KindTM, "□;□,S", &tr))
	require.Equal(t, DirStay, tr.Direction)

	require.Error(t, ParseLabel(KindTM, "0;1,X", &tr))
}

func TestFormatLabel(t *testing.T) {
	tr := Transition{Symbols: []string{"a", "b"}}
	require.Equal(t, "a,b", FormatLabel(KindNFA, &tr))
	require.Equal(t, "a", FormatLabel(KindDFA, &Transition{Symbols: []string{"a"}}))
	require.Equal(t, EpsilonGlyph, FormatLabel(KindDFA, &Transition{}))

	pda := Transition{Symbols: []string{"a"}, StackRead: "Z", StackWrite: "AZ"}
	require.Equal(t, "a,Z→AZ", FormatLabel(KindPDA, &pda))

	tm := Transition{ReadSymbol: "0", WriteSymbol: "1", Direction: DirRight}
	require.Equal(t, "0→1,R", FormatLabel(KindTM, &tm))
}
