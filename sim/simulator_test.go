package sim

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"automata/machine"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

// buildABPlusDFA builds the DFA for (ab)+.
func buildABPlusDFA() *machine.DFA {
	d := machine.NewDFA()
	q0 := d.AddState(machine.NewState("q0", 0, 0))
	q1 := d.AddState(machine.NewState("q1", 150, 0))
	q2 := machine.NewState("q2", 300, 0)
	q2.IsFinal = true
	d.AddState(q2)

	a := machine.NewTransition(q0.ID, q1.ID)
	a.Symbols = []string{"a"}
	d.AddTransition(a)
	b := machine.NewTransition(q1.ID, q2.ID)
	b.Symbols = []string{"b"}
	d.AddTransition(b)
	back := machine.NewTransition(q2.ID, q1.ID)
	back.Symbols = []string{"a"}
	d.AddTransition(back)
	return d
}

func TestRunToCompletion(t *testing.T) {
	s := New(buildABPlusDFA(), Logger(quietLogger()))
	s.Init("abab")
	require.True(t, s.RunToCompletion())

	s.Init("abb")
	require.False(t, s.RunToCompletion())
}

func TestStepOnceFiresCallbacks(t *testing.T) {
	steps := 0
	completed := 0
	s := New(buildABPlusDFA(),
		Logger(quietLogger()),
		OnStepComplete(func(machine.Machine) { steps++ }),
		OnSimulationComplete(func(machine.Machine) { completed++ }),
	)
	s.Init("ab")
	for s.Machine().Base().Verdict == machine.Undecided {
		s.StepOnce()
	}

	// Two symbols plus the deciding end-of-input step.
	require.Equal(t, 3, steps)
	require.Equal(t, 1, completed)
	require.Equal(t, machine.Accepted, s.Machine().Base().Verdict)
}

func TestTestStringLeavesLiveModelUntouched(t *testing.T) {
	d := buildABPlusDFA()
	s := New(d, Logger(quietLogger()))

	res, err := s.TestString("ab")
	require.NoError(t, err)
	require.True(t, res.Accepted)
	require.NotEmpty(t, res.Trace)

	// The live model never ran.
	require.Empty(t, d.Trace)
	require.Equal(t, machine.Undecided, d.Verdict)
}

func TestRunBatchTests(t *testing.T) {
	s := New(buildABPlusDFA(), Logger(quietLogger()))
	results, err := s.RunBatchTests([]string{"ab", "abab", "", "ba"})
	require.NoError(t, err)
	require.Len(t, results, 4)

	expected := []bool{true, true, false, false}
	for i, res := range results {
		require.Equal(t, expected[i], res.Accepted, "input %q", res.Input)
		require.NotEmpty(t, res.Trace)
	}
}

func TestInterval(t *testing.T) {
	s := New(buildABPlusDFA(), Logger(quietLogger()), Speed(10))
	require.Equal(t, 100*time.Millisecond, s.Interval())

	s.SetSpeed(1)
	require.Equal(t, 910*time.Millisecond, s.Interval())

	// Out-of-range speeds clamp into 1..10.
	s.SetSpeed(99)
	require.Equal(t, 100*time.Millisecond, s.Interval())
}

func TestAutoRunCompletes(t *testing.T) {
	done := make(chan machine.Machine, 1)
	s := New(buildABPlusDFA(),
		Logger(quietLogger()),
		Speed(10),
		OnSimulationComplete(func(m machine.Machine) { done <- m }),
	)
	s.Init("ab")
	require.NoError(t, s.Start())

	select {
	case m := <-done:
		require.Equal(t, machine.Accepted, m.Base().Verdict)
	case <-time.After(5 * time.Second):
		t.Fatal("auto-run did not complete")
	}

	// Stopping after natural completion is not an error.
	require.NoError(t, s.Stop())
}

func TestAutoRunPauseAndStop(t *testing.T) {
	s := New(buildABPlusDFA(), Logger(quietLogger()), Speed(1))
	s.Init("abab")
	require.NoError(t, s.Start())

	require.NoError(t, s.Pause())
	require.NoError(t, s.Resume())
	require.NoError(t, s.Pause())
	require.NoError(t, s.Stop())

	// The machine is left in a well-defined, inspectable state.
	a := s.Machine().Base()
	require.NotEmpty(t, a.Trace)

	// Commands without an active auto-run fail cleanly.
	require.ErrorIs(t, s.Pause(), ErrNotStarted)
	require.ErrorIs(t, s.Stop(), ErrNotStarted)
}

func TestStartTwice(t *testing.T) {
	s := New(buildABPlusDFA(), Logger(quietLogger()), Speed(1))
	s.Init("ab")
	require.NoError(t, s.Start())
	require.ErrorIs(t, s.Start(), ErrAlreadyStarted)
	require.NoError(t, s.Stop())
}

func TestAutoRunRespectsBudget(t *testing.T) {
	// A TM running right forever is cut off by the simulator's budget.
	m := machine.NewTM()
	q0 := m.AddState(machine.NewState("q0", 0, 0))
	tr := machine.NewTransition(q0.ID, q0.ID)
	tr.ReadSymbol = ""
	tr.WriteSymbol = ""
	tr.Direction = machine.DirRight
	m.AddTransition(tr)

	done := make(chan struct{})
	s := New(m,
		Logger(quietLogger()),
		Speed(10),
		MaxSteps(3),
		OnSimulationComplete(func(machine.Machine) { close(done) }),
	)
	s.Init("")
	require.NoError(t, s.Start())

	select {
	case <-done:
		require.Equal(t, machine.Rejected, m.Verdict)
	case <-time.After(5 * time.Second):
		t.Fatal("budgeted auto-run did not complete")
	}
}
