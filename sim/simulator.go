package sim

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"automata/machine"
)

// ErrNotStarted is returned by commands sent to a simulator whose auto-run
// is not active.
var ErrNotStarted = errors.New("sim: auto-run is not active")

// ErrAlreadyStarted is returned by Start while an auto-run is active.
var ErrAlreadyStarted = errors.New("sim: auto-run already active")

// A Simulator drives an automaton: single stepping, run to completion,
// and timer-driven auto-run with cooperative pause/resume/stop.
//
// All manual operations run on the caller's flow of control. During an
// auto-run the machine is owned by the run loop; commands are delivered
// over a channel and answered synchronously, so pausing or stopping never
// interrupts a step in flight.
type Simulator struct {
	m machine.Machine

	maxSteps int
	speed    int
	log      *logrus.Logger

	onStep     func(machine.Machine)
	onComplete func(machine.Machine)

	started bool
	cmd     chan command
	resp    chan error
	done    chan struct{}
}

type command any

type (
	pauseCmd  struct{}
	resumeCmd struct{}
	stopCmd   struct{}
)

// New creates a Simulator for the machine.
func New(m machine.Machine, opts ...Option) *Simulator {
	s := &Simulator{
		m:        m,
		maxSteps: machine.DefaultMaxSteps(m.Kind()),
		speed:    5,
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		switch t := opt.(type) {
		case maxStepsOption:
			s.maxSteps = t.n
		case speedOption:
			s.speed = clampSpeed(t.n)
		case loggerOption:
			s.log = t.log
		case onStepOption:
			s.onStep = t.f
		case onCompleteOption:
			s.onComplete = t.f
		}
	}
	return s
}

// Machine returns the automaton the simulator drives.
func (s *Simulator) Machine() machine.Machine { return s.m }

// Init prepares a new run over the input.
func (s *Simulator) Init(input string) {
	s.m.InitSimulation(input)
	s.log.WithFields(logrus.Fields{
		"kind":  s.m.Kind(),
		"input": input,
	}).Debug("simulation initialized")
}

// StepOnce performs a single step and fires the step callback. When the
// step decides the run, the completion callback fires as well.
func (s *Simulator) StepOnce() {
	a := s.m.Base()
	if !a.Running || a.Verdict != machine.Undecided {
		return
	}
	s.m.Step()
	if s.onStep != nil {
		s.onStep(s.m)
	}
	if a.Verdict != machine.Undecided {
		s.complete()
	}
}

// RunToCompletion drives the current run until the verdict is decided or
// the step budget is exhausted. Returns true iff the run accepted.
func (s *Simulator) RunToCompletion() bool {
	accepted := machine.Run(s.m, s.maxSteps)
	s.complete()
	return accepted
}

// Reset restarts the run over the same input.
func (s *Simulator) Reset() {
	s.Init(s.m.Base().Input)
}

// Interval returns the auto-run tick derived from the speed setting:
// roughly (1000 − 90·speed) milliseconds, floored at 50.
func (s *Simulator) Interval() time.Duration {
	ms := 1000 - 90*s.speed
	if ms < 50 {
		ms = 50
	}
	return time.Duration(ms) * time.Millisecond
}

// SetSpeed adjusts the auto-run rate; the new tick takes effect on the
// next Start.
func (s *Simulator) SetSpeed(speed int) {
	s.speed = clampSpeed(speed)
}

func clampSpeed(n int) int {
	if n < 1 {
		return 1
	}
	if n > 10 {
		return 10
	}
	return n
}

// Start launches the timer-driven auto-run.
//
// The run advances one step per tick until the verdict is decided, the
// budget is exhausted, or Stop is called.
func (s *Simulator) Start() error {
	if s.started {
		select {
		case <-s.done:
			s.started = false
		default:
			return ErrAlreadyStarted
		}
	}
	s.started = true
	s.cmd = make(chan command)
	s.resp = make(chan error)
	s.done = make(chan struct{})
	go s.loop()
	return nil
}

// Pause suspends the auto-run between ticks. The current step, if any,
// completes first.
func (s *Simulator) Pause() error { return s.send(pauseCmd{}) }

// Resume continues a paused auto-run.
func (s *Simulator) Resume() error { return s.send(resumeCmd{}) }

// Stop ends the auto-run, leaving the machine in its post-step state.
// Stopping an auto-run that already finished is not an error.
func (s *Simulator) Stop() error {
	if !s.started {
		return ErrNotStarted
	}
	select {
	case s.cmd <- stopCmd{}:
		err := <-s.resp
		s.started = false
		return err
	case <-s.done:
		s.started = false
		return nil
	}
}

func (s *Simulator) send(c command) error {
	if !s.started {
		return ErrNotStarted
	}
	select {
	case s.cmd <- c:
		return <-s.resp
	case <-s.done:
		return ErrNotStarted
	}
}

func (s *Simulator) loop() {
	defer close(s.done)

	ticker := time.NewTicker(s.Interval())
	defer ticker.Stop()

	paused := false
	steps := 0
	a := s.m.Base()
	for {
		select {
		case c := <-s.cmd:
			switch c.(type) {
			case pauseCmd:
				paused = true
				s.resp <- nil
			case resumeCmd:
				paused = false
				s.resp <- nil
			case stopCmd:
				s.resp <- nil
				return
			}
		case <-ticker.C:
			if paused {
				continue
			}
			if !a.Running || a.Verdict != machine.Undecided {
				s.complete()
				return
			}
			s.m.Step()
			steps++
			if s.onStep != nil {
				s.onStep(s.m)
			}
			if a.Verdict == machine.Undecided && steps >= s.maxSteps {
				a.Verdict = machine.Rejected
				a.Running = false
				a.AppendTrace(machine.TraceEntry{
					Description: fmt.Sprintf("Step limit of %v reached, stopping simulation", s.maxSteps),
				})
			}
			if a.Verdict != machine.Undecided {
				s.complete()
				return
			}
		}
	}
}

func (s *Simulator) complete() {
	a := s.m.Base()
	s.log.WithFields(logrus.Fields{
		"kind":    s.m.Kind(),
		"input":   a.Input,
		"verdict": a.Verdict.String(),
		"steps":   len(a.Trace),
	}).Info("simulation complete")
	if s.onComplete != nil {
		s.onComplete(s.m)
	}
}
