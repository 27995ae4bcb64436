package sim

import (
	"github.com/sirupsen/logrus"

	"automata/machine"
)

// An Option configures a Simulator.
type Option any

type maxStepsOption struct{ n int }

// MaxSteps overrides the step budget of runs driven by the simulator.
func MaxSteps(n int) Option { return maxStepsOption{n} }

type speedOption struct{ n int }

// Speed sets the auto-run rate, 1 (slow) to 10 (fast).
func Speed(n int) Option { return speedOption{n} }

type loggerOption struct{ log *logrus.Logger }

// Logger routes the simulator's log output to the provided logger.
func Logger(log *logrus.Logger) Option { return loggerOption{log} }

type onStepOption struct{ f func(machine.Machine) }

// OnStepComplete registers a callback fired after every step.
func OnStepComplete(f func(machine.Machine)) Option { return onStepOption{f} }

type onCompleteOption struct{ f func(machine.Machine) }

// OnSimulationComplete registers a callback fired when a run terminates.
func OnSimulationComplete(f func(machine.Machine)) Option { return onCompleteOption{f} }
