package sim

import (
	"fmt"

	"automata/machine"
)

// A BatchResult is the outcome of testing one input string.
type BatchResult struct {
	Input    string               `json:"input"`
	Accepted bool                 `json:"accepted"`
	Trace    []machine.TraceEntry `json:"trace"`
}

// TestString runs the input against a serialized-then-deserialized working
// copy of the machine, so the live model and its history are untouched.
func (s *Simulator) TestString(input string) (BatchResult, error) {
	copy, err := machine.Load(s.m.ToStructured())
	if err != nil {
		return BatchResult{}, fmt.Errorf("sim: preparing working copy: %w", err)
	}
	copy.InitSimulation(input)
	accepted := machine.Run(copy, s.maxSteps)
	return BatchResult{
		Input:    input,
		Accepted: accepted,
		Trace:    copy.Base().Trace,
	}, nil
}

// RunBatchTests evaluates the inputs sequentially, each against a fresh
// working copy so no simulation state leaks across cases.
func (s *Simulator) RunBatchTests(inputs []string) ([]BatchResult, error) {
	results := make([]BatchResult, 0, len(inputs))
	for _, input := range inputs {
		res, err := s.TestString(input)
		if err != nil {
			return nil, err
		}
		s.log.WithField("input", input).WithField("accepted", res.Accepted).Debug("batch case complete")
		results = append(results, res)
	}
	return results, nil
}
