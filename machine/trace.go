package machine

// A TraceEntry records one step of a simulation run.
//
// Stack, Tape and Head are only meaningful for the machine kinds that
// carry them.
type TraceEntry struct {
	Step        int      `json:"step"`
	States      []string `json:"states"`
	Remaining   string   `json:"remaining"`
	Symbol      string   `json:"symbol"`
	Description string   `json:"description"`
	Stack       string   `json:"stack,omitempty"`
	Tape        string   `json:"tape,omitempty"`
	Head        int      `json:"head,omitempty"`
}

// AppendTrace records the entry, filling in the step index and, when the
// caller left them empty, the active states and input position.
func (a *Automaton) AppendTrace(e TraceEntry) {
	e.Step = len(a.Trace)
	if e.States == nil {
		e.States = a.ActiveStateNames()
	}
	if e.Remaining == "" {
		e.Remaining = a.Remaining()
	}
	a.Trace = append(a.Trace, e)
}
