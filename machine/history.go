package machine

// historyCap bounds the undo history; the oldest snapshot is evicted first.
const historyCap = 50

// history keeps full model snapshots for undo/redo.
//
// Every mutating operation pushes the pre-mutation snapshot onto the undo
// stack and clears the redo stack. Loading from serialization bypasses the
// history entirely.
type history struct {
	undo []*Structured
	redo []*Structured
}

func (a *Automaton) pushHistory() {
	if a.hist == nil || a.self == nil {
		return
	}
	a.hist.redo = nil
	a.hist.undo = append(a.hist.undo, a.self.ToStructured())
	if len(a.hist.undo) > historyCap {
		a.hist.undo = a.hist.undo[1:]
	}
}

// CanUndo reports whether an earlier snapshot is available.
func (a *Automaton) CanUndo() bool {
	return a.hist != nil && len(a.hist.undo) > 0
}

// CanRedo reports whether an undone snapshot is available.
func (a *Automaton) CanRedo() bool {
	return a.hist != nil && len(a.hist.redo) > 0
}

// Undo restores the most recent snapshot. Returns false when there is none.
func (a *Automaton) Undo() bool {
	if !a.CanUndo() {
		return false
	}
	snap := a.hist.undo[len(a.hist.undo)-1]
	a.hist.undo = a.hist.undo[:len(a.hist.undo)-1]
	a.hist.redo = append(a.hist.redo, a.self.ToStructured())
	_ = a.self.FromStructured(snap)
	return true
}

// Redo reapplies the most recently undone snapshot. Returns false when
// there is none.
func (a *Automaton) Redo() bool {
	if !a.CanRedo() {
		return false
	}
	snap := a.hist.redo[len(a.hist.redo)-1]
	a.hist.redo = a.hist.redo[:len(a.hist.redo)-1]
	a.hist.undo = append(a.hist.undo, a.self.ToStructured())
	_ = a.self.FromStructured(snap)
	return true
}
