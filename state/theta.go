package state

import "github.com/jamzig/accumulate/types"

// WorkReportAndDeps pairs a still-pending report with the subset of its
// prerequisites that have not yet been satisfied (spec.md §3).
type WorkReportAndDeps struct {
	Report    types.WorkReport
	Remaining map[types.Hash]struct{}
}

// Clone deep-copies the remaining-dependency set, leaving the (immutable)
// report shared.
func (w WorkReportAndDeps) Clone() WorkReportAndDeps {
	out := WorkReportAndDeps{Report: w.Report, Remaining: make(map[types.Hash]struct{}, len(w.Remaining))}
	for h := range w.Remaining {
		out.Remaining[h] = struct{}{}
	}
	return out
}

// Hash is the identifying hash used for resolved-set membership checks.
func (w WorkReportAndDeps) Hash() types.Hash {
	return w.Report.PackageHash()
}

// Theta is the per-epoch-slot pending-report queue (spec.md §3), indexed
// by in-epoch slot and iterable starting from a given offset.
type Theta struct {
	slots [][]WorkReportAndDeps
}

// NewTheta returns an empty queue of the given epoch length.
func NewTheta(epochLength int) *Theta {
	return &Theta{slots: make([][]WorkReportAndDeps, epochLength)}
}

// WalkFrom returns a clone of every pending item across the whole ring,
// starting at in-epoch slot offset and wrapping around, in slot order
// (and within a slot, in stored order). This is the "walk of theta
// starting at the current in-epoch slot" spec.md §4.1 builds the new
// pending queue from.
func (t *Theta) WalkFrom(offset int) []WorkReportAndDeps {
	n := len(t.slots)
	if n == 0 {
		return nil
	}
	var out []WorkReportAndDeps
	for i := 0; i < n; i++ {
		idx := (offset + i) % n
		for _, item := range t.slots[idx] {
			out = append(out, item.Clone())
		}
	}
	return out
}

// SetSlot replaces the contents of in-epoch slot idx, used by the Queue
// State Updater to write back the residual queue computed this block.
func (t *Theta) SetSlot(idx int, items []WorkReportAndDeps) {
	t.slots[idx] = items
}

// Len returns the ring length.
func (t *Theta) Len() int {
	return len(t.slots)
}

// Clone deep-copies the whole queue.
func (t *Theta) Clone() *Theta {
	out := &Theta{slots: make([][]WorkReportAndDeps, len(t.slots))}
	for i, slot := range t.slots {
		dup := make([]WorkReportAndDeps, len(slot))
		for j, item := range slot {
			dup[j] = item.Clone()
		}
		out.slots[i] = dup
	}
	return out
}
