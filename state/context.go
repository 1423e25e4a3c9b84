package state

import "github.com/jamzig/accumulate/types"

// AccumulationContext is the tuple (delta, iota, phi, chi) plus
// (time_slot, entropy) a single service invocation runs against (spec.md
// §3). Each dimension is independently committable; DeepClone produces an
// isolated context for parallel per-service execution (spec.md §4.3).
type AccumulationContext struct {
	Delta *DeltaSnapshot
	Iota  *IotaSnapshot
	Phi   *PhiSnapshot
	Chi   *ChiSnapshot

	TimeSlot types.TimeSlot
	Entropy  [32]byte
}

// NewAccumulationContext builds a root context from plain values.
func NewAccumulationContext(d Delta, i Iota, p Phi, c Chi, slot types.TimeSlot, entropy [32]byte) *AccumulationContext {
	return &AccumulationContext{
		Delta:    NewDeltaSnapshot(d),
		Iota:     NewIotaSnapshot(i),
		Phi:      NewPhiSnapshot(p),
		Chi:      NewChiSnapshot(c),
		TimeSlot: slot,
		Entropy:  entropy,
	}
}

// DeepClone forks all four dimensions into an isolated child context that
// shares nothing mutable with the parent until each dimension's Mutate is
// called (copy-on-write per dimension, not an eager deep copy of state
// that a given service invocation may never touch).
func (c *AccumulationContext) DeepClone() *AccumulationContext {
	return &AccumulationContext{
		Delta:    c.Delta.Fork(),
		Iota:     c.Iota.Fork(),
		Phi:      c.Phi.Fork(),
		Chi:      c.Chi.Fork(),
		TimeSlot: c.TimeSlot,
		Entropy:  c.Entropy,
	}
}

// Commit folds every dimension of a forked child context back into its
// parent, in the fixed dimension order delta, iota, phi, chi. Order across
// dimensions of one service's result has no consensus meaning (they are
// disjoint pieces of state); what is consensus-critical is the order in
// which different *services'* results are committed (spec.md §4.7),
// which the caller controls by choosing the order it calls Commit in.
func (c *AccumulationContext) Commit() {
	c.Delta.Commit()
	c.Iota.Commit()
	c.Phi.Commit()
	c.Chi.Commit()
}

// CommitWithoutChi folds delta, iota, and phi back into the parent but
// leaves chi uncommitted. The outer accumulation loop uses this for
// every per-service result: chi cannot be safely last-write-wins
// committed the way the other three dimensions can, since multiple
// services (the manager and each privileged role-holder) may write
// competing values to the same chi field in one block. Those values are
// instead collected from each service's own (uncommitted) Chi.Read() and
// reconciled once, for the whole block, by chi.Merge (spec.md §4.6).
func (c *AccumulationContext) CommitWithoutChi() {
	c.Delta.Commit()
	c.Iota.Commit()
	c.Phi.Commit()
}
