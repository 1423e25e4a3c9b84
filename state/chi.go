package state

import "github.com/jamzig/accumulate/types"

// Chi is the privileges table (spec.md §3).
type Chi struct {
	Manager          types.ServiceId
	AlwaysAccumulate map[types.ServiceId]types.Gas
	Assign           map[uint16]types.ServiceId
	Designate        types.ServiceId
	Registrar        types.ServiceId
}

// NewChi returns an empty privileges table.
func NewChi() Chi {
	return Chi{
		AlwaysAccumulate: make(map[types.ServiceId]types.Gas),
		Assign:           make(map[uint16]types.ServiceId),
	}
}

// CloneChi deep-copies c, the cloner for the chi dimension's Snapshot.
func CloneChi(c Chi) Chi {
	out := Chi{
		Manager:   c.Manager,
		Designate: c.Designate,
		Registrar: c.Registrar,
	}
	out.AlwaysAccumulate = make(map[types.ServiceId]types.Gas, len(c.AlwaysAccumulate))
	for k, v := range c.AlwaysAccumulate {
		out.AlwaysAccumulate[k] = v
	}
	out.Assign = make(map[uint16]types.ServiceId, len(c.Assign))
	for k, v := range c.Assign {
		out.Assign[k] = v
	}
	return out
}

// ChiSnapshot is the chi dimension's snapshot type.
type ChiSnapshot = Snapshot[Chi]

// NewChiSnapshot wraps c as a root ChiSnapshot.
func NewChiSnapshot(c Chi) *ChiSnapshot {
	return NewSnapshot(c, CloneChi)
}
