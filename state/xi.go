package state

import "github.com/jamzig/accumulate/types"

// Xi is the fixed-length ring of sets of already-accumulated package
// hashes (spec.md §3). Length equals the epoch length parameter.
type Xi struct {
	slots []map[types.Hash]struct{}
}

// NewXi returns a ring of the given length with all slots empty.
func NewXi(epochLength int) *Xi {
	slots := make([]map[types.Hash]struct{}, epochLength)
	for i := range slots {
		slots[i] = make(map[types.Hash]struct{})
	}
	return &Xi{slots: slots}
}

// ShiftDown moves every slot one position down and opens a fresh empty
// slot at index 0, called once per block before new hashes are added.
func (x *Xi) ShiftDown() {
	n := len(x.slots)
	if n == 0 {
		return
	}
	for i := n - 1; i > 0; i-- {
		x.slots[i] = x.slots[i-1]
	}
	x.slots[0] = make(map[types.Hash]struct{})
}

// AddWorkPackage inserts h into slot 0. Panics if h is already present
// anywhere in the ring — spec.md §4.9: "duplicate insertion within one
// slot must never happen (asserted)". The resolver drops queued reports
// whose package is already in Xi (spec.md §4.1); immediately
// accumulatable reports are not checked against Xi there, so a duplicate
// among them also reaches this panic.
func (x *Xi) AddWorkPackage(h types.Hash) {
	if x.ContainsWorkPackage(h) {
		panic("state: duplicate work package hash inserted into xi")
	}
	x.slots[0][h] = struct{}{}
}

// ContainsWorkPackage reports whether h appears in any ring slot.
func (x *Xi) ContainsWorkPackage(h types.Hash) bool {
	for _, slot := range x.slots {
		if _, ok := slot[h]; ok {
			return true
		}
	}
	return false
}

// Clone deep-copies the ring, used when Xi is threaded through a posterior
// state value that must not alias the pre-state.
func (x *Xi) Clone() *Xi {
	out := &Xi{slots: make([]map[types.Hash]struct{}, len(x.slots))}
	for i, slot := range x.slots {
		dup := make(map[types.Hash]struct{}, len(slot))
		for h := range slot {
			dup[h] = struct{}{}
		}
		out.slots[i] = dup
	}
	return out
}

// Len returns the ring length (the epoch length it was constructed with).
func (x *Xi) Len() int {
	return len(x.slots)
}

// Slot returns the set of hashes at ring position i, for callers that need
// direct slot access.
func (x *Xi) Slot(i int) map[types.Hash]struct{} {
	return x.slots[i]
}
