package state

import "github.com/jamzig/accumulate/types"

// Delta maps ServiceId to its account (spec.md §3).
type Delta map[types.ServiceId]*ServiceAccount

// CloneDelta deep-copies every account in d, the cloner passed to
// NewSnapshot/Fork for the delta dimension.
func CloneDelta(d Delta) Delta {
	out := make(Delta, len(d))
	for id, acct := range d {
		out[id] = acct.Clone()
	}
	return out
}

// DeltaSnapshot is a Snapshot[Delta] with service-account-shaped
// convenience accessors layered on top of the generic read/mutate/commit
// contract.
type DeltaSnapshot = Snapshot[Delta]

// NewDeltaSnapshot wraps d as a root DeltaSnapshot.
func NewDeltaSnapshot(d Delta) *DeltaSnapshot {
	return NewSnapshot(d, CloneDelta)
}

// Account returns the account for id, or nil if it does not exist. The
// returned pointer is shared until the snapshot's Mutate is called, so
// callers that want to write must go through MutateAccount.
func Account(s *DeltaSnapshot, id types.ServiceId) *ServiceAccount {
	return s.Read()[id]
}

// MutateAccount returns a mutable account for id, creating one if absent,
// cloning the whole delta map on first write per Snapshot's copy-on-write
// contract.
func MutateAccount(s *DeltaSnapshot, id types.ServiceId) *ServiceAccount {
	d := s.Mutate()
	acct, ok := (*d)[id]
	if !ok {
		acct = NewServiceAccount()
		(*d)[id] = acct
	}
	return acct
}

// SetAccount installs acct at id, overwriting any existing account.
func SetAccount(s *DeltaSnapshot, id types.ServiceId, acct *ServiceAccount) {
	d := s.Mutate()
	(*d)[id] = acct
}

// DeleteAccount removes id's account entirely (used by eject).
func DeleteAccount(s *DeltaSnapshot, id types.ServiceId) {
	d := s.Mutate()
	delete(*d, id)
}
