package state

import "github.com/jamzig/accumulate/types"

// ValidatorKey is one validator's key-set, opaque to the accumulation
// engine beyond its byte identity (consensus/safrole own its structure;
// spec.md §1 places those components out of scope).
type ValidatorKey struct {
	Bandersnatch types.Hash
	Ed25519      types.Hash
	BLS          types.Hash
	Metadata     types.Hash
}

// Iota is the pending validator-key set a `designate` host call replaces.
type Iota []ValidatorKey

// CloneIota deep-copies i, the cloner for the iota dimension's Snapshot.
func CloneIota(i Iota) Iota {
	out := make(Iota, len(i))
	copy(out, i)
	return out
}

// IotaSnapshot is the iota dimension's snapshot type.
type IotaSnapshot = Snapshot[Iota]

// NewIotaSnapshot wraps i as a root IotaSnapshot.
func NewIotaSnapshot(i Iota) *IotaSnapshot {
	return NewSnapshot(i, CloneIota)
}
