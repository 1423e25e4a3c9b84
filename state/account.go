package state

import (
	"github.com/holiman/uint256"

	"github.com/jamzig/accumulate/types"
)

// PreimageLookupPhase tags which shape a PreimageStatus is in, replacing
// the teacher-observed "fixed-length array with trailing nulls" pattern
// with an explicit tagged variant (Design Note §9).
type PreimageLookupPhase uint8

const (
	// PhaseRequested: solicited but never supplied. No timeslots.
	PhaseRequested PreimageLookupPhase = iota
	// PhaseAvailable: available since T0.
	PhaseAvailable
	// PhaseRevoked: was available [T0,T1), now unavailable.
	PhaseRevoked
	// PhaseReinstated: re-available since T2, prior window [T0,T1).
	PhaseReinstated
)

// PreimageStatus is the up-to-three-timeslot availability history of one
// preimage_lookups entry (spec.md §3/§4.5).
type PreimageStatus struct {
	Phase PreimageLookupPhase
	T0    types.TimeSlot
	T1    types.TimeSlot
	T2    types.TimeSlot
}

// Requested constructs a fresh, not-yet-supplied lookup.
func Requested() PreimageStatus { return PreimageStatus{Phase: PhaseRequested} }

// Solicit applies the `solicit` transition (spec.md §4.5). ok is false for
// HUH (a phase with no valid transition).
func (s PreimageStatus) Solicit(now types.TimeSlot) (PreimageStatus, bool) {
	switch s.Phase {
	case PhaseRequested:
		return PreimageStatus{Phase: PhaseAvailable, T0: now}, true
	case PhaseRevoked:
		return PreimageStatus{Phase: PhaseReinstated, T0: s.T0, T1: s.T1, T2: now}, true
	default:
		return s, false
	}
}

// Forget applies the `forget` transition given the current slot and the
// preimage expungement period D. removed reports that the entry (and its
// preimage bytes) should be deleted entirely; ok is false for HUH.
func (s PreimageStatus) Forget(now types.TimeSlot, d uint64) (next PreimageStatus, removed bool, ok bool) {
	switch s.Phase {
	case PhaseRequested:
		return PreimageStatus{}, true, true
	case PhaseAvailable:
		return PreimageStatus{Phase: PhaseRevoked, T0: s.T0, T1: now}, false, true
	case PhaseRevoked:
		if expired(s.T1, now, d) {
			return PreimageStatus{}, true, true
		}
		return s, false, false
	case PhaseReinstated:
		if expired(s.T1, now, d) {
			return PreimageStatus{Phase: PhaseRevoked, T0: s.T2, T1: now}, false, true
		}
		return s, false, false
	default:
		return s, false, false
	}
}

func expired(t1, now types.TimeSlot, d uint64) bool {
	return uint64(t1)+d < uint64(now)
}

// ApplyProvidedPreimage transitions a solicited entry to available at the
// given slot, called once per service per batch (spec.md §4.5 "Applying
// provided preimages").
func (s PreimageStatus) ApplyProvidedPreimage(slot types.TimeSlot) (PreimageStatus, bool) {
	switch s.Phase {
	case PhaseRequested:
		return PreimageStatus{Phase: PhaseAvailable, T0: slot}, true
	case PhaseRevoked:
		return PreimageStatus{Phase: PhaseReinstated, T0: s.T0, T1: s.T1, T2: slot}, true
	default:
		return s, false
	}
}

// IsAvailable reports whether the preimage's bytes are currently readable.
func (s PreimageStatus) IsAvailable() bool {
	return s.Phase == PhaseAvailable || s.Phase == PhaseReinstated
}

// ServiceAccount is one service's persistent state (spec.md §3, `A`).
type ServiceAccount struct {
	Storage         map[[31]byte][]byte
	Preimages       map[[31]byte][]byte
	PreimageLookups map[[31]byte]PreimageStatus

	CodeHash             types.Hash
	Balance              types.Balance
	MinGasAccumulate     types.Gas
	MinGasOnTransfer     types.Gas
	CreationSlot         types.TimeSlot
	LastAccumulationSlot types.TimeSlot
	ParentService        types.ServiceId
	StorageOffset        uint64
}

// NewServiceAccount returns an empty account with initialized maps.
func NewServiceAccount() *ServiceAccount {
	return &ServiceAccount{
		Storage:         make(map[[31]byte][]byte),
		Preimages:       make(map[[31]byte][]byte),
		PreimageLookups: make(map[[31]byte]PreimageStatus),
	}
}

// Clone deep-copies the account, used by Delta's cloner when a
// DeltaSnapshot diverges.
func (a *ServiceAccount) Clone() *ServiceAccount {
	if a == nil {
		return nil
	}
	out := &ServiceAccount{
		CodeHash:             a.CodeHash,
		Balance:              a.Balance,
		MinGasAccumulate:     a.MinGasAccumulate,
		MinGasOnTransfer:     a.MinGasOnTransfer,
		CreationSlot:         a.CreationSlot,
		LastAccumulationSlot: a.LastAccumulationSlot,
		ParentService:        a.ParentService,
		StorageOffset:        a.StorageOffset,
		Storage:              make(map[[31]byte][]byte, len(a.Storage)),
		Preimages:            make(map[[31]byte][]byte, len(a.Preimages)),
		PreimageLookups:      make(map[[31]byte]PreimageStatus, len(a.PreimageLookups)),
	}
	for k, v := range a.Storage {
		dup := make([]byte, len(v))
		copy(dup, v)
		out.Storage[k] = dup
	}
	for k, v := range a.Preimages {
		dup := make([]byte, len(v))
		copy(dup, v)
		out.Preimages[k] = dup
	}
	for k, v := range a.PreimageLookups {
		out.PreimageLookups[k] = v
	}
	return out
}

// ItemCount returns a_i: the number of storage + preimage-lookup items.
func (a *ServiceAccount) ItemCount() uint64 {
	return uint64(len(a.Storage)) + uint64(len(a.PreimageLookups))
}

// OctetFootprint returns a_o: the total byte footprint of storage values
// and preimages.
func (a *ServiceAccount) OctetFootprint() uint64 {
	var total uint64
	for _, v := range a.Storage {
		total += uint64(len(v))
	}
	for _, v := range a.Preimages {
		total += uint64(len(v))
	}
	return total
}

// BalanceConstants are the B_S/B_I/B_L coefficients of the threshold
// balance formula (spec.md §3), carried via engine.Config rather than a
// compile-time constant (Design Note §9).
type BalanceConstants struct {
	BaseDeposit uint64 // B_S
	PerItem     uint64 // B_I
	PerOctet    uint64 // B_L
}

// ThresholdBalance computes a_t = B_S + B_I*a_i + B_L*a_o using uint256
// arithmetic so that an attacker-inflated item count or octet footprint
// cannot silently wrap a uint64 multiplication before the balance check
// (spec.md §3 invariant). The result saturates at uint64's max rather than
// wrapping, which only makes the resulting FULL rejection earlier and
// never the reverse.
func (a *ServiceAccount) ThresholdBalance(c BalanceConstants) uint64 {
	base := uint256.NewInt(c.BaseDeposit)
	items := uint256.NewInt(c.PerItem)
	items.Mul(items, uint256.NewInt(a.ItemCount()))
	octets := uint256.NewInt(c.PerOctet)
	octets.Mul(octets, uint256.NewInt(a.OctetFootprint()))

	total := new(uint256.Int).Add(base, items)
	total.Add(total, octets)

	if total.IsUint64() {
		return total.Uint64()
	}
	return ^uint64(0)
}

// WithinThreshold reports whether the account's balance still covers its
// threshold balance under c.
func (a *ServiceAccount) WithinThreshold(c BalanceConstants) bool {
	return a.ThresholdBalance(c) <= uint64(a.Balance)
}
