package hostcall

import (
	"encoding/binary"

	"github.com/jamzig/accumulate/state"
	"github.com/jamzig/accumulate/types"
)

// ServiceInfo is the fixed-layout record the `info` host call serializes
// (spec.md §4.5/§6): code hash, balances, gas minima, storage footprint,
// and creation/last-accumulation/parent slots.
type ServiceInfo struct {
	CodeHash             types.Hash
	Balance              types.Balance
	ThresholdBalance     uint64
	MinGasAccumulate     types.Gas
	MinGasOnTransfer     types.Gas
	ItemCount            uint64
	OctetFootprint       uint64
	CreationSlot         types.TimeSlot
	LastAccumulationSlot types.TimeSlot
	ParentService        types.ServiceId
}

// Encode serializes the record little-endian, in field declaration order.
func (i ServiceInfo) Encode() []byte {
	buf := make([]byte, 0, 32+8*8+4)
	buf = append(buf, i.CodeHash[:]...)
	buf = appendU64(buf, uint64(i.Balance))
	buf = appendU64(buf, i.ThresholdBalance)
	buf = appendU64(buf, uint64(i.MinGasAccumulate))
	buf = appendU64(buf, uint64(i.MinGasOnTransfer))
	buf = appendU64(buf, i.ItemCount)
	buf = appendU64(buf, i.OctetFootprint)
	buf = appendU64(buf, uint64(i.CreationSlot))
	buf = appendU64(buf, uint64(i.LastAccumulationSlot))
	buf = appendU32(buf, uint32(i.ParentService))
	return buf
}

func appendU64(buf []byte, v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return append(buf, b[:]...)
}

func appendU32(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return append(buf, b[:]...)
}

// BuildServiceInfo reads acct into the wire record, using balances to
// compute the threshold-balance field.
func BuildServiceInfo(acct *state.ServiceAccount, balances state.BalanceConstants) ServiceInfo {
	return ServiceInfo{
		CodeHash:             acct.CodeHash,
		Balance:              acct.Balance,
		ThresholdBalance:     acct.ThresholdBalance(balances),
		MinGasAccumulate:     acct.MinGasAccumulate,
		MinGasOnTransfer:     acct.MinGasOnTransfer,
		ItemCount:            acct.ItemCount(),
		OctetFootprint:       acct.OctetFootprint(),
		CreationSlot:         acct.CreationSlot,
		LastAccumulationSlot: acct.LastAccumulationSlot,
		ParentService:        acct.ParentService,
	}
}
