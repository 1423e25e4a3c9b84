package hostcall

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jamzig/accumulate/state"
	"github.com/jamzig/accumulate/types"
)

func TestServiceInfoEncodeFieldOrderAndWidths(t *testing.T) {
	info := ServiceInfo{
		CodeHash:             types.Hash{1, 2, 3},
		Balance:              10,
		ThresholdBalance:     20,
		MinGasAccumulate:     30,
		MinGasOnTransfer:     40,
		ItemCount:            5,
		OctetFootprint:       6,
		CreationSlot:         7,
		LastAccumulationSlot: 8,
		ParentService:        9,
	}
	buf := info.Encode()
	assert.Len(t, buf, 32+8*8+4)
	assert.Equal(t, info.CodeHash[:], buf[0:32])
	assert.Equal(t, uint64(10), binary.LittleEndian.Uint64(buf[32:40]))
	assert.Equal(t, uint64(20), binary.LittleEndian.Uint64(buf[40:48]))
	assert.Equal(t, uint64(30), binary.LittleEndian.Uint64(buf[48:56]))
	assert.Equal(t, uint64(40), binary.LittleEndian.Uint64(buf[56:64]))
	assert.Equal(t, uint64(5), binary.LittleEndian.Uint64(buf[64:72]))
	assert.Equal(t, uint64(6), binary.LittleEndian.Uint64(buf[72:80]))
	assert.Equal(t, uint64(7), binary.LittleEndian.Uint64(buf[80:88]))
	assert.Equal(t, uint64(8), binary.LittleEndian.Uint64(buf[88:96]))
	assert.Equal(t, uint32(9), binary.LittleEndian.Uint32(buf[96:100]))
}

func TestBuildServiceInfoReadsAccountAndComputesThreshold(t *testing.T) {
	acct := state.NewServiceAccount()
	acct.Balance = 500
	acct.Storage[[31]byte{1}] = []byte("abc")

	balances := state.BalanceConstants{BaseDeposit: 10, PerItem: 2, PerOctet: 1}
	info := BuildServiceInfo(acct, balances)

	assert.Equal(t, types.Balance(500), info.Balance)
	assert.Equal(t, uint64(10+2*1+1*3), info.ThresholdBalance)
	assert.Equal(t, uint64(1), info.ItemCount)
	assert.Equal(t, uint64(3), info.OctetFootprint)
}
