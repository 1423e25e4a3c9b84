package hostcall

import (
	"github.com/jamzig/accumulate/state"
	"github.com/jamzig/accumulate/types"
	"github.com/jamzig/accumulate/vm"
)

// Call ids index vm.DispatchTable. Their exact numbering is an external
// convention this module does not own (spec.md §6 scopes the VM itself
// out); these are internally consistent and stable for this codebase.
const (
	CallGas Code = iota + 100
	CallLookup
	CallRead
	CallWrite
	CallInfo
	CallBless
	CallAssign
	CallDesignate
	CallCheckpoint
	CallNew
	CallUpgrade
	CallTransfer
	CallEject
	CallQuery
	CallSolicit
	CallForget
	CallYield
	CallReassignRegistrar
)

func readHash(mem Memory, ptr uint64) (types.Hash, bool) {
	var h types.Hash
	data, ok := mem.Read(ptr, 32)
	if !ok {
		return h, false
	}
	copy(h[:], data)
	return h, true
}

func readMemo(mem Memory, ptr uint64) ([types.MemoSize]byte, bool) {
	var m [types.MemoSize]byte
	data, ok := mem.Read(ptr, types.MemoSize)
	if !ok {
		return m, false
	}
	copy(m[:], data)
	return m, true
}

func terminal(exit vm.ExitStatus) *vm.ExitStatus {
	e := exit
	return &e
}

// decodeAlwaysAccumulate parses count 12-byte (service id LE u32, gas LE
// u64) entries starting at ptr.
func decodeAlwaysAccumulate(mem Memory, ptr, count uint64) (map[types.ServiceId]types.Gas, bool) {
	out := make(map[types.ServiceId]types.Gas, count)
	data, ok := mem.Read(ptr, count*12)
	if !ok {
		return nil, false
	}
	for i := uint64(0); i < count; i++ {
		entry := data[i*12 : i*12+12]
		id := types.ServiceId(entry[0]) | types.ServiceId(entry[1])<<8 | types.ServiceId(entry[2])<<16 | types.ServiceId(entry[3])<<24
		var g uint64
		for b := 0; b < 8; b++ {
			g |= uint64(entry[4+b]) << (8 * b)
		}
		out[id] = types.Gas(g)
	}
	return out, true
}

func leU32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// decodeAssignMap parses count 6-byte (core u16 LE, assigner id u32 LE)
// entries starting at ptr.
func decodeAssignMap(mem Memory, ptr, count uint64) (map[uint16]types.ServiceId, bool) {
	out := make(map[uint16]types.ServiceId, count)
	data, ok := mem.Read(ptr, count*6)
	if !ok {
		return nil, false
	}
	for i := uint64(0); i < count; i++ {
		entry := data[i*6 : i*6+6]
		core := uint16(entry[0]) | uint16(entry[1])<<8
		out[core] = types.ServiceId(leU32(entry[2:6]))
	}
	return out, true
}

// decodeAuthorizers parses count 32-byte authorizer hashes starting at ptr.
func decodeAuthorizers(mem Memory, ptr, count uint64) ([]state.Authorizer, bool) {
	data, ok := mem.Read(ptr, count*32)
	if !ok {
		return nil, false
	}
	out := make([]state.Authorizer, count)
	for i := uint64(0); i < count; i++ {
		copy(out[i][:], data[i*32:i*32+32])
	}
	return out, true
}

// decodeValidators parses count 128-byte (4x32) validator key entries
// starting at ptr.
func decodeValidators(mem Memory, ptr, count uint64) (state.Iota, bool) {
	data, ok := mem.Read(ptr, count*128)
	if !ok {
		return nil, false
	}
	out := make(state.Iota, count)
	for i := uint64(0); i < count; i++ {
		entry := data[i*128 : i*128+128]
		copy(out[i].Bandersnatch[:], entry[0:32])
		copy(out[i].Ed25519[:], entry[32:64])
		copy(out[i].BLS[:], entry[64:96])
		copy(out[i].Metadata[:], entry[96:128])
	}
	return out, true
}

// BuildDispatchTable wires the register convention onto hc's Go-native
// methods, the way the teacher's BuildCustomJumpTable wires EVM opcodes
// onto execution functions (overlay/node/xatu/jump_table.go). Every entry
// deducts the flat per-call gas cost before effect and turns a memory
// fault into a terminal panic (spec.md §4.5).
func BuildDispatchTable(hc *HostContext, mem Memory) vm.DispatchTable {
	table := make(vm.DispatchTable)

	guard := func(fn func(regs vm.Registers) (vm.Registers, *vm.ExitStatus)) vm.HostCall {
		return func(regs vm.Registers) (vm.Registers, *vm.ExitStatus) {
			if !hc.deductFlat() {
				return regs, terminal(vm.ExitOutOfGas)
			}
			return fn(regs)
		}
	}

	table[uint32(CallGas)] = guard(func(regs vm.Registers) (vm.Registers, *vm.ExitStatus) {
		regs[vm.R7] = hc.Gas()
		return regs, nil
	})

	table[uint32(CallLookup)] = guard(func(regs vm.Registers) (vm.Registers, *vm.ExitStatus) {
		hash, ok := readHash(mem, regs[vm.R8])
		if !ok {
			return regs, terminal(vm.ExitPanic)
		}
		result, faulted := hc.Lookup(regs[vm.R7], hash, mem, regs[vm.R9], regs[vm.R10], regs[vm.R11])
		if faulted {
			return regs, terminal(vm.ExitPanic)
		}
		regs[vm.R7] = result
		return regs, nil
	})

	table[uint32(CallRead)] = guard(func(regs vm.Registers) (vm.Registers, *vm.ExitStatus) {
		keyPtr, keyLen := regs[vm.R8], regs[vm.R9]
		key, ok := mem.Read(keyPtr, keyLen)
		if !ok {
			return regs, terminal(vm.ExitPanic)
		}
		result, faulted := hc.Read(regs[vm.R7], key, mem, regs[vm.R10], regs[vm.R11], regs[vm.R12])
		if faulted {
			return regs, terminal(vm.ExitPanic)
		}
		regs[vm.R7] = result
		return regs, nil
	})

	table[uint32(CallWrite)] = guard(func(regs vm.Registers) (vm.Registers, *vm.ExitStatus) {
		keyPtr, keyLen := regs[vm.R7], regs[vm.R8]
		valPtr, valLen := regs[vm.R9], regs[vm.R10]
		key, ok := mem.Read(keyPtr, keyLen)
		if !ok {
			return regs, terminal(vm.ExitPanic)
		}
		var val []byte
		if valLen > 0 {
			val, ok = mem.Read(valPtr, valLen)
			if !ok {
				return regs, terminal(vm.ExitPanic)
			}
		}
		regs[vm.R7] = hc.Write(key, val)
		return regs, nil
	})

	table[uint32(CallInfo)] = guard(func(regs vm.Registers) (vm.Registers, *vm.ExitStatus) {
		result, faulted := hc.Info(regs[vm.R7], mem, regs[vm.R8], regs[vm.R9], regs[vm.R10])
		if faulted {
			return regs, terminal(vm.ExitPanic)
		}
		regs[vm.R7] = result
		return regs, nil
	})

	table[uint32(CallNew)] = guard(func(regs vm.Registers) (vm.Registers, *vm.ExitStatus) {
		hash, ok := readHash(mem, regs[vm.R7])
		if !ok {
			return regs, terminal(vm.ExitPanic)
		}
		regs[vm.R7] = hc.New(hash, types.Gas(regs[vm.R8]), types.Gas(regs[vm.R9]))
		return regs, nil
	})

	table[uint32(CallUpgrade)] = guard(func(regs vm.Registers) (vm.Registers, *vm.ExitStatus) {
		hash, ok := readHash(mem, regs[vm.R7])
		if !ok {
			return regs, terminal(vm.ExitPanic)
		}
		regs[vm.R7] = hc.Upgrade(hash, types.Gas(regs[vm.R8]), types.Gas(regs[vm.R9]))
		return regs, nil
	})

	table[uint32(CallTransfer)] = guard(func(regs vm.Registers) (vm.Registers, *vm.ExitStatus) {
		memo, ok := readMemo(mem, regs[vm.R10])
		if !ok {
			return regs, terminal(vm.ExitPanic)
		}
		regs[vm.R7] = hc.Transfer(types.ServiceId(regs[vm.R7]), types.Balance(regs[vm.R8]), types.Gas(regs[vm.R9]), memo)
		return regs, nil
	})

	table[uint32(CallEject)] = guard(func(regs vm.Registers) (vm.Registers, *vm.ExitStatus) {
		regs[vm.R7] = hc.Eject(types.ServiceId(regs[vm.R7]))
		return regs, nil
	})

	table[uint32(CallQuery)] = guard(func(regs vm.Registers) (vm.Registers, *vm.ExitStatus) {
		hash, ok := readHash(mem, regs[vm.R7])
		if !ok {
			return regs, terminal(vm.ExitPanic)
		}
		phase, t0, t1, t2 := hc.Query(hash)
		regs[vm.R7], regs[vm.R8], regs[vm.R9], regs[vm.R10] = phase, t0, t1, t2
		return regs, nil
	})

	table[uint32(CallSolicit)] = guard(func(regs vm.Registers) (vm.Registers, *vm.ExitStatus) {
		hash, ok := readHash(mem, regs[vm.R7])
		if !ok {
			return regs, terminal(vm.ExitPanic)
		}
		regs[vm.R7] = hc.Solicit(hash)
		return regs, nil
	})

	table[uint32(CallForget)] = guard(func(regs vm.Registers) (vm.Registers, *vm.ExitStatus) {
		hash, ok := readHash(mem, regs[vm.R7])
		if !ok {
			return regs, terminal(vm.ExitPanic)
		}
		regs[vm.R7] = hc.Forget(hash)
		return regs, nil
	})

	table[uint32(CallYield)] = guard(func(regs vm.Registers) (vm.Registers, *vm.ExitStatus) {
		hash, ok := readHash(mem, regs[vm.R7])
		if !ok {
			return regs, terminal(vm.ExitPanic)
		}
		regs[vm.R7] = hc.Yield(hash)
		return regs, nil
	})

	table[uint32(CallReassignRegistrar)] = guard(func(regs vm.Registers) (vm.Registers, *vm.ExitStatus) {
		regs[vm.R7] = hc.ReassignRegistrar(types.ServiceId(regs[vm.R7]))
		return regs, nil
	})

	table[uint32(CallCheckpoint)] = guard(func(regs vm.Registers) (vm.Registers, *vm.ExitStatus) {
		regs[vm.R7] = hc.Checkpoint(types.Gas(regs[vm.R7]))
		return regs, nil
	})

	table[uint32(CallBless)] = guard(func(regs vm.Registers) (vm.Registers, *vm.ExitStatus) {
		manager := types.ServiceId(regs[vm.R7])
		registrar := types.ServiceId(regs[vm.R8])
		alwaysAccumulate, ok := decodeAlwaysAccumulate(mem, regs[vm.R9], regs[vm.R10])
		if !ok {
			return regs, terminal(vm.ExitPanic)
		}
		// Per-core assigner map and designate are encoded back-to-back
		// after the always-accumulate table; R11 holds their shared
		// offset, R12 the assigner-entry count. designate follows the
		// assigner entries as a single trailing u32.
		assign, ok := decodeAssignMap(mem, regs[vm.R11], regs[vm.R12])
		if !ok {
			return regs, terminal(vm.ExitPanic)
		}
		designatePtr := regs[vm.R11] + regs[vm.R12]*6
		designateBytes, ok := mem.Read(designatePtr, 4)
		if !ok {
			return regs, terminal(vm.ExitPanic)
		}
		designate := types.ServiceId(leU32(designateBytes))
		regs[vm.R7] = hc.Bless(manager, registrar, assign, designate, alwaysAccumulate)
		return regs, nil
	})

	table[uint32(CallAssign)] = guard(func(regs vm.Registers) (vm.Registers, *vm.ExitStatus) {
		core := uint16(regs[vm.R7])
		newAssigner := types.ServiceId(regs[vm.R8])
		queue, ok := decodeAuthorizers(mem, regs[vm.R9], regs[vm.R10])
		if !ok {
			return regs, terminal(vm.ExitPanic)
		}
		regs[vm.R7] = hc.Assign(core, newAssigner, queue)
		return regs, nil
	})

	table[uint32(CallDesignate)] = guard(func(regs vm.Registers) (vm.Registers, *vm.ExitStatus) {
		newDesignate := types.ServiceId(regs[vm.R7])
		validators, ok := decodeValidators(mem, regs[vm.R8], regs[vm.R9])
		if !ok {
			return regs, terminal(vm.ExitPanic)
		}
		regs[vm.R7] = hc.Designate(newDesignate, validators)
		return regs, nil
	})

	return table
}
