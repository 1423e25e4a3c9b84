// Package vm defines the VM invocation boundary consumed by this module
// (spec.md §6). The virtual machine itself — bytecode decoder, memory,
// registers — is explicitly out of scope (spec.md §1); this package only
// names the contract the engine invokes through and the host-call
// dispatch table shape it supplies.
package vm

import "github.com/jamzig/accumulate/types"

// EntryPoint is a protocol-level entry index into a service's program.
type EntryPoint uint32

const (
	// EntryAccumulate is the accumulate entry point (spec.md §4.4).
	EntryAccumulate EntryPoint = 5
	// EntryOnTransfer is the on-transfer entry point (spec.md §4.8).
	EntryOnTransfer EntryPoint = 10
)

// ExitStatus summarizes how an invocation ended.
type ExitStatus uint8

const (
	ExitHalt ExitStatus = iota
	ExitOutOfGas
	ExitPanic
)

// Registers models the R7..R12 call-argument/return convention (spec.md
// §4.5/§6) as a fixed array the dispatch table and host calls both read
// and write.
type Registers [6]uint64

const (
	R7 = iota
	R8
	R9
	R10
	R11
	R12
)

// HostCall is one entry in the dispatch table: it receives the current
// registers and a pointer to whatever state the call mutates (an
// *AccumulationContext slice, effectively, via a closure captured when the
// table is built — see hostcall.BuildDispatchTable). It returns the
// updated registers and, on a terminal condition (out-of-gas or panic),
// a non-nil terminal exit.
type HostCall func(regs Registers) (Registers, *ExitStatus)

// DispatchTable maps a 32-bit call id to its HostCall.
type DispatchTable map[uint32]HostCall

// Invocation is everything a VM invocation needs beyond the code itself.
type Invocation struct {
	Entry    EntryPoint
	GasLimit types.Gas
	Args     []byte
	Calls    DispatchTable
}

// Result is what an invocation returns (spec.md §6): exit status, gas
// consumed, final registers, and (only on ExitHalt) the memory region the
// engine cares about — here modeled simply as raw output bytes, since
// this module never inspects VM memory beyond what a host call's own
// logic already wrote into state via Calls.
type Result struct {
	Exit     ExitStatus
	GasUsed  types.Gas
	Registers Registers
	Output   []byte
}

// Invoker is the external VM invocation boundary (spec.md §6):
// invoke(code_bytes, entry_index, gas_limit, args_buffer, host_calls,
// host_ctx) -> {exit_status, gas_used, registers, memory_snapshot?}.
//
// The engine must not depend on any other VM surface (spec.md §6).
type Invoker interface {
	Invoke(code []byte, inv Invocation) (Result, error)
}
