// Package hostcall implements the host-call surface services invoke
// through the VM boundary (spec.md §4.5): gas query, preimage/storage
// access, service info, transfer, new-service creation, and the
// privileged bless/assign/designate/checkpoint/upgrade/eject/query/
// solicit/forget/yield operations.
//
// Dispatch-table shape follows the teacher's
// overlay/node/xatu/jump_table.go (BuildCustomJumpTable/applyOverrides): a
// table from an op identifier to behavior, built once and looked up by id
// per call, generalized here from EVM opcodes to JAM host-call ids.
package hostcall

// Code is a protocol-level result code written to R7 (spec.md §4.5).
// These never propagate as Go errors — see SPEC_FULL.md §10.4.
type Code uint64

const (
	OK   Code = 0
	NONE Code = ^uint64(0) // all-ones sentinel: "not found" / "no value"
	WHAT Code = ^uint64(0) - 1
	OOB  Code = ^uint64(0) - 2
	WHO  Code = ^uint64(0) - 3
	FULL Code = ^uint64(0) - 4
	CORE Code = ^uint64(0) - 5
	CASH Code = ^uint64(0) - 6
	LOW  Code = ^uint64(0) - 7
	HUH  Code = ^uint64(0) - 8
)

func (c Code) String() string {
	switch c {
	case OK:
		return "OK"
	case NONE:
		return "NONE"
	case WHAT:
		return "WHAT"
	case OOB:
		return "OOB"
	case WHO:
		return "WHO"
	case FULL:
		return "FULL"
	case CORE:
		return "CORE"
	case CASH:
		return "CASH"
	case LOW:
		return "LOW"
	case HUH:
		return "HUH"
	default:
		return "VALUE"
	}
}
