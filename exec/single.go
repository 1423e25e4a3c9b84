package exec

import (
	"encoding/binary"
	"fmt"

	"github.com/jamzig/accumulate/hostcall"
	"github.com/jamzig/accumulate/internal/telemetry"
	"github.com/jamzig/accumulate/state"
	"github.com/jamzig/accumulate/types"
	"github.com/jamzig/accumulate/vm"
)

// OperandEntry pairs one operand with the accumulate_gas of the result it
// was wrangled from (spec.md §4.3 "Group operands").
type OperandEntry struct {
	AccumulateGas types.Gas
	Operand       types.AccumulationOperand
}

// SingleServiceResult is what one service's accumulation invocation
// produces (spec.md §4.4 "AccumulationResult"). Committed reports whether
// Context's mutations should be folded into the parent by the caller; it
// is false for out-of-gas, panic, and code-unavailable outcomes, all of
// which end the service's run with zero effect (spec.md §7).
type SingleServiceResult struct {
	Context   *state.AccumulationContext
	Transfers []types.DeferredTransfer
	Output    *types.AccumulateOutput
	GasUsed   types.Gas
	Committed bool
}

// SingleServiceAccumulation runs spec.md §4.4 for one service against an
// already-cloned context. chi is read (not the clone's chi — the
// always_accumulate gas table is a pre-block constant for this purpose)
// to select the gas limit.
func SingleServiceAccumulation(
	ctx *state.AccumulationContext,
	serviceID types.ServiceId,
	operands []OperandEntry,
	chi state.Chi,
	includePrivileged bool,
	cfg hostcall.Config,
	invoker vm.Invoker,
	code CodeProvider,
	cache *state.PreimageCache,
	log telemetry.Logger,
) (SingleServiceResult, error) {
	if log == nil {
		log = telemetry.NewDiscardLogger()
	}

	gasLimit, ran := selectGasLimit(serviceID, operands, chi, includePrivileged)
	if !ran || gasLimit == 0 {
		return SingleServiceResult{Context: ctx, Committed: true}, nil
	}

	acct := state.Account(ctx.Delta, serviceID)
	if acct == nil {
		return SingleServiceResult{Context: ctx, Committed: false}, nil
	}

	program, ok := code.CodeFor(acct.CodeHash)
	if !ok {
		log.Debug("code unavailable for accumulation", telemetry.Fields{"service": serviceID})
		return SingleServiceResult{Context: ctx, Committed: false}, nil
	}

	args := buildAccumulateArgs(ctx.TimeSlot, serviceID, operands)

	mem := hostcall.NewFlatMemory(len(args) + 64*1024)
	mem.Write(0, args)

	hc := hostcall.NewHostContext(ctx, serviceID, cfg, cache, gasLimit)
	table := hostcall.BuildDispatchTable(hc, mem)

	result, err := invoker.Invoke(program, vm.Invocation{
		Entry:    vm.EntryAccumulate,
		GasLimit: gasLimit,
		Args:     args,
		Calls:    table,
	})
	if err != nil {
		return SingleServiceResult{}, fmt.Errorf("accumulate invoke service %d: %w", serviceID, err)
	}

	switch result.Exit {
	case vm.ExitHalt:
		return SingleServiceResult{
			Context:   ctx,
			Transfers: hc.Transfers,
			Output:    hc.Output,
			GasUsed:   result.GasUsed,
			Committed: true,
		}, nil
	case vm.ExitOutOfGas:
		return SingleServiceResult{Context: ctx, GasUsed: gasLimit, Committed: false}, nil
	default: // vm.ExitPanic
		return SingleServiceResult{Context: ctx, GasUsed: result.GasUsed, Committed: false}, nil
	}
}

// selectGasLimit implements spec.md §4.4's gas-limit selection. The
// privileged gas table only applies in the batch that carries
// includePrivileged (spec.md §4.2 invariant (c): a privileged service's
// gas limit is its configured value in the first batch only, and the sum
// of its results' accumulate_gas in any later batch it happens to appear
// in via a report).
func selectGasLimit(serviceID types.ServiceId, operands []OperandEntry, chi state.Chi, includePrivileged bool) (types.Gas, bool) {
	if includePrivileged {
		if g, ok := chi.AlwaysAccumulate[serviceID]; ok {
			return g, true
		}
	}
	if len(operands) == 0 {
		return 0, false
	}
	var total types.Gas
	for _, op := range operands {
		total += op.AccumulateGas
	}
	return total, true
}

// buildAccumulateArgs serializes the accumulate entry point's argument
// buffer (spec.md §4.4 "Argument assembly", §6 "little-endian").
func buildAccumulateArgs(slot types.TimeSlot, serviceID types.ServiceId, operands []OperandEntry) []byte {
	buf := make([]byte, 0, 64+len(operands)*128)
	buf = appendU64(buf, uint64(slot))
	buf = appendU32(buf, uint32(serviceID))
	buf = appendU32(buf, uint32(len(operands)))

	for _, entry := range operands {
		op := entry.Operand
		buf = append(buf, op.WorkPackageHash[:]...)
		buf = append(buf, op.PayloadHash[:]...)
		buf = appendU32(buf, uint32(len(op.AuthorizationOutput)))
		buf = append(buf, op.AuthorizationOutput...)

		if op.Output.IsSuccess() {
			buf = append(buf, 0)
			buf = appendU32(buf, uint32(len(op.Output.Success)))
			buf = append(buf, op.Output.Success...)
		} else {
			buf = append(buf, byte(op.Output.Error))
		}
	}
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
