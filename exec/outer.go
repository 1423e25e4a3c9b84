package exec

import (
	"fmt"

	"github.com/jamzig/accumulate/chi"
	"github.com/jamzig/accumulate/hostcall"
	"github.com/jamzig/accumulate/internal/metrics"
	"github.com/jamzig/accumulate/internal/telemetry"
	"github.com/jamzig/accumulate/state"
	"github.com/jamzig/accumulate/types"
	"github.com/jamzig/accumulate/vm"
)

// OuterResult is what one block's gas-bounded batching loop produces
// (spec.md §4.2 "Output").
type OuterResult struct {
	AccumulatedCount  int
	Transfers         []types.DeferredTransfer
	Outputs           []types.ServiceAccumulationOutput
	GasUsedPerService map[types.ServiceId]types.Gas
}

// ProvidedPreimages maps a service to the preimage hashes made available
// to it this block (the preimages-providing extrinsic, out of scope per
// spec.md §1 beyond this input shape), consumed by the "apply provided
// preimages" step of spec.md §4.2.
type ProvidedPreimages map[types.ServiceId][]types.Hash

// OuterAccumulate implements spec.md §4.2: the outer gas-bounded batching
// loop over an already-ordered, already-dependency-resolved report list.
func OuterAccumulate(
	ctx *state.AccumulationContext,
	reports []types.WorkReport,
	gasBudget types.Gas,
	provided ProvidedPreimages,
	cfg hostcall.Config,
	invoker vm.Invoker,
	code CodeProvider,
	cache *state.PreimageCache,
	collectors *metrics.Collectors,
	log telemetry.Logger,
) (OuterResult, error) {
	if log == nil {
		log = telemetry.NewDiscardLogger()
	}

	out := OuterResult{GasUsedPerService: make(map[types.ServiceId]types.Gas)}
	outputSeen := make(map[types.ServiceId]struct{})

	originalChi := ctx.Chi.Read()
	chiPostByService := make(map[types.ServiceId]state.Chi)

	remaining := gasBudget
	cursor := 0
	firstBatch := true

	for cursor < len(reports) && remaining > 0 {
		batchEnd := batchBoundary(reports, cursor, remaining)
		if batchEnd == cursor {
			break
		}
		batch := reports[cursor:batchEnd]

		result, err := ParallelAccumulate(ctx, batch, firstBatch, cfg, invoker, code, cache, log)
		if err != nil {
			return OuterResult{}, fmt.Errorf("outer accumulation: batch [%d:%d]: %w", cursor, batchEnd, err)
		}

		var batchGas types.Gas
		for _, id := range result.Order {
			svcResult := result.Results[id]
			if svcResult.Committed {
				svcResult.Context.CommitWithoutChi()
				chiPostByService[id] = svcResult.Context.Chi.Read()
				applyProvidedPreimages(ctx, id, provided[id], ctx.TimeSlot)
			}

			out.Transfers = append(out.Transfers, svcResult.Transfers...)
			if svcResult.Output != nil {
				if _, dup := outputSeen[id]; !dup {
					outputSeen[id] = struct{}{}
					out.Outputs = append(out.Outputs, types.ServiceAccumulationOutput{ServiceId: id, Output: *svcResult.Output})
				}
			}
			out.GasUsedPerService[id] += svcResult.GasUsed
			batchGas += svcResult.GasUsed
		}

		if remaining > batchGas {
			remaining -= batchGas
		} else {
			remaining = 0
		}

		out.AccumulatedCount += len(batch)
		cursor = batchEnd
		firstBatch = false

		collectors.IncBatchesRun()
		collectors.AddGasUsed(uint64(batchGas))
		collectors.AddReportsAccumulated(len(batch))
	}

	*ctx.Chi.Mutate() = chi.Merge(originalChi, chiPostByService)

	log.Info("outer accumulation complete", telemetry.Fields{
		"accumulated": out.AccumulatedCount,
		"services":    len(out.GasUsedPerService),
	})

	return out, nil
}

// batchBoundary returns the exclusive end index of the maximal prefix of
// reports[cursor:] whose cumulative TotalAccumulateGas fits in remaining
// (spec.md §4.2 "Batch size").
func batchBoundary(reports []types.WorkReport, cursor int, remaining types.Gas) int {
	var cumulative types.Gas
	i := cursor
	for ; i < len(reports); i++ {
		need := reports[i].TotalAccumulateGas()
		if cumulative+need > remaining {
			break
		}
		cumulative += need
	}
	return i
}

// applyProvidedPreimages runs the "Applying provided preimages" state
// transition (spec.md §4.5) against the committed delta for every hash
// provided to serviceID this batch.
func applyProvidedPreimages(ctx *state.AccumulationContext, serviceID types.ServiceId, hashes []types.Hash, slot types.TimeSlot) {
	if len(hashes) == 0 {
		return
	}
	acct := state.Account(ctx.Delta, serviceID)
	if acct == nil {
		return
	}
	var mutated *state.ServiceAccount
	for _, h := range hashes {
		key := state.PreimageKey(serviceID, h)
		current, ok := acct.PreimageLookups[key]
		if !ok {
			continue
		}
		next, applied := current.ApplyProvidedPreimage(slot)
		if !applied {
			continue
		}
		if mutated == nil {
			mutated = state.MutateAccount(ctx.Delta, serviceID)
		}
		mutated.PreimageLookups[key] = next
	}
}
