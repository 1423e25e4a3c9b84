package exec

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jamzig/accumulate/hostcall"
	"github.com/jamzig/accumulate/internal/orderedset"
	"github.com/jamzig/accumulate/internal/telemetry"
	"github.com/jamzig/accumulate/state"
	"github.com/jamzig/accumulate/types"
	"github.com/jamzig/accumulate/vm"
)

// ParallelResult is one batch's outcome: the services that ran, in
// commit order, and each one's SingleServiceResult (spec.md §4.3
// "Output").
type ParallelResult struct {
	Order   []types.ServiceId
	Results map[types.ServiceId]SingleServiceResult
}

// ParallelAccumulate implements spec.md §4.3. Per-service invocations run
// concurrently via golang.org/x/sync/errgroup — safe because each one
// operates only on its own DeepClone of ctx (spec.md §4.3 "Concurrency
// model"); their relative real-time completion order never affects the
// Order slice, which always reflects first-appearance order.
func ParallelAccumulate(
	ctx *state.AccumulationContext,
	batch []types.WorkReport,
	includePrivileged bool,
	cfg hostcall.Config,
	invoker vm.Invoker,
	code CodeProvider,
	cache *state.PreimageCache,
	log telemetry.Logger,
) (ParallelResult, error) {
	if log == nil {
		log = telemetry.NewDiscardLogger()
	}

	chi := ctx.Chi.Read()
	ids := orderedset.New[types.ServiceId]()

	if includePrivileged {
		for _, id := range sortedAlwaysAccumulateIDs(chi.AlwaysAccumulate) {
			ids.Add(id)
		}
	}

	operands := make(map[types.ServiceId][]OperandEntry)
	for _, report := range batch {
		for _, result := range report.Results {
			ids.Add(result.ServiceId)
			operand := types.NewOperand(report, result)
			operands[result.ServiceId] = append(operands[result.ServiceId], OperandEntry{
				AccumulateGas: result.AccumulateGas,
				Operand:       operand,
			})
		}
	}

	order := ids.Values()
	results := make([]SingleServiceResult, len(order))

	g := new(errgroup.Group)
	for i, id := range order {
		i, id := i, id
		clone := ctx.DeepClone()
		g.Go(func() error {
			res, err := SingleServiceAccumulation(clone, id, operands[id], chi, includePrivileged, cfg, invoker, code, cache, log)
			if err != nil {
				return fmt.Errorf("service %d: %w", id, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ParallelResult{}, fmt.Errorf("parallel accumulation: %w", err)
	}

	out := make(map[types.ServiceId]SingleServiceResult, len(order))
	for i, id := range order {
		out[id] = results[i]
	}

	log.Debug("batch accumulated", telemetry.Fields{"services": len(order)})
	return ParallelResult{Order: order, Results: out}, nil
}

// sortedAlwaysAccumulateIDs returns always_accumulate's keys in ascending
// service-id order. The type this module models always_accumulate as
// (map[ServiceId]Gas, replaced wholesale by bless) carries no insertion
// order to iterate in the literal sense spec.md §4.3 describes; ascending
// id order is the deterministic, consensus-safe substitute.
func sortedAlwaysAccumulateIDs(m map[types.ServiceId]types.Gas) []types.ServiceId {
	out := make([]types.ServiceId, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
