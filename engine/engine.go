package engine

import (
	"fmt"

	"github.com/jamzig/accumulate/exec"
	"github.com/jamzig/accumulate/internal/metrics"
	"github.com/jamzig/accumulate/internal/telemetry"
	"github.com/jamzig/accumulate/resolver"
	"github.com/jamzig/accumulate/state"
	"github.com/jamzig/accumulate/stats"
	"github.com/jamzig/accumulate/transferdispatch"
	"github.com/jamzig/accumulate/types"
	"github.com/jamzig/accumulate/vm"
)

// Engine drives one block's accumulation end to end: Dependency Resolver
// → Outer Accumulation (with the Chi Merger folded into its final step) →
// Deferred-Transfer Dispatch → Statistics & Root → History Tracker →
// Queue State Updater (spec.md §1 "Data flow per block").
type Engine struct {
	cfg        Config
	invoker    vm.Invoker
	code       codeProvider
	cache      *state.PreimageCache
	collectors *metrics.Collectors
	log        telemetry.Logger
}

// codeProvider unifies exec.CodeProvider and transferdispatch.CodeProvider,
// which are structurally identical single-method interfaces.
type codeProvider interface {
	CodeFor(codeHash types.Hash) ([]byte, bool)
}

// New constructs an Engine. log and collectors may be nil, in which case a
// discard logger and a no-op metrics collector are used.
func New(cfg Config, invoker vm.Invoker, code codeProvider, collectors *metrics.Collectors, log telemetry.Logger) *Engine {
	if log == nil {
		log = telemetry.NewDiscardLogger()
	}
	if collectors == nil {
		collectors = metrics.NewNoop()
	}
	return &Engine{
		cfg:        cfg,
		invoker:    invoker,
		code:       code,
		cache:      state.NewPreimageCache(cfg.PreimageCacheSize),
		collectors: collectors,
		log:        log,
	}
}

// Result is one block's full accumulation outcome.
type Result struct {
	Posterior        PosteriorState
	AccumulateRoot   types.Hash
	Accumulation     map[types.ServiceId]stats.AccumulationServiceStats
	Transfers        map[types.ServiceId]stats.TransferServiceStats
	AccumulatedCount int
}

// Accumulate runs one block of accumulation over pre, the pre-state tuple,
// given reports (the block's validated work reports, in report order),
// the current in-epoch slot, the gas budget, and any preimages made newly
// available to services this block.
func (e *Engine) Accumulate(
	pre PosteriorState,
	reports []types.WorkReport,
	slot int,
	currentTimeSlot types.TimeSlot,
	entropy [32]byte,
	gasBudget types.Gas,
	provided exec.ProvidedPreimages,
) (Result, error) {
	e.cache.Reset()

	resolved := resolver.Resolve(pre.Xi, pre.Theta, reports, slot, e.log)

	ctx := state.NewAccumulationContext(pre.Delta, pre.Iota, pre.Phi, pre.Chi, currentTimeSlot, entropy)

	outer, err := exec.OuterAccumulate(ctx, resolved.Accumulatable, gasBudget, provided, e.cfg.HostCall, e.invoker, e.code, e.cache, e.collectors, e.log)
	if err != nil {
		return Result{}, fmt.Errorf("engine: outer accumulation: %w", err)
	}

	xfer, err := transferdispatch.Dispatch(ctx, outer.Transfers, e.cfg.HostCall, e.invoker, e.code, e.cache, e.collectors, e.log)
	if err != nil {
		return Result{}, fmt.Errorf("engine: transfer dispatch: %w", err)
	}

	root := stats.AccumulateRoot(outer.Outputs)
	accStats := stats.BuildAccumulationStats(resolved.Accumulatable, outer.GasUsedPerService)
	transferStats := make(map[types.ServiceId]stats.TransferServiceStats, len(xfer.Stats))
	for id, s := range xfer.Stats {
		transferStats[id] = stats.TransferServiceStats{TransferCount: s.TransferCount, GasUsed: s.GasUsed}
	}

	newXi := pre.Xi.Clone()
	newXi.ShiftDown()
	for _, r := range resolved.Accumulatable {
		newXi.AddWorkPackage(r.PackageHash())
	}

	// resolved.Residual already combines every slot Theta.WalkFrom walked
	// (spec.md §4.1), so the posterior queue collapses that whole ring
	// into a single fresh slot at the current position; every other slot
	// starts this block's posterior empty rather than re-carrying items
	// that are now accounted for in Residual.
	newTheta := state.NewTheta(pre.Theta.Len())
	newTheta.SetSlot(slot%newTheta.Len(), resolved.Residual)

	posterior := PosteriorState{
		Delta: ctx.Delta.Read(),
		Iota:  ctx.Iota.Read(),
		Phi:   ctx.Phi.Read(),
		Chi:   ctx.Chi.Read(),
		Xi:    newXi,
		Theta: newTheta,
	}

	e.log.Info("block accumulation complete", telemetry.Fields{
		"accumulated": outer.AccumulatedCount,
		"transfers":   len(outer.Transfers),
	})

	return Result{
		Posterior:        posterior,
		AccumulateRoot:   root,
		Accumulation:     accStats,
		Transfers:        transferStats,
		AccumulatedCount: outer.AccumulatedCount,
	}, nil
}
