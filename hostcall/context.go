package hostcall

import (
	"github.com/jamzig/accumulate/state"
	"github.com/jamzig/accumulate/types"
)

// Config carries the chain constants the host-call surface needs,
// supplied by engine.Config (Design Note §9: replace compile-time
// generics over chain parameters with a configuration record).
type Config struct {
	Balances                  state.BalanceConstants
	FlatCallGas               types.Gas
	NewServiceInitialBalance  types.Balance
	PreimageExpungementPeriod uint64 // D, in timeslots
}

// HostContext bundles everything a host call needs: the accumulation
// context it mutates, the invoking service, the per-invocation gas meter,
// the transfers/output accumulators a single invocation fills in, and the
// chain configuration.
//
// One HostContext is constructed per VM invocation (exec.SingleServiceAccumulation
// or the on-transfer dispatch) and discarded afterward; it owns no state
// beyond that invocation's lifetime (spec.md §3 "Ownership discipline").
type HostContext struct {
	Ctx    *state.AccumulationContext
	Caller types.ServiceId
	Config Config
	Cache  *state.PreimageCache

	GasRemaining types.Gas

	Transfers []types.DeferredTransfer
	Output    *types.AccumulateOutput // nil until yield is called
}

// NewHostContext constructs a HostContext for one invocation with the
// given starting gas budget (the invocation's gas limit).
func NewHostContext(ctx *state.AccumulationContext, caller types.ServiceId, cfg Config, cache *state.PreimageCache, gasLimit types.Gas) *HostContext {
	return &HostContext{
		Ctx:          ctx,
		Caller:       caller,
		Config:       cfg,
		Cache:        cache,
		GasRemaining: gasLimit,
	}
}

// resolveService maps the svc* register argument of several calls onto a
// service id. The NONE sentinel means "current service" and resolves to
// Caller; 0 is accepted as the same shorthand, since service id 0 is
// never a valid account (candidate ids start at 0x100).
func (hc *HostContext) resolveService(svc uint64) types.ServiceId {
	if svc == 0 || svc == uint64(NONE) {
		return hc.Caller
	}
	return types.ServiceId(svc)
}

// deductFlat deducts the flat per-call gas cost (spec.md §4.5: "Every
// call deducts a flat 10 gas before effect"). ok is false on out-of-gas,
// which the dispatch wrapper turns into a terminal exit.
func (hc *HostContext) deductFlat() (ok bool) {
	if hc.GasRemaining < hc.Config.FlatCallGas {
		hc.GasRemaining = 0
		return false
	}
	hc.GasRemaining -= hc.Config.FlatCallGas
	return true
}
