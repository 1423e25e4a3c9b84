package hostcall

import (
	"github.com/jamzig/accumulate/state"
	"github.com/jamzig/accumulate/types"
)

// Bless implements the `bless` call: only the current manager may call
// it. It writes manager and always_accumulate unconditionally (spec.md
// §4.6: these two fields are "taken directly from the manager"), and
// writes assign/designate/registrar as candidates that chi.Merge later
// reconciles against whatever the current holder of each role wrote to
// that same field through its own accumulation (spec.md §4.6 "R(o,a,b)").
func (hc *HostContext) Bless(newManager, newRegistrar types.ServiceId, newAssign map[uint16]types.ServiceId, newDesignate types.ServiceId, newAlwaysAccumulate map[types.ServiceId]types.Gas) uint64 {
	c := hc.Ctx.Chi.Read()
	if hc.Caller != c.Manager {
		return uint64(HUH)
	}
	m := hc.Ctx.Chi.Mutate()
	m.Manager = newManager
	m.Registrar = newRegistrar
	m.Designate = newDesignate
	m.Assign = make(map[uint16]types.ServiceId, len(newAssign))
	for core, id := range newAssign {
		m.Assign[core] = id
	}
	m.AlwaysAccumulate = make(map[types.ServiceId]types.Gas, len(newAlwaysAccumulate))
	for id, g := range newAlwaysAccumulate {
		m.AlwaysAccumulate[id] = g
	}
	return uint64(OK)
}

// Assign implements the `assign` call: only the current assigner of core
// may replace that core's authorizer queue and hand off the assigner
// role. This is the "b" side of chi.Merge's R-rule for assign[core].
func (hc *HostContext) Assign(core uint16, newAssigner types.ServiceId, queue []state.Authorizer) uint64 {
	c := hc.Ctx.Chi.Read()
	if hc.Caller != c.Assign[core] {
		return uint64(HUH)
	}
	chiMut := hc.Ctx.Chi.Mutate()
	chiMut.Assign[core] = newAssigner

	phiMut := hc.Ctx.Phi.Mutate()
	dup := make([]state.Authorizer, len(queue))
	copy(dup, queue)
	(*phiMut)[core] = dup
	return uint64(OK)
}

// Designate implements the `designate` call: only the current delegator
// may replace the pending validator-key set and hand off the delegator
// role. This is the "b" side of chi.Merge's R-rule for designate.
func (hc *HostContext) Designate(newDesignate types.ServiceId, validators state.Iota) uint64 {
	c := hc.Ctx.Chi.Read()
	if hc.Caller != c.Designate {
		return uint64(HUH)
	}
	chiMut := hc.Ctx.Chi.Mutate()
	chiMut.Designate = newDesignate

	iotaMut := hc.Ctx.Iota.Mutate()
	*iotaMut = state.CloneIota(validators)
	return uint64(OK)
}

// ReassignRegistrar implements a `registrar` self-handoff: only the
// current registrar may hand its own role to another service. This is
// the "b" side of chi.Merge's R-rule for registrar.
func (hc *HostContext) ReassignRegistrar(newRegistrar types.ServiceId) uint64 {
	c := hc.Ctx.Chi.Read()
	if hc.Caller != c.Registrar {
		return uint64(HUH)
	}
	m := hc.Ctx.Chi.Mutate()
	m.Registrar = newRegistrar
	return uint64(OK)
}

// Upgrade implements the `upgrade` call: any service may replace its own
// code hash and gas minima (no privilege check — a service upgrading
// itself is ordinary, not a privileged operation).
func (hc *HostContext) Upgrade(newCodeHash types.Hash, minAccGas, minXferGas types.Gas) uint64 {
	acct := state.MutateAccount(hc.Ctx.Delta, hc.Caller)
	acct.CodeHash = newCodeHash
	acct.MinGasAccumulate = minAccGas
	acct.MinGasOnTransfer = minXferGas
	return uint64(OK)
}

// Eject implements the `eject` call: only the registrar may remove an
// account outright, and its balance passes to the registrar rather than
// being destroyed.
func (hc *HostContext) Eject(target types.ServiceId) uint64 {
	c := hc.Ctx.Chi.Read()
	if hc.Caller != c.Registrar {
		return uint64(HUH)
	}
	targetAcct := state.Account(hc.Ctx.Delta, target)
	if targetAcct == nil {
		return uint64(WHO)
	}
	registrar := state.MutateAccount(hc.Ctx.Delta, hc.Caller)
	registrar.Balance += targetAcct.Balance
	state.DeleteAccount(hc.Ctx.Delta, target)
	return uint64(OK)
}

// Query implements the `query` call: returns the caller's own
// preimage_lookups status for hash (read-only; used before solicit/forget
// to check current phase).
func (hc *HostContext) Query(hash types.Hash) (phase uint64, t0, t1, t2 uint64) {
	acct := state.Account(hc.Ctx.Delta, hc.Caller)
	if acct == nil {
		return uint64(NONE), 0, 0, 0
	}
	key := state.PreimageKey(hc.Caller, hash)
	status, ok := acct.PreimageLookups[key]
	if !ok {
		return uint64(NONE), 0, 0, 0
	}
	return uint64(status.Phase), uint64(status.T0), uint64(status.T1), uint64(status.T2)
}

// Solicit implements the `solicit` call (spec.md §4.5 transitions).
func (hc *HostContext) Solicit(hash types.Hash) uint64 {
	acct := state.MutateAccount(hc.Ctx.Delta, hc.Caller)
	key := state.PreimageKey(hc.Caller, hash)
	current, existed := acct.PreimageLookups[key]
	if !existed {
		current = state.Requested()
	}
	next, ok := current.Solicit(hc.Ctx.TimeSlot)
	if !ok {
		return uint64(HUH)
	}
	acct.PreimageLookups[key] = next
	return uint64(OK)
}

// Forget implements the `forget` call (spec.md §4.5 transitions).
func (hc *HostContext) Forget(hash types.Hash) uint64 {
	acct := state.MutateAccount(hc.Ctx.Delta, hc.Caller)
	key := state.PreimageKey(hc.Caller, hash)
	current, existed := acct.PreimageLookups[key]
	if !existed {
		return uint64(HUH)
	}
	next, removed, ok := current.Forget(hc.Ctx.TimeSlot, hc.Config.PreimageExpungementPeriod)
	if !ok {
		return uint64(HUH)
	}
	if removed {
		delete(acct.PreimageLookups, key)
		delete(acct.Preimages, key)
	} else {
		acct.PreimageLookups[key] = next
	}
	return uint64(OK)
}

// Yield implements the `yield` call: commits the service's single
// accumulation output for the block. A second call within the same
// invocation is rejected with HUH (spec.md §3: "at most one per service
// per block").
func (hc *HostContext) Yield(output types.AccumulateOutput) uint64 {
	if hc.Output != nil {
		return uint64(HUH)
	}
	out := output
	hc.Output = &out
	return uint64(OK)
}

// Checkpoint implements the `checkpoint` call. Because every service
// invocation already runs against an isolated context clone (spec.md
// §4.3), and that clone is discarded wholesale on panic/OOG rather than
// rolled back to an intermediate point (spec.md §5), a mid-invocation
// checkpoint has nothing further to snapshot here; it reports the gas
// spent so far, the one piece of information a real VM's checkpoint
// semantics let a program observe before deciding whether to continue.
func (hc *HostContext) Checkpoint(gasLimit types.Gas) uint64 {
	if hc.GasRemaining > gasLimit {
		return 0
	}
	return uint64(gasLimit - hc.GasRemaining)
}
