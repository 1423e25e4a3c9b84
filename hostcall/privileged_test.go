package hostcall

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamzig/accumulate/state"
	"github.com/jamzig/accumulate/types"
)

func chiContext(c state.Chi) *state.AccumulationContext {
	return state.NewAccumulationContext(state.Delta{}, state.Iota{}, state.Phi{}, c, 1, [32]byte{})
}

func TestBlessRejectsNonManager(t *testing.T) {
	ctx := chiContext(state.Chi{Manager: 1, Assign: map[uint16]types.ServiceId{}, AlwaysAccumulate: map[types.ServiceId]types.Gas{}})
	hc := newHostContext(ctx, 2)

	result := hc.Bless(9, 9, map[uint16]types.ServiceId{}, 9, map[types.ServiceId]types.Gas{})
	assert.Equal(t, uint64(HUH), result)
}

func TestBlessWritesAllFieldsForManager(t *testing.T) {
	ctx := chiContext(state.Chi{Manager: 1, Assign: map[uint16]types.ServiceId{}, AlwaysAccumulate: map[types.ServiceId]types.Gas{}})
	hc := newHostContext(ctx, 1)

	newAssign := map[uint16]types.ServiceId{0: 5}
	newAlwaysAcc := map[types.ServiceId]types.Gas{5: 1000}
	result := hc.Bless(2, 3, newAssign, 4, newAlwaysAcc)
	assert.Equal(t, uint64(OK), result)

	c := ctx.Chi.Read()
	assert.Equal(t, types.ServiceId(2), c.Manager)
	assert.Equal(t, types.ServiceId(3), c.Registrar)
	assert.Equal(t, types.ServiceId(4), c.Designate)
	assert.Equal(t, types.ServiceId(5), c.Assign[0])
	assert.Equal(t, types.Gas(1000), c.AlwaysAccumulate[5])
}

func TestAssignRejectsNonAssigner(t *testing.T) {
	ctx := chiContext(state.Chi{Assign: map[uint16]types.ServiceId{0: 1}, AlwaysAccumulate: map[types.ServiceId]types.Gas{}})
	hc := newHostContext(ctx, 2)

	result := hc.Assign(0, 9, nil)
	assert.Equal(t, uint64(HUH), result)
}

func TestAssignReplacesQueueAndHandsOffRole(t *testing.T) {
	ctx := chiContext(state.Chi{Assign: map[uint16]types.ServiceId{0: 1}, AlwaysAccumulate: map[types.ServiceId]types.Gas{}})
	ctx.Phi = state.NewPhiSnapshot(state.Phi{})
	hc := newHostContext(ctx, 1)

	queue := []state.Authorizer{{1}, {2}}
	result := hc.Assign(0, 7, queue)
	assert.Equal(t, uint64(OK), result)

	assert.Equal(t, types.ServiceId(7), ctx.Chi.Read().Assign[0])
	assert.Equal(t, queue, ctx.Phi.Read()[0])
}

func TestDesignateRejectsNonDesignate(t *testing.T) {
	ctx := chiContext(state.Chi{Designate: 1, Assign: map[uint16]types.ServiceId{}, AlwaysAccumulate: map[types.ServiceId]types.Gas{}})
	hc := newHostContext(ctx, 2)

	result := hc.Designate(9, nil)
	assert.Equal(t, uint64(HUH), result)
}

func TestDesignateReplacesValidatorsAndHandsOffRole(t *testing.T) {
	ctx := chiContext(state.Chi{Designate: 1, Assign: map[uint16]types.ServiceId{}, AlwaysAccumulate: map[types.ServiceId]types.Gas{}})
	hc := newHostContext(ctx, 1)

	validators := state.Iota{{Bandersnatch: types.Hash{1}}}
	result := hc.Designate(9, validators)
	assert.Equal(t, uint64(OK), result)
	assert.Equal(t, types.ServiceId(9), ctx.Chi.Read().Designate)
	assert.Equal(t, validators, ctx.Iota.Read())
}

func TestReassignRegistrarRejectsNonRegistrar(t *testing.T) {
	ctx := chiContext(state.Chi{Registrar: 1, Assign: map[uint16]types.ServiceId{}, AlwaysAccumulate: map[types.ServiceId]types.Gas{}})
	hc := newHostContext(ctx, 2)

	result := hc.ReassignRegistrar(9)
	assert.Equal(t, uint64(HUH), result)
}

func TestReassignRegistrarSucceedsForCurrentRegistrar(t *testing.T) {
	ctx := chiContext(state.Chi{Registrar: 1, Assign: map[uint16]types.ServiceId{}, AlwaysAccumulate: map[types.ServiceId]types.Gas{}})
	hc := newHostContext(ctx, 1)

	result := hc.ReassignRegistrar(9)
	assert.Equal(t, uint64(OK), result)
	assert.Equal(t, types.ServiceId(9), ctx.Chi.Read().Registrar)
}

func TestUpgradeHasNoPrivilegeCheck(t *testing.T) {
	acct := state.NewServiceAccount()
	ctx := newTestContext(state.Delta{1: acct})
	hc := newHostContext(ctx, 1)

	result := hc.Upgrade(types.Hash{5}, 11, 22)
	assert.Equal(t, uint64(OK), result)

	mutated := state.Account(ctx.Delta, 1)
	assert.Equal(t, types.Hash{5}, mutated.CodeHash)
	assert.Equal(t, types.Gas(11), mutated.MinGasAccumulate)
	assert.Equal(t, types.Gas(22), mutated.MinGasOnTransfer)
}

func TestEjectRejectsNonRegistrar(t *testing.T) {
	ctx := chiContext(state.Chi{Registrar: 1, Assign: map[uint16]types.ServiceId{}, AlwaysAccumulate: map[types.ServiceId]types.Gas{}})
	state.SetAccount(ctx.Delta, 2, state.NewServiceAccount())
	hc := newHostContext(ctx, 2)

	result := hc.Eject(2)
	assert.Equal(t, uint64(HUH), result)
}

func TestEjectMissingTargetIsWho(t *testing.T) {
	ctx := chiContext(state.Chi{Registrar: 1, Assign: map[uint16]types.ServiceId{}, AlwaysAccumulate: map[types.ServiceId]types.Gas{}})
	hc := newHostContext(ctx, 1)

	result := hc.Eject(2)
	assert.Equal(t, uint64(WHO), result)
}

func TestEjectTransfersBalanceAndDeletesAccount(t *testing.T) {
	ctx := chiContext(state.Chi{Registrar: 1, Assign: map[uint16]types.ServiceId{}, AlwaysAccumulate: map[types.ServiceId]types.Gas{}})
	state.SetAccount(ctx.Delta, 1, state.NewServiceAccount())
	target := state.NewServiceAccount()
	target.Balance = 75
	state.SetAccount(ctx.Delta, 2, target)
	hc := newHostContext(ctx, 1)

	result := hc.Eject(2)
	assert.Equal(t, uint64(OK), result)

	registrar := state.Account(ctx.Delta, 1)
	assert.Equal(t, types.Balance(75), registrar.Balance)
	assert.Nil(t, state.Account(ctx.Delta, 2))
}

func TestQueryMissingAccountIsNone(t *testing.T) {
	ctx := newTestContext(state.Delta{})
	hc := newHostContext(ctx, 1)
	phase, t0, t1, t2 := hc.Query(types.Hash{1})
	assert.Equal(t, uint64(NONE), phase)
	assert.Zero(t, t0)
	assert.Zero(t, t1)
	assert.Zero(t, t2)
}

func TestQueryMissingEntryIsNone(t *testing.T) {
	ctx := newTestContext(state.Delta{1: state.NewServiceAccount()})
	hc := newHostContext(ctx, 1)
	phase, _, _, _ := hc.Query(types.Hash{1})
	assert.Equal(t, uint64(NONE), phase)
}

func TestQueryReadsBackPhaseAndSlots(t *testing.T) {
	acct := state.NewServiceAccount()
	key := state.PreimageKey(1, types.Hash{1})
	acct.PreimageLookups[key] = state.PreimageStatus{Phase: state.PhaseReinstated, T0: 5, T1: 6, T2: 7}
	ctx := newTestContext(state.Delta{1: acct})
	hc := newHostContext(ctx, 1)

	phase, t0, t1, t2 := hc.Query(types.Hash{1})
	assert.Equal(t, uint64(state.PhaseReinstated), phase)
	assert.Equal(t, uint64(5), t0)
	assert.Equal(t, uint64(6), t1)
	assert.Equal(t, uint64(7), t2)
}

func TestSolicitOnAbsentEntryTreatsItAsRequested(t *testing.T) {
	acct := state.NewServiceAccount()
	ctx := newTestContext(state.Delta{1: acct})
	ctx.TimeSlot = 42
	hc := newHostContext(ctx, 1)

	result := hc.Solicit(types.Hash{1})
	assert.Equal(t, uint64(OK), result)

	key := state.PreimageKey(1, types.Hash{1})
	status := acct.PreimageLookups[key]
	assert.Equal(t, state.PreimageStatus{Phase: state.PhaseAvailable, T0: 42}, status)
}

func TestSolicitHuhOnAvailable(t *testing.T) {
	acct := state.NewServiceAccount()
	key := state.PreimageKey(1, types.Hash{1})
	acct.PreimageLookups[key] = state.PreimageStatus{Phase: state.PhaseAvailable, T0: 1}
	ctx := newTestContext(state.Delta{1: acct})
	hc := newHostContext(ctx, 1)

	result := hc.Solicit(types.Hash{1})
	assert.Equal(t, uint64(HUH), result)
}

func TestForgetHuhOnAbsentEntry(t *testing.T) {
	ctx := newTestContext(state.Delta{1: state.NewServiceAccount()})
	hc := newHostContext(ctx, 1)

	result := hc.Forget(types.Hash{1})
	assert.Equal(t, uint64(HUH), result)
}

func TestForgetRemovesRequestedEntryAndPreimageBytes(t *testing.T) {
	acct := state.NewServiceAccount()
	key := state.PreimageKey(1, types.Hash{1})
	acct.PreimageLookups[key] = state.Requested()
	acct.Preimages[key] = []byte("bytes")
	ctx := newTestContext(state.Delta{1: acct})
	hc := newHostContext(ctx, 1)

	result := hc.Forget(types.Hash{1})
	assert.Equal(t, uint64(OK), result)
	_, lookupExists := acct.PreimageLookups[key]
	_, preimageExists := acct.Preimages[key]
	assert.False(t, lookupExists)
	assert.False(t, preimageExists)
}

func TestForgetKeepsEntryWhenNotExpired(t *testing.T) {
	acct := state.NewServiceAccount()
	key := state.PreimageKey(1, types.Hash{1})
	acct.PreimageLookups[key] = state.PreimageStatus{Phase: state.PhaseRevoked, T0: 1, T1: 10}
	ctx := newTestContext(state.Delta{1: acct})
	ctx.TimeSlot = 12
	hc := newHostContext(ctx, 1)

	result := hc.Forget(types.Hash{1})
	assert.Equal(t, uint64(HUH), result)
	assert.Equal(t, state.PreimageStatus{Phase: state.PhaseRevoked, T0: 1, T1: 10}, acct.PreimageLookups[key])
}

func TestForgetReinstatedExpiredTransitionsToRevoked(t *testing.T) {
	acct := state.NewServiceAccount()
	key := state.PreimageKey(1, types.Hash{1})
	acct.PreimageLookups[key] = state.PreimageStatus{Phase: state.PhaseReinstated, T0: 1, T1: 10, T2: 12}
	ctx := newTestContext(state.Delta{1: acct})
	ctx.TimeSlot = 25 // 10 + PreimageExpungementPeriod(10) = 20 < 25
	hc := newHostContext(ctx, 1)

	result := hc.Forget(types.Hash{1})
	assert.Equal(t, uint64(OK), result)
	assert.Equal(t, state.PreimageStatus{Phase: state.PhaseRevoked, T0: 12, T1: 25}, acct.PreimageLookups[key])
}

func TestYieldThenSecondYieldIsHuh(t *testing.T) {
	ctx := newTestContext(state.Delta{})
	hc := newHostContext(ctx, 1)

	first := hc.Yield(types.Hash{1})
	assert.Equal(t, uint64(OK), first)
	require.NotNil(t, hc.Output)
	assert.Equal(t, types.Hash{1}, *hc.Output)

	second := hc.Yield(types.Hash{2})
	assert.Equal(t, uint64(HUH), second)
	assert.Equal(t, types.Hash{1}, *hc.Output, "first yield's output is not overwritten")
}

func TestCheckpointReportsGasSpent(t *testing.T) {
	ctx := newTestContext(state.Delta{})
	hc := NewHostContext(ctx, 1, testConfig(), nil, 1000)
	hc.GasRemaining = 600

	spent := hc.Checkpoint(1000)
	assert.Equal(t, uint64(400), spent)
}

func TestCheckpointZeroWhenRemainingExceedsLimit(t *testing.T) {
	ctx := newTestContext(state.Delta{})
	hc := NewHostContext(ctx, 1, testConfig(), nil, 1000)
	hc.GasRemaining = 1000

	spent := hc.Checkpoint(500)
	assert.Equal(t, uint64(0), spent)
}
