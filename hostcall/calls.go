package hostcall

import (
	"github.com/jamzig/accumulate/state"
	"github.com/jamzig/accumulate/types"
)

// Gas implements the `gas` call: R7 <- remaining gas after deduction.
func (hc *HostContext) Gas() uint64 {
	return uint64(hc.GasRemaining)
}

// Lookup implements `lookup(svc*, hash, out_ptr, off, lim)`: resolves svc
// (NONE or 0 => current), finds the preimage by hash, writes the requested window
// via mem, and returns the full preimage length (NONE if missing).
func (hc *HostContext) Lookup(svc uint64, hash types.Hash, mem Memory, outPtr, off, lim uint64) (result uint64, faulted bool) {
	id := hc.resolveService(svc)
	acct := state.Account(hc.Ctx.Delta, id)
	if acct == nil {
		return uint64(NONE), false
	}

	key := PreimageKeyFor(id, hash)
	data, ok := hc.preimageBytes(acct, key)
	if !ok {
		return uint64(NONE), false
	}

	length, faulted := writePartial(mem, outPtr, off, lim, data)
	return length, faulted
}

// preimageBytes resolves a preimage's bytes, consulting the read-through
// cache before the account's authoritative map.
func (hc *HostContext) preimageBytes(acct *state.ServiceAccount, key [31]byte) ([]byte, bool) {
	if hc.Cache != nil {
		if data, ok := hc.Cache.Get(key); ok {
			return data, true
		}
	}
	data, ok := acct.Preimages[key]
	if ok && hc.Cache != nil {
		hc.Cache.Put(key, data)
	}
	return data, ok
}

// Read implements `read(svc*, key, out_ptr, off, lim)` over storage,
// the same partial-read pattern as Lookup.
func (hc *HostContext) Read(svc uint64, key []byte, mem Memory, outPtr, off, lim uint64) (result uint64, faulted bool) {
	id := hc.resolveService(svc)
	acct := state.Account(hc.Ctx.Delta, id)
	if acct == nil {
		return uint64(NONE), false
	}

	sk := state.StorageKey(id, key)
	data, ok := acct.Storage[sk]
	if !ok {
		return uint64(NONE), false
	}

	length, faulted := writePartial(mem, outPtr, off, lim, data)
	return length, faulted
}

// Write implements `write(key, val)`: inserts or removes (val_len==0) the
// structured key under the caller's own account, refusing with FULL if
// the post-write threshold balance would exceed the account's balance.
// On success, returns the prior value's length (or NONE if it was absent).
func (hc *HostContext) Write(key []byte, val []byte) uint64 {
	acct := state.MutateAccount(hc.Ctx.Delta, hc.Caller)
	sk := state.StorageKey(hc.Caller, key)

	prior, hadPrior := acct.Storage[sk]

	if len(val) == 0 {
		delete(acct.Storage, sk)
	} else {
		dup := make([]byte, len(val))
		copy(dup, val)
		acct.Storage[sk] = dup
	}

	if !acct.WithinThreshold(hc.Config.Balances) {
		// Roll back: the write must have zero effect on a FULL rejection
		// (spec.md §5 "Transactionality").
		if hadPrior {
			acct.Storage[sk] = prior
		} else {
			delete(acct.Storage, sk)
		}
		return uint64(FULL)
	}

	if !hadPrior {
		return uint64(NONE)
	}
	return uint64(len(prior))
}

// Info implements `info(svc*, out_ptr, off, lim)`.
func (hc *HostContext) Info(svc uint64, mem Memory, outPtr, off, lim uint64) (result uint64, faulted bool) {
	id := hc.resolveService(svc)
	acct := state.Account(hc.Ctx.Delta, id)
	if acct == nil {
		return uint64(NONE), false
	}
	encoded := BuildServiceInfo(acct, hc.Config.Balances).Encode()
	length, faulted := writePartial(mem, outPtr, off, lim, encoded)
	return length, faulted
}

// New implements `new(code_hash, min_acc_gas, min_xfer_gas)`: deducts the
// configured initial balance from the caller, materializes a new account
// at a freshly generated candidate id, and installs a preimage-lookup
// request for its code.
func (hc *HostContext) New(codeHash types.Hash, minAccGas, minXferGas types.Gas) uint64 {
	caller := state.MutateAccount(hc.Ctx.Delta, hc.Caller)
	initial := hc.Config.NewServiceInitialBalance

	if uint64(caller.Balance) < uint64(initial) {
		return uint64(CASH)
	}

	delta := hc.Ctx.Delta.Read()
	taken := func(id types.ServiceId) bool {
		_, ok := delta[id]
		return ok
	}
	candidate := CandidateServiceID(hc.Caller, hc.Ctx.Entropy, hc.Ctx.TimeSlot, taken)

	caller.Balance -= initial

	child := state.NewServiceAccount()
	child.CodeHash = codeHash
	child.Balance = initial
	child.MinGasAccumulate = minAccGas
	child.MinGasOnTransfer = minXferGas
	child.CreationSlot = hc.Ctx.TimeSlot
	child.LastAccumulationSlot = hc.Ctx.TimeSlot
	child.ParentService = hc.Caller

	lookupKey := state.PreimageKey(candidate, codeHash)
	child.PreimageLookups[lookupKey] = state.Requested()

	state.SetAccount(hc.Ctx.Delta, candidate, child)

	return uint64(candidate)
}

// Transfer implements `transfer(dst, amount, gas_limit, memo)`: validates
// destination existence, gas floor, and balance, then debits the caller
// and enqueues a DeferredTransfer for the second pass (spec.md §4.8).
func (hc *HostContext) Transfer(dst types.ServiceId, amount types.Balance, gasLimit types.Gas, memo [types.MemoSize]byte) uint64 {
	dstAcct := state.Account(hc.Ctx.Delta, dst)
	if dstAcct == nil {
		return uint64(WHO)
	}
	if gasLimit < dstAcct.MinGasOnTransfer {
		return uint64(LOW)
	}

	caller := state.MutateAccount(hc.Ctx.Delta, hc.Caller)
	if uint64(caller.Balance) < uint64(amount) {
		return uint64(CASH)
	}

	caller.Balance -= amount
	hc.Transfers = append(hc.Transfers, types.DeferredTransfer{
		Sender:      hc.Caller,
		Destination: dst,
		Amount:      amount,
		Memo:        memo,
		GasLimit:    gasLimit,
	})
	return uint64(OK)
}

// PreimageKeyFor is a small helper so Lookup can compute the structured
// preimage key for an arbitrary resolved service id (not just the
// caller), mirroring state.PreimageKey.
func PreimageKeyFor(id types.ServiceId, hash types.Hash) [31]byte {
	return state.PreimageKey(id, hash)
}
