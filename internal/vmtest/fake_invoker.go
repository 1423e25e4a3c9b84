// Package vmtest provides a scriptable fake vm.Invoker for exercising
// exec/engine tests without a real WebAssembly-like VM (spec.md §1 places
// the VM itself out of scope; SPEC_FULL.md §12 calls for a hand-authored
// fake in its place: a struct whose per-invocation behavior a test
// configures before invoking the code under test).
package vmtest

import (
	"github.com/jamzig/accumulate/vm"
)

// Script is one scripted invocation outcome, keyed by the code bytes
// passed to Invoke (tests use a distinct one-byte "program" per case).
type Script func(code []byte, inv vm.Invocation) (vm.Result, error)

// FakeInvoker is a vm.Invoker whose behavior per call is supplied by the
// test as a Script, or a Default applied when no per-code script matches.
type FakeInvoker struct {
	Scripts map[string]Script
	Default Script
	Calls   []vm.Invocation
}

// NewFakeInvoker returns an invoker that halts immediately with zero gas
// used and no output unless configured otherwise.
func NewFakeInvoker() *FakeInvoker {
	return &FakeInvoker{
		Scripts: make(map[string]Script),
		Default: func(code []byte, inv vm.Invocation) (vm.Result, error) {
			return vm.Result{Exit: vm.ExitHalt}, nil
		},
	}
}

// On registers script for invocations whose code equals key.
func (f *FakeInvoker) On(key string, script Script) {
	f.Scripts[string(key)] = script
}

// Invoke implements vm.Invoker.
func (f *FakeInvoker) Invoke(code []byte, inv vm.Invocation) (vm.Result, error) {
	f.Calls = append(f.Calls, inv)
	if script, ok := f.Scripts[string(code)]; ok {
		return script(code, inv)
	}
	return f.Default(code, inv)
}

// CallHostCall is a helper a Script uses to drive one host-call id against
// the dispatch table the engine built for this invocation, returning the
// resulting registers and an exit status if the call terminated.
func CallHostCall(inv vm.Invocation, callID uint32, regs vm.Registers) (vm.Registers, *vm.ExitStatus) {
	call, ok := inv.Calls[callID]
	if !ok {
		return regs, nil
	}
	return call(regs)
}
