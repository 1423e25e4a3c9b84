// Package exec implements Single-Service and Parallelised Accumulation
// (spec.md §4.3, §4.4): assembling per-service operands, selecting a gas
// limit, invoking the VM, and fanning the per-batch work out across
// services while keeping each one's execution isolated to its own context
// clone.
package exec

import "github.com/jamzig/accumulate/types"

// CodeProvider resolves a service's code preimage by its code hash
// (spec.md §4.4: "The VM must be provided the service's code preimage
// looked up by code_hash; absence yields a code-unavailable result").
type CodeProvider interface {
	CodeFor(codeHash types.Hash) ([]byte, bool)
}
