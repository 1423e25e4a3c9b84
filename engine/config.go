// Package engine wires the Dependency Resolver, Outer Accumulation, Chi
// Merger, Deferred-Transfer Dispatch, Statistics & Root, History Tracker,
// and Queue State Updater into the single per-block Accumulate operation
// (spec.md §1 "Data flow per block").
package engine

import (
	"github.com/jamzig/accumulate/hostcall"
	"github.com/jamzig/accumulate/state"
)

// Config is the full chain-constant record the engine and everything it
// drives needs, replacing the compile-time generics over chain parameters
// the teacher uses for consensus constants (Design Note §9).
type Config struct {
	EpochLength int

	HostCall hostcall.Config

	PreimageCacheSize int
}

// PosteriorState is the full (delta, iota, phi, chi, xi, theta) tuple an
// Accumulate call evolves, grounded on the teacher's pattern of returning
// an explicit posterior state value rather than mutating a shared struct
// in place.
type PosteriorState struct {
	Delta state.Delta
	Iota  state.Iota
	Phi   state.Phi
	Chi   state.Chi
	Xi    *state.Xi
	Theta *state.Theta
}
