// Package chi implements the Chi Merger (spec.md §4.6): after a block's
// services have all run, reconciles the manager's writes to privileged
// fields against the privileged role-holders' own self-edits using the
// rule R(o, a, b) = b when a == o, else a.
package chi

import (
	"github.com/jamzig/accumulate/state"
	"github.com/jamzig/accumulate/types"
)

// Merge computes the posterior chi for one block. original is the
// pre-block value. postByService holds, for every service that ran this
// block and whose own context clone's chi dimension might differ from
// original, that clone's final Chi.Read() value; a service absent from
// the map is treated as not having run (spec.md §4.6: "If the manager did
// not accumulate this block, none of its writes apply" — the same
// absence rule applies symmetrically to each role's own self-edit).
func Merge(original state.Chi, postByService map[types.ServiceId]state.Chi) state.Chi {
	out := state.CloneChi(original)

	managerPost, managerRan := postByService[original.Manager]

	// manager and always_accumulate are taken directly from the
	// manager's write, not reconciled by R, and only if it ran.
	if managerRan {
		out.Manager = managerPost.Manager
		out.AlwaysAccumulate = managerPost.AlwaysAccumulate
	}

	for core, writer := range original.Assign {
		a := original.Assign[core]
		if managerRan {
			a = managerPost.Assign[core]
		}
		b := a
		if post, ok := postByService[writer]; ok {
			b = post.Assign[core]
		}
		out.Assign[core] = reconcile(original.Assign[core], a, b)
	}

	{
		o := original.Designate
		a := o
		if managerRan {
			a = managerPost.Designate
		}
		b := a
		if post, ok := postByService[o]; ok {
			b = post.Designate
		}
		out.Designate = reconcile(o, a, b)
	}

	{
		o := original.Registrar
		a := o
		if managerRan {
			a = managerPost.Registrar
		}
		b := a
		if post, ok := postByService[o]; ok {
			b = post.Registrar
		}
		out.Registrar = reconcile(o, a, b)
	}

	return out
}

// reconcile implements R(o, a, b) = b when a == o, else a.
func reconcile[T comparable](o, a, b T) T {
	if a == o {
		return b
	}
	return a
}
