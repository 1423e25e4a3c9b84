package state

// Snapshot[T] is a clone-on-write view over a value of type T, following
// Design Note §9 ("Snapshot with commit/deepClone ... express as an
// explicit Snapshot<T> abstraction with read()/mutate()/commit()/fork()").
//
// read() and mutate() distinguish shared access from owned, about-to-diverge
// access: mutate() triggers the copy-on-write clone the first time it is
// called on a given Snapshot, after which further mutations are free.
// commit() folds the (possibly mutated) value back into the parent that
// fork() was called on; fork() on its own produces an independent child
// that can be discarded without affecting the parent.
type Snapshot[T any] struct {
	value   T
	cloner  func(T) T
	owned   bool
	parent  *Snapshot[T]
}

// NewSnapshot wraps an initial value as a root snapshot with no parent.
// cloner must produce a deep copy of T suitable for copy-on-write branching.
func NewSnapshot[T any](value T, cloner func(T) T) *Snapshot[T] {
	return &Snapshot[T]{value: value, cloner: cloner, owned: true}
}

// Read returns a read-only view of the current value. Callers must not
// mutate the returned value in place; use Mutate for that.
func (s *Snapshot[T]) Read() T {
	return s.value
}

// Mutate returns a pointer to the snapshot's value for in-place mutation,
// cloning first if this snapshot does not yet own an independent copy
// (i.e. it was produced by Fork and hasn't diverged from its parent yet).
func (s *Snapshot[T]) Mutate() *T {
	if !s.owned {
		s.value = s.cloner(s.value)
		s.owned = true
	}
	return &s.value
}

// Fork produces an independent child snapshot. The child shares the
// parent's value until the child's Mutate is first called, at which point
// it clones — true copy-on-write, avoiding an eager deep clone on every
// fork of a context that many services will touch.
func (s *Snapshot[T]) Fork() *Snapshot[T] {
	return &Snapshot[T]{value: s.value, cloner: s.cloner, owned: false, parent: s}
}

// DeepClone eagerly clones the current value into a brand-new root
// snapshot with no parent, for a caller that needs a fully independent
// branch up front. Per-service context cloning
// (AccumulationContext.DeepClone) does not use it; it uses Fork.
func (s *Snapshot[T]) DeepClone() *Snapshot[T] {
	return &Snapshot[T]{value: s.cloner(s.value), cloner: s.cloner, owned: true}
}

// Commit folds this snapshot's value back into its parent (the Snapshot
// that Fork produced it from). Committing a root snapshot (no parent) is a
// no-op: its value already is the canonical value.
func (s *Snapshot[T]) Commit() {
	if s.parent == nil {
		return
	}
	s.parent.value = s.value
	s.parent.owned = true
}
