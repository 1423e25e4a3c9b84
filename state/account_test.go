package state

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jamzig/accumulate/types"
)

func TestSolicitRequestedBecomesAvailable(t *testing.T) {
	next, ok := Requested().Solicit(10)
	assert.True(t, ok)
	assert.Equal(t, PreimageStatus{Phase: PhaseAvailable, T0: 10}, next)
}

func TestSolicitRevokedBecomesReinstated(t *testing.T) {
	s := PreimageStatus{Phase: PhaseRevoked, T0: 5, T1: 8}
	next, ok := s.Solicit(20)
	assert.True(t, ok)
	assert.Equal(t, PreimageStatus{Phase: PhaseReinstated, T0: 5, T1: 8, T2: 20}, next)
}

func TestSolicitAvailableIsHuh(t *testing.T) {
	s := PreimageStatus{Phase: PhaseAvailable, T0: 1}
	_, ok := s.Solicit(10)
	assert.False(t, ok)
}

func TestSolicitReinstatedIsHuh(t *testing.T) {
	s := PreimageStatus{Phase: PhaseReinstated, T0: 1, T1: 2, T2: 3}
	_, ok := s.Solicit(10)
	assert.False(t, ok)
}

func TestForgetRequestedIsRemoved(t *testing.T) {
	next, removed, ok := Requested().Forget(10, 5)
	assert.True(t, ok)
	assert.True(t, removed)
	assert.Equal(t, PreimageStatus{}, next)
}

func TestForgetAvailableBecomesRevoked(t *testing.T) {
	s := PreimageStatus{Phase: PhaseAvailable, T0: 3}
	next, removed, ok := s.Forget(10, 5)
	assert.True(t, ok)
	assert.False(t, removed)
	assert.Equal(t, PreimageStatus{Phase: PhaseRevoked, T0: 3, T1: 10}, next)
}

func TestForgetRevokedStaysUntilExpiry(t *testing.T) {
	s := PreimageStatus{Phase: PhaseRevoked, T0: 1, T1: 10}
	next, removed, ok := s.Forget(12, 5) // 10+5 = 15, not < 12
	assert.False(t, ok)
	assert.False(t, removed)
	assert.Equal(t, s, next)
}

func TestForgetRevokedRemovedAfterExpiry(t *testing.T) {
	s := PreimageStatus{Phase: PhaseRevoked, T0: 1, T1: 10}
	_, removed, ok := s.Forget(16, 5) // 10+5 = 15 < 16
	assert.True(t, ok)
	assert.True(t, removed)
}

// Regression: an expired PhaseReinstated entry must transition back to
// PhaseRevoked (T0 carried from T2, T1 set to the current slot), the exact
// 2-slot shape spec.md's [t0,t1,t2] -> [t2,t,null] transition describes —
// not back to PhaseAvailable, which would silently drop the new T1 and
// leave a later solicit() on the same key unable to reach PhaseReinstated
// again (Solicit only defines a transition out of PhaseRevoked).
func TestForgetReinstatedExpiredBecomesRevokedNotAvailable(t *testing.T) {
	s := PreimageStatus{Phase: PhaseReinstated, T0: 1, T1: 10, T2: 12}
	next, removed, ok := s.Forget(16, 3) // 10+3 = 13 < 16
	assert.True(t, ok)
	assert.False(t, removed)
	assert.Equal(t, PreimageStatus{Phase: PhaseRevoked, T0: 12, T1: 16}, next)

	// And that shape must still be solicitable, unlike a bare PhaseAvailable
	// would make it (Solicit has no PhaseAvailable case).
	reSolicited, ok := next.Solicit(20)
	assert.True(t, ok)
	assert.Equal(t, PreimageStatus{Phase: PhaseReinstated, T0: 12, T1: 16, T2: 20}, reSolicited)
}

func TestForgetReinstatedStaysUntilExpiry(t *testing.T) {
	s := PreimageStatus{Phase: PhaseReinstated, T0: 1, T1: 10, T2: 12}
	next, removed, ok := s.Forget(12, 5) // 10+5=15, not < 12
	assert.False(t, ok)
	assert.False(t, removed)
	assert.Equal(t, s, next)
}

func TestApplyProvidedPreimageRequestedBecomesAvailable(t *testing.T) {
	next, ok := Requested().ApplyProvidedPreimage(7)
	assert.True(t, ok)
	assert.Equal(t, PreimageStatus{Phase: PhaseAvailable, T0: 7}, next)
}

func TestApplyProvidedPreimageRevokedBecomesReinstated(t *testing.T) {
	s := PreimageStatus{Phase: PhaseRevoked, T0: 1, T1: 5}
	next, ok := s.ApplyProvidedPreimage(9)
	assert.True(t, ok)
	assert.Equal(t, PreimageStatus{Phase: PhaseReinstated, T0: 1, T1: 5, T2: 9}, next)
}

func TestApplyProvidedPreimageAvailableIsNoop(t *testing.T) {
	s := PreimageStatus{Phase: PhaseAvailable, T0: 1}
	_, ok := s.ApplyProvidedPreimage(9)
	assert.False(t, ok)
}

func TestIsAvailable(t *testing.T) {
	assert.False(t, PreimageStatus{Phase: PhaseRequested}.IsAvailable())
	assert.True(t, PreimageStatus{Phase: PhaseAvailable}.IsAvailable())
	assert.False(t, PreimageStatus{Phase: PhaseRevoked}.IsAvailable())
	assert.True(t, PreimageStatus{Phase: PhaseReinstated}.IsAvailable())
}

func TestThresholdBalanceCombinesBaseItemsAndOctets(t *testing.T) {
	a := NewServiceAccount()
	a.Storage[[31]byte{1}] = []byte("hello")
	a.PreimageLookups[[31]byte{2}] = PreimageStatus{Phase: PhaseAvailable}

	c := BalanceConstants{BaseDeposit: 100, PerItem: 10, PerOctet: 2}
	// items = 2 (one storage entry, one lookup entry), octets = 5 ("hello")
	assert.Equal(t, uint64(100+10*2+2*5), a.ThresholdBalance(c))
}

func TestThresholdBalanceSaturatesInsteadOfWrapping(t *testing.T) {
	a := NewServiceAccount()
	for i := 0; i < 1000; i++ {
		a.Storage[[31]byte{byte(i), byte(i >> 8)}] = make([]byte, 1000)
	}
	c := BalanceConstants{BaseDeposit: 0, PerItem: 0, PerOctet: ^uint64(0)}
	assert.Equal(t, ^uint64(0), a.ThresholdBalance(c))
}

func TestWithinThreshold(t *testing.T) {
	a := NewServiceAccount()
	a.Balance = types.Balance(50)
	c := BalanceConstants{BaseDeposit: 100}
	assert.False(t, a.WithinThreshold(c))

	a.Balance = 100
	assert.True(t, a.WithinThreshold(c))
}

func TestCloneIsIndependentOfOriginal(t *testing.T) {
	a := NewServiceAccount()
	a.Storage[[31]byte{1}] = []byte("original")
	a.Balance = 42

	clone := a.Clone()
	clone.Storage[[31]byte{1}][0] = 'X'
	clone.Balance = 99

	assert.Equal(t, "original", string(a.Storage[[31]byte{1}]))
	assert.Equal(t, types.Balance(42), a.Balance)
}

func TestCloneNilReceiverIsNil(t *testing.T) {
	var a *ServiceAccount
	assert.Nil(t, a.Clone())
}
