package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamzig/accumulate/state"
	"github.com/jamzig/accumulate/types"
)

func hashOf(b byte) types.Hash {
	var h types.Hash
	h[0] = b
	return h
}

func reportWithHash(h types.Hash, prereqs ...types.Hash) types.WorkReport {
	return types.WorkReport{
		PackageSpec: types.PackageSpec{Hash: h},
		Context:     types.Context{Prerequisites: prereqs},
	}
}

func TestResolveImmediateReportsPassThrough(t *testing.T) {
	xi := state.NewXi(4)
	theta := state.NewTheta(4)

	r := reportWithHash(hashOf(1))
	result := Resolve(xi, theta, []types.WorkReport{r}, 0, nil)

	require.Len(t, result.Accumulatable, 1)
	assert.Equal(t, hashOf(1), result.Accumulatable[0].PackageHash())
	assert.Empty(t, result.Residual)
}

func TestResolveDependencyChainOrdersByFreedom(t *testing.T) {
	xi := state.NewXi(4)
	theta := state.NewTheta(4)

	a := reportWithHash(hashOf(1))
	b := reportWithHash(hashOf(2), hashOf(1))

	result := Resolve(xi, theta, []types.WorkReport{a, b}, 0, nil)

	require.Len(t, result.Accumulatable, 2)
	assert.Equal(t, hashOf(1), result.Accumulatable[0].PackageHash())
	assert.Equal(t, hashOf(2), result.Accumulatable[1].PackageHash())
	assert.Empty(t, result.Residual)
}

func TestResolveDropsAlreadyAccumulatedPrerequisite(t *testing.T) {
	xi := state.NewXi(4)
	xi.AddWorkPackage(hashOf(1))
	theta := state.NewTheta(4)

	b := reportWithHash(hashOf(2), hashOf(1))
	result := Resolve(xi, theta, []types.WorkReport{b}, 0, nil)

	require.Len(t, result.Accumulatable, 1)
	assert.Equal(t, hashOf(2), result.Accumulatable[0].PackageHash())
	assert.Empty(t, result.Residual)
}

func TestResolveDropsReportAlreadyInHistory(t *testing.T) {
	xi := state.NewXi(4)
	xi.AddWorkPackage(hashOf(1))
	theta := state.NewTheta(4)

	a := reportWithHash(hashOf(1), hashOf(9))
	result := Resolve(xi, theta, []types.WorkReport{a}, 0, nil)

	assert.Empty(t, result.Accumulatable)
	assert.Empty(t, result.Residual)
}

func TestResolveLeavesUnresolvableDependencyInResidual(t *testing.T) {
	xi := state.NewXi(4)
	theta := state.NewTheta(4)

	b := reportWithHash(hashOf(2), hashOf(99))
	result := Resolve(xi, theta, []types.WorkReport{b}, 0, nil)

	assert.Empty(t, result.Accumulatable)
	require.Len(t, result.Residual, 1)
	assert.Equal(t, hashOf(2), result.Residual[0].Hash())
}

func TestResolveCarriesPendingQueueFromTheta(t *testing.T) {
	xi := state.NewXi(4)
	theta := state.NewTheta(4)

	pending := reportWithHash(hashOf(3))
	theta.SetSlot(0, []state.WorkReportAndDeps{{
		Report:    pending,
		Remaining: map[types.Hash]struct{}{},
	}})

	result := Resolve(xi, theta, nil, 0, nil)

	require.Len(t, result.Accumulatable, 1)
	assert.Equal(t, hashOf(3), result.Accumulatable[0].PackageHash())
}
