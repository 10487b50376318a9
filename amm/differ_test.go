package amm

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffIdenticalSnapshots(t *testing.T) {
	pool := initializedPool(t)
	diff := Diff(pool.Snapshot(), pool.Snapshot())
	assert.True(t, diff.IsEmpty())
}

func TestDiffDetectsChanges(t *testing.T) {
	pool := initializedPool(t)
	before := pool.Snapshot()

	_, err := pool.Swap(Token0, big.NewInt(1000))
	require.NoError(t, err)
	after := pool.Snapshot()

	diff := Diff(before, after)
	require.False(t, diff.IsEmpty())

	// A swap moves reserves, k and prices but never liquidity or providers.
	require.NotNil(t, diff.Reserve0)
	require.NotNil(t, diff.Reserve1)
	require.NotNil(t, diff.KValue)
	require.NotNil(t, diff.Price0)
	require.NotNil(t, diff.Price1)
	assert.Nil(t, diff.TotalLiquidity)
	assert.Nil(t, diff.LockedShares)
	assert.Nil(t, diff.ProviderCount)

	assert.Zero(t, big.NewInt(11000).Cmp(diff.Reserve0))
	assert.Zero(t, big.NewInt(18187).Cmp(diff.Reserve1))
}

func TestDiffDetectsProviderChange(t *testing.T) {
	pool := initializedPool(t)
	before := pool.Snapshot()

	_, err := pool.AddLiquidity(big.NewInt(5000), big.NewInt(8000), "Bob")
	require.NoError(t, err)

	diff := Diff(before, pool.Snapshot())
	require.NotNil(t, diff.ProviderCount)
	assert.Equal(t, 2, *diff.ProviderCount)
	require.NotNil(t, diff.TotalLiquidity)
	assert.Zero(t, big.NewInt(19798).Cmp(diff.TotalLiquidity))
}

func TestDiffSharesNoMemoryWithInputs(t *testing.T) {
	pool := initializedPool(t)
	before := pool.Snapshot()

	_, err := pool.Swap(Token0, big.NewInt(1000))
	require.NoError(t, err)
	after := pool.Snapshot()

	diff := Diff(before, after)
	require.NotNil(t, diff.Reserve0)

	// Mutating the source snapshot must not leak into the diff.
	after.Reserve0.SetInt64(-1)
	assert.Zero(t, big.NewInt(11000).Cmp(diff.Reserve0))
}

func TestPatchRoundTrip(t *testing.T) {
	pool := initializedPool(t)
	before := pool.Snapshot()

	_, err := pool.AddLiquidity(big.NewInt(5000), big.NewInt(8000), "Bob")
	require.NoError(t, err)
	_, err = pool.Swap(Token1, big.NewInt(2500))
	require.NoError(t, err)
	after := pool.Snapshot()

	patched := Patch(before, Diff(before, after))
	assert.True(t, patched.Equal(after), "patch(before, diff) = %s, want %s", patched, after)
}

func TestPatchDoesNotMutatePrevious(t *testing.T) {
	pool := initializedPool(t)
	before := pool.Snapshot()
	pristine := before.Clone()

	_, err := pool.Swap(Token0, big.NewInt(1000))
	require.NoError(t, err)

	patched := Patch(before, Diff(before, pool.Snapshot()))
	assert.True(t, before.Equal(pristine), "previous snapshot was mutated by Patch")

	// And the patched snapshot owns its memory.
	patched.Reserve0.SetInt64(-1)
	assert.True(t, before.Equal(pristine))
}

func TestPatchEmptyDiffIsIdentity(t *testing.T) {
	pool := initializedPool(t)
	snap := pool.Snapshot()

	patched := Patch(snap, SnapshotDiff{})
	assert.True(t, patched.Equal(snap))
}

func TestSnapshotCloneIndependence(t *testing.T) {
	pool := initializedPool(t)
	snap := pool.Snapshot()
	clone := snap.Clone()

	snap.Reserve0.SetInt64(-1)
	snap.Price0.SetInt64(-1)
	assert.Zero(t, big.NewInt(10000).Cmp(clone.Reserve0))
	assert.Zero(t, clone.Price0.Cmp(big.NewRat(2, 1)))
}

func TestSnapshotIsDeepCopyOfPool(t *testing.T) {
	pool := initializedPool(t)
	snap := pool.Snapshot()

	// Mutating the snapshot must not reach back into the pool.
	snap.Reserve0.SetInt64(-1)
	snap.TotalLiquidity.SetInt64(-1)
	fresh := pool.Snapshot()
	assert.Zero(t, big.NewInt(10000).Cmp(fresh.Reserve0))
	assert.Zero(t, big.NewInt(14142).Cmp(fresh.TotalLiquidity))
}
