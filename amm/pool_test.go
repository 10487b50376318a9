package amm

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initializedPool seeds a fresh 10000/20000 pool for Alice. The geometric
// mean of the deposits is 14142, of which 1000 shares stay locked.
func initializedPool(t *testing.T) *Pool {
	t.Helper()
	pool := New()
	shares, err := pool.Initialize(big.NewInt(10000), big.NewInt(20000), "Alice")
	require.NoError(t, err)
	require.Zero(t, big.NewInt(13142).Cmp(shares))
	return pool
}

func TestInitialize(t *testing.T) {
	testCases := []struct {
		name           string
		amount0        *big.Int
		amount1        *big.Int
		provider       string
		expectedShares *big.Int
		expectedErr    error
		expectedKind   error
	}{
		{
			name:           "geometric mean minus locked minimum",
			amount0:        big.NewInt(10000),
			amount1:        big.NewInt(20000),
			provider:       "Alice",
			expectedShares: big.NewInt(13142),
		},
		{
			name:           "barely above the locked minimum",
			amount0:        big.NewInt(1001),
			amount1:        big.NewInt(1001),
			provider:       "Alice",
			expectedShares: big.NewInt(1),
		},
		{
			name:         "product below minimum squared",
			amount0:      big.NewInt(100),
			amount1:      big.NewInt(100),
			provider:     "Alice",
			expectedErr:  ErrInitialLiquidityTooSmall,
			expectedKind: ErrRuleViolation,
		},
		{
			name:         "liquidity equals locked minimum",
			amount0:      big.NewInt(1000),
			amount1:      big.NewInt(1000),
			provider:     "Alice",
			expectedErr:  ErrInitialLiquidityTooSmall,
			expectedKind: ErrRuleViolation,
		},
		{
			name:         "nil amount",
			amount0:      nil,
			amount1:      big.NewInt(20000),
			provider:     "Alice",
			expectedErr:  ErrNilAmount,
			expectedKind: ErrInvalidArgument,
		},
		{
			name:         "zero amount",
			amount0:      big.NewInt(10000),
			amount1:      big.NewInt(0),
			provider:     "Alice",
			expectedErr:  ErrNonPositiveAmount,
			expectedKind: ErrInvalidArgument,
		},
		{
			name:         "empty provider",
			amount0:      big.NewInt(10000),
			amount1:      big.NewInt(20000),
			provider:     "",
			expectedErr:  ErrEmptyProvider,
			expectedKind: ErrInvalidArgument,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pool := New()
			shares, err := pool.Initialize(tc.amount0, tc.amount1, tc.provider)
			if tc.expectedErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.expectedErr)
				assert.ErrorIs(t, err, tc.expectedKind)
				assert.False(t, pool.Initialized(), "failed initialize must not activate the pool")
				return
			}
			require.NoError(t, err)
			assert.Zero(t, tc.expectedShares.Cmp(shares))
			assert.True(t, pool.Initialized())
		})
	}
}

func TestInitializeSnapshotReportsDeposits(t *testing.T) {
	pool := initializedPool(t)
	snap := pool.Snapshot()

	assert.Zero(t, big.NewInt(10000).Cmp(snap.Reserve0))
	assert.Zero(t, big.NewInt(20000).Cmp(snap.Reserve1))
	assert.Zero(t, big.NewInt(14142).Cmp(snap.TotalLiquidity))
	assert.Zero(t, big.NewInt(200_000_000).Cmp(snap.KValue))
	assert.Zero(t, big.NewInt(MinimumLiquidity).Cmp(snap.LockedShares))
	assert.Equal(t, 1, snap.ProviderCount, "locked allocation must not count as a provider")
}

func TestInitializeTwiceFails(t *testing.T) {
	pool := initializedPool(t)
	before := pool.Snapshot()

	_, err := pool.Initialize(big.NewInt(5000), big.NewInt(5000), "Bob")
	require.ErrorIs(t, err, ErrAlreadyInitialized)
	assert.True(t, before.Equal(pool.Snapshot()), "failed initialize must not mutate state")
}

func TestAddLiquidity(t *testing.T) {
	pool := initializedPool(t)

	// Bob deposits off-ratio: token1 is the limiting side, so most of the
	// surplus token0 comes back as a refund.
	result, err := pool.AddLiquidity(big.NewInt(5000), big.NewInt(8000), "Bob")
	require.NoError(t, err)

	assert.Zero(t, big.NewInt(5656).Cmp(result.Shares))
	assert.Zero(t, big.NewInt(3999).Cmp(result.Used0))
	assert.Zero(t, big.NewInt(7998).Cmp(result.Used1))
	assert.Zero(t, big.NewInt(1001).Cmp(result.Refund0))
	assert.Zero(t, big.NewInt(2).Cmp(result.Refund1))

	// used + refund must account for every unit deposited.
	assert.Zero(t, big.NewInt(5000).Cmp(new(big.Int).Add(result.Used0, result.Refund0)))
	assert.Zero(t, big.NewInt(8000).Cmp(new(big.Int).Add(result.Used1, result.Refund1)))

	snap := pool.Snapshot()
	assert.Zero(t, big.NewInt(13999).Cmp(snap.Reserve0))
	assert.Zero(t, big.NewInt(27998).Cmp(snap.Reserve1))
	assert.Zero(t, big.NewInt(19798).Cmp(snap.TotalLiquidity))
	assert.Equal(t, 2, snap.ProviderCount)
	assert.Zero(t, big.NewInt(5656).Cmp(pool.SharesOf("Bob")))
}

func TestAddLiquidityErrors(t *testing.T) {
	testCases := []struct {
		name         string
		setup        func(t *testing.T) *Pool
		amount0      *big.Int
		amount1      *big.Int
		provider     string
		expectedErr  error
		expectedKind error
	}{
		{
			name:         "pool not initialized",
			setup:        func(t *testing.T) *Pool { return New() },
			amount0:      big.NewInt(5000),
			amount1:      big.NewInt(8000),
			provider:     "Bob",
			expectedErr:  ErrNotInitialized,
			expectedKind: ErrRuleViolation,
		},
		{
			name:         "contribution floors to zero shares",
			setup:        initializedPool,
			amount0:      big.NewInt(1),
			amount1:      big.NewInt(1),
			provider:     "Bob",
			expectedErr:  ErrLiquidityTooSmall,
			expectedKind: ErrRuleViolation,
		},
		{
			name:         "nil amount",
			setup:        initializedPool,
			amount0:      nil,
			amount1:      big.NewInt(8000),
			provider:     "Bob",
			expectedErr:  ErrNilAmount,
			expectedKind: ErrInvalidArgument,
		},
		{
			name:         "negative amount",
			setup:        initializedPool,
			amount0:      big.NewInt(5000),
			amount1:      big.NewInt(-1),
			provider:     "Bob",
			expectedErr:  ErrNonPositiveAmount,
			expectedKind: ErrInvalidArgument,
		},
		{
			name:         "empty provider",
			setup:        initializedPool,
			amount0:      big.NewInt(5000),
			amount1:      big.NewInt(8000),
			provider:     "",
			expectedErr:  ErrEmptyProvider,
			expectedKind: ErrInvalidArgument,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pool := tc.setup(t)
			before := pool.Snapshot()

			_, err := pool.AddLiquidity(tc.amount0, tc.amount1, tc.provider)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.expectedErr)
			assert.ErrorIs(t, err, tc.expectedKind)
			assert.True(t, before.Equal(pool.Snapshot()), "failed add must not mutate state")
		})
	}
}

func TestRemoveLiquidity(t *testing.T) {
	pool := initializedPool(t)

	amount0, amount1, err := pool.RemoveLiquidity(big.NewInt(6571), "Alice")
	require.NoError(t, err)
	assert.Zero(t, big.NewInt(4646).Cmp(amount0))
	assert.Zero(t, big.NewInt(9292).Cmp(amount1))

	snap := pool.Snapshot()
	assert.Zero(t, big.NewInt(5354).Cmp(snap.Reserve0))
	assert.Zero(t, big.NewInt(10708).Cmp(snap.Reserve1))
	assert.Zero(t, big.NewInt(7571).Cmp(snap.TotalLiquidity))
	assert.Zero(t, big.NewInt(6571).Cmp(pool.SharesOf("Alice")))
}

func TestRemoveLiquidityFullBalanceLeavesLockedFloor(t *testing.T) {
	pool := initializedPool(t)

	// Redeeming the entire user balance is allowed: exactly the locked
	// minimum remains.
	_, _, err := pool.RemoveLiquidity(big.NewInt(13142), "Alice")
	require.NoError(t, err)

	snap := pool.Snapshot()
	assert.Zero(t, big.NewInt(MinimumLiquidity).Cmp(snap.TotalLiquidity))
	assert.True(t, snap.Reserve0.Sign() > 0, "locked floor keeps reserves non-empty")
	assert.True(t, snap.Reserve1.Sign() > 0, "locked floor keeps reserves non-empty")
}

func TestRemoveLiquidityErrors(t *testing.T) {
	testCases := []struct {
		name         string
		setup        func(t *testing.T) *Pool
		liquidity    *big.Int
		provider     string
		expectedErr  error
		expectedKind error
	}{
		{
			name:         "pool not initialized",
			setup:        func(t *testing.T) *Pool { return New() },
			liquidity:    big.NewInt(100),
			provider:     "Alice",
			expectedErr:  ErrNotInitialized,
			expectedKind: ErrRuleViolation,
		},
		{
			name:         "more than the provider holds",
			setup:        initializedPool,
			liquidity:    big.NewInt(13143),
			provider:     "Alice",
			expectedErr:  ErrInsufficientShares,
			expectedKind: ErrRuleViolation,
		},
		{
			name:         "unknown provider",
			setup:        initializedPool,
			liquidity:    big.NewInt(1),
			provider:     "Mallory",
			expectedErr:  ErrInsufficientShares,
			expectedKind: ErrRuleViolation,
		},
		{
			name:         "zero liquidity",
			setup:        initializedPool,
			liquidity:    big.NewInt(0),
			provider:     "Alice",
			expectedErr:  ErrNonPositiveAmount,
			expectedKind: ErrInvalidArgument,
		},
		{
			name:         "nil liquidity",
			setup:        initializedPool,
			liquidity:    nil,
			provider:     "Alice",
			expectedErr:  ErrNilAmount,
			expectedKind: ErrInvalidArgument,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pool := tc.setup(t)
			before := pool.Snapshot()

			_, _, err := pool.RemoveLiquidity(tc.liquidity, tc.provider)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.expectedErr)
			assert.ErrorIs(t, err, tc.expectedKind)
			assert.True(t, before.Equal(pool.Snapshot()), "failed remove must not mutate state")
		})
	}
}

// TestRemoveThenAddApproximatelyRestores documents the floor/ceil residual:
// removing liquidity and immediately re-adding the returned amounts restores
// reserves and total liquidity to within a couple of units, never exactly,
// because both directions round in the pool's favor.
func TestRemoveThenAddApproximatelyRestores(t *testing.T) {
	pool := initializedPool(t)
	before := pool.Snapshot()

	amount0, amount1, err := pool.RemoveLiquidity(big.NewInt(6571), "Alice")
	require.NoError(t, err)

	_, err = pool.AddLiquidity(amount0, amount1, "Alice")
	require.NoError(t, err)

	after := pool.Snapshot()
	residualBound := big.NewInt(2)
	assert.True(t, absDiff(before.Reserve0, after.Reserve0).Cmp(residualBound) <= 0,
		"reserve0 drifted from %s to %s", before.Reserve0, after.Reserve0)
	assert.True(t, absDiff(before.Reserve1, after.Reserve1).Cmp(residualBound) <= 0,
		"reserve1 drifted from %s to %s", before.Reserve1, after.Reserve1)
	assert.True(t, absDiff(before.TotalLiquidity, after.TotalLiquidity).Cmp(residualBound) <= 0,
		"total liquidity drifted from %s to %s", before.TotalLiquidity, after.TotalLiquidity)

	// The rounding always favors the pool: the round trip never ends with
	// more outstanding liquidity than it started with.
	assert.True(t, after.TotalLiquidity.Cmp(before.TotalLiquidity) <= 0)
}

func TestProviderPosition(t *testing.T) {
	pool := New()
	position := pool.ProviderPosition("Alice")
	assert.Zero(t, position.Shares.Sign(), "inactive pool reports zero shares")
	assert.Zero(t, position.Value0.Sign())
	assert.Zero(t, position.Value1.Sign())

	pool = initializedPool(t)
	position = pool.ProviderPosition("Alice")
	assert.Zero(t, big.NewInt(13142).Cmp(position.Shares))
	assert.Zero(t, big.NewInt(9292).Cmp(position.Value0))
	assert.Zero(t, big.NewInt(18585).Cmp(position.Value1))

	position = pool.ProviderPosition("Mallory")
	assert.Zero(t, position.Shares.Sign(), "unknown provider reports zero shares")
	assert.Zero(t, position.Value0.Sign())
	assert.Zero(t, position.Value1.Sign())
}

func TestProviders(t *testing.T) {
	pool := initializedPool(t)
	_, err := pool.AddLiquidity(big.NewInt(5000), big.NewInt(8000), "Bob")
	require.NoError(t, err)

	assert.Equal(t, []string{"Alice", "Bob"}, pool.Providers())
}

func absDiff(a, b *big.Int) *big.Int {
	return new(big.Int).Abs(new(big.Int).Sub(a, b))
}
