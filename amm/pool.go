// Package amm implements a two-asset constant-product automated market maker
// pool: the accounting core behind liquidity provision and token swaps. A
// Pool holds two token reserves, the total liquidity-share supply, and a
// ledger of provider share balances; it exposes operations to initialize,
// add and remove liquidity, quote and execute swaps, and report derived
// metrics.
//
// A Pool is exclusively owned by its caller and performs no locking:
// correctness in a concurrent host is the responsibility of whoever
// serializes access to a single instance. Every operation validates its
// inputs before touching any field, so a failed operation never leaves
// partial state behind.
package amm

import (
	"fmt"
	"math/big"
	"sort"
)

// MinimumLiquidity is the number of liquidity shares permanently locked on
// first initialization, guarding against degenerate divide-by-near-zero
// states. The locked allocation is held in a structural field of the pool
// and can never be assigned to or removed by a provider.
const MinimumLiquidity = 1000

// ToleranceDenominator scales SafeSwap's constant-product tolerance. A
// toleranceScaled of 1 against this denominator permits a relative decrease
// of at most 1e-6 in k, checked in exact integer arithmetic.
const ToleranceDenominator = 1_000_000

var (
	minimumLiquidity        = big.NewInt(MinimumLiquidity)
	minimumLiquiditySquared = new(big.Int).Mul(minimumLiquidity, minimumLiquidity)
	toleranceDenominator    = big.NewInt(ToleranceDenominator)
)

// Pool is the single mutable aggregate. All integer state is held as
// *big.Int since products of reserves and fee numerators can exceed 64-bit
// range for large pools.
type Pool struct {
	reserve0       *big.Int
	reserve1       *big.Int
	totalLiquidity *big.Int
	lockedShares   *big.Int
	shares         map[string]*big.Int

	// toleranceScaled is the permitted relative decrease of k across a
	// SafeSwap, expressed against ToleranceDenominator.
	toleranceScaled *big.Int
}

// Option configures a Pool at construction time.
type Option func(*Pool)

// WithToleranceScaled overrides the SafeSwap constant-product tolerance.
// The value is interpreted against ToleranceDenominator; the default of 1
// corresponds to a relative tolerance of 1e-6.
func WithToleranceScaled(tolerance uint64) Option {
	return func(p *Pool) {
		p.toleranceScaled = new(big.Int).SetUint64(tolerance)
	}
}

// New returns an empty, uninitialized pool.
func New(opts ...Option) *Pool {
	p := &Pool{
		reserve0:        new(big.Int),
		reserve1:        new(big.Int),
		totalLiquidity:  new(big.Int),
		lockedShares:    new(big.Int),
		shares:          make(map[string]*big.Int),
		toleranceScaled: big.NewInt(1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AddResult reports the outcome of AddLiquidity. Any input amount exceeding
// Used0/Used1 is returned unconsumed via Refund0/Refund1; handing refunds
// back to the depositor is the caller's responsibility.
type AddResult struct {
	Shares  *big.Int `json:"shares"`
	Used0   *big.Int `json:"used0"`
	Used1   *big.Int `json:"used1"`
	Refund0 *big.Int `json:"refund0"`
	Refund1 *big.Int `json:"refund1"`
}

// Initialized reports whether the pool has transitioned out of its empty state.
func (p *Pool) Initialized() bool {
	return p.totalLiquidity.Sign() > 0
}

// active reports whether the pool can price trades and issue shares.
func (p *Pool) active() bool {
	return p.reserve0.Sign() > 0 && p.reserve1.Sign() > 0 && p.totalLiquidity.Sign() > 0
}

// Initialize transitions the pool from empty to active exactly once. The
// initial liquidity is floor(sqrt(amount0*amount1)), computed with exact
// integer arithmetic; MinimumLiquidity shares of it are permanently locked
// and the remainder is assigned to provider. Returns the provider's shares.
func (p *Pool) Initialize(amount0, amount1 *big.Int, provider string) (*big.Int, error) {
	if err := validatePositive(amount0); err != nil {
		return nil, fmt.Errorf("amount0: %w", err)
	}
	if err := validatePositive(amount1); err != nil {
		return nil, fmt.Errorf("amount1: %w", err)
	}
	if provider == "" {
		return nil, ErrEmptyProvider
	}
	if p.totalLiquidity.Sign() != 0 {
		return nil, ErrAlreadyInitialized
	}

	product := new(big.Int).Mul(amount0, amount1)
	if product.Cmp(minimumLiquiditySquared) < 0 {
		return nil, fmt.Errorf("%w: need amount0*amount1 >= %s", ErrInitialLiquidityTooSmall, minimumLiquiditySquared)
	}

	// big.Int.Sqrt is an exact integer square root: r*r <= product < (r+1)*(r+1).
	liquidity := new(big.Int).Sqrt(product)
	if liquidity.Cmp(minimumLiquidity) <= 0 {
		return nil, fmt.Errorf("%w: computed liquidity %s <= locked minimum %d", ErrInitialLiquidityTooSmall, liquidity, MinimumLiquidity)
	}

	userShares := new(big.Int).Sub(liquidity, minimumLiquidity)

	p.reserve0 = new(big.Int).Set(amount0)
	p.reserve1 = new(big.Int).Set(amount1)
	p.totalLiquidity = liquidity
	p.lockedShares = new(big.Int).Set(minimumLiquidity)
	p.shares[provider] = userShares

	return new(big.Int).Set(userShares), nil
}

// AddLiquidity adds liquidity at the pool's current price ratio. Each
// token's proportional share contribution is floored independently and the
// smaller of the two wins; the token amounts actually consumed are then
// back-computed from that share level so the pool never over-credits shares
// relative to tokens retained. The surplus goes back to the depositor as a
// refund.
func (p *Pool) AddLiquidity(amount0, amount1 *big.Int, provider string) (AddResult, error) {
	if err := validatePositive(amount0); err != nil {
		return AddResult{}, fmt.Errorf("amount0: %w", err)
	}
	if err := validatePositive(amount1); err != nil {
		return AddResult{}, fmt.Errorf("amount1: %w", err)
	}
	if provider == "" {
		return AddResult{}, ErrEmptyProvider
	}
	if !p.active() {
		return AddResult{}, ErrNotInitialized
	}

	share0 := mulDiv(amount0, p.totalLiquidity, p.reserve0)
	share1 := mulDiv(amount1, p.totalLiquidity, p.reserve1)

	minShare := share0
	if share1.Cmp(share0) < 0 {
		minShare = share1
	}
	if minShare.Sign() <= 0 {
		return AddResult{}, ErrLiquidityTooSmall
	}

	used0 := mulDiv(minShare, p.reserve0, p.totalLiquidity)
	used1 := mulDiv(minShare, p.reserve1, p.totalLiquidity)
	refund0 := new(big.Int).Sub(amount0, used0)
	refund1 := new(big.Int).Sub(amount1, used1)

	p.reserve0.Add(p.reserve0, used0)
	p.reserve1.Add(p.reserve1, used1)
	p.totalLiquidity.Add(p.totalLiquidity, minShare)

	balance, ok := p.shares[provider]
	if !ok {
		balance = new(big.Int)
		p.shares[provider] = balance
	}
	balance.Add(balance, minShare)

	return AddResult{
		Shares:  new(big.Int).Set(minShare),
		Used0:   used0,
		Used1:   used1,
		Refund0: refund0,
		Refund1: refund1,
	}, nil
}

// RemoveLiquidity redeems liquidity shares for a proportional payout of both
// reserves. The total supply may never drop below the permanently locked
// minimum. Actual token transfer is the caller's responsibility.
func (p *Pool) RemoveLiquidity(liquidity *big.Int, provider string) (*big.Int, *big.Int, error) {
	if err := validatePositive(liquidity); err != nil {
		return nil, nil, fmt.Errorf("liquidity: %w", err)
	}
	if provider == "" {
		return nil, nil, ErrEmptyProvider
	}
	if !p.active() {
		return nil, nil, ErrNotInitialized
	}

	balance, ok := p.shares[provider]
	if !ok || balance.Cmp(liquidity) < 0 {
		return nil, nil, fmt.Errorf("%w: provider %q holds %s, requested %s", ErrInsufficientShares, provider, p.SharesOf(provider), liquidity)
	}

	remaining := new(big.Int).Sub(p.totalLiquidity, liquidity)
	if remaining.Cmp(minimumLiquidity) < 0 {
		return nil, nil, fmt.Errorf("%w: %s would remain, minimum is %d", ErrInsufficientRemainingLiquidity, remaining, MinimumLiquidity)
	}

	amount0 := mulDiv(liquidity, p.reserve0, p.totalLiquidity)
	amount1 := mulDiv(liquidity, p.reserve1, p.totalLiquidity)

	p.reserve0.Sub(p.reserve0, amount0)
	p.reserve1.Sub(p.reserve1, amount1)
	p.totalLiquidity.Sub(p.totalLiquidity, liquidity)
	balance.Sub(balance, liquidity)

	return amount0, amount1, nil
}

// SharesOf returns the provider's current share balance. Unknown providers
// hold zero.
func (p *Pool) SharesOf(provider string) *big.Int {
	balance, ok := p.shares[provider]
	if !ok {
		return new(big.Int)
	}
	return new(big.Int).Set(balance)
}

// Providers returns the provider identifiers in lexical order. The locked
// minimum-liquidity allocation is structural and never appears here.
func (p *Pool) Providers() []string {
	providers := make([]string, 0, len(p.shares))
	for provider := range p.shares {
		providers = append(providers, provider)
	}
	sort.Strings(providers)
	return providers
}

// orient returns the reserves ordered by the input side of a trade.
func (p *Pool) orient(tokenIn Token) (reserveIn, reserveOut *big.Int) {
	if tokenIn == Token0 {
		return p.reserve0, p.reserve1
	}
	return p.reserve1, p.reserve0
}

// validatePositive rejects nil and non-positive amounts.
func validatePositive(amount *big.Int) error {
	if amount == nil {
		return ErrNilAmount
	}
	if amount.Sign() <= 0 {
		return ErrNonPositiveAmount
	}
	return nil
}

// mulDiv computes floor(a*b/c) without mutating its operands.
func mulDiv(a, b, c *big.Int) *big.Int {
	result := new(big.Int).Mul(a, b)
	return result.Div(result, c)
}
