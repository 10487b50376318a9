package amm

import (
	"fmt"
	"math/big"
)

// Position is a provider's proportional redemption value at current reserves.
type Position struct {
	Shares *big.Int `json:"shares"`
	Value0 *big.Int `json:"value0"`
	Value1 *big.Int `json:"value1"`
}

// Snapshot is a deep-copied, read-only view of the pool's state. Mutating a
// snapshot never affects the pool, and vice versa.
type Snapshot struct {
	Reserve0       *big.Int `json:"reserve0"`
	Reserve1       *big.Int `json:"reserve1"`
	TotalLiquidity *big.Int `json:"totalLiquidity"`
	KValue         *big.Int `json:"kValue"`
	Price0         *big.Rat `json:"price0"`
	Price1         *big.Rat `json:"price1"`
	LockedShares   *big.Int `json:"lockedShares"`
	ProviderCount  int      `json:"providerCount"`
}

// Price returns the marginal price of token: the ratio of the other reserve
// to token's reserve. Before initialization the price is zero.
func (p *Pool) Price(token Token) (*big.Rat, error) {
	if !token.Valid() {
		return nil, ErrInvalidToken
	}
	numerator, denominator := p.orient(token.Other())
	if denominator.Sign() <= 0 {
		return new(big.Rat), nil
	}
	return new(big.Rat).SetFrac(numerator, denominator), nil
}

// KValue returns the constant-product invariant reserve0*reserve1.
func (p *Pool) KValue() *big.Int {
	return new(big.Int).Mul(p.reserve0, p.reserve1)
}

// ProviderPosition reports a provider's shares and their proportional
// redemption value at current reserves. An inactive pool and unknown
// providers both report all zeros.
func (p *Pool) ProviderPosition(provider string) Position {
	shares := p.SharesOf(provider)
	if p.totalLiquidity.Sign() <= 0 {
		return Position{Shares: new(big.Int), Value0: new(big.Int), Value1: new(big.Int)}
	}
	return Position{
		Shares: shares,
		Value0: mulDiv(shares, p.reserve0, p.totalLiquidity),
		Value1: mulDiv(shares, p.reserve1, p.totalLiquidity),
	}
}

// Slippage quotes (without executing) a trade and compares the pre-trade
// marginal price against the realized average execution rate, expressed as a
// percentage of the marginal price.
func (p *Pool) Slippage(tokenIn Token, amountIn *big.Int) (*big.Rat, error) {
	amountOut, err := p.quoteOutput(tokenIn, amountIn)
	if err != nil {
		return nil, err
	}

	reserveIn, reserveOut := p.orient(tokenIn)
	marginal := new(big.Rat).SetFrac(reserveOut, reserveIn)
	realized := new(big.Rat).SetFrac(amountOut, amountIn)

	// (marginal - realized) / marginal * 100
	slippage := new(big.Rat).Sub(marginal, realized)
	slippage.Quo(slippage, marginal)
	slippage.Mul(slippage, new(big.Rat).SetInt64(100))
	return slippage, nil
}

// Snapshot returns an aggregate read of the current state. The provider
// count excludes the structurally locked minimum-liquidity allocation.
func (p *Pool) Snapshot() Snapshot {
	price0, _ := p.Price(Token0)
	price1, _ := p.Price(Token1)
	return Snapshot{
		Reserve0:       new(big.Int).Set(p.reserve0),
		Reserve1:       new(big.Int).Set(p.reserve1),
		TotalLiquidity: new(big.Int).Set(p.totalLiquidity),
		KValue:         p.KValue(),
		Price0:         price0,
		Price1:         price1,
		LockedShares:   new(big.Int).Set(p.lockedShares),
		ProviderCount:  len(p.shares),
	}
}

// Clone returns a deep copy of the snapshot with its own memory for every
// pointer field.
func (s Snapshot) Clone() Snapshot {
	clone := s
	if s.Reserve0 != nil {
		clone.Reserve0 = new(big.Int).Set(s.Reserve0)
	}
	if s.Reserve1 != nil {
		clone.Reserve1 = new(big.Int).Set(s.Reserve1)
	}
	if s.TotalLiquidity != nil {
		clone.TotalLiquidity = new(big.Int).Set(s.TotalLiquidity)
	}
	if s.KValue != nil {
		clone.KValue = new(big.Int).Set(s.KValue)
	}
	if s.Price0 != nil {
		clone.Price0 = new(big.Rat).Set(s.Price0)
	}
	if s.Price1 != nil {
		clone.Price1 = new(big.Rat).Set(s.Price1)
	}
	if s.LockedShares != nil {
		clone.LockedShares = new(big.Int).Set(s.LockedShares)
	}
	return clone
}

// Equal compares two snapshots by value.
func (s Snapshot) Equal(other Snapshot) bool {
	return bigIntEqual(s.Reserve0, other.Reserve0) &&
		bigIntEqual(s.Reserve1, other.Reserve1) &&
		bigIntEqual(s.TotalLiquidity, other.TotalLiquidity) &&
		bigIntEqual(s.KValue, other.KValue) &&
		bigRatEqual(s.Price0, other.Price0) &&
		bigRatEqual(s.Price1, other.Price1) &&
		bigIntEqual(s.LockedShares, other.LockedShares) &&
		s.ProviderCount == other.ProviderCount
}

func (s Snapshot) String() string {
	return fmt.Sprintf("reserve0=%s reserve1=%s totalLiquidity=%s k=%s providers=%d",
		s.Reserve0, s.Reserve1, s.TotalLiquidity, s.KValue, s.ProviderCount)
}

func bigIntEqual(a, b *big.Int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Cmp(b) == 0
}

func bigRatEqual(a, b *big.Rat) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Cmp(b) == 0
}
