package amm

import (
	"fmt"
	"math/big"

	"github.com/liquidstate/amm-pool-go/amm/calculator"
)

// QuoteOutput prices a trade without executing it: the output received for
// amountIn of tokenIn at current reserves, after the proportional fee.
// Quoting and execution share one arithmetic path, so a quote matches the
// executed result exactly when no state change intervenes.
func (p *Pool) QuoteOutput(tokenIn Token, amountIn *big.Int) (*big.Int, error) {
	return p.quoteOutput(tokenIn, amountIn)
}

// QuoteInput prices the inverse trade: the input required to receive
// amountOut of tokenOut. The result is rounded up, biasing in the pool's
// favor, so feeding it back through QuoteOutput yields at least amountOut.
func (p *Pool) QuoteInput(tokenOut Token, amountOut *big.Int) (*big.Int, error) {
	if !tokenOut.Valid() {
		return nil, ErrInvalidToken
	}
	if err := validatePositive(amountOut); err != nil {
		return nil, fmt.Errorf("amountOut: %w", err)
	}
	if !p.active() {
		return nil, ErrNotInitialized
	}

	reserveOut, reserveIn := p.orient(tokenOut)
	if amountOut.Cmp(reserveOut) >= 0 {
		return nil, fmt.Errorf("%w: requested %s of reserve %s", ErrOutputExceedsReserve, amountOut, reserveOut)
	}

	return calculator.GetAmountIn(amountOut, reserveIn, reserveOut)
}

// Swap executes a trade: the input-side reserve grows by amountIn and the
// output-side reserve shrinks by the computed output. Fees stay in the
// reserves, so the constant product never decreases across a swap.
func (p *Pool) Swap(tokenIn Token, amountIn *big.Int) (*big.Int, error) {
	amountOut, err := p.quoteOutput(tokenIn, amountIn)
	if err != nil {
		return nil, err
	}
	p.applySwap(tokenIn, amountIn, amountOut)
	return amountOut, nil
}

// SafeSwap executes a trade under a slippage guard and an explicit
// constant-product verification. The quote is checked against minAmountOut
// before any mutation; after pricing, the post-trade k is verified in exact
// integer arithmetic against the configured tolerance. State is committed
// only once every check has passed, so a failed SafeSwap never mutates the
// pool.
func (p *Pool) SafeSwap(tokenIn Token, amountIn, minAmountOut *big.Int) (*big.Int, error) {
	if minAmountOut == nil {
		return nil, fmt.Errorf("minAmountOut: %w", ErrNilAmount)
	}
	if minAmountOut.Sign() < 0 {
		return nil, fmt.Errorf("minAmountOut: %w", ErrNegativeAmount)
	}

	amountOut, err := p.quoteOutput(tokenIn, amountIn)
	if err != nil {
		return nil, err
	}
	if amountOut.Cmp(minAmountOut) < 0 {
		return nil, fmt.Errorf("%w: quoted %s, minimum required %s", ErrSlippageExceeded, amountOut, minAmountOut)
	}

	kBefore := p.KValue()

	reserveIn, reserveOut := p.orient(tokenIn)
	newReserveIn := new(big.Int).Add(reserveIn, amountIn)
	newReserveOut := new(big.Int).Sub(reserveOut, amountOut)

	// kAfter * D >= kBefore * (D - tolerance), D = ToleranceDenominator.
	// Exact integer comparison; a float tolerance against a large k loses
	// precision.
	kAfter := new(big.Int).Mul(newReserveIn, newReserveOut)
	lhs := new(big.Int).Mul(kAfter, toleranceDenominator)
	rhs := new(big.Int).Sub(toleranceDenominator, p.toleranceScaled)
	rhs.Mul(kBefore, rhs)
	if lhs.Cmp(rhs) < 0 {
		return nil, fmt.Errorf("%w: k %s -> %s", ErrInvariantViolated, kBefore, kAfter)
	}

	// The executed output is the quoted output by construction; re-check it
	// against the minimum all the same, guarding the two paths against ever
	// drifting apart.
	if amountOut.Cmp(minAmountOut) < 0 {
		return nil, fmt.Errorf("%w: executed %s, minimum required %s", ErrSlippageExceeded, amountOut, minAmountOut)
	}

	p.applySwap(tokenIn, amountIn, amountOut)
	return amountOut, nil
}

// quoteOutput validates and prices a trade. Swap and SafeSwap call this same
// routine before mutating, which is what guarantees quote/execution
// agreement bit for bit.
func (p *Pool) quoteOutput(tokenIn Token, amountIn *big.Int) (*big.Int, error) {
	if !tokenIn.Valid() {
		return nil, ErrInvalidToken
	}
	if err := validatePositive(amountIn); err != nil {
		return nil, fmt.Errorf("amountIn: %w", err)
	}
	if !p.active() {
		return nil, ErrNotInitialized
	}

	reserveIn, reserveOut := p.orient(tokenIn)
	amountOut, err := calculator.GetAmountOut(amountIn, reserveIn, reserveOut)
	if err != nil {
		return nil, err
	}
	if amountOut.Sign() <= 0 {
		return nil, ErrOutputTooSmall
	}
	if amountOut.Cmp(reserveOut) >= 0 {
		return nil, fmt.Errorf("%w: computed %s against reserve %s", ErrOutputExceedsReserve, amountOut, reserveOut)
	}
	return amountOut, nil
}

// applySwap commits an already validated trade to the reserves.
func (p *Pool) applySwap(tokenIn Token, amountIn, amountOut *big.Int) {
	reserveIn, reserveOut := p.orient(tokenIn)
	reserveIn.Add(reserveIn, amountIn)
	reserveOut.Sub(reserveOut, amountOut)
}
