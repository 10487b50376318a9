// Package calculator implements the constant-product pricing math shared by
// quoting and execution. Both paths must produce bit-for-bit identical
// results, so all pricing flows through the two functions in this package.
package calculator

import (
	"errors"
	"fmt"
	"math/big"
	"sync"
)

// Fee schedule, applied multiplicatively to the swap input.
// FeeNumerator/FeeDenominator = 997/1000, i.e. a 0.3% fee.
const (
	FeeNumerator   = 997
	FeeDenominator = 1000
)

var (
	feeNumerator   = big.NewInt(FeeNumerator)
	feeDenominator = big.NewInt(FeeDenominator)
	one            = big.NewInt(1)
)

var (
	// ErrNilAmount is returned when a nil pointer is passed for an amount.
	ErrNilAmount = errors.New("nil pointer passed as amount")
	// ErrInvalidAmount is returned when an input/output amount is negative.
	ErrInvalidAmount = errors.New("amount must be non-negative")
	// ErrInvalidState is returned for internal calculation errors, like division by zero.
	ErrInvalidState = errors.New("invalid internal state")
	// ErrInsufficientLiquidity is returned when an amountOut is requested that is
	// greater than or equal to the available reserve.
	ErrInsufficientLiquidity = errors.New("insufficient liquidity for swap")
)

// Calculator holds reusable big.Int objects to avoid memory allocations during
// calculations. Instances are NOT safe for concurrent use by themselves; they
// are managed by the sync.Pool below.
type Calculator struct {
	// Reusable objects for GetAmountOut
	amountInWithFee *big.Int
	numerator       *big.Int
	denominator     *big.Int

	// Reusable objects for GetAmountIn
	numeratorIn   *big.Int
	denominatorIn *big.Int
	remainderIn   *big.Int
}

// calculatorPool manages a pool of Calculator objects, allowing for safe
// concurrent use while reducing memory allocations.
var calculatorPool = sync.Pool{
	New: func() any {
		return &Calculator{
			amountInWithFee: new(big.Int),
			numerator:       new(big.Int),
			denominator:     new(big.Int),
			numeratorIn:     new(big.Int),
			denominatorIn:   new(big.Int),
			remainderIn:     new(big.Int),
		}
	},
}

// GetAmountOut calculates the output amount for a swap:
//
//	amountOut = floor(amountIn*997*reserveOut / (reserveIn*1000 + amountIn*997))
//
// The floor rounding keeps the constant product from ever decreasing.
func GetAmountOut(amountIn, reserveIn, reserveOut *big.Int) (*big.Int, error) {
	calc := calculatorPool.Get().(*Calculator)
	defer calculatorPool.Put(calc)
	return calc.getAmountOut(amountIn, reserveIn, reserveOut)
}

// GetAmountIn calculates the input required to receive amountOut:
//
//	amountIn = ceil(amountOut*reserveIn*1000 / ((reserveOut - amountOut)*997))
//
// The ceiling rounding deliberately biases in the pool's favor: feeding the
// result back through GetAmountOut yields at least amountOut.
func GetAmountIn(amountOut, reserveIn, reserveOut *big.Int) (*big.Int, error) {
	calc := calculatorPool.Get().(*Calculator)
	defer calculatorPool.Put(calc)
	return calc.getAmountIn(amountOut, reserveIn, reserveOut)
}

// getAmountOut is the internal calculation method that uses the pre-allocated fields.
func (c *Calculator) getAmountOut(amountIn, reserveIn, reserveOut *big.Int) (*big.Int, error) {
	if amountIn == nil || reserveIn == nil || reserveOut == nil {
		return nil, ErrNilAmount
	}
	if amountIn.Sign() < 0 {
		return nil, ErrInvalidAmount
	}

	if reserveIn.Sign() <= 0 || reserveOut.Sign() <= 0 {
		return new(big.Int), nil
	}

	c.amountInWithFee.Mul(amountIn, feeNumerator)
	c.numerator.Mul(c.amountInWithFee, reserveOut)
	c.denominator.Mul(reserveIn, feeDenominator)
	c.denominator.Add(c.denominator, c.amountInWithFee)

	if c.denominator.Sign() <= 0 {
		return nil, fmt.Errorf("%w: pricing denominator is zero", ErrInvalidState)
	}

	return new(big.Int).Div(c.numerator, c.denominator), nil
}

// getAmountIn is the internal calculation method for the inverse formula.
func (c *Calculator) getAmountIn(amountOut, reserveIn, reserveOut *big.Int) (*big.Int, error) {
	if amountOut == nil || reserveIn == nil || reserveOut == nil {
		return nil, ErrNilAmount
	}
	if amountOut.Sign() < 0 {
		return nil, ErrInvalidAmount
	}

	if reserveIn.Sign() <= 0 || reserveOut.Sign() <= 0 || amountOut.Cmp(reserveOut) >= 0 {
		return nil, fmt.Errorf("%w: requested amountOut (%s) is >= reserveOut (%s)",
			ErrInsufficientLiquidity, amountOut.String(), reserveOut.String())
	}

	c.numeratorIn.Mul(amountOut, reserveIn)
	c.numeratorIn.Mul(c.numeratorIn, feeDenominator)

	c.denominatorIn.Sub(reserveOut, amountOut)
	c.denominatorIn.Mul(c.denominatorIn, feeNumerator)

	if c.denominatorIn.Sign() <= 0 {
		return nil, fmt.Errorf("%w: pricing denominator is zero", ErrInvalidState)
	}

	// Exact ceiling division: round up only when there is a remainder.
	amountIn := new(big.Int)
	amountIn.QuoRem(c.numeratorIn, c.denominatorIn, c.remainderIn)
	if c.remainderIn.Sign() != 0 {
		amountIn.Add(amountIn, one)
	}
	return amountIn, nil
}
