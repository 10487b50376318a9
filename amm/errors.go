package amm

import (
	"errors"
	"fmt"
)

// Failure categories. Every specific sentinel below wraps exactly one of
// these, so callers can match either the category (errors.Is(err,
// ErrRuleViolation)) or the precise rule (errors.Is(err,
// ErrSlippageExceeded)).
var (
	// ErrInvalidArgument marks contract violations: malformed inputs the
	// caller must correct before retrying.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrRuleViolation marks business-rule failures: expected, recoverable
	// conditions such as slippage or insufficient shares.
	ErrRuleViolation = errors.New("pool rule violation")
)

// Contract violations.
var (
	ErrNilAmount         = fmt.Errorf("%w: nil amount", ErrInvalidArgument)
	ErrNonPositiveAmount = fmt.Errorf("%w: amount must be positive", ErrInvalidArgument)
	ErrNegativeAmount    = fmt.Errorf("%w: amount must not be negative", ErrInvalidArgument)
	ErrInvalidToken      = fmt.Errorf("%w: token selector out of range", ErrInvalidArgument)
	ErrEmptyProvider     = fmt.Errorf("%w: provider identifier must not be empty", ErrInvalidArgument)
)

// Rule violations.
var (
	ErrAlreadyInitialized             = fmt.Errorf("%w: pool already initialized", ErrRuleViolation)
	ErrNotInitialized                 = fmt.Errorf("%w: pool not initialized", ErrRuleViolation)
	ErrInitialLiquidityTooSmall       = fmt.Errorf("%w: initial liquidity too small", ErrRuleViolation)
	ErrLiquidityTooSmall              = fmt.Errorf("%w: liquidity contribution too small", ErrRuleViolation)
	ErrInsufficientShares             = fmt.Errorf("%w: insufficient provider shares", ErrRuleViolation)
	ErrInsufficientRemainingLiquidity = fmt.Errorf("%w: removal would drop total liquidity below the locked minimum", ErrRuleViolation)
	ErrOutputTooSmall                 = fmt.Errorf("%w: output amount too small", ErrRuleViolation)
	ErrOutputExceedsReserve           = fmt.Errorf("%w: output amount exceeds reserve", ErrRuleViolation)
	ErrSlippageExceeded               = fmt.Errorf("%w: slippage exceeded", ErrRuleViolation)
	ErrInvariantViolated              = fmt.Errorf("%w: constant product invariant violated", ErrRuleViolation)
)
