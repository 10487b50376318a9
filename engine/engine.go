// Package engine wraps a single amm.Pool behind the same operation surface,
// adding structured logging and Prometheus instrumentation around every
// call. It adds no locking: like the pool itself, an Engine assumes at most
// one logical operation in flight at a time.
package engine

import (
	"errors"
	"math/big"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/liquidstate/amm-pool-go/amm"
)

// Config holds the engine's dependencies.
type Config struct {
	Pool     *amm.Pool
	Registry prometheus.Registerer // Required for metrics.
	Logger   Logger                // Required for logging.
}

// validate checks if the configuration is valid, ensuring required
// dependencies are present.
func (c *Config) validate() error {
	if c.Pool == nil {
		return errors.New("config: Pool cannot be nil")
	}
	if c.Registry == nil {
		return errors.New("config: Registry cannot be nil")
	}
	if c.Logger == nil {
		return errors.New("config: Logger cannot be nil")
	}
	return nil
}

// Engine executes pool operations with logging and metrics.
type Engine struct {
	pool    *amm.Pool
	metrics *Metrics
	logger  Logger
}

// New constructs an engine from a configuration, returning an error if the
// config is invalid.
func New(cfg *Config) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Engine{
		pool:    cfg.Pool,
		metrics: NewMetrics(cfg.Registry),
		logger:  cfg.Logger,
	}, nil
}

// Pool exposes the wrapped aggregate for read-only inspection.
func (e *Engine) Pool() *amm.Pool {
	return e.pool
}

// Initialize seeds the pool and reports the provider's shares.
func (e *Engine) Initialize(amount0, amount1 *big.Int, provider string) (*big.Int, error) {
	timer := prometheus.NewTimer(e.metrics.opDuration.WithLabelValues("initialize"))
	defer timer.ObserveDuration()

	shares, err := e.pool.Initialize(amount0, amount1, provider)
	if err != nil {
		e.observe("initialize", err)
		return nil, err
	}
	e.observe("initialize", nil)
	e.logger.Info("pool initialized",
		"provider", provider,
		"amount0", amount0.String(),
		"amount1", amount1.String(),
		"shares", shares.String(),
	)
	return shares, nil
}

// AddLiquidity deposits at the current ratio and reports shares and refunds.
func (e *Engine) AddLiquidity(amount0, amount1 *big.Int, provider string) (amm.AddResult, error) {
	timer := prometheus.NewTimer(e.metrics.opDuration.WithLabelValues("add_liquidity"))
	defer timer.ObserveDuration()

	result, err := e.pool.AddLiquidity(amount0, amount1, provider)
	if err != nil {
		e.observe("add_liquidity", err)
		return amm.AddResult{}, err
	}
	e.observe("add_liquidity", nil)
	e.logger.Info("liquidity added",
		"provider", provider,
		"shares", result.Shares.String(),
		"used0", result.Used0.String(),
		"used1", result.Used1.String(),
		"refund0", result.Refund0.String(),
		"refund1", result.Refund1.String(),
	)
	return result, nil
}

// RemoveLiquidity redeems shares for a proportional payout.
func (e *Engine) RemoveLiquidity(liquidity *big.Int, provider string) (*big.Int, *big.Int, error) {
	timer := prometheus.NewTimer(e.metrics.opDuration.WithLabelValues("remove_liquidity"))
	defer timer.ObserveDuration()

	amount0, amount1, err := e.pool.RemoveLiquidity(liquidity, provider)
	if err != nil {
		e.observe("remove_liquidity", err)
		return nil, nil, err
	}
	e.observe("remove_liquidity", nil)
	e.logger.Info("liquidity removed",
		"provider", provider,
		"liquidity", liquidity.String(),
		"amount0", amount0.String(),
		"amount1", amount1.String(),
	)
	return amount0, amount1, nil
}

// QuoteOutput prices a trade without executing it.
func (e *Engine) QuoteOutput(tokenIn amm.Token, amountIn *big.Int) (*big.Int, error) {
	amountOut, err := e.pool.QuoteOutput(tokenIn, amountIn)
	e.observe("quote_output", err)
	return amountOut, err
}

// QuoteInput prices the inverse trade without executing it.
func (e *Engine) QuoteInput(tokenOut amm.Token, amountOut *big.Int) (*big.Int, error) {
	amountIn, err := e.pool.QuoteInput(tokenOut, amountOut)
	e.observe("quote_input", err)
	return amountIn, err
}

// Swap executes a trade.
func (e *Engine) Swap(tokenIn amm.Token, amountIn *big.Int) (*big.Int, error) {
	timer := prometheus.NewTimer(e.metrics.opDuration.WithLabelValues("swap"))
	defer timer.ObserveDuration()

	amountOut, err := e.pool.Swap(tokenIn, amountIn)
	if err != nil {
		e.observe("swap", err)
		return nil, err
	}
	e.observe("swap", nil)
	e.logger.Info("swap executed",
		"tokenIn", tokenIn.String(),
		"amountIn", amountIn.String(),
		"amountOut", amountOut.String(),
	)
	return amountOut, nil
}

// SafeSwap executes a trade under a slippage guard and invariant check.
func (e *Engine) SafeSwap(tokenIn amm.Token, amountIn, minAmountOut *big.Int) (*big.Int, error) {
	timer := prometheus.NewTimer(e.metrics.opDuration.WithLabelValues("safe_swap"))
	defer timer.ObserveDuration()

	amountOut, err := e.pool.SafeSwap(tokenIn, amountIn, minAmountOut)
	if err != nil {
		e.observe("safe_swap", err)
		return nil, err
	}
	e.observe("safe_swap", nil)
	e.logger.Info("safe swap executed",
		"tokenIn", tokenIn.String(),
		"amountIn", amountIn.String(),
		"amountOut", amountOut.String(),
		"minAmountOut", minAmountOut.String(),
	)
	return amountOut, nil
}

// Slippage quotes a trade and reports its price impact.
func (e *Engine) Slippage(tokenIn amm.Token, amountIn *big.Int) (*big.Rat, error) {
	slippage, err := e.pool.Slippage(tokenIn, amountIn)
	e.observe("slippage", err)
	return slippage, err
}

// Snapshot returns a deep-copied view of the pool state.
func (e *Engine) Snapshot() amm.Snapshot {
	e.observe("snapshot", nil)
	return e.pool.Snapshot()
}

// observe counts the operation and refreshes the pool gauges. Argument
// errors and rule violations land in distinct outcome labels so dashboards
// can tell caller bugs from expected rejections.
func (e *Engine) observe(operation string, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, amm.ErrInvalidArgument):
		outcome = "invalid_argument"
		e.logger.Warn("operation rejected", "operation", operation, "error", err)
	case errors.Is(err, amm.ErrRuleViolation):
		outcome = "rule_violation"
		e.logger.Warn("operation rejected", "operation", operation, "error", err)
	default:
		outcome = "error"
		e.logger.Error("operation failed", "operation", operation, "error", err)
	}
	e.metrics.operations.WithLabelValues(operation, outcome).Inc()

	if err == nil {
		snap := e.pool.Snapshot()
		shares, _ := new(big.Float).SetInt(snap.TotalLiquidity).Float64()
		k, _ := new(big.Float).SetInt(snap.KValue).Float64()
		e.metrics.sharesTotal.Set(shares)
		e.metrics.kValue.Set(k)
	}
}
