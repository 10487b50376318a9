// Command demo runs a scripted walkthrough of the pool's operations:
// initialization, a second deposit, swaps with and without slippage
// protection, a reverse quote, and a partial withdrawal.
package main

import (
	"fmt"
	"log/slog"
	"math/big"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"github.com/liquidstate/amm-pool-go/amm"
	"github.com/liquidstate/amm-pool-go/engine"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var (
		amount0 int64
		amount1 int64
		swapIn  int64
	)
	pflag.Int64Var(&amount0, "amount0", 10000, "initial deposit of token0")
	pflag.Int64Var(&amount1, "amount1", 20000, "initial deposit of token1")
	pflag.Int64Var(&swapIn, "swap-in", 1000, "token0 amount for the demo swap")
	pflag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	eng, err := engine.New(&engine.Config{
		Pool:     amm.New(),
		Registry: prometheus.NewRegistry(),
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	// Alice seeds the pool.
	aliceShares, err := eng.Initialize(big.NewInt(amount0), big.NewInt(amount1), "Alice")
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	logger.Info("demo: pool seeded", "aliceShares", aliceShares.String())

	// Bob adds liquidity off-ratio and gets the surplus refunded.
	result, err := eng.AddLiquidity(big.NewInt(5000), big.NewInt(8000), "Bob")
	if err != nil {
		return fmt.Errorf("add liquidity: %w", err)
	}
	logger.Info("demo: second deposit",
		"shares", result.Shares.String(),
		"refund0", result.Refund0.String(),
		"refund1", result.Refund1.String(),
	)

	// Quote, then execute; the two must agree exactly.
	before := eng.Snapshot()
	quoted, err := eng.QuoteOutput(amm.Token0, big.NewInt(swapIn))
	if err != nil {
		return fmt.Errorf("quote: %w", err)
	}
	executed, err := eng.Swap(amm.Token0, big.NewInt(swapIn))
	if err != nil {
		return fmt.Errorf("swap: %w", err)
	}
	if quoted.Cmp(executed) != 0 {
		return fmt.Errorf("quote %s disagrees with execution %s", quoted, executed)
	}
	logger.Info("demo: swap change", "diff", amm.Diff(before, eng.Snapshot()))

	// Reverse quote: input needed for a fixed output, then verify it
	// over-delivers rather than under-delivers.
	needed, err := eng.QuoteInput(amm.Token1, big.NewInt(500))
	if err != nil {
		return fmt.Errorf("reverse quote: %w", err)
	}
	check, err := eng.QuoteOutput(amm.Token0, needed)
	if err != nil {
		return fmt.Errorf("verify reverse quote: %w", err)
	}
	logger.Info("demo: reverse quote", "needed", needed.String(), "verifiedOutput", check.String())

	// Slippage-guarded swap with an unreachable minimum fails without
	// touching the pool.
	guarded := eng.Snapshot()
	if _, err := eng.SafeSwap(amm.Token1, big.NewInt(2000), big.NewInt(1_000_000)); err == nil {
		return fmt.Errorf("expected slippage guard to reject the swap")
	}
	if !amm.Diff(guarded, eng.Snapshot()).IsEmpty() {
		return fmt.Errorf("failed safe swap mutated state")
	}

	// Alice exits half her position.
	position := eng.Pool().ProviderPosition("Alice")
	half := new(big.Int).Div(position.Shares, big.NewInt(2))
	out0, out1, err := eng.RemoveLiquidity(half, "Alice")
	if err != nil {
		return fmt.Errorf("remove liquidity: %w", err)
	}
	logger.Info("demo: partial withdrawal",
		"shares", half.String(),
		"amount0", out0.String(),
		"amount1", out1.String(),
	)

	final := eng.Snapshot()
	logger.Info("demo: final state",
		"reserve0", final.Reserve0.String(),
		"reserve1", final.Reserve1.String(),
		"totalLiquidity", final.TotalLiquidity.String(),
		"k", final.KValue.String(),
		"price0", final.Price0.FloatString(6),
		"price1", final.Price1.FloatString(6),
		"lockedShares", final.LockedShares.String(),
		"providers", final.ProviderCount,
	)
	return nil
}
