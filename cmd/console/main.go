package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	"github.com/liquidstate/amm-pool-go/amm"
	"github.com/liquidstate/amm-pool-go/cmd/console/config"
	"github.com/liquidstate/amm-pool-go/engine"
)

// --- VISUAL CONSTANTS ---
const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Cyan   = "\033[36m"
)

// header prints a styled section header
func header(title string) {
	fmt.Println("\n" + Bold + Cyan + ":: " + title + " ::" + Reset)
}

func main() {
	var (
		configPath  string
		logFile     string
		metricsAddr string
	)
	pflag.StringVarP(&configPath, "config", "c", "", "path to the configuration file")
	pflag.StringVar(&logFile, "log-file", "", "override the log file path")
	pflag.StringVar(&metricsAddr, "metrics-addr", "", "expose Prometheus metrics on this address")
	pflag.Parse()

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, Red+"Failed to load configuration: "+err.Error()+Reset)
			os.Exit(1)
		}
		cfg = loaded
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}
	if metricsAddr != "" {
		cfg.MetricsAddr = metricsAddr
	}

	// Structured logs go to a file; stdout stays reserved for the console UI.
	out, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		fmt.Fprintln(os.Stderr, Red+"Failed to open log file: "+err.Error()+Reset)
		os.Exit(1)
	}
	defer out.Close()

	level, err := cfg.Level()
	if err != nil {
		fmt.Fprintln(os.Stderr, Red+err.Error()+Reset)
		os.Exit(1)
	}
	rootLogger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}))

	registry := prometheus.NewRegistry()
	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				rootLogger.Error("metrics server stopped", "error", err)
			}
		}()
	}

	var opts []amm.Option
	if cfg.KToleranceScaled != 0 {
		opts = append(opts, amm.WithToleranceScaled(cfg.KToleranceScaled))
	}

	eng, err := engine.New(&engine.Config{
		Pool:     amm.New(opts...),
		Registry: registry,
		Logger:   rootLogger.With("component", "engine"),
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, Red+"Failed to initialize engine: "+err.Error()+Reset)
		os.Exit(1)
	}

	header("Constant-Product Pool Console")
	fmt.Println("Type 'help' for the command list.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(Bold + "amm> " + Reset)
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "exit" || fields[0] == "quit" {
			return
		}
		runCommand(eng, fields[0], fields[1:])
	}
}

func runCommand(eng *engine.Engine, command string, args []string) {
	before := eng.Snapshot()

	var err error
	switch command {
	case "help":
		printHelp()
	case "init":
		err = cmdInit(eng, args)
	case "add":
		err = cmdAdd(eng, args)
	case "remove":
		err = cmdRemove(eng, args)
	case "swap":
		err = cmdSwap(eng, args)
	case "safeswap":
		err = cmdSafeSwap(eng, args)
	case "quote":
		err = cmdQuote(eng, args)
	case "quotein":
		err = cmdQuoteIn(eng, args)
	case "price":
		err = cmdPrice(eng)
	case "slippage":
		err = cmdSlippage(eng, args)
	case "position":
		err = cmdPosition(eng, args)
	case "providers":
		cmdProviders(eng)
	case "snapshot":
		printSnapshot(eng.Snapshot())
	default:
		fmt.Println(Yellow + "Unknown command. Type 'help'." + Reset)
	}
	if err != nil {
		fmt.Println(Red + "Error: " + err.Error() + Reset)
		return
	}

	if diff := amm.Diff(before, eng.Snapshot()); !diff.IsEmpty() {
		printDiff(diff)
	}
}

func printHelp() {
	header("Commands")
	fmt.Println("  init <amount0> <amount1> <provider>        initialize the pool")
	fmt.Println("  add <amount0> <amount1> <provider>         add liquidity at the current ratio")
	fmt.Println("  remove <shares> <provider>                 redeem liquidity shares")
	fmt.Println("  swap <0|1> <amountIn>                      execute a swap")
	fmt.Println("  safeswap <0|1> <amountIn> <minAmountOut>   swap with slippage protection")
	fmt.Println("  quote <0|1> <amountIn>                     price a swap without executing")
	fmt.Println("  quotein <0|1> <amountOut>                  input required for a desired output")
	fmt.Println("  price                                      marginal prices of both tokens")
	fmt.Println("  slippage <0|1> <amountIn>                  price impact of a quoted trade")
	fmt.Println("  position <provider>                        provider shares and redemption value")
	fmt.Println("  providers                                  list known providers")
	fmt.Println("  snapshot                                   aggregate pool state")
	fmt.Println("  exit                                       leave the console")
}

func cmdInit(eng *engine.Engine, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: init <amount0> <amount1> <provider>")
	}
	amount0, err := parseAmount(args[0])
	if err != nil {
		return err
	}
	amount1, err := parseAmount(args[1])
	if err != nil {
		return err
	}
	shares, err := eng.Initialize(amount0, amount1, args[2])
	if err != nil {
		return err
	}
	fmt.Printf(Green+"Initialized. %s received %s shares (%s locked forever).\n"+Reset,
		args[2], comma(shares), comma(big.NewInt(amm.MinimumLiquidity)))
	return nil
}

func cmdAdd(eng *engine.Engine, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: add <amount0> <amount1> <provider>")
	}
	amount0, err := parseAmount(args[0])
	if err != nil {
		return err
	}
	amount1, err := parseAmount(args[1])
	if err != nil {
		return err
	}
	result, err := eng.AddLiquidity(amount0, amount1, args[2])
	if err != nil {
		return err
	}
	fmt.Printf(Green+"%s received %s shares. Used %s/%s, refunded %s/%s.\n"+Reset,
		args[2], comma(result.Shares),
		comma(result.Used0), comma(result.Used1),
		comma(result.Refund0), comma(result.Refund1))
	return nil
}

func cmdRemove(eng *engine.Engine, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: remove <shares> <provider>")
	}
	liquidity, err := parseAmount(args[0])
	if err != nil {
		return err
	}
	amount0, amount1, err := eng.RemoveLiquidity(liquidity, args[1])
	if err != nil {
		return err
	}
	fmt.Printf(Green+"%s redeemed %s shares for %s token0 and %s token1.\n"+Reset,
		args[1], comma(liquidity), comma(amount0), comma(amount1))
	return nil
}

func cmdSwap(eng *engine.Engine, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: swap <0|1> <amountIn>")
	}
	tokenIn, err := parseToken(args[0])
	if err != nil {
		return err
	}
	amountIn, err := parseAmount(args[1])
	if err != nil {
		return err
	}
	amountOut, err := eng.Swap(tokenIn, amountIn)
	if err != nil {
		return err
	}
	fmt.Printf(Green+"Swapped %s %s for %s %s.\n"+Reset,
		comma(amountIn), tokenIn, comma(amountOut), tokenIn.Other())
	return nil
}

func cmdSafeSwap(eng *engine.Engine, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: safeswap <0|1> <amountIn> <minAmountOut>")
	}
	tokenIn, err := parseToken(args[0])
	if err != nil {
		return err
	}
	amountIn, err := parseAmount(args[1])
	if err != nil {
		return err
	}
	minAmountOut, err := parseAmount(args[2])
	if err != nil {
		return err
	}
	amountOut, err := eng.SafeSwap(tokenIn, amountIn, minAmountOut)
	if err != nil {
		return err
	}
	fmt.Printf(Green+"Swapped %s %s for %s %s (minimum was %s).\n"+Reset,
		comma(amountIn), tokenIn, comma(amountOut), tokenIn.Other(), comma(minAmountOut))
	return nil
}

func cmdQuote(eng *engine.Engine, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: quote <0|1> <amountIn>")
	}
	tokenIn, err := parseToken(args[0])
	if err != nil {
		return err
	}
	amountIn, err := parseAmount(args[1])
	if err != nil {
		return err
	}
	amountOut, err := eng.QuoteOutput(tokenIn, amountIn)
	if err != nil {
		return err
	}
	fmt.Printf("%s %s buys %s %s.\n", comma(amountIn), tokenIn, comma(amountOut), tokenIn.Other())
	return nil
}

func cmdQuoteIn(eng *engine.Engine, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: quotein <0|1> <amountOut>")
	}
	tokenOut, err := parseToken(args[0])
	if err != nil {
		return err
	}
	amountOut, err := parseAmount(args[1])
	if err != nil {
		return err
	}
	amountIn, err := eng.QuoteInput(tokenOut, amountOut)
	if err != nil {
		return err
	}
	fmt.Printf("%s %s costs %s %s.\n", comma(amountOut), tokenOut, comma(amountIn), tokenOut.Other())
	return nil
}

func cmdPrice(eng *engine.Engine) error {
	price0, err := eng.Pool().Price(amm.Token0)
	if err != nil {
		return err
	}
	price1, err := eng.Pool().Price(amm.Token1)
	if err != nil {
		return err
	}
	fmt.Printf("price(token0) = %s\nprice(token1) = %s\n",
		price0.FloatString(6), price1.FloatString(6))
	return nil
}

func cmdSlippage(eng *engine.Engine, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: slippage <0|1> <amountIn>")
	}
	tokenIn, err := parseToken(args[0])
	if err != nil {
		return err
	}
	amountIn, err := parseAmount(args[1])
	if err != nil {
		return err
	}
	slippage, err := eng.Slippage(tokenIn, amountIn)
	if err != nil {
		return err
	}
	fmt.Printf("Trading %s %s moves the price %s%% against you.\n",
		comma(amountIn), tokenIn, slippage.FloatString(4))
	return nil
}

func cmdPosition(eng *engine.Engine, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: position <provider>")
	}
	position := eng.Pool().ProviderPosition(args[0])
	fmt.Printf("%s holds %s shares, redeemable for %s token0 and %s token1.\n",
		args[0], comma(position.Shares), comma(position.Value0), comma(position.Value1))
	return nil
}

func cmdProviders(eng *engine.Engine) {
	providers := eng.Pool().Providers()
	if len(providers) == 0 {
		fmt.Println("No providers yet.")
		return
	}
	for _, provider := range providers {
		fmt.Printf("  %s: %s shares\n", provider, comma(eng.Pool().SharesOf(provider)))
	}
}

func printSnapshot(snap amm.Snapshot) {
	header("Pool State")
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "reserve0\t%s\n", comma(snap.Reserve0))
	fmt.Fprintf(w, "reserve1\t%s\n", comma(snap.Reserve1))
	fmt.Fprintf(w, "totalLiquidity\t%s\n", comma(snap.TotalLiquidity))
	fmt.Fprintf(w, "k\t%s\n", comma(snap.KValue))
	fmt.Fprintf(w, "price(token0)\t%s\n", snap.Price0.FloatString(6))
	fmt.Fprintf(w, "price(token1)\t%s\n", snap.Price1.FloatString(6))
	fmt.Fprintf(w, "lockedShares\t%s\n", comma(snap.LockedShares))
	fmt.Fprintf(w, "providers\t%d\n", snap.ProviderCount)
	w.Flush()
}

func printDiff(diff amm.SnapshotDiff) {
	fmt.Println(Yellow + "State changes:" + Reset)
	if diff.Reserve0 != nil {
		fmt.Printf("  reserve0 -> %s\n", comma(diff.Reserve0))
	}
	if diff.Reserve1 != nil {
		fmt.Printf("  reserve1 -> %s\n", comma(diff.Reserve1))
	}
	if diff.TotalLiquidity != nil {
		fmt.Printf("  totalLiquidity -> %s\n", comma(diff.TotalLiquidity))
	}
	if diff.KValue != nil {
		fmt.Printf("  k -> %s\n", comma(diff.KValue))
	}
	if diff.ProviderCount != nil {
		fmt.Printf("  providers -> %d\n", *diff.ProviderCount)
	}
}

func parseAmount(value string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(strings.ReplaceAll(value, "_", ""), 10)
	if !ok {
		return nil, fmt.Errorf("could not parse amount %q", value)
	}
	return amount, nil
}

func parseToken(value string) (amm.Token, error) {
	switch value {
	case "0":
		return amm.Token0, nil
	case "1":
		return amm.Token1, nil
	default:
		return 0, fmt.Errorf("token must be 0 or 1, got %q", value)
	}
}

func comma(value *big.Int) string {
	return humanize.BigComma(new(big.Int).Set(value))
}
