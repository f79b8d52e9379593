package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adhish9899/stat-arb/internal/backtest"
	"github.com/adhish9899/stat-arb/pkg/formatters"
)

var showDaily bool

func init() {
	rootCmd.AddCommand(backtestCmd)
	rootCmd.AddCommand(btCmd) // Alias

	backtestCmd.Flags().BoolVar(&showDaily, "daily", false, "show per-date P&L breakdown for each pair")
	btCmd.Flags().BoolVar(&showDaily, "daily", false, "show per-date P&L breakdown for each pair")
}

var btCmd = &cobra.Command{
	Use:   "bt",
	Short: "Run the backtest (alias)",
	RunE:  runBacktest,
}

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run the walk-forward backtest over all configured pairs",
	Long: `Replays each configured pair's intraday spread, calibrating thresholds
from the trailing lookback window for every simulable date, and prints a
per-pair summary of trades, win rate, P&L and drawdown.`,
	RunE: runBacktest,
}

func runBacktest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	driver := backtest.NewDriver(cfg, provider, logger)
	results, err := driver.Run(ctx)
	if err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}

	fmt.Println(formatters.FormatResultsTable(results))

	if showDaily {
		for _, result := range results {
			fmt.Printf("\n%s daily P&L\n", result.Pair.Name())
			fmt.Println(formatters.FormatDailyPnLTable(result.Ledger.Daily()))
		}
	}

	return nil
}
