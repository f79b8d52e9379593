package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adhish9899/stat-arb/internal/backtest"
)

func init() {
	rootCmd.AddCommand(pairsCmd)
}

var pairsCmd = &cobra.Command{
	Use:   "pairs",
	Short: "List configured pairs and their data coverage",
	Long:  `Shows each configured pair with its aligned tick count and trading date range.`,
	RunE:  runPairs,
}

func runPairs(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if len(cfg.Pairs) == 0 {
		fmt.Println("No pairs configured")
		return nil
	}

	driver := backtest.NewDriver(cfg, provider, logger)
	for _, pair := range cfg.Pairs {
		series, err := driver.BuildSeries(ctx, pair)
		if err != nil {
			fmt.Printf("%-12s no data (%v)\n", pair.Name(), err)
			continue
		}

		first := series.Dates[0]
		last := series.Dates[len(series.Dates)-1]
		simulable := len(series.Dates) - cfg.LookBackDays - 1
		if simulable < 0 {
			simulable = 0
		}
		fmt.Printf("%-12s %5d ticks  %3d dates  %s .. %s  (%d simulable)\n",
			pair.Name(), len(series.Ticks), len(series.Dates), first, last, simulable)
	}

	return nil
}
