package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/adhish9899/stat-arb/internal/backtest"
	"github.com/adhish9899/stat-arb/internal/models"
	"github.com/adhish9899/stat-arb/pkg/formatters"
)

func init() {
	rootCmd.AddCommand(thresholdsCmd)
}

var thresholdsCmd = &cobra.Command{
	Use:   "thresholds PAIR DATE",
	Short: "Show calibrated thresholds for one pair and date",
	Long: `Calibrates entry/exit/stop-loss thresholds for the given pair on the
given trading date (YYYY-MM-DD), using the same trailing lookback window
the backtest would use, and prints them per confidence level.

Example:
  stat-arb thresholds GOOGL/GOOG 2021-03-05`,
	Args: cobra.ExactArgs(2),
	RunE: runThresholds,
}

func runThresholds(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	pair, err := models.ParsePair(args[0])
	if err != nil {
		return err
	}
	if _, err := time.Parse(models.DateLayout, args[1]); err != nil {
		return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", args[1])
	}

	driver := backtest.NewDriver(cfg, provider, logger)
	series, err := driver.BuildSeries(ctx, pair)
	if err != nil {
		return fmt.Errorf("failed to build series for %s: %w", pair.Name(), err)
	}

	sets, err := driver.CalibrateDate(series, args[1])
	if err != nil {
		return err
	}

	fmt.Printf("%s thresholds for %s\n", pair.Name(), args[1])
	fmt.Println(formatters.FormatThresholdTable(sets))

	return nil
}
