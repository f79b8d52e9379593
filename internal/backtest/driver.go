package backtest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/adhish9899/stat-arb/internal/config"
	"github.com/adhish9899/stat-arb/internal/marketdata"
	"github.com/adhish9899/stat-arb/internal/models"
	"github.com/adhish9899/stat-arb/internal/spread"
	"github.com/adhish9899/stat-arb/internal/threshold"
)

// Driver orchestrates the walk-forward simulation: per pair, per
// simulable date, per confidence level, calibrate over the trailing
// window and run the day's state machine.
type Driver struct {
	cfg      *config.Config
	provider marketdata.Provider
	logger   *zap.Logger
}

// NewDriver creates a driver.
func NewDriver(cfg *config.Config, provider marketdata.Provider, logger *zap.Logger) *Driver {
	return &Driver{cfg: cfg, provider: provider, logger: logger}
}

// Result is one pair's completed backtest.
type Result struct {
	Pair   models.Pair
	Ledger *Ledger
}

// Run backtests every configured pair and returns their ledgers in
// configuration order.
func (d *Driver) Run(ctx context.Context) ([]Result, error) {
	results := make([]Result, 0, len(d.cfg.Pairs))
	for _, pair := range d.cfg.Pairs {
		series, err := d.BuildSeries(ctx, pair)
		if err != nil {
			return nil, err
		}

		ledger, err := d.RunPair(series)
		if err != nil {
			return nil, err
		}

		summary := ledger.Summarize()
		d.logger.Info("pair backtest complete",
			zap.String("pair", pair.Name()),
			zap.Int("trades", summary.Trades),
			zap.Float64("pnl_bps", summary.TotalPnLBps),
			zap.Float64("win_rate", summary.WinRate),
		)

		results = append(results, Result{Pair: pair, Ledger: ledger})
	}
	return results, nil
}

// BuildSeries retrieves both legs' intraday and end-of-day closes and
// builds the pair's aligned signal series.
func (d *Driver) BuildSeries(ctx context.Context, pair models.Pair) (*spread.Series, error) {
	intradayA, err := d.provider.IntradayCloses(ctx, pair.LegA)
	if err != nil {
		return nil, fmt.Errorf("intraday closes for %s: %w", pair.LegA, err)
	}
	intradayB, err := d.provider.IntradayCloses(ctx, pair.LegB)
	if err != nil {
		return nil, fmt.Errorf("intraday closes for %s: %w", pair.LegB, err)
	}
	dailyA, err := d.provider.DailyCloses(ctx, pair.LegA)
	if err != nil {
		return nil, fmt.Errorf("daily closes for %s: %w", pair.LegA, err)
	}
	dailyB, err := d.provider.DailyCloses(ctx, pair.LegB)
	if err != nil {
		return nil, fmt.Errorf("daily closes for %s: %w", pair.LegB, err)
	}

	return spread.Build(pair, intradayA, intradayB, dailyA, dailyB, d.cfg.SessionStart, d.cfg.SessionEnd)
}

// RunPair walks a built series forward one trading date at a time,
// skipping the first lookBackDays+1 dates (insufficient history), and
// merges every confidence level's trades into one ledger.
func (d *Driver) RunPair(series *spread.Series) (*Ledger, error) {
	ledger := NewLedger(series.Pair)
	accountant := NewAccountant(d.cfg.SlippagePerLeg)
	dates := series.Dates

	for i := d.cfg.LookBackDays + 1; i < len(dates); i++ {
		sets, err := d.CalibrateDate(series, dates[i])
		if err != nil {
			return nil, err
		}
		dayTicks := series.DayTicks(dates[i])

		for _, set := range sets {
			machine := NewMachine(series.Pair, set, series, accountant, d.cfg.SqTime, d.logger)
			records, err := machine.Run(dayTicks)
			if err != nil {
				return nil, fmt.Errorf("simulate %s %s x=%v: %w", series.Pair.Name(), dates[i], set.Confidence, err)
			}
			ledger.Append(records...)
		}
	}

	return ledger, nil
}

// CalibrateDate calibrates every configured confidence level for one
// trading date from its trailing lookback window. The window spans the
// lookBackDays+1 dates preceding the trading date, inclusive on both
// ends.
func (d *Driver) CalibrateDate(series *spread.Series, date string) ([]threshold.Set, error) {
	idx := -1
	for i, candidate := range series.Dates {
		if candidate == date {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("no intraday data for %s on %s", series.Pair.Name(), date)
	}
	if idx < d.cfg.LookBackDays+1 {
		return nil, fmt.Errorf("insufficient history for %s on %s: need %d prior dates", series.Pair.Name(), date, d.cfg.LookBackDays+1)
	}

	start := series.Dates[idx-d.cfg.LookBackDays-1]
	end := series.Dates[idx-1]
	window := series.WindowChanges(start, end)

	sets := make([]threshold.Set, 0, len(d.cfg.EntryThresholds))
	for _, x := range d.cfg.EntryThresholds {
		set, err := threshold.Calibrate(window, threshold.Params{
			Confidence:                x,
			MinEntryExitSpreadDiffBps: d.cfg.MinEntryExitSpreadDiffBps,
			SqThreshDiff:              d.cfg.SqThreshDiff,
			MinSpreadThresh:           d.cfg.MinSpreadThresh,
			Step:                      d.cfg.QuantileStep,
		})
		if err != nil {
			return nil, fmt.Errorf("calibrate %s %s x=%v: %w", series.Pair.Name(), date, x, err)
		}
		sets = append(sets, set)
	}
	return sets, nil
}
