package formatters

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/adhish9899/stat-arb/internal/backtest"
	"github.com/adhish9899/stat-arb/internal/threshold"
)

// Colors for different values
var (
	ColorGreen  = text.FgGreen
	ColorRed    = text.FgRed
	ColorYellow = text.FgYellow
	ColorGray   = text.FgHiBlack
)

// FormatBps formats a basis-point value with color by sign
func FormatBps(bps float64) string {
	s := fmt.Sprintf("%.2f", bps)
	if bps > 0 {
		return ColorGreen.Sprint(s)
	} else if bps < 0 {
		return ColorRed.Sprint(s)
	}
	return s
}

// FormatPercent formats a 0..1 fraction as a percentage
func FormatPercent(frac float64) string {
	return fmt.Sprintf("%.1f%%", frac*100)
}

// FormatResultsTable renders the per-pair backtest summary
func FormatResultsTable(results []backtest.Result) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{
		"Pair", "Trades", "Win Rate", "PnL (bps)", "Max DD (bps)"})

	totalBps := 0.0
	for _, res := range results {
		s := res.Ledger.Summarize()
		t.AppendRow(table.Row{
			res.Pair.Name(),
			s.Trades,
			FormatPercent(s.WinRate),
			FormatBps(s.TotalPnLBps),
			fmt.Sprintf("%.2f", s.MaxDrawdownBps),
		})
		totalBps += s.TotalPnLBps
	}

	t.AppendSeparator()
	t.AppendRow(table.Row{"TOTAL", "", "", FormatBps(totalBps), ""})

	return t.Render()
}

// FormatDailyPnLTable renders one pair's daily and cumulative PnL
func FormatDailyPnLTable(daily []backtest.DailyPnL) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{"Date", "PnL (bps)", "Cumulative (bps)"})

	for _, day := range daily {
		t.AppendRow(table.Row{
			day.Date,
			FormatBps(day.PnL.InexactFloat64() * 1e4),
			FormatBps(day.Cumulative.InexactFloat64() * 1e4),
		})
	}

	if len(daily) == 0 {
		t.AppendRow(table.Row{"No trades", "", ""})
	}

	return t.Render()
}

// FormatThresholdTable renders calibrated levels for inspection
func FormatThresholdTable(sets []threshold.Set) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{
		"Confidence", "Side", "Entry", "Exit", "Stop Loss"})

	appendTail := func(confidence float64, side string, tail threshold.Tail) {
		exit := ColorGray.Sprint("disabled")
		stopLoss := ColorGray.Sprint("-")
		if tail.Enabled() {
			exit = fmt.Sprintf("%.6f", *tail.Exit)
			stopLoss = fmt.Sprintf("%.6f", *tail.StopLoss)
		}
		t.AppendRow(table.Row{
			fmt.Sprintf("%.2f", confidence),
			side,
			fmt.Sprintf("%.6f", tail.Entry),
			exit,
			stopLoss,
		})
	}

	for _, set := range sets {
		appendTail(set.Confidence, "upper", set.Upper)
		appendTail(set.Confidence, "lower", set.Lower)
	}

	return t.Render()
}
