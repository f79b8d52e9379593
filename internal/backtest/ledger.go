package backtest

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/adhish9899/stat-arb/internal/models"
)

// Ledger is the append-only trade history of one pair. Records from
// different confidence levels are merged; the ledger is owned by the
// caller of the driver.
type Ledger struct {
	Pair    models.Pair
	Records []models.TradeRecord
}

// NewLedger creates an empty ledger for a pair.
func NewLedger(pair models.Pair) *Ledger {
	return &Ledger{Pair: pair}
}

// Append adds closed trades to the ledger.
func (l *Ledger) Append(records ...models.TradeRecord) {
	l.Records = append(l.Records, records...)
}

// TotalPnL sums all trade return fractions.
func (l *Ledger) TotalPnL() decimal.Decimal {
	total := decimal.Zero
	for _, r := range l.Records {
		total = total.Add(r.PnL)
	}
	return total
}

// DailyPnL is one calendar date's summed PnL with the running total.
type DailyPnL struct {
	Date       string
	PnL        decimal.Decimal
	Cumulative decimal.Decimal
}

// Daily groups trades by calendar date, sums same-day PnL, and carries
// a cumulative sum, sorted by date.
func (l *Ledger) Daily() []DailyPnL {
	byDate := make(map[string]decimal.Decimal)
	for _, r := range l.Records {
		date := models.DateKey(r.ExitTime)
		byDate[date] = byDate[date].Add(r.PnL)
	}

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	out := make([]DailyPnL, 0, len(dates))
	cumulative := decimal.Zero
	for _, date := range dates {
		cumulative = cumulative.Add(byDate[date])
		out = append(out, DailyPnL{Date: date, PnL: byDate[date], Cumulative: cumulative})
	}
	return out
}

// Summary holds aggregate metrics of a ledger.
type Summary struct {
	Trades         int
	Wins           int
	WinRate        float64
	TotalPnLBps    float64
	MaxDrawdownBps float64
}

// Summarize computes trade count, win rate, total return, and the
// maximum peak-to-trough drawdown of the cumulative daily curve.
func (l *Ledger) Summarize() Summary {
	s := Summary{Trades: len(l.Records)}
	for _, r := range l.Records {
		if r.PnL.IsPositive() {
			s.Wins++
		}
	}
	if s.Trades > 0 {
		s.WinRate = float64(s.Wins) / float64(s.Trades)
	}
	s.TotalPnLBps = l.TotalPnL().InexactFloat64() * 1e4

	peak := decimal.Zero
	maxDD := decimal.Zero
	for _, day := range l.Daily() {
		if day.Cumulative.GreaterThan(peak) {
			peak = day.Cumulative
		}
		dd := peak.Sub(day.Cumulative)
		if dd.GreaterThan(maxDD) {
			maxDD = dd
		}
	}
	s.MaxDrawdownBps = maxDD.InexactFloat64() * 1e4

	return s
}
