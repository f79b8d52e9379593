package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-date key format used throughout the
// backtester (reference spreads, daily PnL grouping).
const DateLayout = "2006-01-02"

// PricePoint is a single close observation for one symbol.
type PricePoint struct {
	Timestamp time.Time       `json:"timestamp"`
	Price     decimal.Decimal `json:"price"`
}

// Pair is an ordered two-legged instrument. The traded signal is the
// ratio LegA/LegB, so leg order is significant and fixed at config time.
type Pair struct {
	LegA string `json:"leg_a"`
	LegB string `json:"leg_b"`
}

// ParsePair parses "GOOGL/GOOG" into a Pair.
func ParsePair(s string) (Pair, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Pair{}, fmt.Errorf("invalid pair %q: want LEGA/LEGB", s)
	}
	return Pair{LegA: strings.ToUpper(parts[0]), LegB: strings.ToUpper(parts[1])}, nil
}

// Name returns the display form, e.g. "GOOGL/GOOG".
func (p Pair) Name() string {
	return p.LegA + "/" + p.LegB
}

// Symbols returns both legs in order.
func (p Pair) Symbols() []string {
	return []string{p.LegA, p.LegB}
}

// PositionState is the state of a per-day simulated position.
type PositionState string

const (
	Flat  PositionState = "flat"
	Long  PositionState = "long"  // long LegA, short LegB (ratio rises)
	Short PositionState = "short" // short LegA, long LegB (ratio falls)
)

// ExitReason records why a position was closed.
type ExitReason string

const (
	ExitSignal    ExitReason = "signal"
	ExitSquareOff ExitReason = "eod_square_off"
)

// TradeRecord is one closed round trip. PnL is a dimensionless return
// fraction normalized by entry capital (multiply by 1e4 for bps).
type TradeRecord struct {
	Pair     Pair            `json:"pair"`
	ExitTime time.Time       `json:"exit_time"`
	PnL      decimal.Decimal `json:"pnl"`
	Reason   ExitReason      `json:"reason"`
}

// DateKey formats a timestamp as its calendar-date key.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// TimeOfDay is a clock time without a date, at minute granularity,
// stored as minutes since midnight. Used for the trading session window
// and the end-of-day square-off cutoff.
type TimeOfDay int

// ParseTimeOfDay parses "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m int
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	return TimeOfDay(h*60 + m), nil
}

// ClockOf extracts the TimeOfDay of a timestamp.
func ClockOf(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}

func (d TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(d)/60, int(d)%60)
}
