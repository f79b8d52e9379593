package spread

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/adhish9899/stat-arb/internal/models"
)

// Tick is one aligned intraday observation of a pair: both leg prices,
// their ratio, and the change-in-spread signal against the previous
// trading day's end-of-day ratio.
type Tick struct {
	Timestamp time.Time
	PriceA    decimal.Decimal
	PriceB    decimal.Decimal
	Ratio     float64
	Change    float64
}

// Series is the fully built intraday signal series for one pair:
// inner-joined leg prices restricted to the trading session, with the
// change-in-spread signal and a per-date index for day slicing.
type Series struct {
	Pair  models.Pair
	Ticks []Tick

	// Dates is the sorted unique list of calendar-date keys present.
	Dates []string

	dayStart  map[string]int // date key -> index of first tick of that day
	dayEnd    map[string]int // date key -> index one past last tick
	byTime    map[int64]int  // unix timestamp -> tick index
	reference map[string]float64
}

// Build aligns the two intraday close series (inner join on timestamp,
// rows missing in either leg dropped), restricts them to the
// [sessionStart, sessionEnd] window, and computes the ratio and
// change-in-spread signal. The reference spread for a date is the
// end-of-day ratio of the last trading day before it; an intraday date
// with no reference is an error, never a silent default.
func Build(
	pair models.Pair,
	intradayA, intradayB []models.PricePoint,
	dailyA, dailyB []models.PricePoint,
	sessionStart, sessionEnd models.TimeOfDay,
) (*Series, error) {
	reference, err := referenceSpreads(dailyA, dailyB)
	if err != nil {
		return nil, fmt.Errorf("build reference spreads for %s: %w", pair.Name(), err)
	}

	bByTime := make(map[int64]decimal.Decimal, len(intradayB))
	for _, p := range intradayB {
		bByTime[p.Timestamp.Unix()] = p.Price
	}

	s := &Series{
		Pair:      pair,
		dayStart:  make(map[string]int),
		dayEnd:    make(map[string]int),
		byTime:    make(map[int64]int),
		reference: reference,
	}

	var prev time.Time
	for _, a := range intradayA {
		priceB, ok := bByTime[a.Timestamp.Unix()]
		if !ok {
			continue // missing in leg B, drop the row
		}
		clock := models.ClockOf(a.Timestamp)
		if clock < sessionStart || clock > sessionEnd {
			continue
		}
		if !prev.IsZero() && !a.Timestamp.After(prev) {
			return nil, fmt.Errorf("intraday series for %s not strictly ascending at %s", pair.Name(), a.Timestamp)
		}
		prev = a.Timestamp

		date := models.DateKey(a.Timestamp)
		ref, ok := reference[date]
		if !ok {
			return nil, fmt.Errorf("no reference spread for %s on %s", pair.Name(), date)
		}

		ratio := a.Price.Div(priceB).InexactFloat64()
		tick := Tick{
			Timestamp: a.Timestamp,
			PriceA:    a.Price,
			PriceB:    priceB,
			Ratio:     ratio,
			Change:    ratio/ref - 1,
		}

		if _, seen := s.dayStart[date]; !seen {
			s.dayStart[date] = len(s.Ticks)
			s.Dates = append(s.Dates, date)
		}
		s.byTime[a.Timestamp.Unix()] = len(s.Ticks)
		s.Ticks = append(s.Ticks, tick)
		s.dayEnd[date] = len(s.Ticks)
	}

	if len(s.Ticks) == 0 {
		return nil, fmt.Errorf("no overlapping intraday data for %s", pair.Name())
	}

	sort.Strings(s.Dates)
	return s, nil
}

// referenceSpreads inner-joins the two end-of-day series by date,
// computes the A/B close ratio, and shifts it forward one trading day:
// date d maps to the ratio of the last trading day before d. The first
// date of the joined series therefore has no reference.
func referenceSpreads(dailyA, dailyB []models.PricePoint) (map[string]float64, error) {
	bByDate := make(map[string]decimal.Decimal, len(dailyB))
	for _, p := range dailyB {
		bByDate[models.DateKey(p.Timestamp)] = p.Price
	}

	type eod struct {
		date  string
		ratio float64
	}
	var joined []eod
	for _, a := range dailyA {
		date := models.DateKey(a.Timestamp)
		priceB, ok := bByDate[date]
		if !ok {
			continue
		}
		if priceB.IsZero() {
			return nil, fmt.Errorf("zero end-of-day close on %s", date)
		}
		joined = append(joined, eod{date: date, ratio: a.Price.Div(priceB).InexactFloat64()})
	}
	if len(joined) < 2 {
		return nil, fmt.Errorf("need at least 2 overlapping end-of-day closes, got %d", len(joined))
	}

	sort.Slice(joined, func(i, j int) bool { return joined[i].date < joined[j].date })

	ref := make(map[string]float64, len(joined)-1)
	for i := 1; i < len(joined); i++ {
		ref[joined[i].date] = joined[i-1].ratio
	}
	return ref, nil
}

// DayTicks returns the ticks of one calendar date, time-ordered.
func (s *Series) DayTicks(date string) []Tick {
	start, ok := s.dayStart[date]
	if !ok {
		return nil
	}
	return s.Ticks[start:s.dayEnd[date]]
}

// WindowChanges pools the change-in-spread values of all dates in
// [startDate, endDate] inclusive into one sample for quantile
// estimation.
func (s *Series) WindowChanges(startDate, endDate string) []float64 {
	var out []float64
	for _, date := range s.Dates {
		if date < startDate || date > endDate {
			continue
		}
		for _, tick := range s.DayTicks(date) {
			out = append(out, tick.Change)
		}
	}
	return out
}

// PriceAt looks up the raw close of one leg at an aligned timestamp.
func (s *Series) PriceAt(ts time.Time, symbol string) (decimal.Decimal, error) {
	idx, ok := s.byTime[ts.Unix()]
	if !ok {
		return decimal.Zero, fmt.Errorf("no aligned tick at %s", ts)
	}
	switch symbol {
	case s.Pair.LegA:
		return s.Ticks[idx].PriceA, nil
	case s.Pair.LegB:
		return s.Ticks[idx].PriceB, nil
	}
	return decimal.Zero, fmt.Errorf("symbol %s is not a leg of %s", symbol, s.Pair.Name())
}

// ReferenceSpread returns the reference (previous end-of-day) ratio for
// a date.
func (s *Series) ReferenceSpread(date string) (float64, bool) {
	ref, ok := s.reference[date]
	return ref, ok
}
