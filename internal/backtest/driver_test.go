package backtest

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/adhish9899/stat-arb/internal/config"
	"github.com/adhish9899/stat-arb/internal/models"
)

// fakeProvider serves fixed in-memory series.
type fakeProvider struct {
	intraday map[string][]models.PricePoint
	daily    map[string][]models.PricePoint
}

func (f *fakeProvider) IntradayCloses(_ context.Context, symbol string) ([]models.PricePoint, error) {
	series, ok := f.intraday[symbol]
	if !ok {
		return nil, fmt.Errorf("no intraday fixture for %s", symbol)
	}
	return series, nil
}

func (f *fakeProvider) DailyCloses(_ context.Context, symbol string) ([]models.PricePoint, error) {
	series, ok := f.daily[symbol]
	if !ok {
		return nil, fmt.Errorf("no daily fixture for %s", symbol)
	}
	return series, nil
}

func driverConfig(t *testing.T) *config.Config {
	t.Helper()
	sqTime, _ := models.ParseTimeOfDay("15:50")
	start, _ := models.ParseTimeOfDay("09:40")
	end, _ := models.ParseTimeOfDay("16:00")
	return &config.Config{
		Pairs:                     []models.Pair{{LegA: "FOXA", LegB: "FOX"}},
		MinEntryExitSpreadDiffBps: 30,
		LookBackDays:              2,
		EntryThresholds:           []float64{0.9, 0.95},
		SqThreshDiff:              0.4,
		SqTime:                    sqTime,
		SlippagePerLeg:            0,
		MinSpreadThresh:           0.45,
		QuantileStep:              0.05,
		SessionStart:              start,
		SessionEnd:                end,
	}
}

// fixtureProvider builds five trading days of synthetic data. The
// end-of-day ratio is pinned at 2.0, so the intraday signal equals the
// chosen per-tick change values:
//   2021-03-01..03: quiet days spanning [-0.02, 0.02]
//   2021-03-04:     spike to 0.03 then reversion (signal exit)
//   2021-03-05:     spike to 0.03 that never reverts (square-off)
func fixtureProvider(t *testing.T) *fakeProvider {
	t.Helper()

	type day struct {
		date    string
		times   []string
		changes []float64
	}
	days := []day{
		{"2021-03-01", []string{"09:50:00", "09:51:00", "09:52:00", "09:53:00", "09:54:00"}, []float64{-0.02, -0.01, 0, 0.01, 0.02}},
		{"2021-03-02", []string{"09:50:00", "09:51:00", "09:52:00", "09:53:00", "09:54:00"}, []float64{-0.02, -0.01, 0, 0.01, 0.02}},
		{"2021-03-03", []string{"09:50:00", "09:51:00", "09:52:00", "09:53:00", "09:54:00"}, []float64{-0.02, -0.01, 0, 0.01, 0.02}},
		{"2021-03-04", []string{"09:50:00", "09:51:00"}, []float64{0.03, -0.005}},
		{"2021-03-05", []string{"09:50:00", "10:00:00", "15:51:00"}, []float64{0.03, 0.01, 0.01}},
	}

	f := &fakeProvider{
		intraday: map[string][]models.PricePoint{},
		daily:    map[string][]models.PricePoint{},
	}

	for _, d := range days {
		for i, clock := range d.times {
			ts := mustTime(t, d.date+" "+clock)
			f.intraday["FOXA"] = append(f.intraday["FOXA"], models.PricePoint{
				Timestamp: ts, Price: decimal.NewFromFloat(100 * (1 + d.changes[i])),
			})
			f.intraday["FOX"] = append(f.intraday["FOX"], models.PricePoint{
				Timestamp: ts, Price: decimal.NewFromFloat(50),
			})
		}
	}

	// One extra end-of-day close before the intraday range so the
	// first intraday date has a reference spread.
	for _, date := range []string{"2021-02-26", "2021-03-01", "2021-03-02", "2021-03-03", "2021-03-04", "2021-03-05"} {
		ts := mustTime(t, date+" 00:00:00")
		f.daily["FOXA"] = append(f.daily["FOXA"], models.PricePoint{Timestamp: ts, Price: decimal.NewFromFloat(100)})
		f.daily["FOX"] = append(f.daily["FOX"], models.PricePoint{Timestamp: ts, Price: decimal.NewFromFloat(50)})
	}

	return f
}

func TestDriverWalkForward(t *testing.T) {
	driver := NewDriver(driverConfig(t), fixtureProvider(t), zap.NewNop())

	results, err := driver.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}

	ledger := results[0].Ledger

	// Both confidence levels trade on each of the two simulable days.
	if len(ledger.Records) != 4 {
		t.Fatalf("Expected 4 trades, got %d", len(ledger.Records))
	}

	// The first lookBackDays+1 dates have insufficient history and are
	// skipped; every trade exits on one of the last two dates.
	for _, r := range ledger.Records {
		date := models.DateKey(r.ExitTime)
		if date != "2021-03-04" && date != "2021-03-05" {
			t.Errorf("Trade exited on skipped date %s", date)
		}
	}

	for _, r := range ledger.Records {
		switch models.DateKey(r.ExitTime) {
		case "2021-03-04":
			if r.Reason != models.ExitSignal {
				t.Errorf("Expected signal exit on 2021-03-04, got %s", r.Reason)
			}
			if !r.PnL.IsPositive() {
				t.Errorf("Expected winning reversion trade, got pnl %s", r.PnL)
			}
		case "2021-03-05":
			if r.Reason != models.ExitSquareOff {
				t.Errorf("Expected square-off exit on 2021-03-05, got %s", r.Reason)
			}
		}
	}

	daily := ledger.Daily()
	if len(daily) != 2 {
		t.Fatalf("Expected 2 daily rows, got %d", len(daily))
	}
}

func TestDriverIsDeterministic(t *testing.T) {
	cfg := driverConfig(t)
	provider := fixtureProvider(t)

	first, err := NewDriver(cfg, provider, zap.NewNop()).Run(context.Background())
	if err != nil {
		t.Fatalf("first Run() failed: %v", err)
	}
	second, err := NewDriver(cfg, provider, zap.NewNop()).Run(context.Background())
	if err != nil {
		t.Fatalf("second Run() failed: %v", err)
	}

	a, b := first[0].Ledger.Records, second[0].Ledger.Records
	if len(a) != len(b) {
		t.Fatalf("Run lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if !a[i].ExitTime.Equal(b[i].ExitTime) || !a[i].PnL.Equal(b[i].PnL) || a[i].Reason != b[i].Reason {
			t.Errorf("Record %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestDriverFailsOnMissingData(t *testing.T) {
	provider := &fakeProvider{
		intraday: map[string][]models.PricePoint{},
		daily:    map[string][]models.PricePoint{},
	}
	driver := NewDriver(driverConfig(t), provider, zap.NewNop())

	if _, err := driver.Run(context.Background()); err == nil {
		t.Error("Expected error for missing series, got nil")
	}
}
