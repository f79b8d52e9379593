package marketdata

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/adhish9899/stat-arb/internal/models"
)

// Timestamp layouts of the CSV dumps (IEX intraday exports and a
// one-row-per-date daily file).
const (
	intradayLayout = "2006-01-02 15:04:05"
	dailyLayout    = "2006-01-02"
)

// CSVStore reads price series from a local directory of CSV dumps:
// <dir>/<SYMBOL>.csv holds minute closes ("timestamp,close"),
// <dir>/<SYMBOL>_daily.csv holds end-of-day closes ("date,close").
type CSVStore struct {
	dir string
}

// NewCSVStore creates a store rooted at dir
func NewCSVStore(dir string) *CSVStore {
	return &CSVStore{dir: dir}
}

// IntradayCloses implements Provider
func (s *CSVStore) IntradayCloses(_ context.Context, symbol string) ([]models.PricePoint, error) {
	path := filepath.Join(s.dir, symbol+".csv")
	return readSeries(path, intradayLayout)
}

// DailyCloses implements Provider
func (s *CSVStore) DailyCloses(_ context.Context, symbol string) ([]models.PricePoint, error) {
	path := filepath.Join(s.dir, symbol+"_daily.csv")
	return readSeries(path, dailyLayout)
}

// readSeries parses a two-column "time,close" CSV with a header row and
// returns the points sorted ascending by timestamp.
func readSeries(path, layout string) ([]models.PricePoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open series file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s: no data rows", path)
	}

	series := make([]models.PricePoint, 0, len(rows)-1)
	for i, row := range rows[1:] { // skip header
		if len(row) < 2 {
			return nil, fmt.Errorf("%s row %d: want 2 columns, got %d", path, i+2, len(row))
		}
		ts, err := time.Parse(layout, row[0])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: bad timestamp %q: %w", path, i+2, row[0], err)
		}
		price, err := decimal.NewFromString(row[1])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: bad close %q: %w", path, i+2, row[1], err)
		}
		series = append(series, models.PricePoint{Timestamp: ts, Price: price})
	}

	sort.Slice(series, func(i, j int) bool {
		return series[i].Timestamp.Before(series[j].Timestamp)
	})

	return series, nil
}
