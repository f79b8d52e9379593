package marketdata

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestCSVStoreIntraday(t *testing.T) {
	dir := t.TempDir()
	// Rows deliberately out of order; the store must sort them.
	writeFile(t, filepath.Join(dir, "GOOGL.csv"),
		"timestamp,close\n"+
			"2021-02-01 09:41:00,2036.10\n"+
			"2021-02-01 09:40:00,2035.50\n")

	store := NewCSVStore(dir)
	series, err := store.IntradayCloses(context.Background(), "GOOGL")
	if err != nil {
		t.Fatalf("IntradayCloses() failed: %v", err)
	}

	if len(series) != 2 {
		t.Fatalf("Expected 2 points, got %d", len(series))
	}

	want := time.Date(2021, 2, 1, 9, 40, 0, 0, time.UTC)
	if !series[0].Timestamp.Equal(want) {
		t.Errorf("Expected first timestamp %v, got %v", want, series[0].Timestamp)
	}
	if !series[0].Price.Equal(decimal.NewFromFloat(2035.50)) {
		t.Errorf("Expected first close 2035.50, got %s", series[0].Price)
	}
}

func TestCSVStoreDaily(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "GOOG_daily.csv"),
		"date,close\n"+
			"2021-02-01,1901.05\n"+
			"2021-02-02,1927.51\n")

	store := NewCSVStore(dir)
	series, err := store.DailyCloses(context.Background(), "GOOG")
	if err != nil {
		t.Fatalf("DailyCloses() failed: %v", err)
	}

	if len(series) != 2 {
		t.Fatalf("Expected 2 points, got %d", len(series))
	}
	if series[1].Timestamp.Day() != 2 {
		t.Errorf("Expected second date Feb 2, got %v", series[1].Timestamp)
	}
}

func TestCSVStoreMissingFile(t *testing.T) {
	store := NewCSVStore(t.TempDir())
	if _, err := store.IntradayCloses(context.Background(), "MISSING"); err == nil {
		t.Error("Expected error for missing file, got nil")
	}
}

func TestCSVStoreRejectsMalformedRow(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "BAD.csv"),
		"timestamp,close\n"+
			"2021-02-01 09:40:00,not-a-price\n")

	store := NewCSVStore(dir)
	if _, err := store.IntradayCloses(context.Background(), "BAD"); err == nil {
		t.Error("Expected error for malformed close, got nil")
	}
}
