package threshold

import (
	"math"
	"testing"
)

func defaultParams(x float64) Params {
	return Params{
		Confidence:                x,
		MinEntryExitSpreadDiffBps: 30,
		SqThreshDiff:              0.4,
		MinSpreadThresh:           0.45,
		Step:                      0.05,
	}
}

func TestQuantileLinearInterpolation(t *testing.T) {
	sample := []float64{1, 2, 3, 4}

	cases := []struct {
		q    float64
		want float64
	}{
		{0.0, 1.0},
		{0.25, 1.75},
		{0.5, 2.5},
		{0.75, 3.25},
		{1.0, 4.0},
	}

	for _, tc := range cases {
		got := Quantile(sample, tc.q)
		if math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("Quantile(%v) = %v, want %v", tc.q, got, tc.want)
		}
	}
}

func TestCalibrateAdaptiveSearch(t *testing.T) {
	// 10 samples; quantile(0.9) interpolates between the 9th and 10th
	// order statistics.
	sample := []float64{-0.01, 0, 0.01, 0.02, 0.03, 0.04, 0.05, 0.06, 0.07, 0.08}

	set, err := Calibrate(sample, defaultParams(0.9))
	if err != nil {
		t.Fatalf("Calibrate() failed: %v", err)
	}

	wantUpperEntry := 0.071 // 0.07 + 0.1*(0.08-0.07)
	if math.Abs(set.Upper.Entry-wantUpperEntry) > 1e-12 {
		t.Errorf("Upper entry = %v, want %v", set.Upper.Entry, wantUpperEntry)
	}

	// The search starts at quantile(0.5) = 0.035; the gap to 0.071 is
	// already 360bps, so the first candidate wins.
	if !set.Upper.Enabled() {
		t.Fatal("Expected upper tail enabled")
	}
	wantUpperExit := 0.035
	if math.Abs(*set.Upper.Exit-wantUpperExit) > 1e-12 {
		t.Errorf("Upper exit = %v, want %v", *set.Upper.Exit, wantUpperExit)
	}

	wantLowerEntry := -0.001 // interpolated quantile(0.1)
	if math.Abs(set.Lower.Entry-wantLowerEntry) > 1e-12 {
		t.Errorf("Lower entry = %v, want %v", set.Lower.Entry, wantLowerEntry)
	}
	if !set.Lower.Enabled() {
		t.Fatal("Expected lower tail enabled")
	}
}

func TestCalibrateMinGapInvariant(t *testing.T) {
	samples := [][]float64{
		{-0.01, 0, 0.01, 0.02, 0.03, 0.04, 0.05, 0.06, 0.07, 0.08},
		{-0.004, -0.002, 0, 0.001, 0.002, 0.003, 0.004, 0.005, 0.006, 0.01},
		{-0.02, -0.01, 0, 0.01, 0.02},
	}

	for _, sample := range samples {
		for _, x := range []float64{0.9, 0.95} {
			p := defaultParams(x)
			set, err := Calibrate(sample, p)
			if err != nil {
				t.Fatalf("Calibrate() failed: %v", err)
			}

			// Every non-nil exit must clear the minimum gap.
			if set.Upper.Enabled() {
				gap := math.Abs(set.Upper.Entry-*set.Upper.Exit) * 1e4
				if gap < p.MinEntryExitSpreadDiffBps {
					t.Errorf("x=%v upper gap %vbps < %vbps", x, gap, p.MinEntryExitSpreadDiffBps)
				}
			}
			if set.Lower.Enabled() {
				gap := math.Abs(set.Lower.Entry-*set.Lower.Exit) * 1e4
				if gap < p.MinEntryExitSpreadDiffBps {
					t.Errorf("x=%v lower gap %vbps < %vbps", x, gap, p.MinEntryExitSpreadDiffBps)
				}
			}
		}
	}
}

func TestCalibrateStopLossReflection(t *testing.T) {
	sample := []float64{-0.01, 0, 0.01, 0.02, 0.03, 0.04, 0.05, 0.06, 0.07, 0.08}

	set, err := Calibrate(sample, defaultParams(0.9))
	if err != nil {
		t.Fatalf("Calibrate() failed: %v", err)
	}

	if !set.Upper.Enabled() || !set.Lower.Enabled() {
		t.Fatal("Expected both tails enabled")
	}

	// stop_loss - entry == entry - exit (upper), mirrored for lower.
	upWant := set.Upper.Entry - *set.Upper.Exit
	upGot := *set.Upper.StopLoss - set.Upper.Entry
	if math.Abs(upGot-upWant) > 1e-12 {
		t.Errorf("Upper stop-loss reflection: got %v, want %v", upGot, upWant)
	}

	loWant := *set.Lower.Exit - set.Lower.Entry
	loGot := set.Lower.Entry - *set.Lower.StopLoss
	if math.Abs(loGot-loWant) > 1e-12 {
		t.Errorf("Lower stop-loss reflection: got %v, want %v", loGot, loWant)
	}
}

func TestCalibrateNoValidExit(t *testing.T) {
	// Degenerate distribution: every quantile is identical, so no exit
	// can ever clear the minimum gap and both searches give up.
	sample := make([]float64, 10)
	for i := range sample {
		sample[i] = 0.001
	}

	set, err := Calibrate(sample, defaultParams(0.9))
	if err != nil {
		t.Fatalf("Calibrate() failed: %v", err)
	}

	if set.Upper.Enabled() {
		t.Error("Expected upper tail disabled for degenerate sample")
	}
	if set.Upper.StopLoss != nil {
		t.Error("Expected no upper stop-loss when exit search fails")
	}
	if set.Lower.Enabled() {
		t.Error("Expected lower tail disabled for degenerate sample")
	}
}

func TestCalibrateEmptySample(t *testing.T) {
	if _, err := Calibrate(nil, defaultParams(0.9)); err == nil {
		t.Error("Expected error for empty sample, got nil")
	}
}
