package threshold

import (
	"fmt"
	"math"
	"sort"
)

// Params controls calibration for one confidence level.
type Params struct {
	Confidence                float64 // target quantile x, e.g. 0.95
	MinEntryExitSpreadDiffBps float64 // minimum profitable entry-exit gap
	SqThreshDiff              float64 // starting offset of the exit quantile from x
	MinSpreadThresh           float64 // how far the exit quantile search may go
	Step                      float64 // quantile step per search iteration
}

// Tail holds the calibrated levels of one side of the distribution.
// A nil Exit means the adaptive search found no exit far enough from
// the entry; that tail takes no entries for the day.
type Tail struct {
	Entry    float64
	Exit     *float64
	StopLoss *float64
}

// Enabled reports whether this tail may open positions.
func (t Tail) Enabled() bool {
	return t.Exit != nil
}

// Set is the calibrated threshold set of one confidence level.
type Set struct {
	Confidence float64
	Upper      Tail
	Lower      Tail
}

// Calibrate computes entry, adaptively searched exit, and derived
// stop-loss levels for both tails from the pooled lookback sample.
//
// The exit search relaxes the exit quantile toward the median in Step
// increments until the entry-exit gap clears the minimum profitable
// distance in bps, giving up once the quantile passes MinSpreadThresh
// (mirrored for the lower tail).
func Calibrate(sample []float64, p Params) (Set, error) {
	if len(sample) == 0 {
		return Set{}, fmt.Errorf("empty calibration sample")
	}

	sorted := append([]float64(nil), sample...)
	sort.Float64s(sorted)

	set := Set{Confidence: p.Confidence}

	set.Upper.Entry = quantileSorted(sorted, p.Confidence)
	set.Upper.Exit = searchExit(sorted, p, set.Upper.Entry, true)
	if set.Upper.Enabled() {
		sl := set.Upper.Entry + (set.Upper.Entry - *set.Upper.Exit)
		set.Upper.StopLoss = &sl
	}

	set.Lower.Entry = quantileSorted(sorted, 1-p.Confidence)
	set.Lower.Exit = searchExit(sorted, p, set.Lower.Entry, false)
	if set.Lower.Enabled() {
		sl := set.Lower.Entry - (*set.Lower.Exit - set.Lower.Entry)
		set.Lower.StopLoss = &sl
	}

	return set, nil
}

// searchExit runs the bounded adaptive exit-quantile search for one
// tail. Returns nil when the search exhausts its quantile range without
// clearing the minimum entry-exit gap.
func searchExit(sorted []float64, p Params, entry float64, upper bool) *float64 {
	var exitQuantile float64
	if upper {
		exitQuantile = p.Confidence - p.SqThreshDiff
	} else {
		exitQuantile = 1 - (p.Confidence - p.SqThreshDiff)
	}

	// Bounded loop: the search can take at most (start-floor)/Step
	// steps before it crosses the give-up boundary.
	var span float64
	if upper {
		span = exitQuantile - p.MinSpreadThresh
	} else {
		span = (1 - p.MinSpreadThresh) - exitQuantile
	}
	maxIter := int(math.Floor(span/p.Step)) + 2
	if maxIter < 1 {
		maxIter = 1
	}

	for i := 0; i < maxIter; i++ {
		exit := quantileSorted(sorted, exitQuantile)
		if math.Abs(entry-exit)*1e4 >= p.MinEntryExitSpreadDiffBps {
			return &exit
		}
		if upper {
			if exitQuantile < p.MinSpreadThresh {
				return nil
			}
			exitQuantile -= p.Step
		} else {
			if exitQuantile > 1-p.MinSpreadThresh {
				return nil
			}
			exitQuantile += p.Step
		}
	}
	return nil
}

// Quantile computes the empirical quantile of a sample with linear
// interpolation between order statistics.
func Quantile(sample []float64, q float64) float64 {
	sorted := append([]float64(nil), sample...)
	sort.Float64s(sorted)
	return quantileSorted(sorted, q)
}

func quantileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := lo + 1
	frac := pos - float64(lo)
	if hi >= len(sorted) {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
