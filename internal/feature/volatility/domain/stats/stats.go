// Package stats holds the return and rolling-deviation math behind the
// volatility series.
package stats

import (
	"math"

	"goldeye_backend/internal/feature/volatility/domain/timeframe"
)

// Returns computes simple returns close[i]/close[i-1] - 1.
// The result has one element fewer than closes; index k is the return ending at closes[k+1].
func Returns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		out[i-1] = closes[i]/closes[i-1] - 1
	}
	return out
}

// StdDev is the sample standard deviation (n-1 denominator). It returns NaN for fewer than two values.
func StdDev(xs []float64) float64 {
	n := len(xs)
	if n < 2 {
		return math.NaN()
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(n)
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}

// RollingStdDev returns StdDev over each full trailing window of xs.
// Element k covers xs[k : k+window], so the result has len(xs)-window+1
// elements, or none when window < 2 or xs is shorter than window.
func RollingStdDev(xs []float64, window int) []float64 {
	if window < 2 || len(xs) < window {
		return nil
	}
	out := make([]float64, 0, len(xs)-window+1)
	for end := window; end <= len(xs); end++ {
		out = append(out, StdDev(xs[end-window:end]))
	}
	return out
}

// AnnualizationFactor scales a per-bar deviation to a yearly one: sqrt of the
// number of bars per year for the interval.
func AnnualizationFactor(interval string) (float64, error) {
	iv, err := timeframe.ParseInterval(interval)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(iv.BarsPerYear), nil
}
