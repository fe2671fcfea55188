// Package stats computes descriptive statistics for table columns.
package stats

import (
	"math"
	"sort"
)

// Mean computes the average of a slice.
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range x {
		sum += v
	}
	return sum / float64(len(x))
}

// SampleStd computes the standard deviation with one degree of freedom removed.
// It is NaN for fewer than two values.
func SampleStd(x []float64) float64 {
	n := len(x)
	if n < 2 {
		return math.NaN()
	}
	mean := Mean(x)
	sumSq := 0.0
	for _, v := range x {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// Percentile returns the p-th percentile (0 <= p <= 100) using linear
// interpolation between closest ranks. sorted must be in ascending order.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[n-1]
	}
	rank := p / 100 * float64(n-1)
	lower := int(rank)
	upper := lower + 1
	weight := rank - float64(lower)
	if upper >= n {
		return sorted[lower]
	}
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// Sorted returns an ascending copy of x.
func Sorted(x []float64) []float64 {
	cp := make([]float64, len(x))
	copy(cp, x)
	sort.Float64s(cp)
	return cp
}
