// Package robuststat provides the robust statistics primitives and
// streaming accumulators shared by the spectral, artifact, and reference
// packages: median/MAD with a standard-deviation fallback, Welford running
// moments, reservoir sampling, an exponential smoother, and a dwell/
// refractory reward gate.
package robuststat

import (
	"math"
	"sort"
)

// Median returns the median of values without modifying the caller's slice.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	v := append([]float64(nil), values...)
	return MedianInPlace(v)
}

// MedianInPlace returns the median of v, reordering v in the process.
func MedianInPlace(v []float64) float64 {
	n := len(v)
	if n == 0 {
		return 0
	}
	mid := n / 2
	sort.Float64s(v) // simplicity over nth_element; n is small in practice
	med := v[mid]
	if n%2 == 0 {
		med = 0.5 * (med + v[mid-1])
	}
	return med
}

// RobustScale returns 1.4826*MAD(values, median), falling back to the
// sample standard deviation when MAD <= 1e-12, and finally to 1.0. Never
// returns a value <= 0.
func RobustScale(values []float64, median float64) float64 {
	if len(values) == 0 {
		return 1.0
	}
	absdev := make([]float64, len(values))
	for i, x := range values {
		absdev[i] = math.Abs(x - median)
	}
	mad := MedianInPlace(absdev)
	scale := mad * 1.4826

	if !(scale > 1e-12) {
		if len(values) >= 2 {
			var sum float64
			for _, x := range values {
				sum += x
			}
			mean := sum / float64(len(values))
			var acc float64
			for _, x := range values {
				d := x - mean
				acc += d * d
			}
			variance := acc / float64(len(values)-1)
			if variance > 0 {
				scale = math.Sqrt(variance)
			}
		}
	}

	if !(scale > 1e-12) {
		scale = 1.0
	}
	return scale
}

// RunningStats is a numerically-stable Welford running mean/variance
// accumulator. Non-finite inputs are ignored.
type RunningStats struct {
	n    int
	mean float64
	m2   float64
}

// Add folds x into the accumulator. Non-finite values are ignored.
func (r *RunningStats) Add(x float64) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return
	}
	r.n++
	delta := x - r.mean
	r.mean += delta / float64(r.n)
	delta2 := x - r.mean
	r.m2 += delta * delta2
}

// N returns the number of finite samples folded in so far.
func (r *RunningStats) N() int { return r.n }

// Mean returns the running mean, or NaN if N() == 0.
func (r *RunningStats) Mean() float64 {
	if r.n == 0 {
		return math.NaN()
	}
	return r.mean
}

// VarianceSample returns the (n-1)-denominator sample variance, or NaN if N() < 2.
func (r *RunningStats) VarianceSample() float64 {
	if r.n < 2 {
		return math.NaN()
	}
	return r.m2 / float64(r.n-1)
}

// StdDevSample returns sqrt(VarianceSample()).
func (r *RunningStats) StdDevSample() float64 {
	v := r.VarianceSample()
	if math.IsNaN(v) {
		return v
	}
	return math.Sqrt(v)
}

// Reset clears the accumulator.
func (r *RunningStats) Reset() {
	r.n = 0
	r.mean = 0
	r.m2 = 0
}
