// Package iaf estimates the individual alpha frequency (IAF) from a Welch
// PSD: optional 1/f detrend, frequency-domain smoothing, peak pick with
// prominence gating, parabolic sub-bin refinement, and alpha-band center
// of gravity.
package iaf

import (
	"math"

	"github.com/cwbudde/qeeg-core/robuststat"
	"github.com/cwbudde/qeeg-core/spectral"
	"gonum.org/v1/gonum/stat"
)

// Options configures Estimate. Mirrors the original's IafOptions.
type Options struct {
	AlphaMinHz float64
	AlphaMaxHz float64

	Detrend1F    bool
	DetrendMinHz float64
	DetrendMaxHz float64

	SmoothHz float64

	MinProminenceDb float64
	RequireLocalMax bool
}

// DefaultOptions returns the original's 7-13 Hz alpha search with 2-40 Hz
// detrend and 1 Hz smoothing.
func DefaultOptions() Options {
	return Options{
		AlphaMinHz:      7.0,
		AlphaMaxHz:      13.0,
		Detrend1F:       true,
		DetrendMinHz:    2.0,
		DetrendMaxHz:    40.0,
		SmoothHz:        1.0,
		MinProminenceDb: 0.5,
		RequireLocalMax: true,
	}
}

// Result is the output of Estimate.
type Result struct {
	Found        bool
	IafHz        float64
	CogHz        float64
	PeakValueDb  float64
	ProminenceDb float64
	PeakBin      int
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// Estimate estimates the individual alpha frequency from psd.
func Estimate(psd spectral.PSD, opt Options) Result {
	out := Result{IafHz: math.NaN(), CogHz: math.NaN(), PeakValueDb: math.NaN(), ProminenceDb: math.NaN(), PeakBin: -1}

	n := len(psd.FreqsHz)
	if n == 0 || len(psd.Psd) != n {
		return out
	}
	if !(opt.AlphaMaxHz > opt.AlphaMinHz) || opt.AlphaMinHz <= 0 {
		return out
	}

	yDb := make([]float64, n)
	for i := range yDb {
		yDb[i] = math.NaN()
		p := psd.Psd[i]
		if isFinite(p) && p > 0 {
			yDb[i] = 10 * math.Log10(p)
		}
	}

	yWork := append([]float64(nil), yDb...)
	if opt.Detrend1F {
		detrend(psd.FreqsHz, yDb, yWork, opt)
	}

	win := smoothingWindow(psd.FreqsHz, opt.SmoothHz)
	ySmooth := smoothMA(yWork, win)

	i0 := firstIndexGE(psd.FreqsHz, opt.AlphaMinHz)
	i1 := lastIndexLE(psd.FreqsHz, opt.AlphaMaxHz)
	if i0 < 0 || i1 < 0 || i1-i0 < 2 {
		return out
	}

	var bandVals []float64
	for i := i0; i <= i1; i++ {
		if isFinite(ySmooth[i]) {
			bandVals = append(bandVals, ySmooth[i])
		}
	}
	bandMedian := robuststat.Median(bandVals)

	iPeak := -1
	best := math.Inf(-1)
	for i := i0; i <= i1; i++ {
		v := ySmooth[i]
		if !isFinite(v) {
			continue
		}
		if v > best {
			best = v
			iPeak = i
		}
	}
	if iPeak < 0 {
		return out
	}

	if opt.RequireLocalMax {
		if iPeak <= 0 || iPeak+1 >= len(ySmooth) {
			return out
		}
		yl, yc, yr := ySmooth[iPeak-1], ySmooth[iPeak], ySmooth[iPeak+1]
		if !isFinite(yl) || !isFinite(yc) || !isFinite(yr) {
			return out
		}
		if !(yc >= yl && yc >= yr) {
			return out
		}
	}

	prom := best - bandMedian
	if opt.MinProminenceDb > 0 && isFinite(prom) && prom < opt.MinProminenceDb {
		return out
	}

	out.Found = true
	out.PeakBin = iPeak
	out.PeakValueDb = best
	out.ProminenceDb = prom
	out.IafHz = parabolicRefineHz(psd.FreqsHz, ySmooth, iPeak)
	if out.IafHz < opt.AlphaMinHz {
		out.IafHz = opt.AlphaMinHz
	}
	if out.IafHz > opt.AlphaMaxHz {
		out.IafHz = opt.AlphaMaxHz
	}

	out.CogHz = centerOfGravity(psd.FreqsHz, ySmooth, i0, i1)

	return out
}

// detrend fits y ~= a + b*log10(f) over [detrend_min,detrend_max] excluding
// the alpha search band, and subtracts it from yWork in place.
func detrend(freqs, yDb, yWork []float64, opt Options) {
	var xs, ys []float64
	for i, f := range freqs {
		if !isFinite(f) || f <= 0 {
			continue
		}
		if f < opt.DetrendMinHz || f > opt.DetrendMaxHz {
			continue
		}
		if f >= opt.AlphaMinHz && f <= opt.AlphaMaxHz {
			continue
		}
		yv := yDb[i]
		if !isFinite(yv) {
			continue
		}
		xs = append(xs, math.Log10(f))
		ys = append(ys, yv)
	}
	if len(xs) < 2 {
		return
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)

	for i, f := range freqs {
		if !isFinite(f) || f <= 0 {
			continue
		}
		yv := yDb[i]
		if !isFinite(yv) {
			continue
		}
		x := math.Log10(f)
		yWork[i] = yv - (alpha + beta*x)
	}
}

func smoothingWindow(freqs []float64, smoothHz float64) int {
	win := 1
	if smoothHz > 0 && len(freqs) >= 3 {
		var dfs []float64
		for i := 1; i < len(freqs); i++ {
			df := freqs[i] - freqs[i-1]
			if isFinite(df) && df > 0 {
				dfs = append(dfs, df)
			}
		}
		dfMed := robuststat.Median(dfs)
		if isFinite(dfMed) && dfMed > 0 {
			radius := int(math.Round(smoothHz / dfMed))
			if radius < 0 {
				radius = 0
			}
			win = 2*radius + 1
			if win < 1 {
				win = 1
			}
		}
	}
	return win
}

// smoothMA is a hand-rolled, edge-clamped boxcar moving average: indices
// beyond the array bounds clamp to the nearest valid index rather than
// zero-padding or wrapping, matching the one-shot finite-array smoothing
// this estimator needs (not the partitioned, streaming convolution a
// general-purpose overlap-add convolver is built for).
func smoothMA(y []float64, win int) []float64 {
	if win <= 1 || len(y) < 3 {
		return append([]float64(nil), y...)
	}
	if win%2 == 0 {
		win++
	}
	r := win / 2
	n := len(y)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		var sum float64
		cnt := 0
		for k := i - r; k <= i+r; k++ {
			kk := k
			if kk < 0 {
				kk = 0
			}
			if kk >= n {
				kk = n - 1
			}
			v := y[kk]
			if !isFinite(v) {
				continue
			}
			sum += v
			cnt++
		}
		if cnt == 0 {
			out[i] = math.NaN()
		} else {
			out[i] = sum / float64(cnt)
		}
	}
	return out
}

func firstIndexGE(v []float64, x float64) int {
	lo, hi := 0, len(v)
	for lo < hi {
		mid := (lo + hi) / 2
		if v[mid] < x {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo >= len(v) {
		return -1
	}
	return lo
}

func lastIndexLE(v []float64, x float64) int {
	lo, hi := 0, len(v)
	for lo < hi {
		mid := (lo + hi) / 2
		if v[mid] <= x {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo == 0 {
		return -1
	}
	return lo - 1
}

func parabolicRefineHz(freqs, y []float64, i int) float64 {
	if i <= 0 || i+1 >= len(y) {
		return freqs[i]
	}
	y1, y2, y3 := y[i-1], y[i], y[i+1]
	if !isFinite(y1) || !isFinite(y2) || !isFinite(y3) {
		return freqs[i]
	}
	denom := y1 - 2*y2 + y3
	if math.Abs(denom) < 1e-12 {
		return freqs[i]
	}
	delta := 0.5 * (y1 - y3) / denom
	if !isFinite(delta) || math.Abs(delta) > 1 {
		return freqs[i]
	}
	fIm1, fIp1 := freqs[i-1], freqs[i+1]
	df := 0.5 * (fIp1 - fIm1)
	return freqs[i] + delta*df
}

// centerOfGravity computes the power-weighted mean frequency over the
// above-median portion of the alpha band [i0,i1], converting the
// detrended/smoothed dB spectrum back to linear units.
func centerOfGravity(freqs, yDb []float64, i0, i1 int) float64 {
	var vals []float64
	for i := i0; i <= i1; i++ {
		if isFinite(yDb[i]) {
			vals = append(vals, yDb[i])
		}
	}
	if len(vals) == 0 {
		return math.NaN()
	}
	med := robuststat.Median(vals)

	var num, den float64
	for i := i0; i <= i1; i++ {
		v := yDb[i]
		if !isFinite(v) || v <= med {
			continue
		}
		p := math.Pow(10, v/10)
		num += freqs[i] * p
		den += p
	}
	if den <= 0 {
		return math.NaN()
	}
	return num / den
}
