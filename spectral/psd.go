// Package spectral implements Welch power spectral density estimation,
// trapezoid-rule band integration, and the piecewise-linear spectral
// summary features (mean/median/edge/entropy/peak frequency) that sit on
// top of a PSD.
package spectral

import (
	"errors"
	"fmt"
	"math"
)

// PSD is a one-sided power spectral density: freqs_hz is strictly
// increasing starting at 0, and psd holds non-negative density values of
// equal length.
type PSD struct {
	FreqsHz []float64
	Psd     []float64
}

var (
	// ErrEmptyInput is returned when the input signal has zero samples.
	ErrEmptyInput = errors.New("spectral: input empty")
	// ErrOverlapOutOfRange is returned when overlap is not in [0,1).
	ErrOverlapOutOfRange = errors.New("spectral: overlap out of range")
	// ErrTooShort is returned when the recording is shorter than one segment.
	ErrTooShort = errors.New("spectral: recording shorter than one segment")
)

// WelchPSD computes a one-sided PSD via Welch's method: constant-detrended,
// Hann-windowed, zero-padded-to-power-of-two segments averaged in the
// frequency domain.
func WelchPSD(x []float32, fsHz float64, nperseg int, overlap float64) (PSD, error) {
	if fsHz <= 0 {
		return PSD{}, fmt.Errorf("spectral: fs_hz must be > 0, got %v", fsHz)
	}
	if len(x) == 0 {
		return PSD{}, ErrEmptyInput
	}
	if overlap < 0 || overlap >= 1 {
		return PSD{}, ErrOverlapOutOfRange
	}
	if nperseg < 1 {
		nperseg = 1
	}
	if len(x) < nperseg {
		return PSD{}, ErrTooShort
	}

	noverlap := int(math.Floor(float64(nperseg) * overlap))
	hop := nperseg - noverlap
	if hop < 1 {
		hop = 1
	}

	nfft := nextPow2(nperseg)
	nfreq := nfft/2 + 1

	window := hannWindow(nperseg)
	var u float64
	for _, w := range window {
		u += w * w
	}
	if u <= 0 {
		return PSD{}, errors.New("spectral: invalid window normalization")
	}

	plan, planErr := getFFTPlan(nfft)

	pxxAcc := make([]float64, nfreq)
	segBuf := make([]float64, nfft)
	spec := make([]complex128, nfreq)
	nsegments := 0
	scale := 1.0 / (fsHz * u)

	for start := 0; start+nperseg <= len(x); start += hop {
		mean := segmentMean(x, start, nperseg)

		for i := 0; i < nperseg; i++ {
			segBuf[i] = (float64(x[start+i]) - mean) * window[i]
		}
		for i := nperseg; i < nfft; i++ {
			segBuf[i] = 0
		}

		if planErr == nil {
			if err := plan.forward(spec, segBuf); err != nil {
				planErr = err
			}
		}
		if planErr != nil {
			naiveRealFFT(spec, segBuf)
		}

		for k := 0; k < nfreq; k++ {
			mag2 := real(spec[k])*real(spec[k]) + imag(spec[k])*imag(spec[k])
			p := mag2 * scale
			if k != 0 && k != nfft/2 {
				p *= 2
			}
			pxxAcc[k] += p
		}
		nsegments++
	}

	if nsegments == 0 {
		return PSD{}, ErrTooShort
	}
	for i := range pxxAcc {
		pxxAcc[i] /= float64(nsegments)
	}

	freqs := make([]float64, nfreq)
	for k := 0; k < nfreq; k++ {
		freqs[k] = float64(k) * fsHz / float64(nfft)
	}

	return PSD{FreqsHz: freqs, Psd: pxxAcc}, nil
}

func segmentMean(x []float32, start, n int) float64 {
	var s float64
	for i := 0; i < n; i++ {
		s += float64(x[start+i])
	}
	return s / float64(n)
}

func hannWindow(n int) []float64 {
	w := make([]float64, n)
	if n <= 1 {
		for i := range w {
			w[i] = 1
		}
		return w
	}
	for i := 0; i < n; i++ {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}

func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// naiveRealFFT is an O(n^2) fallback DFT used only if no algo-fft plan
// could be constructed for a given transform size.
func naiveRealFFT(dst []complex128, src []float64) {
	n := len(src)
	for k := range dst {
		var re, im float64
		for i := 0; i < n; i++ {
			phi := -2.0 * math.Pi * float64(k*i) / float64(n)
			re += src[i] * math.Cos(phi)
			im += src[i] * math.Sin(phi)
		}
		dst[k] = complex(re, im)
	}
}
