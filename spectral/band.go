package spectral

import (
	"math"

	"github.com/cwbudde/qeeg-core/bands"
)

// interpAt linearly interpolates psd at frequency f, assuming psd.FreqsHz
// is strictly increasing. f must already lie within [freqs[0], freqs[last]].
func interpAt(psd PSD, f float64) float64 {
	freqs := psd.FreqsHz
	n := len(freqs)
	if n == 0 {
		return 0
	}
	if f <= freqs[0] {
		return psd.Psd[0]
	}
	if f >= freqs[n-1] {
		return psd.Psd[n-1]
	}
	// Binary search for the enclosing bin.
	lo, hi := 0, n-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if freqs[mid] <= f {
			lo = mid
		} else {
			hi = mid
		}
	}
	f0, f1 := freqs[lo], freqs[hi]
	p0, p1 := psd.Psd[lo], psd.Psd[hi]
	if f1 <= f0 {
		return p0
	}
	t := (f - f0) / (f1 - f0)
	return p0 + t*(p1-p0)
}

// Integrate returns the trapezoid-rule integral of psd over [fmin, fmax],
// clamped to [0, freqs.back()]. The clipped endpoint values are linearly
// interpolated from the enclosing bins so the result is continuous in the
// range endpoints.
func Integrate(psd PSD, fmin, fmax float64) float64 {
	freqs := psd.FreqsHz
	if len(freqs) == 0 {
		return 0
	}
	lo, hi := fmin, fmax
	if lo < 0 {
		lo = 0
	}
	upper := freqs[len(freqs)-1]
	if hi > upper {
		hi = upper
	}
	if lo >= hi {
		return 0
	}

	var total float64
	prevF := lo
	prevP := interpAt(psd, lo)

	for _, f := range freqs {
		if f <= prevF {
			continue
		}
		if f >= hi {
			break
		}
		p := interpAt(psd, f)
		total += 0.5 * (prevP + p) * (f - prevF)
		prevF = f
		prevP = p
	}

	endP := interpAt(psd, hi)
	total += 0.5 * (prevP + endP) * (hi - prevF)
	return total
}

// BandpowerMatrix holds per-(band, channel) values; Values[b][c] may be NaN
// to represent a masked/missing entry.
type BandpowerMatrix struct {
	Bands    []bands.Band
	Channels []string
	Values   [][]float64
}

// BandMatrix integrates psds (one per channel, same channel order as
// channels) over each band, producing raw (non-relative, non-log) integrals.
func BandMatrix(bandsList []bands.Band, channels []string, psds []PSD) BandpowerMatrix {
	m := BandpowerMatrix{
		Bands:    bandsList,
		Channels: channels,
		Values:   make([][]float64, len(bandsList)),
	}
	for bi, b := range bandsList {
		row := make([]float64, len(channels))
		for ci := range channels {
			if ci >= len(psds) {
				row[ci] = math.NaN()
				continue
			}
			row[ci] = Integrate(psds[ci], b.FMinHz, b.FMaxHz)
		}
		m.Values[bi] = row
	}
	return m
}

// ApplyRelative divides each band value by the total integrated over
// rangeMin..rangeMax for that channel, turning raw integrals into
// fractions in [0,1].
func (m *BandpowerMatrix) ApplyRelative(psds []PSD, rangeMin, rangeMax float64) {
	totals := make([]float64, len(m.Channels))
	for ci := range m.Channels {
		if ci >= len(psds) {
			totals[ci] = math.NaN()
			continue
		}
		totals[ci] = Integrate(psds[ci], rangeMin, rangeMax)
	}
	for bi := range m.Bands {
		row := m.Values[bi]
		for ci := range row {
			t := totals[ci]
			if !(t > 0) || math.IsNaN(row[ci]) {
				row[ci] = math.NaN()
				continue
			}
			row[ci] = row[ci] / t
		}
	}
}

// ApplyLog10 replaces each finite entry v with log10(max(eps, v)).
func (m *BandpowerMatrix) ApplyLog10() {
	const eps = 1e-20
	for bi := range m.Bands {
		row := m.Values[bi]
		for ci, v := range row {
			if math.IsNaN(v) {
				continue
			}
			if v < eps {
				v = eps
			}
			row[ci] = math.Log10(v)
		}
	}
}
