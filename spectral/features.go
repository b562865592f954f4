package spectral

import "math"

// segment is one piece of the piecewise-linear PSD restricted to a query
// range, with endpoints possibly interpolated from the enclosing bins.
type segment struct {
	a, b   float64 // frequencies, a < b
	p0, p1 float64 // PSD values at a and b
}

// segmentsInRange walks psd's piecewise-linear curve restricted to
// [fmin,fmax] clamped to [0, freqs.back()], yielding one segment per
// consecutive pair of breakpoints (including interpolated range endpoints).
func segmentsInRange(psd PSD, fmin, fmax float64) []segment {
	freqs := psd.FreqsHz
	if len(freqs) == 0 {
		return nil
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
		return nil
	}

	var segs []segment
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
		segs = append(segs, segment{a: prevF, b: f, p0: prevP, p1: p})
		prevF = f
		prevP = p
	}
	endP := interpAt(psd, hi)
	segs = append(segs, segment{a: prevF, b: hi, p0: prevP, p1: endP})
	return segs
}

func (s segment) area() float64 {
	return 0.5 * (s.p0 + s.p1) * (s.b - s.a)
}

// freqWeightedArea returns ∫ f*P(f) df over [a,b] for the linear P implied
// by (p0 at a, p1 at b).
func (s segment) freqWeightedArea() float64 {
	if s.b <= s.a {
		return 0
	}
	slope := (s.p1 - s.p0) / (s.b - s.a)
	alpha := s.p0 - slope*s.a
	return alpha*(s.b*s.b-s.a*s.a)/2 + slope*(s.b*s.b*s.b-s.a*s.a*s.a)/3
}

// TotalPower returns the trapezoid-rule integral of psd over [fmin,fmax].
func TotalPower(psd PSD, fmin, fmax float64) float64 {
	return Integrate(psd, fmin, fmax)
}

// MeanFrequency returns ∫f*P(f)df / ∫P(f)df over [fmin,fmax].
func MeanFrequency(psd PSD, fmin, fmax float64) float64 {
	segs := segmentsInRange(psd, fmin, fmax)
	var num, den float64
	for _, s := range segs {
		num += s.freqWeightedArea()
		den += s.area()
	}
	if den <= 0 {
		return math.NaN()
	}
	return num / den
}

// SpectralEntropy returns the normalized Shannon entropy of the per-segment
// power distribution over [fmin,fmax]. Returns 0 on effectively-zero total
// power.
func SpectralEntropy(psd PSD, fmin, fmax float64, normalize bool) float64 {
	segs := segmentsInRange(psd, fmin, fmax)
	if len(segs) == 0 {
		return 0
	}
	var total float64
	areas := make([]float64, len(segs))
	for i, s := range segs {
		a := s.area()
		if a < 0 {
			a = 0
		}
		areas[i] = a
		total += a
	}
	if total <= 1e-20 {
		return 0
	}
	var h float64
	for _, a := range areas {
		if a <= 0 {
			continue
		}
		p := a / total
		h -= p * math.Log(p)
	}
	if normalize {
		if len(segs) <= 1 {
			return 0
		}
		h /= math.Log(float64(len(segs)))
		if h < 0 {
			h = 0
		}
		if h > 1 {
			h = 1
		}
	}
	return h
}

// SpectralEdgeFrequency returns the frequency at which cumulative power
// (from fmin) reaches the given fraction (0,1] of total power in [fmin,fmax].
func SpectralEdgeFrequency(psd PSD, fmin, fmax float64, edge float64) float64 {
	if !(edge > 0 && edge <= 1) {
		return math.NaN()
	}
	segs := segmentsInRange(psd, fmin, fmax)
	if len(segs) == 0 {
		return math.NaN()
	}
	var total float64
	for _, s := range segs {
		total += s.area()
	}
	if total <= 1e-20 {
		return math.NaN()
	}
	target := edge * total

	var acc float64
	for _, s := range segs {
		a := s.area()
		if acc+a < target {
			acc += a
			continue
		}
		remaining := target - acc
		return solveEdgeInSegment(s, remaining)
	}
	return segs[len(segs)-1].b
}

// solveEdgeInSegment finds dx in [0, b-a] such that the trapezoid area from
// a to a+dx equals remaining, given the segment's linear PSD.
func solveEdgeInSegment(s segment, remaining float64) float64 {
	width := s.b - s.a
	if width <= 0 {
		return s.a
	}
	slope := (s.p1 - s.p0) / width // d(psd)/d(freq)
	pa := s.p0

	if math.Abs(slope) < 1e-15 {
		if pa <= 1e-20 {
			return s.a + width
		}
		return s.a + remaining/pa
	}

	// pa*dx + 0.5*slope*dx^2 = remaining
	a2 := 0.5 * slope
	b2 := pa
	c2 := -remaining

	disc := b2*b2 - 4*a2*c2
	if disc < 0 {
		disc = 0
	}
	sq := math.Sqrt(disc)

	// For either sign of slope the root in [0, width] is the one nearer 0;
	// this form of it avoids cancellation when slope is small.
	dx := 0.0
	if b2+sq > 0 {
		dx = 2 * remaining / (b2 + sq)
	}
	if dx < 0 {
		dx = 0
	}
	if dx > width {
		dx = width
	}
	return s.a + dx
}

// PeakFrequency returns the frequency of the maximum PSD value over
// [fmin,fmax], considering the exact range endpoints via interpolation.
func PeakFrequency(psd PSD, fmin, fmax float64) float64 {
	segs := segmentsInRange(psd, fmin, fmax)
	if len(segs) == 0 {
		return math.NaN()
	}
	bestF := segs[0].a
	bestP := segs[0].p0
	consider := func(f, p float64) {
		if p > bestP {
			bestP = p
			bestF = f
		}
	}
	for _, s := range segs {
		consider(s.a, s.p0)
		consider(s.b, s.p1)
	}
	return bestF
}
