package iaf

import (
	"math"
	"testing"

	"github.com/cwbudde/qeeg-core/spectral"
)

// gaussianPSD builds a synthetic PSD: a 1/f-ish background plus a Gaussian
// bump centered at peakHz with the given height (in linear power units).
func gaussianPSD(peakHz, widthHz, peakPower float64) spectral.PSD {
	freqs := make([]float64, 0, 200)
	psd := make([]float64, 0, 200)
	for f := 0.5; f <= 40; f += 0.2 {
		freqs = append(freqs, f)
		bg := 1.0 / f
		bump := peakPower * math.Exp(-0.5*math.Pow((f-peakHz)/widthHz, 2))
		psd = append(psd, bg+bump)
	}
	return spectral.PSD{FreqsHz: freqs, Psd: psd}
}

func TestEstimateFindsClearAlphaPeak(t *testing.T) {
	p := gaussianPSD(10.0, 0.8, 50.0)
	est := Estimate(p, DefaultOptions())
	if !est.Found {
		t.Fatalf("expected a peak to be found")
	}
	if math.Abs(est.IafHz-10.0) > 0.5 {
		t.Errorf("IafHz = %v, want close to 10.0", est.IafHz)
	}
	if math.IsNaN(est.CogHz) {
		t.Errorf("expected CogHz to be finite")
	}
	if est.ProminenceDb <= 0 {
		t.Errorf("expected positive prominence, got %v", est.ProminenceDb)
	}
}

func TestEstimateNoPeakWhenFlat(t *testing.T) {
	freqs := make([]float64, 0, 100)
	psd := make([]float64, 0, 100)
	for f := 0.5; f <= 40; f += 0.2 {
		freqs = append(freqs, f)
		psd = append(psd, 1.0)
	}
	est := Estimate(spectral.PSD{FreqsHz: freqs, Psd: psd}, DefaultOptions())
	// A perfectly flat spectrum has zero prominence anywhere in the alpha
	// band, which fails the default min_prominence_db gate.
	if est.Found {
		t.Errorf("expected Found=false for a flat spectrum with no real peak, got IafHz=%v prominence=%v", est.IafHz, est.ProminenceDb)
	}
}

func TestEstimateRejectsTinyProminence(t *testing.T) {
	p := gaussianPSD(10.0, 3.0, 0.001)
	opt := DefaultOptions()
	opt.MinProminenceDb = 3.0
	est := Estimate(p, opt)
	if est.Found {
		t.Errorf("expected no peak found when bump is below the prominence threshold, got IafHz=%v prominence=%v", est.IafHz, est.ProminenceDb)
	}
}

func TestEstimateHandlesEmptyPSD(t *testing.T) {
	est := Estimate(spectral.PSD{}, DefaultOptions())
	if est.Found {
		t.Errorf("expected Found=false for empty PSD")
	}
}

func TestEstimateRejectsInvalidAlphaRange(t *testing.T) {
	p := gaussianPSD(10.0, 0.8, 50.0)
	opt := DefaultOptions()
	opt.AlphaMinHz = 13.0
	opt.AlphaMaxHz = 7.0
	est := Estimate(p, opt)
	if est.Found {
		t.Errorf("expected Found=false for inverted alpha range")
	}
}

func TestSmoothMAClampsAtEdges(t *testing.T) {
	y := []float64{1, 2, 3, 4, 5}
	out := smoothMA(y, 3)
	if len(out) != len(y) {
		t.Fatalf("expected same length output")
	}
	// first element averages y[0] (clamped) and y[0],y[1]: (1+1+2)/3
	want := (1.0 + 1.0 + 2.0) / 3.0
	if math.Abs(out[0]-want) > 1e-9 {
		t.Errorf("out[0] = %v, want %v", out[0], want)
	}
}

func TestParabolicRefineHzStaysWithinNeighborBounds(t *testing.T) {
	freqs := []float64{9, 10, 11}
	y := []float64{0, 1, 0.2}
	refined := parabolicRefineHz(freqs, y, 1)
	if refined < freqs[0] || refined > freqs[2] {
		t.Errorf("refined peak %v out of neighbor bounds [%v,%v]", refined, freqs[0], freqs[2])
	}
}
