package spectral

import (
	"math"
	"testing"
)

func TestSpectralEntropyConstantPSDIsOne(t *testing.T) {
	psd := PSD{
		FreqsHz: []float64{0, 1, 2, 3, 4, 5},
		Psd:     []float64{3, 3, 3, 3, 3, 3},
	}
	h := SpectralEntropy(psd, 0, 5, true)
	if math.Abs(h-1) > 1e-9 {
		t.Errorf("expected entropy=1 for constant PSD, got %v", h)
	}
}

func TestSpectralEntropyImpulseIsNearZero(t *testing.T) {
	// The impulse bin feeds the two trapezoid segments either side of it,
	// so over 40 segments h is about ln(2)/ln(40) = 0.19.
	freqs := make([]float64, 41)
	vals := make([]float64, 41)
	for i := range freqs {
		freqs[i] = float64(i)
		vals[i] = 1e-12
	}
	vals[20] = 1000
	psd := PSD{FreqsHz: freqs, Psd: vals}
	h := SpectralEntropy(psd, 0, 40, true)
	if h > 0.3 {
		t.Errorf("expected entropy near 0 for impulse-like PSD, got %v", h)
	}
}

func TestSpectralEntropyZeroPowerReturnsZero(t *testing.T) {
	psd := PSD{
		FreqsHz: []float64{0, 1, 2, 3},
		Psd:     []float64{0, 0, 0, 0},
	}
	h := SpectralEntropy(psd, 0, 3, true)
	if h != 0 {
		t.Errorf("expected entropy=0 for zero power, got %v", h)
	}
}

func TestSpectralEdgeFrequencyLinearRamp(t *testing.T) {
	n := 101
	freqs := make([]float64, n)
	psdVals := make([]float64, n)
	for i := 0; i < n; i++ {
		f := float64(i) * 10.0 / float64(n-1)
		freqs[i] = f
		psdVals[i] = f
	}
	psd := PSD{FreqsHz: freqs, Psd: psdVals}

	got := SpectralEdgeFrequency(psd, 0, 10, 0.5)
	want := math.Sqrt(50)
	if math.Abs(got-want) > 1e-2 {
		t.Errorf("expected edge frequency ~%v, got %v", want, got)
	}
}

func TestMeanFrequencyConstantPSDIsMidpoint(t *testing.T) {
	psd := PSD{
		FreqsHz: []float64{0, 1, 2, 3, 4},
		Psd:     []float64{1, 1, 1, 1, 1},
	}
	got := MeanFrequency(psd, 0, 4)
	if math.Abs(got-2) > 1e-9 {
		t.Errorf("expected mean frequency 2 for constant PSD over [0,4], got %v", got)
	}
}

func TestPeakFrequencyFindsMaximum(t *testing.T) {
	psd := PSD{
		FreqsHz: []float64{0, 1, 2, 3, 4, 5},
		Psd:     []float64{1, 2, 9, 4, 1, 0},
	}
	got := PeakFrequency(psd, 0, 5)
	if got != 2 {
		t.Errorf("expected peak at freq=2, got %v", got)
	}
}

func TestTotalPowerMatchesIntegrate(t *testing.T) {
	psd := PSD{
		FreqsHz: []float64{0, 1, 2, 3, 4},
		Psd:     []float64{1, 2, 3, 2, 1},
	}
	if TotalPower(psd, 0, 4) != Integrate(psd, 0, 4) {
		t.Errorf("TotalPower should delegate to Integrate")
	}
}
