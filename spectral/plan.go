package spectral

import (
	"errors"
	"sync"

	algofft "github.com/cwbudde/algo-fft"
)

// fftPlanCache caches FFT plans keyed by transform size, mirroring the
// teacher's analysis.spectralFFTPlan/getSpectralFFTPlan: a fast real-FFT
// plan is preferred, falling back to the safe generic plan when the fast
// path isn't implemented for a given size.
var fftPlanCache sync.Map // map[int]*fftPlan

type fftPlan struct {
	mu   sync.Mutex
	fast *algofft.FastPlanReal64
	safe *algofft.PlanRealT[float64, complex128]
}

func getFFTPlan(n int) (*fftPlan, error) {
	if v, ok := fftPlanCache.Load(n); ok {
		return v.(*fftPlan), nil
	}

	p := &fftPlan{}

	fast, err := algofft.NewFastPlanReal64(n)
	if err == nil {
		p.fast = fast
	} else if !errors.Is(err, algofft.ErrNotImplemented) {
		// Ignore fast-plan setup errors and rely on the safe plan.
	}

	safe, err := algofft.NewPlanReal64(n)
	if err != nil {
		if p.fast == nil {
			return nil, err
		}
	} else {
		p.safe = safe
	}

	actual, _ := fftPlanCache.LoadOrStore(n, p)
	return actual.(*fftPlan), nil
}

func (p *fftPlan) forward(dst []complex128, src []float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.fast != nil {
		p.fast.Forward(dst, src)
		return nil
	}
	if p.safe != nil {
		return p.safe.Forward(dst, src)
	}
	return errors.New("spectral: missing FFT plan")
}
