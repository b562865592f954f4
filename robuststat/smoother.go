package robuststat

import (
	"math"

	"github.com/cwbudde/algo-approx"
)

// ExponentialSmoother is a time-constant EMA smoother, ported from the
// original's qeeg::ExponentialSmoother. When tau <= 0 it is a pass-through.
// The decay factor 1-e^{-dt/tau} is evaluated with algo-approx's FastExp,
// the same fast-exponential approximation the teacher uses for note-decay
// envelopes in piano/voice.go.
type ExponentialSmoother struct {
	tau   float64
	has   bool
	value float64
}

// NewExponentialSmoother creates a smoother with time constant tau (seconds).
func NewExponentialSmoother(tau float64) *ExponentialSmoother {
	s := &ExponentialSmoother{}
	s.SetTimeConstant(tau)
	return s
}

// SetTimeConstant updates tau; a non-finite or non-positive value disables smoothing.
func (s *ExponentialSmoother) SetTimeConstant(tau float64) {
	if !isFinite(tau) || tau <= 0 {
		s.Reset()
		s.tau = 0
		return
	}
	s.tau = tau
}

// TimeConstant returns the current tau.
func (s *ExponentialSmoother) TimeConstant() float64 { return s.tau }

// Enabled reports whether tau > 0.
func (s *ExponentialSmoother) Enabled() bool { return s.tau > 0 }

// HasValue reports whether Update has ever accepted a finite sample.
func (s *ExponentialSmoother) HasValue() bool { return s.has }

// Value returns the current smoothed value.
func (s *ExponentialSmoother) Value() float64 { return s.value }

// Reset clears the smoother's state.
func (s *ExponentialSmoother) Reset() {
	s.has = false
	s.value = math.NaN()
}

// Update folds a new sample x observed dt seconds after the previous update.
// Non-finite x returns the previous value unchanged.
func (s *ExponentialSmoother) Update(x float64, dt float64) float64 {
	if !isFinite(x) {
		return s.value
	}
	if !s.Enabled() {
		s.has = true
		s.value = x
		return s.value
	}
	if !s.has {
		s.has = true
		s.value = x
		return s.value
	}
	if !isFinite(dt) || dt <= 0 {
		dt = 0
	}

	alpha := 1.0
	if dt > 0 {
		alpha = 1.0 - float64(approx.FastExp(float32(-dt/s.tau)))
		if !isFinite(alpha) {
			alpha = 1.0
		}
		alpha = clamp01(alpha)
	}

	s.value += alpha * (x - s.value)
	return s.value
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
