// Package spline implements Perrin-style spherical-spline interpolation for
// EEG scalp potentials: a Legendre-kernel expansion fitted by a
// Tikhonov-regularized Gaussian elimination solve, evaluated anywhere on
// the unit sphere.
package spline

import (
	"errors"
	"math"

	"github.com/cwbudde/qeeg-core/recording"
)

// ErrSizeMismatch is returned when positions and values have different lengths.
var ErrSizeMismatch = errors.New("spline: positions and values size mismatch")

// ErrTooFewPoints is returned when fewer than 3 sensor positions are given.
var ErrTooFewPoints = errors.New("spline: need at least 3 points")

// ErrZeroLengthPosition is returned when a position vector has zero length.
var ErrZeroLengthPosition = errors.New("spline: zero-length position vector")

// ErrIllConditioned is returned when the Gaussian-elimination solve hits a
// pivot with magnitude below 1e-14.
var ErrIllConditioned = errors.New("spline: matrix is singular/ill-conditioned")

// Options configures the kernel expansion and regularization.
type Options struct {
	NTerms int     // number of Legendre terms (>=5 recommended; default 50)
	M      int     // spline order (Perrin scalp potentials use m=4)
	Lambda float64 // Tikhonov regularization, >= 0
}

// DefaultOptions returns the conventional Perrin scalp-potential settings.
func DefaultOptions() Options {
	return Options{NTerms: 50, M: 4, Lambda: 1e-5}
}

func (o Options) validate() error {
	if o.NTerms < 5 {
		return errors.New("spline: n_terms too small (>=5 recommended)")
	}
	if o.M < 1 {
		return errors.New("spline: m must be >= 1")
	}
	if o.Lambda < 0 {
		return errors.New("spline: lambda must be >= 0")
	}
	return nil
}

func normalize(v recording.Point3D) recording.Point3D {
	n2 := v.X*v.X + v.Y*v.Y + v.Z*v.Z
	if n2 <= 0 {
		return recording.Point3D{}
	}
	inv := 1.0 / math.Sqrt(n2)
	return recording.Point3D{X: v.X * inv, Y: v.Y * inv, Z: v.Z * inv}
}

func isZero(v recording.Point3D) bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

func dot3(a, b recording.Point3D) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

// legendreAll evaluates the Legendre polynomial P_n(x) via the three-term
// recurrence, returning every value P_0..P_n.
func legendreAll(n int, x float64) []float64 {
	p := make([]float64, n+1)
	p[0] = 1.0
	if n >= 1 {
		p[1] = x
	}
	for k := 2; k <= n; k++ {
		p[k] = ((2*float64(k)-1)*x*p[k-1] - (float64(k)-1)*p[k-2]) / float64(k)
	}
	return p
}

// kernelG evaluates the Perrin kernel g_m(x) = sum_{n=1..N} (2n+1)/[n(n+1)]^m * P_n(x).
func kernelG(x float64, nTerms, m int) float64 {
	if nTerms < 1 {
		return 0
	}
	if x > 1 {
		x = 1
	}
	if x < -1 {
		x = -1
	}
	p := legendreAll(nTerms, x)
	var sum float64
	for n := 1; n <= nTerms; n++ {
		nn1 := float64(n) * float64(n+1)
		denom := math.Pow(nn1, float64(m))
		w := (2*float64(n) + 1) / denom
		sum += w * p[n]
	}
	return sum
}

// solveGauss solves the n*n system Ax=b (A row-major) by Gaussian
// elimination with partial pivoting. A and b are consumed in place.
// Hand-rolled rather than delegated to a matrix library: the 1e-14
// pivot-magnitude failure threshold is itself a testable invariant of this
// component, and a generic solver would not expose that exact check.
func solveGauss(a []float64, b []float64, n int) ([]float64, error) {
	idx := func(r, c int) int { return r*n + c }

	for i := 0; i < n; i++ {
		piv := i
		best := math.Abs(a[idx(i, i)])
		for r := i + 1; r < n; r++ {
			v := math.Abs(a[idx(r, i)])
			if v > best {
				best = v
				piv = r
			}
		}
		if best < 1e-14 {
			return nil, ErrIllConditioned
		}
		if piv != i {
			for c := i; c < n; c++ {
				a[idx(i, c)], a[idx(piv, c)] = a[idx(piv, c)], a[idx(i, c)]
			}
			b[i], b[piv] = b[piv], b[i]
		}

		diag := a[idx(i, i)]
		for r := i + 1; r < n; r++ {
			f := a[idx(r, i)] / diag
			if f == 0 {
				continue
			}
			a[idx(r, i)] = 0
			for c := i + 1; c < n; c++ {
				a[idx(r, c)] -= f * a[idx(i, c)]
			}
			b[r] -= f * b[i]
		}
	}

	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		s := b[i]
		for c := i + 1; c < n; c++ {
			s -= a[idx(i, c)] * x[c]
		}
		x[i] = s / a[idx(i, i)]
	}
	return x, nil
}

func normalizedPositions(positions []recording.Point3D) ([]recording.Point3D, error) {
	if len(positions) < 3 {
		return nil, ErrTooFewPoints
	}
	out := make([]recording.Point3D, len(positions))
	for i, p := range positions {
		u := normalize(p)
		if isZero(u) {
			return nil, ErrZeroLengthPosition
		}
		out[i] = u
	}
	return out, nil
}

// Fit is a fitted spherical-spline interpolator.
type Fit struct {
	Positions []recording.Point3D
	Coeffs    []float64
	Constant  float64
	opt       Options
}

// FitSpline solves the (K+1)x(K+1) regularized system for the given unit-
// sphere positions and their associated values.
func FitSpline(positions []recording.Point3D, values []float64, opt Options) (Fit, error) {
	if len(positions) != len(values) {
		return Fit{}, ErrSizeMismatch
	}
	if err := opt.validate(); err != nil {
		return Fit{}, err
	}
	pos, err := normalizedPositions(positions)
	if err != nil {
		return Fit{}, err
	}

	k := len(pos)
	n := k + 1
	a := make([]float64, n*n)
	b := make([]float64, n)
	idx := func(r, c int) int { return r*n + c }

	for i := 0; i < k; i++ {
		b[i] = values[i]
		for j := 0; j < k; j++ {
			x := dot3(pos[i], pos[j])
			gij := kernelG(x, opt.NTerms, opt.M)
			if i == j {
				gij += opt.Lambda
			}
			a[idx(i, j)] = gij
		}
		a[idx(i, k)] = 1.0
	}
	for j := 0; j < k; j++ {
		a[idx(k, j)] = 1.0
	}
	a[idx(k, k)] = 0.0
	b[k] = 0.0

	x, err := solveGauss(a, b, n)
	if err != nil {
		return Fit{}, err
	}

	return Fit{
		Positions: pos,
		Coeffs:    append([]float64(nil), x[:k]...),
		Constant:  x[k],
		opt:       opt,
	}, nil
}

// Evaluate computes f(q) = sum_i c_i*g(q.p_i) + d at the given unit-sphere
// query point.
func (f Fit) Evaluate(q recording.Point3D) float64 {
	if len(f.Positions) == 0 {
		return math.NaN()
	}
	qu := normalize(q)
	s := f.Constant
	for i, p := range f.Positions {
		x := dot3(qu, p)
		s += f.Coeffs[i] * kernelG(x, f.opt.NTerms, f.opt.M)
	}
	return s
}

// Weights solves M^T x = [g(q.p_i); 1] and truncates to the first K
// components, returning per-sample weights w such that f(q) = sum_i
// w_i*v_i for any values v sharing this sensor geometry. This avoids
// re-solving the full system for every new sample sharing the same
// positions, the fast path used by time-domain bad-channel interpolation.
func Weights(positions []recording.Point3D, q recording.Point3D, opt Options) ([]float64, error) {
	if err := opt.validate(); err != nil {
		return nil, err
	}
	pos, err := normalizedPositions(positions)
	if err != nil {
		return nil, err
	}
	qu := normalize(q)
	if isZero(qu) {
		return nil, errors.New("spline: zero-length query vector")
	}

	k := len(pos)
	n := k + 1
	// M is the same (K+1)x(K+1) system matrix as Fit. M is symmetric (the
	// border row and column are both ones), so M^T equals M; it is still
	// transposed explicitly to follow the spec's "solve M^T x = ..."
	// formulation rather than relying on symmetry.
	m := make([]float64, n*n)
	idx := func(r, c int) int { return r*n + c }
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			x := dot3(pos[i], pos[j])
			gij := kernelG(x, opt.NTerms, opt.M)
			if i == j {
				gij += opt.Lambda
			}
			m[idx(i, j)] = gij
		}
		m[idx(i, k)] = 1.0
	}
	for j := 0; j < k; j++ {
		m[idx(k, j)] = 1.0
	}
	m[idx(k, k)] = 0.0

	mt := make([]float64, n*n)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			mt[idx(r, c)] = m[idx(c, r)]
		}
	}

	rhs := make([]float64, n)
	for i := 0; i < k; i++ {
		rhs[i] = kernelG(dot3(qu, pos[i]), opt.NTerms, opt.M)
	}
	rhs[k] = 1.0

	x, err := solveGauss(mt, rhs, n)
	if err != nil {
		return nil, err
	}
	return x[:k], nil
}

// ProjectToUnitSphere maps a 2D montage point on the unit disk to the unit
// sphere's upper hemisphere, clamping points outside the disk to its edge.
func ProjectToUnitSphere(p recording.Point2D) recording.Point3D {
	return p.ToSphere()
}
