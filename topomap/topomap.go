// Package topomap rasterizes per-channel scalar values into a square
// head-topography image over the unit disk, via inverse-distance weighting
// or spherical-spline interpolation.
package topomap

import (
	"errors"
	"math"

	"github.com/cwbudde/qeeg-core/recording"
	"github.com/cwbudde/qeeg-core/spline"
)

// ErrTooFewChannels is returned when fewer than 3 usable channels remain
// after excluding non-finite values and channels absent from the montage.
var ErrTooFewChannels = errors.New("topomap: need at least 3 usable channels")

// Method selects the interpolation algorithm. Dispatched once per grid
// build (not per pixel) via a tagged variant, so the hot pixel loop is
// monomorphic.
type Method int

const (
	// MethodIDW is inverse-distance weighting.
	MethodIDW Method = iota
	// MethodSphericalSpline projects each pixel to the unit sphere and
	// evaluates a Perrin-style spherical spline.
	MethodSphericalSpline
)

// Options configures BuildGrid.
type Options struct {
	Size          int     // image side length in pixels, default 256
	Method        Method
	IDWPower      float64 // default 2
	IDWEpsilon    float64 // default 1e-6
	SplineOptions spline.Options
}

// DefaultOptions returns size=256 IDW with p=2, eps=1e-6.
func DefaultOptions() Options {
	return Options{
		Size:       256,
		Method:     MethodIDW,
		IDWPower:   2,
		IDWEpsilon: 1e-6,
	}
}

type usableChannel struct {
	pos2d recording.Point2D
	pos3d recording.Point3D
	value float64
}

func collectUsable(channels []string, values []float64, montage recording.Montage) ([]usableChannel, error) {
	var usable []usableChannel
	for i, name := range channels {
		if i >= len(values) {
			continue
		}
		v := values[i]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		key := recording.NormalizeChannelName(name)
		p2, ok := montage[key]
		if !ok {
			continue
		}
		usable = append(usable, usableChannel{pos2d: p2, pos3d: p2.ToSphere(), value: v})
	}
	if len(usable) < 3 {
		return nil, ErrTooFewChannels
	}
	return usable, nil
}

// Grid is a size x size raster of interpolated values; NaN marks pixels
// outside the unit disk (background, left to the external renderer).
type Grid struct {
	Size   int
	Values [][]float64 // row-major, Values[row][col]
}

// BuildGrid interpolates values (one per entry in channels, same order)
// over the unit disk using montage for channel positions.
func BuildGrid(channels []string, values []float64, montage recording.Montage, opt Options) (Grid, error) {
	if opt.Size <= 0 {
		opt.Size = 256
	}
	if opt.IDWPower <= 0 {
		opt.IDWPower = 2
	}
	if opt.IDWEpsilon <= 0 {
		opt.IDWEpsilon = 1e-6
	}

	usable, err := collectUsable(channels, values, montage)
	if err != nil {
		return Grid{}, err
	}

	var splineFit spline.Fit
	if opt.Method == MethodSphericalSpline {
		positions := make([]recording.Point3D, len(usable))
		vals := make([]float64, len(usable))
		for i, u := range usable {
			positions[i] = u.pos3d
			vals[i] = u.value
		}
		splineOpt := opt.SplineOptions
		if splineOpt.NTerms == 0 {
			splineOpt = spline.DefaultOptions()
		}
		splineFit, err = spline.FitSpline(positions, vals, splineOpt)
		if err != nil {
			return Grid{}, err
		}
	}

	// Resolve the method once; the pixel loop calls a single evaluator.
	eval := func(x, y float64) float64 {
		return idwAt(x, y, usable, opt.IDWPower, opt.IDWEpsilon)
	}
	if opt.Method == MethodSphericalSpline {
		eval = func(x, y float64) float64 {
			return splineFit.Evaluate(recording.Point2D{X: x, Y: y}.ToSphere())
		}
	}

	size := opt.Size
	grid := Grid{Size: size, Values: make([][]float64, size)}
	for row := 0; row < size; row++ {
		grid.Values[row] = make([]float64, size)
		y := -1 + 2*(float64(row)+0.5)/float64(size)
		for col := 0; col < size; col++ {
			x := -1 + 2*(float64(col)+0.5)/float64(size)
			if x*x+y*y > 1 {
				grid.Values[row][col] = math.NaN()
				continue
			}
			grid.Values[row][col] = eval(x, y)
		}
	}
	return grid, nil
}

func idwAt(x, y float64, usable []usableChannel, power, eps float64) float64 {
	var weightedSum, weightSum float64
	for _, u := range usable {
		dx := x - u.pos2d.X
		dy := y - u.pos2d.Y
		d := math.Sqrt(dx*dx + dy*dy)
		if d <= eps {
			return u.value
		}
		w := 1.0 / math.Pow(d, power)
		weightedSum += w * u.value
		weightSum += w
	}
	if weightSum <= 0 {
		return math.NaN()
	}
	return weightedSum / weightSum
}
