package topomap

import (
	"math"
	"testing"

	"github.com/cwbudde/qeeg-core/recording"
)

func sampleMontage() recording.Montage {
	return recording.Montage{
		"fp1": {X: -0.3, Y: 0.8},
		"fp2": {X: 0.3, Y: 0.8},
		"o1":  {X: -0.3, Y: -0.8},
		"o2":  {X: 0.3, Y: -0.8},
		"cz":  {X: 0, Y: 0},
	}
}

func TestBuildGridIDWSnapsAtSamplePosition(t *testing.T) {
	montage := sampleMontage()
	channels := []string{"fp1", "fp2", "o1", "o2", "cz"}
	values := []float64{1, 2, 3, 4, 5}

	opt := DefaultOptions()
	opt.Size = 64
	opt.IDWEpsilon = 0.05
	grid, err := BuildGrid(channels, values, montage, opt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if grid.Size != 64 {
		t.Fatalf("expected size 64, got %d", grid.Size)
	}

	// Pixel (32,32) is centered about 0.022 from cz at (0,0), inside the
	// 0.05 snap radius, so it takes cz's value 5 exactly.
	mid := grid.Values[32][32]
	if math.IsNaN(mid) {
		t.Fatalf("expected center pixel to be defined, got NaN")
	}
	if mid != 5 {
		t.Errorf("expected center pixel to snap to cz's value 5, got %v", mid)
	}
}

func TestBuildGridExcludesOutsideDisk(t *testing.T) {
	montage := sampleMontage()
	channels := []string{"fp1", "fp2", "o1", "o2", "cz"}
	values := []float64{1, 2, 3, 4, 5}
	opt := DefaultOptions()
	opt.Size = 32
	grid, err := BuildGrid(channels, values, montage, opt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// corner pixel (0,0) maps to x,y near (-1,-1), outside unit disk.
	if !math.IsNaN(grid.Values[0][0]) {
		t.Errorf("expected corner pixel outside unit disk to be NaN, got %v", grid.Values[0][0])
	}
}

func TestBuildGridFailsWithTooFewUsableChannels(t *testing.T) {
	montage := sampleMontage()
	channels := []string{"fp1", "fp2"}
	values := []float64{1, 2}
	_, err := BuildGrid(channels, values, montage, DefaultOptions())
	if err != ErrTooFewChannels {
		t.Fatalf("expected ErrTooFewChannels, got %v", err)
	}
}

func TestBuildGridExcludesNonFiniteAndUnknownChannels(t *testing.T) {
	montage := sampleMontage()
	channels := []string{"fp1", "fp2", "o1", "o2", "unknown_chan"}
	values := []float64{1, 2, math.NaN(), math.Inf(1), 5}
	_, err := BuildGrid(channels, values, montage, DefaultOptions())
	if err != ErrTooFewChannels {
		t.Fatalf("expected ErrTooFewChannels after excluding NaN + unmontaged channels, got %v", err)
	}
}

func TestBuildGridSphericalSplineIsDeterministic(t *testing.T) {
	montage := sampleMontage()
	channels := []string{"fp1", "fp2", "o1", "o2", "cz"}
	values := []float64{1, 2, 3, 4, 5}

	opt := DefaultOptions()
	opt.Size = 16
	opt.Method = MethodSphericalSpline

	g1, err := BuildGrid(channels, values, montage, opt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g2, err := BuildGrid(channels, values, montage, opt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for r := range g1.Values {
		for c := range g1.Values[r] {
			a, b := g1.Values[r][c], g2.Values[r][c]
			if math.IsNaN(a) != math.IsNaN(b) {
				t.Fatalf("NaN mismatch at (%d,%d)", r, c)
			}
			if !math.IsNaN(a) && a != b {
				t.Errorf("non-deterministic grid value at (%d,%d): %v vs %v", r, c, a, b)
			}
		}
	}
}
