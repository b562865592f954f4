package robuststat

import (
	"math"
	"testing"
)

func TestRobustScaleConstant(t *testing.T) {
	v := []float64{5, 5, 5, 5}
	med := Median(v)
	scale := RobustScale(v, med)
	if math.Abs(scale-1.0) > 1e-9 {
		t.Errorf("constant input: expected scale=1.0, got %v", scale)
	}
}

func TestRobustScaleKnownValues(t *testing.T) {
	v := []float64{1, 2, 3, 4, 100}
	med := Median(v)
	if med != 3 {
		t.Fatalf("expected median=3, got %v", med)
	}
	scale := RobustScale(v, med)
	if math.Abs(scale-1.4826) > 1e-4 {
		t.Errorf("expected scale≈1.4826, got %v", scale)
	}
}

func TestRunningStatsIgnoresNonFinite(t *testing.T) {
	var r RunningStats
	r.Add(1)
	r.Add(math.NaN())
	r.Add(3)
	r.Add(math.Inf(1))
	if r.N() != 2 {
		t.Fatalf("expected N=2, got %d", r.N())
	}
	if math.Abs(r.Mean()-2.0) > 1e-9 {
		t.Errorf("expected mean=2, got %v", r.Mean())
	}
}

func TestRewardShaperDwell(t *testing.T) {
	s := NewRewardShaper(0.5, 0)
	if got := s.Update(true, 0.25, 0.25, false); got {
		t.Errorf("first update with dwell 0.5 should remain false, got true")
	}
	if got := s.Update(true, 0.25, 0.5, false); !got {
		t.Errorf("second update should cross dwell threshold and return true")
	}
}

func TestRewardShaperRefractory(t *testing.T) {
	s := NewRewardShaper(0, 0.5)
	if got := s.Update(true, 0, 0, false); !got {
		t.Fatalf("expected immediate on with no dwell")
	}
	if got := s.Update(false, 0.1, 1.0, false); got {
		t.Fatalf("expected off")
	}
	// t_off = 1.0
	if got := s.Update(true, 0.25, 1.25, false); got {
		t.Errorf("0.25s after turn-off should still be refractory, got true")
	}
	if got := s.Update(true, 0.25, 1.5, false); !got {
		t.Errorf("0.5s after turn-off should clear refractory, got false")
	}
}

func TestReservoirSamplerCap(t *testing.T) {
	r := NewReservoirSampler(10)
	for i := 0; i < 1000; i++ {
		r.Add(float64(i))
	}
	if r.Len() != 10 {
		t.Fatalf("expected reservoir capped at 10, got %d", r.Len())
	}
	if r.Seen() != 1000 {
		t.Fatalf("expected seen=1000, got %d", r.Seen())
	}
}

func TestExponentialSmootherPassThroughWhenDisabled(t *testing.T) {
	s := NewExponentialSmoother(0)
	if v := s.Update(5, 1); v != 5 {
		t.Errorf("disabled smoother should pass through, got %v", v)
	}
	if v := s.Update(10, 1); v != 10 {
		t.Errorf("disabled smoother should pass through, got %v", v)
	}
}

func TestExponentialSmootherFirstValueInitializes(t *testing.T) {
	s := NewExponentialSmoother(1.0)
	if v := s.Update(7, 1); v != 7 {
		t.Errorf("first update should initialize to x, got %v", v)
	}
	v := s.Update(7, 1)
	if math.Abs(v-7) > 1e-6 {
		t.Errorf("steady input should stay near 7, got %v", v)
	}
}
