package connectivity

import (
	"math"
	"testing"
)

func TestBuildDropsSelfLoopsAndNonFiniteWeights(t *testing.T) {
	edges := []Edge{
		{A: "cz", B: "cz", Weight: 1.0},
		{A: "cz", B: "o1", Weight: math.NaN()},
		{A: "cz", B: "o2", Weight: math.Inf(1)},
		{A: "cz", B: "fz", Weight: 0.5},
	}
	s := Build(edges)
	var cz NodeMetrics
	found := false
	for _, n := range s.Nodes {
		if n.Name == "cz" {
			cz = n
			found = true
		}
	}
	if !found {
		t.Fatalf("expected cz node to exist")
	}
	if cz.Degree != 1 {
		t.Errorf("expected degree 1 (only the finite cz-fz edge survives), got %d", cz.Degree)
	}
}

func TestBuildDeduplicatesUnorderedPairsKeepingFirst(t *testing.T) {
	edges := []Edge{
		{A: "cz", B: "fz", Weight: 1.0},
		{A: "fz", B: "cz", Weight: 99.0}, // same unordered pair, should be dropped
	}
	s := Build(edges)
	for _, n := range s.Nodes {
		if n.Degree != 1 {
			t.Errorf("node %s: expected degree 1 after de-dup, got %d", n.Name, n.Degree)
		}
		if n.Strength != 1.0 {
			t.Errorf("node %s: expected strength 1.0 (first occurrence kept), got %v", n.Name, n.Strength)
		}
	}
}

func TestBuildComputesDegreeStrengthMeanMax(t *testing.T) {
	edges := []Edge{
		{A: "cz", B: "fz", Weight: 1.0},
		{A: "cz", B: "pz", Weight: 3.0},
	}
	s := Build(edges)
	var cz NodeMetrics
	for _, n := range s.Nodes {
		if n.Name == "cz" {
			cz = n
		}
	}
	if cz.Degree != 2 {
		t.Errorf("degree = %d, want 2", cz.Degree)
	}
	if cz.Strength != 4.0 {
		t.Errorf("strength = %v, want 4.0", cz.Strength)
	}
	if cz.Mean != 2.0 {
		t.Errorf("mean = %v, want 2.0", cz.Mean)
	}
	if cz.Max != 3.0 {
		t.Errorf("max = %v, want 3.0", cz.Max)
	}
}

func TestHemisphereClassification(t *testing.T) {
	cases := map[string]string{
		"cz": "mid", "fz": "mid",
		"f3": "left", "f4": "right",
		"t7": "left", "t8": "right",
	}
	for name, want := range cases {
		if got := hemisphereOf(name); got != want {
			t.Errorf("hemisphereOf(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestLobeClassification(t *testing.T) {
	cases := map[string]string{
		"fp1": "frontal", "af3": "frontal",
		"ft7": "temporal", "tp8": "temporal",
		"po3": "occipital", "fc1": "central", "cp2": "parietal",
		"f3": "frontal", "t7": "temporal", "o1": "occipital", "c3": "central", "p3": "parietal",
	}
	for name, want := range cases {
		if got := lobeOf(name); got != want {
			t.Errorf("lobeOf(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestRegionSummaryAggregatesByCanonicalPair(t *testing.T) {
	edges := []Edge{
		{A: "f3", B: "f4", Weight: 1.0}, // left-frontal <-> right-frontal
		{A: "f4", B: "f3", Weight: 2.0}, // duplicate unordered pair, dropped
		{A: "t7", B: "t8", Weight: 3.0},
	}
	s := Build(edges)
	if len(s.Regions) == 0 {
		t.Fatalf("expected at least one region pair")
	}
	for _, rp := range s.Regions {
		if rp.EdgeCount == 0 {
			t.Errorf("region pair %s/%s has zero edge count", rp.A, rp.B)
		}
	}
}
