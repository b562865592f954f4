// Package connectivity summarizes an undirected weighted graph of
// inter-channel connectivity edges: per-node degree/strength/mean/max, and
// a hemisphere x lobe region-pair reduction.
package connectivity

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// Edge is one raw input edge before de-duplication/filtering.
type Edge struct {
	A, B   string
	Weight float64
}

// NodeMetrics holds the per-node summary of a built graph.
type NodeMetrics struct {
	Name     string
	Degree   int
	Strength float64
	Mean     float64
	Max      float64
}

// RegionPair is the summarized connectivity between two canonical regions
// (hemisphere+lobe), or within one region when A == B.
type RegionPair struct {
	A, B        string
	EdgeCount   int
	SumWeight   float64
	MeanWeight  float64
}

// Summary is the full connectivity-graph summary.
type Summary struct {
	Nodes   []NodeMetrics
	Regions []RegionPair
}

// Build de-duplicates unordered pairs (keeping the first occurrence), drops
// self-loops and non-finite weights, and computes per-node and
// per-region-pair summaries.
func Build(edges []Edge) Summary {
	g := simple.NewWeightedUndirectedGraph(0, 0)
	ids := make(map[string]int64)
	names := make(map[int64]string)
	nextID := int64(0)

	nodeID := func(name string) int64 {
		if id, ok := ids[name]; ok {
			return id
		}
		id := nextID
		nextID++
		ids[name] = id
		names[id] = name
		g.AddNode(simple.Node(id))
		return id
	}

	seen := make(map[[2]int64]bool)
	for _, e := range edges {
		if e.A == e.B {
			continue
		}
		if math.IsNaN(e.Weight) || math.IsInf(e.Weight, 0) {
			continue
		}
		ai, bi := nodeID(e.A), nodeID(e.B)
		p := canonicalPair(ai, bi)
		if seen[p] {
			continue
		}
		seen[p] = true
		g.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(ai), T: simple.Node(bi), W: e.Weight})
	}

	var nodes []NodeMetrics
	// Stable order: walk by id, which matches first-appearance insertion order.
	for i := int64(0); i < nextID; i++ {
		name, ok := names[i]
		if !ok {
			continue
		}
		nm := nodeMetricsFor(g, i, name)
		nodes = append(nodes, nm)
	}

	regions := regionSummary(g, names)

	return Summary{Nodes: nodes, Regions: regions}
}

func canonicalPair(a, b int64) [2]int64 {
	if a <= b {
		return [2]int64{a, b}
	}
	return [2]int64{b, a}
}

func nodeMetricsFor(g *simple.WeightedUndirectedGraph, id int64, name string) NodeMetrics {
	nm := NodeMetrics{Name: name}
	neighbors := g.From(id)
	var strength, maxW float64
	degree := 0
	first := true
	for neighbors.Next() {
		other := neighbors.Node().ID()
		we := g.WeightedEdge(id, other)
		if we == nil {
			continue
		}
		w := we.Weight()
		degree++
		strength += w
		if first || w > maxW {
			maxW = w
			first = false
		}
	}
	nm.Degree = degree
	nm.Strength = strength
	if degree > 0 {
		nm.Mean = strength / float64(degree)
	}
	nm.Max = maxW
	return nm
}

func regionSummary(g *simple.WeightedUndirectedGraph, names map[int64]string) []RegionPair {
	type accum struct {
		count int
		sum   float64
	}
	acc := make(map[[2]string]*accum)
	order := make([]string, 0)
	orderSeen := make(map[string]bool)

	edgeFn := g.Edges()
	for edgeFn.Next() {
		e := edgeFn.Edge()
		we, ok := e.(graph.WeightedEdge)
		if !ok {
			continue
		}
		aName := names[we.From().ID()]
		bName := names[we.To().ID()]
		ra := regionOf(aName)
		rb := regionOf(bName)
		key := canonicalRegionPair(ra, rb)
		k := key[0] + "|" + key[1]
		if acc[k] == nil {
			acc[k] = &accum{}
		}
		acc[k].count++
		acc[k].sum += we.Weight()
		if !orderSeen[k] {
			orderSeen[k] = true
			order = append(order, k)
		}
	}

	out := make([]RegionPair, 0, len(order))
	for _, k := range order {
		parts := strings.SplitN(k, "|", 2)
		a := acc[k]
		rp := RegionPair{A: parts[0], B: parts[1], EdgeCount: a.count, SumWeight: a.sum}
		if a.count > 0 {
			rp.MeanWeight = a.sum / float64(a.count)
		}
		out = append(out, rp)
	}
	return out
}

func canonicalRegionPair(a, b string) [2]string {
	if a <= b {
		return [2]string{a, b}
	}
	return [2]string{b, a}
}

// regionOf classifies a channel name into a canonical "hemisphere_lobe" key.
func regionOf(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	return hemisphereOf(n) + "_" + lobeOf(n)
}

// hemisphereOf classifies by trailing digit parity, or "mid" for names
// ending in "z" (midline electrodes, e.g. "cz", "fz").
func hemisphereOf(n string) string {
	if strings.HasSuffix(n, "z") {
		return "mid"
	}
	i := len(n)
	for i > 0 && n[i-1] >= '0' && n[i-1] <= '9' {
		i--
	}
	digits := n[i:]
	if digits == "" {
		return "mid"
	}
	last := digits[len(digits)-1]
	if (last-'0')%2 == 0 {
		return "right"
	}
	return "left"
}

// lobeOf classifies by channel-name prefix heuristics.
func lobeOf(n string) string {
	switch {
	case strings.HasPrefix(n, "fp"), strings.HasPrefix(n, "af"):
		return "frontal"
	case strings.HasPrefix(n, "ft"), strings.HasPrefix(n, "tp"):
		return "temporal"
	case strings.HasPrefix(n, "po"):
		return "occipital"
	case strings.HasPrefix(n, "fc"):
		return "central"
	case strings.HasPrefix(n, "cp"):
		return "parietal"
	}
	if len(n) == 0 {
		return "unknown"
	}
	switch n[0] {
	case 'f':
		return "frontal"
	case 't':
		return "temporal"
	case 'o':
		return "occipital"
	case 'c':
		return "central"
	case 'p':
		return "parietal"
	}
	return "unknown"
}
