// Package reference builds and serializes per-(channel,band) bandpower
// reference statistics, accumulated across many inputs via either a
// Welford mean/std path or a reservoir-sampled robust median/scale path.
package reference

import (
	"fmt"
	"math"

	"github.com/cwbudde/qeeg-core/bands"
	"github.com/cwbudde/qeeg-core/ring"
	"github.com/cwbudde/qeeg-core/robuststat"
	"github.com/cwbudde/qeeg-core/spectral"
)

// DefaultReservoirCap is the default per-key sample cap for the robust path.
const DefaultReservoirCap = 20000

// Metadata records the preprocessing options a reference was built with, so
// downstream z-scoring can refuse a silent scale mismatch. Mirrors the
// key=value comment lines of the reference CSV format.
type Metadata struct {
	Robust           bool
	Log10Power       bool
	RelativePower    bool
	RelativeFMinHz   float64
	RelativeFMaxHz   float64
}

type key struct {
	channel string
	band    string
}

// Stat is one (channel,band) entry's final, read-only statistics.
type Stat struct {
	Channel string
	Band    string
	Center  float64 // mean (non-robust) or median (robust)
	Spread  float64 // std (non-robust) or robust scale (robust)
	N       int
}

// Builder accumulates bandpower samples per (channel,band) key. Zero value
// is not usable; construct with NewBuilder. A Builder is mutated only
// during its accumulation phase; callers must not feed it from multiple
// goroutines without external synchronization, and must not read Stats
// concurrently with Add calls.
type Builder struct {
	meta         Metadata
	reservoirCap int
	running      map[key]*robuststat.RunningStats
	reservoirs   map[key]*robuststat.ReservoirSampler
	order        []key
}

// NewBuilder constructs a Builder for the given metadata. If meta.Robust is
// false, the mean/std (Welford) path is used; otherwise samples are
// reservoir-sampled with the given cap (DefaultReservoirCap if cap <= 0).
func NewBuilder(meta Metadata, reservoirCap int) *Builder {
	if reservoirCap <= 0 {
		reservoirCap = DefaultReservoirCap
	}
	return &Builder{
		meta:         meta,
		reservoirCap: reservoirCap,
		running:      make(map[key]*robuststat.RunningStats),
		reservoirs:   make(map[key]*robuststat.ReservoirSampler),
	}
}

func (b *Builder) keyFor(channel, band string) key {
	k := key{channel: channel, band: band}
	if _, ok := b.running[k]; !ok {
		if _, ok2 := b.reservoirs[k]; !ok2 {
			b.order = append(b.order, k)
		}
	}
	return k
}

// Add accumulates one (channel,band) raw value, applying this builder's
// relative/log10 preprocessing first.
func (b *Builder) Add(channel, band string, rawValue, totalPower float64) {
	v := b.preprocess(rawValue, totalPower)
	if math.IsNaN(v) {
		return
	}
	k := b.keyFor(channel, band)
	if b.meta.Robust {
		r, ok := b.reservoirs[k]
		if !ok {
			r = robuststat.NewReservoirSampler(b.reservoirCap)
			b.reservoirs[k] = r
		}
		r.Add(v)
	} else {
		s, ok := b.running[k]
		if !ok {
			s = &robuststat.RunningStats{}
			b.running[k] = s
		}
		s.Add(v)
	}
}

func (b *Builder) preprocess(raw, total float64) float64 {
	v := raw
	if b.meta.RelativePower {
		if !(total > 0) {
			return math.NaN()
		}
		v = v / total
	}
	if b.meta.Log10Power {
		const eps = 1e-20
		if v < eps {
			v = eps
		}
		v = math.Log10(v)
	}
	return v
}

// AddMatrix feeds one BandpowerMatrix emission into the builder, one Add
// per (band,channel) cell. totalPower gives the per-channel denominator
// used when Metadata.RelativePower is set; pass nil when m was already
// converted to relative values upstream (e.g. via BandpowerMatrix.ApplyRelative
// or a windowed ring.BandpowerConfig with Relative set), in which case values
// are accumulated verbatim rather than re-divided.
func (b *Builder) AddMatrix(m spectral.BandpowerMatrix, totalPower []float64) {
	for bi, band := range m.Bands {
		row := m.Values[bi]
		for ci, ch := range m.Channels {
			if ci >= len(row) {
				continue
			}
			if totalPower == nil {
				b.addPreprocessed(ch, band.Name, row[ci])
				continue
			}
			total := 0.0
			if ci < len(totalPower) {
				total = totalPower[ci]
			}
			b.Add(ch, band.Name, row[ci], total)
		}
	}
}

// addPreprocessed accumulates a value that has already been converted to
// the quantity this builder's metadata describes (relative fraction and/or
// log10), skipping Add's own relative/log10 preprocessing.
func (b *Builder) addPreprocessed(channel, band string, v float64) {
	if math.IsNaN(v) {
		return
	}
	k := b.keyFor(channel, band)
	if b.meta.Robust {
		r, ok := b.reservoirs[k]
		if !ok {
			r = robuststat.NewReservoirSampler(b.reservoirCap)
			b.reservoirs[k] = r
		}
		r.Add(v)
	} else {
		s, ok := b.running[k]
		if !ok {
			s = &robuststat.RunningStats{}
			b.running[k] = s
		}
		s.Add(v)
	}
}

// Stats finalizes and returns all accumulated (channel,band) statistics, in
// first-seen key order.
func (b *Builder) Stats() []Stat {
	out := make([]Stat, 0, len(b.order))
	for _, k := range b.order {
		if b.meta.Robust {
			r, ok := b.reservoirs[k]
			if !ok {
				continue
			}
			samples := r.Samples()
			med := robuststat.Median(samples)
			scale := robuststat.RobustScale(samples, med)
			out = append(out, Stat{Channel: k.channel, Band: k.band, Center: med, Spread: scale, N: r.Seen()})
		} else {
			s, ok := b.running[k]
			if !ok {
				continue
			}
			out = append(out, Stat{Channel: k.channel, Band: k.band, Center: s.Mean(), Spread: s.StdDevSample(), N: s.N()})
		}
	}
	return out
}

// Metadata returns the preprocessing options this builder was created with.
func (b *Builder) Metadata() Metadata { return b.meta }

// BuildWindowed accumulates a reference over recording samples by reusing
// the online BandpowerEngine: samples are fed in fixed-size chunks and every
// emitted frame is accumulated, so the reference matches the distribution
// seen at online-inference time rather than a single whole-recording Welch
// estimate.
func (b *Builder) BuildWindowed(channels []string, samples [][]float32, cfg ring.BandpowerConfig, chunkSamples int) error {
	if chunkSamples <= 0 {
		return fmt.Errorf("reference: chunk_samples must be > 0")
	}
	engine, err := ring.NewBandpowerEngine(channels, cfg)
	if err != nil {
		return err
	}
	if len(samples) != len(channels) {
		return fmt.Errorf("reference: expected %d channel rows, got %d", len(channels), len(samples))
	}
	n := 0
	if len(samples) > 0 {
		n = len(samples[0])
	}
	for start := 0; start < n; start += chunkSamples {
		end := start + chunkSamples
		if end > n {
			end = n
		}
		block := make([][]float32, len(samples))
		for c, row := range samples {
			block[c] = row[start:end]
		}
		frames, err := engine.PushBlock(block)
		if err != nil {
			return err
		}
		for _, f := range frames {
			b.AddMatrix(f.Matrix, nil)
		}
	}
	return nil
}

// BandsUsed returns the set of distinct band names seen, matching spec's
// notion that a reference's keys span a fixed band layout.
func (b *Builder) BandsUsed() []bands.Band {
	seen := make(map[string]bool)
	var out []bands.Band
	for _, k := range b.order {
		if seen[k.band] {
			continue
		}
		seen[k.band] = true
		out = append(out, bands.Band{Name: k.band})
	}
	return out
}
