// Package ring implements fixed-capacity, fixed-latency online analysis
// engines: per-channel circular buffers feeding periodic bandpower and
// artifact-gate frames with stable, chunk-boundary-independent timing.
package ring

import "fmt"

// buffer is a per-channel circular sample buffer, adapted from the
// teacher's dsp.DelayLine: same writePos/modulo-advance shape, with
// single-sample push and oldest-to-newest snapshot extraction.
type buffer struct {
	data     []float32
	writePos int
	filled   int // number of valid samples written, capped at cap(data)
}

func newBuffer(capacity int) *buffer {
	return &buffer{data: make([]float32, capacity)}
}

func (b *buffer) push(x float32) {
	n := len(b.data)
	b.data[b.writePos] = x
	b.writePos = (b.writePos + 1) % n
	if b.filled < n {
		b.filled++
	}
}

func (b *buffer) full() bool {
	return b.filled >= len(b.data)
}

// snapshot writes the buffer contents, oldest-to-newest, into dst. dst must
// have length len(b.data). Only meaningful once full() is true.
func (b *buffer) snapshot(dst []float32) {
	n := len(b.data)
	start := b.writePos // oldest sample sits at the next write position
	for i := 0; i < n; i++ {
		dst[i] = b.data[(start+i)%n]
	}
}

// scheduler tracks the total_samples/since_last_update counters shared by
// both online engines (spec §4.2 step 3): since_last_update is decremented,
// never reset, so timing survives arbitrary chunk-boundary patterns.
type scheduler struct {
	windowSamples int
	updateSamples int

	totalSamples    int64
	sinceLastUpdate int64
	ringFull        bool
}

func newScheduler(windowSamples, updateSamples int) (*scheduler, error) {
	if windowSamples < 8 {
		windowSamples = 8
	}
	if updateSamples > windowSamples {
		updateSamples = windowSamples
	}
	if updateSamples < 1 {
		updateSamples = 1
	}
	if windowSamples < 1 {
		return nil, fmt.Errorf("ring: window_samples must be >= 1, got %d", windowSamples)
	}
	return &scheduler{windowSamples: windowSamples, updateSamples: updateSamples}, nil
}

// advance accounts for n newly pushed samples and returns the total_samples
// value at each sample index (in order) where a frame should be emitted.
func (s *scheduler) advance(n int) []int64 {
	var emits []int64
	for i := 0; i < n; i++ {
		s.totalSamples++
		s.sinceLastUpdate++
		if !s.ringFull {
			if s.totalSamples >= int64(s.windowSamples) {
				s.ringFull = true
			} else {
				continue
			}
		}
		if s.sinceLastUpdate >= int64(s.updateSamples) {
			s.sinceLastUpdate -= int64(s.updateSamples)
			emits = append(emits, s.totalSamples)
		}
	}
	return emits
}

func windowSamplesFor(windowSeconds, fsHz float64) int {
	n := int(windowSeconds*fsHz + 0.5)
	if n < 8 {
		n = 8
	}
	return n
}

func updateSamplesFor(updateSeconds, fsHz float64) int {
	n := int(updateSeconds*fsHz + 0.5)
	if n < 1 {
		n = 1
	}
	return n
}
