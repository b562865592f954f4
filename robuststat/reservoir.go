package robuststat

import "math/rand"

// ReservoirSampler implements Algorithm R: uniform sampling of up to K
// elements from a stream of unknown length in O(K) memory. Used to
// accumulate bounded-memory per-key samples when building robust
// references over long recordings.
type ReservoirSampler struct {
	k       int
	seen    int
	samples []float64
	rng     *rand.Rand
}

// NewReservoirSampler creates a sampler with capacity k (k must be >= 1).
func NewReservoirSampler(k int) *ReservoirSampler {
	if k < 1 {
		k = 1
	}
	return &ReservoirSampler{
		k:       k,
		samples: make([]float64, 0, k),
		rng:     rand.New(rand.NewSource(1)),
	}
}

// SetRand overrides the sampler's source of randomness (primarily for tests).
func (r *ReservoirSampler) SetRand(rng *rand.Rand) { r.rng = rng }

// Add folds x into the reservoir.
func (r *ReservoirSampler) Add(x float64) {
	r.seen++
	if len(r.samples) < r.k {
		r.samples = append(r.samples, x)
		return
	}
	j := r.rng.Intn(r.seen)
	if j < r.k {
		r.samples[j] = x
	}
}

// Len returns the number of samples currently held (<= K).
func (r *ReservoirSampler) Len() int { return len(r.samples) }

// Seen returns the total number of values offered to Add.
func (r *ReservoirSampler) Seen() int { return r.seen }

// Samples returns the reservoir's current contents. The caller must not
// mutate the returned slice.
func (r *ReservoirSampler) Samples() []float64 { return r.samples }
