package logits

import (
	"math"
	"math/rand"
)

// GreedyThreshold is the temperature below which sampling degenerates to a
// deterministic argmax. Scaling by a near-zero temperature would concentrate
// essentially all probability mass on the maximum logit anyway.
const GreedyThreshold = 0.01

// SamplerConfig configures the behaviour of a Sampler.
type SamplerConfig struct {
	Seed        int64
	Temperature float64
}

type Sampler struct {
	rng    *rand.Rand
	temp   float64
	greedy bool
	prob   []float64
}

// NewSampler returns a new sampler with the provided configuration, drawing
// from a source seeded with cfg.Seed.
func NewSampler(cfg SamplerConfig) *Sampler {
	return NewSamplerWithSource(cfg, rand.New(rand.NewSource(cfg.Seed)))
}

// NewSamplerWithSource builds a sampler drawing from the provided random
// source. Callers that need reproducible draws inject a fixed source.
func NewSamplerWithSource(cfg SamplerConfig, rng *rand.Rand) *Sampler {
	return &Sampler{
		rng:    rng,
		temp:   cfg.Temperature,
		greedy: cfg.Temperature < GreedyThreshold,
	}
}

// Greedy reports whether the sampler always returns the argmax.
func (s *Sampler) Greedy() bool { return s.greedy }

// Sample draws a single index from the provided logits vector. In greedy
// mode the argmax is returned, ties broken by the lowest index. Otherwise
// the logits are scaled by the inverse temperature, softmax-normalized and
// one index is drawn from the resulting categorical distribution.
func (s *Sampler) Sample(logits []float32) int {
	if len(logits) == 0 {
		panic("sample: empty logits")
	}
	if s.greedy {
		return argmax(logits)
	}

	prob := s.softmax(logits)
	if prob == nil {
		return argmax(logits)
	}
	r := s.rng.Float64()
	var c float64
	for i, p := range prob {
		c += p
		if r <= c {
			return i
		}
	}
	// Cumulative rounding can leave c fractionally below 1.
	return len(prob) - 1
}

// softmax computes exp((l-max)/T) / sum over the scaled logits, reusing
// scratch space across steps. Subtracting the maximum keeps large-magnitude
// logits finite without changing the distribution. Returns nil if the
// distribution degenerates (all mass underflows).
func (s *Sampler) softmax(logits []float32) []float64 {
	if cap(s.prob) < len(logits) {
		s.prob = make([]float64, len(logits))
	}
	prob := s.prob[:len(logits)]

	maxv := logits[0]
	for _, l := range logits[1:] {
		if l > maxv {
			maxv = l
		}
	}

	invTemp := 1.0 / s.temp
	var sum float64
	for i, l := range logits {
		e := math.Exp(float64(l-maxv) * invTemp)
		prob[i] = e
		sum += e
	}
	if sum == 0 || math.IsNaN(sum) {
		return nil
	}
	invSum := 1.0 / sum
	for i := range prob {
		prob[i] *= invSum
	}
	return prob
}

// argmax returns the index of the maximum value in the slice, preferring the
// first occurrence. If the slice is empty it panics.
func argmax(x []float32) int {
	if len(x) == 0 {
		panic("argmax: empty slice")
	}
	bestI := 0
	bestV := x[0]
	for i := 1; i < len(x); i++ {
		if x[i] > bestV {
			bestV = x[i]
			bestI = i
		}
	}
	return bestI
}
