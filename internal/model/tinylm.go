package model

import (
	"fmt"
	"math/rand"
)

// TinyLM is a minimal causal language model: an embedding matrix, a
// projection back to vocabulary logits, and a bias vector. The hidden state
// for the next position is the mask-weighted mean of the sequence
// embeddings, so the attention mask is a real input rather than decoration.
//
// It is deliberately simplistic; the decode loop only requires that Forward
// is a pure, shape-correct function of the sequence passed to it.
type TinyLM struct {
	vocab  int
	hidden int
	emb    []float32 // vocab x hidden, row-major
	w      []float32 // hidden x vocab, row-major
	bias   []float32 // vocab
}

// NewSeeded constructs a model with weights filled deterministically from
// the seed. Biases are zeroed.
func NewSeeded(vocab, hidden int, seed int64) *TinyLM {
	m := &TinyLM{
		vocab:  vocab,
		hidden: hidden,
		emb:    make([]float32, vocab*hidden),
		w:      make([]float32, hidden*vocab),
		bias:   make([]float32, vocab),
	}
	fillRand(m.emb, seed+11)
	fillRand(m.w, seed+23)
	return m
}

func fillRand(dst []float32, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	for i := range dst {
		dst[i] = float32(rng.NormFloat64() * 0.1)
	}
}

func (m *TinyLM) VocabSize() int { return m.vocab }

func (m *TinyLM) Caps() Caps {
	return Caps{AcceptsAttentionMask: true}
}

// Forward computes the logits over the vocabulary for the position following
// the given sequence. It validates shapes and never mutates the model, so
// concurrent calls are safe.
func (m *TinyLM) Forward(ids []int, mask []int) ([]float32, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("empty token sequence")
	}
	if mask != nil && len(mask) != len(ids) {
		return nil, fmt.Errorf("attention mask length %d does not match sequence length %d", len(mask), len(ids))
	}

	// h = mean of attended embedding rows
	h := make([]float32, m.hidden)
	var attended int
	for pos, id := range ids {
		if id < 0 || id >= m.vocab {
			return nil, fmt.Errorf("token id %d out of range [0,%d)", id, m.vocab)
		}
		if mask != nil && mask[pos] == 0 {
			continue
		}
		row := m.emb[id*m.hidden : (id+1)*m.hidden]
		for i, v := range row {
			h[i] += v
		}
		attended++
	}
	if attended == 0 {
		return nil, fmt.Errorf("attention mask excludes every position")
	}
	inv := 1 / float32(attended)
	for i := range h {
		h[i] *= inv
	}

	// logits = h * W + bias
	lg := make([]float32, m.vocab)
	copy(lg, m.bias)
	for i, hv := range h {
		if hv == 0 {
			continue
		}
		row := m.w[i*m.vocab : (i+1)*m.vocab]
		for j, wv := range row {
			lg[j] += hv * wv
		}
	}
	return lg, nil
}
