package model

// Caps declares which optional inputs a provider consumes. The decode loop
// queries this once at setup instead of inspecting the provider at call
// time.
type Caps struct {
	AcceptsAttentionMask bool
}

// Provider produces next-position logits for a token sequence.
//
// Forward must be a pure function of its arguments and safe for concurrent
// use: one provider instance is shared by every in-flight generation.
type Provider interface {
	// Forward returns one logit per vocabulary entry for the position
	// following the given sequence. mask may be nil when the provider's
	// Caps do not declare attention-mask input.
	Forward(ids []int, mask []int) ([]float32, error)
	VocabSize() int
	Caps() Caps
}
