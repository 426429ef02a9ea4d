package inference

// DecodeState holds the per-request token and attention-mask buffers. It is
// owned by a single decode invocation, never shared, and discarded once the
// final text has been produced.
type DecodeState struct {
	Tokens    []int
	Mask      []int
	Generated int
}

// NewDecodeState copies the tokenized prompt into fresh buffers.
func NewDecodeState(promptIDs, promptMask []int) *DecodeState {
	return &DecodeState{
		Tokens: append([]int(nil), promptIDs...),
		Mask:   append([]int(nil), promptMask...),
	}
}

// Append accepts one sampled token, growing the attention mask in lock-step.
func (st *DecodeState) Append(id int) {
	st.Tokens = append(st.Tokens, id)
	st.Mask = append(st.Mask, 1)
	st.Generated++
}
