package inference

import (
	"context"
	"fmt"

	"github.com/kilnlm/kiln/internal/logits"
	"github.com/kilnlm/kiln/internal/model"
)

// Generator drives the autoregressive decode loop for one request.
type Generator struct {
	Provider model.Provider
	Sampler  *logits.Sampler
	EOSToken int
}

// Run performs at most maxNewTokens decode steps against st. Each step asks
// the provider for next-position logits, samples one token, and either
// terminates on the end-of-sequence id (which is never appended) or grows
// the state by exactly one token. A provider failure aborts the loop; the
// caller discards the partial state.
func (g *Generator) Run(ctx context.Context, st *DecodeState, maxNewTokens int) error {
	acceptsMask := g.Provider.Caps().AcceptsAttentionMask

	for i := 0; i < maxNewTokens; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		var mask []int
		if acceptsMask {
			mask = st.Mask
		}
		lg, err := g.Provider.Forward(st.Tokens, mask)
		if err != nil {
			return fmt.Errorf("forward at step %d: %w", i, err)
		}
		next := g.Sampler.Sample(lg)
		if next == g.EOSToken {
			return nil
		}
		st.Append(next)
	}
	return nil
}
