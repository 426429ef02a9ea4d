package inference

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/kilnlm/kiln/internal/logits"
	"github.com/kilnlm/kiln/internal/model"
	"github.com/kilnlm/kiln/internal/tokenizer"
)

// EngineImpl wires a tokenizer and a logits provider into the decode loop.
// A fresh sampler and DecodeState are built per request, so one engine
// serves any number of concurrent generations.
type EngineImpl struct {
	tok      tokenizer.Tokenizer
	provider model.Provider
}

func NewEngine(tok tokenizer.Tokenizer, provider model.Provider) *EngineImpl {
	return &EngineImpl{tok: tok, provider: provider}
}

func (e *EngineImpl) Generate(ctx context.Context, req *Request) (*Result, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context is required")
	}
	if req == nil {
		return nil, fmt.Errorf("request is required")
	}

	steps := req.MaxNewTokens
	if steps < 0 {
		steps = 0
	}

	ids, mask, err := e.tok.Encode(req.Prompt)
	if err != nil {
		return nil, fmt.Errorf("encode prompt: %w", err)
	}

	sampler := logits.NewSampler(logits.SamplerConfig{
		Seed:        req.Seed,
		Temperature: req.Temperature,
	})
	st := NewDecodeState(ids, mask)
	gen := &Generator{
		Provider: e.provider,
		Sampler:  sampler,
		EOSToken: e.tok.EOSTokenID(),
	}

	start := time.Now()
	if err := gen.Run(ctx, st, steps); err != nil {
		return nil, err
	}

	text, err := e.tok.Decode(st.Tokens, true)
	if err != nil {
		return nil, fmt.Errorf("decode tokens: %w", err)
	}

	stats := Stats{Duration: time.Since(start)}
	if stats.Duration.Seconds() > 0 {
		stats.TPS = float64(st.Generated) / stats.Duration.Seconds()
	}

	return &Result{
		Prompt:          req.Prompt,
		Text:            text,
		TokensGenerated: st.Generated,
		Stats:           stats,
	}, nil
}

func (e *EngineImpl) Close() error {
	if closer, ok := e.provider.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
