package inference

import (
	"context"
	"time"
)

// Request parameter defaults applied when the caller leaves them unset.
const (
	DefaultMaxNewTokens = 50
	DefaultTemperature  = 1.0
)

// Engine runs one full prompt-to-text generation.
type Engine interface {
	Generate(ctx context.Context, req *Request) (*Result, error)
	Close() error
}

// Request carries the resolved generation parameters. MaxNewTokens and
// Temperature are literal values; defaulting happens at the API boundary.
type Request struct {
	Prompt       string
	MaxNewTokens int
	Temperature  float64
	Seed         int64
}

// Result is the completed generation returned to the caller.
type Result struct {
	Prompt          string
	Text            string
	TokensGenerated int
	Stats           Stats
}

type Stats struct {
	Duration time.Duration
	TPS      float64
}
