package api

import (
	"context"
	"errors"
	"testing"

	"github.com/kilnlm/kiln/internal/inference"
	"github.com/kilnlm/kiln/internal/logger"
	"github.com/kilnlm/kiln/internal/respcache"
)

// countingEngine is an inference.Engine double that records invocations.
type countingEngine struct {
	calls   int
	suffix  string
	err     error
	lastReq *inference.Request
}

func (e *countingEngine) Generate(ctx context.Context, req *inference.Request) (*inference.Result, error) {
	e.calls++
	e.lastReq = req
	if e.err != nil {
		return nil, e.err
	}
	return &inference.Result{
		Prompt:          req.Prompt,
		Text:            req.Prompt + e.suffix,
		TokensGenerated: len(e.suffix),
	}, nil
}

func (e *countingEngine) Close() error { return nil }

func newTestService(eng inference.Engine, capacity int) *GenerateService {
	return NewGenerateService(eng, respcache.New(capacity), nil, logger.Discard())
}

func TestGenerateAppliesDefaults(t *testing.T) {
	eng := &countingEngine{suffix: "!"}
	svc := newTestService(eng, 10)

	if _, _, err := svc.Generate(context.Background(), &GenerateRequest{Prompt: "hi"}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if eng.lastReq.MaxNewTokens != inference.DefaultMaxNewTokens {
		t.Fatalf("max_new_tokens default = %d, want %d", eng.lastReq.MaxNewTokens, inference.DefaultMaxNewTokens)
	}
	if eng.lastReq.Temperature != inference.DefaultTemperature {
		t.Fatalf("temperature default = %v, want %v", eng.lastReq.Temperature, inference.DefaultTemperature)
	}
}

func TestGenerateCoercesNegativeMaxNewTokens(t *testing.T) {
	eng := &countingEngine{suffix: ""}
	svc := newTestService(eng, 10)

	neg := -3
	if _, _, err := svc.Generate(context.Background(), &GenerateRequest{Prompt: "hi", MaxNewTokens: &neg}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if eng.lastReq.MaxNewTokens != 0 {
		t.Fatalf("expected coercion to 0, got %d", eng.lastReq.MaxNewTokens)
	}
}

func TestGenerateRejectsEmptyPrompt(t *testing.T) {
	svc := newTestService(&countingEngine{}, 10)
	_, _, err := svc.Generate(context.Background(), &GenerateRequest{})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestGenerateRejectsNegativeTemperature(t *testing.T) {
	svc := newTestService(&countingEngine{}, 10)
	temp := -0.5
	_, _, err := svc.Generate(context.Background(), &GenerateRequest{Prompt: "p", Temperature: &temp})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestGenerateCacheIdempotence(t *testing.T) {
	eng := &countingEngine{suffix: " world"}
	svc := newTestService(eng, 10)
	req := &GenerateRequest{Prompt: "hello"}

	first, cached, err := svc.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("first generate: %v", err)
	}
	if cached {
		t.Fatal("first request must miss")
	}

	second, cached, err := svc.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("second generate: %v", err)
	}
	if !cached {
		t.Fatal("second identical request must hit the cache")
	}
	if *first != *second {
		t.Fatalf("cached response differs: %+v vs %+v", first, second)
	}
	if eng.calls != 1 {
		t.Fatalf("engine invoked %d times, want exactly 1", eng.calls)
	}
}

func TestGenerateDistinctParamsMissCache(t *testing.T) {
	eng := &countingEngine{suffix: "!"}
	svc := newTestService(eng, 10)

	if _, _, err := svc.Generate(context.Background(), &GenerateRequest{Prompt: "p"}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	temp := 0.5
	if _, cached, err := svc.Generate(context.Background(), &GenerateRequest{Prompt: "p", Temperature: &temp}); err != nil || cached {
		t.Fatalf("different temperature must miss: cached=%v err=%v", cached, err)
	}
	if eng.calls != 2 {
		t.Fatalf("engine invoked %d times, want 2", eng.calls)
	}
}

func TestGenerateFailureNotCached(t *testing.T) {
	eng := &countingEngine{err: errors.New("forward failed")}
	svc := newTestService(eng, 10)
	req := &GenerateRequest{Prompt: "p"}

	if _, _, err := svc.Generate(context.Background(), req); err == nil {
		t.Fatal("expected engine failure to propagate")
	}
	if svc.Cache().Len() != 0 {
		t.Fatalf("failed generation must not be cached, cache has %d entries", svc.Cache().Len())
	}

	// A retry after the failure reaches the engine again.
	eng.err = nil
	eng.suffix = "ok"
	if _, cached, err := svc.Generate(context.Background(), req); err != nil || cached {
		t.Fatalf("retry should decode fresh: cached=%v err=%v", cached, err)
	}
}
