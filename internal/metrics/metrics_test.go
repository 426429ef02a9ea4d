package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RequestsTotal.WithLabelValues("/generate", "200").Inc()
	m.TokensGenerated.Add(3)
	m.CacheHits.Inc()
	m.CacheMisses.Inc()
	m.CacheEntries.Set(1)

	if got := testutil.ToFloat64(m.TokensGenerated); got != 3 {
		t.Fatalf("tokens counter = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.CacheEntries); got != 1 {
		t.Fatalf("cache entries gauge = %v, want 1", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	seen := make(map[string]bool, len(families))
	for _, fam := range families {
		seen[fam.GetName()] = true
	}
	for _, name := range []string{
		"kiln_http_requests_total",
		"kiln_tokens_generated_total",
		"kiln_response_cache_hits_total",
		"kiln_response_cache_misses_total",
		"kiln_response_cache_entries",
	} {
		if !seen[name] {
			t.Fatalf("metric %s not gathered", name)
		}
	}
}

func TestNewPanicsOnDoubleRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	defer func() {
		if recover() == nil {
			t.Fatal("expected duplicate registration to panic")
		}
	}()
	New(reg)
}
