package model

import (
	"math"
	"path/filepath"
	"testing"
)

func TestForwardShapeAndDeterminism(t *testing.T) {
	m := NewSeeded(16, 8, 5)
	ids := []int{3, 1, 4}
	mask := []int{1, 1, 1}

	a, err := m.Forward(ids, mask)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if len(a) != 16 {
		t.Fatalf("expected %d logits, got %d", 16, len(a))
	}
	b, err := m.Forward(ids, mask)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("forward is not deterministic at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestForwardMatchesNaive(t *testing.T) {
	m := NewSeeded(8, 6, 2)
	ids := []int{3}

	got, err := m.Forward(ids, nil)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}

	// Single token: hidden state is the embedding row itself.
	ref := make([]float32, m.vocab)
	row := m.emb[3*m.hidden : 4*m.hidden]
	for j := 0; j < m.vocab; j++ {
		var sum float32
		for i := 0; i < m.hidden; i++ {
			sum += row[i] * m.w[i*m.vocab+j]
		}
		ref[j] = sum + m.bias[j]
	}
	for i := range got {
		if math.Abs(float64(got[i]-ref[i])) > 1e-4 {
			t.Fatalf("logit mismatch at %d: got %f, want %f", i, got[i], ref[i])
		}
	}
}

func TestForwardMaskChangesLogits(t *testing.T) {
	m := NewSeeded(16, 8, 9)
	ids := []int{2, 7}

	full, err := m.Forward(ids, []int{1, 1})
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	masked, err := m.Forward(ids, []int{0, 1})
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	same := true
	for i := range full {
		if full[i] != masked[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("expected attention mask to affect the logits")
	}
}

func TestForwardValidation(t *testing.T) {
	m := NewSeeded(8, 4, 1)
	if _, err := m.Forward(nil, nil); err == nil {
		t.Fatal("expected error for empty sequence")
	}
	if _, err := m.Forward([]int{1, 2}, []int{1}); err == nil {
		t.Fatal("expected error for mask length mismatch")
	}
	if _, err := m.Forward([]int{8}, nil); err == nil {
		t.Fatal("expected error for out-of-range token id")
	}
	if _, err := m.Forward([]int{1}, []int{0}); err == nil {
		t.Fatal("expected error when mask excludes every position")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	m := NewSeeded(8, 4, 3)
	path := filepath.Join(t.TempDir(), "weights.json")
	if err := m.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want, err := m.Forward([]int{5}, nil)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	got, err := loaded.Forward([]int{5}, nil)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	for i := range want {
		if want[i] != got[i] {
			t.Fatalf("loaded model diverges at logit %d", i)
		}
	}
}

func TestLoadRejectsBadShapes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.json")
	m := NewSeeded(4, 2, 1)
	if err := m.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
