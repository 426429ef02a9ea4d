package model

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
)

// weightsFile is the on-disk JSON layout for TinyLM weights.
type weightsFile struct {
	Vocab  int       `json:"vocab"`
	Hidden int       `json:"hidden"`
	Emb    []float32 `json:"emb"`
	W      []float32 `json:"w"`
	Bias   []float32 `json:"bias"`
}

// Load reads TinyLM weights from a JSON file. A malformed or
// shape-inconsistent file is a load error; the caller treats that as fatal
// at startup.
func Load(path string) (*TinyLM, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read weights: %w", err)
	}
	var wf weightsFile
	if err := json.Unmarshal(raw, &wf); err != nil {
		return nil, fmt.Errorf("parse weights %s: %w", path, err)
	}
	if wf.Vocab <= 0 || wf.Hidden <= 0 {
		return nil, fmt.Errorf("weights %s: vocab and hidden must be positive", path)
	}
	if len(wf.Emb) != wf.Vocab*wf.Hidden {
		return nil, fmt.Errorf("weights %s: emb has %d values, want %d", path, len(wf.Emb), wf.Vocab*wf.Hidden)
	}
	if len(wf.W) != wf.Hidden*wf.Vocab {
		return nil, fmt.Errorf("weights %s: w has %d values, want %d", path, len(wf.W), wf.Hidden*wf.Vocab)
	}
	if len(wf.Bias) != wf.Vocab {
		return nil, fmt.Errorf("weights %s: bias has %d values, want %d", path, len(wf.Bias), wf.Vocab)
	}
	return &TinyLM{
		vocab:  wf.Vocab,
		hidden: wf.Hidden,
		emb:    wf.Emb,
		w:      wf.W,
		bias:   wf.Bias,
	}, nil
}

// Save writes the model weights as JSON, the inverse of Load.
func (m *TinyLM) Save(path string) error {
	raw, err := json.Marshal(weightsFile{
		Vocab:  m.vocab,
		Hidden: m.hidden,
		Emb:    m.emb,
		W:      m.w,
		Bias:   m.bias,
	})
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
