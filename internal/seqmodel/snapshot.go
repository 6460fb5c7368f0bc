package seqmodel

import (
	"fmt"
	"math/rand"
)

// Snapshot is the JSON-serializable form of a trained model, sufficient to
// resume generation without retraining. It is embedded in the per-genre
// artifact written by the training pipeline.
type Snapshot struct {
	Config    Config                 `json:"config"`
	VocabSize int                    `json:"vocab_size"`
	Steps     int                    `json:"steps"`
	Weights   map[string][][]float64 `json:"weights"`
}

// Snapshot extracts all trained weights by name.
func (m *Model) Snapshot() Snapshot {
	weights := make(map[string][][]float64, len(m.state))
	for name, mat := range m.state {
		rows := make([][]float64, len(mat))
		for i, row := range mat {
			rows[i] = make([]float64, len(row))
			for j, v := range row {
				rows[i][j] = v.Data
			}
		}
		weights[name] = rows
	}
	return Snapshot{
		Config:    m.Config,
		VocabSize: m.VocabSize,
		Steps:     m.steps,
		Weights:   weights,
	}
}

// FromSnapshot rebuilds a model from persisted weights. The Adam moment
// estimates are not persisted; a restored model resumes training from fresh
// optimizer state.
func FromSnapshot(s Snapshot) (*Model, error) {
	m := New(s.Config, s.VocabSize, rand.New(rand.NewSource(0)))
	m.steps = s.Steps

	for name, mat := range m.state {
		saved, ok := s.Weights[name]
		if !ok {
			return nil, fmt.Errorf("snapshot missing weights for %s", name)
		}
		if len(saved) != len(mat) {
			return nil, fmt.Errorf("snapshot %s has %d rows, want %d", name, len(saved), len(mat))
		}
		for i, row := range mat {
			if len(saved[i]) != len(row) {
				return nil, fmt.Errorf("snapshot %s row %d has %d cols, want %d", name, i, len(saved[i]), len(row))
			}
			for j, v := range row {
				v.Data = saved[i][j]
			}
		}
	}
	return m, nil
}
