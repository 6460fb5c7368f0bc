package seqmodel

import (
	"fmt"
	"math"
)

// Predict runs the trained network over a window and returns the raw logits
// for the next-token distribution. This is a float-only mirror of the
// training forward pass: no autodiff graph, no dropout, deterministic for a
// given window and set of weights. Safe for concurrent use once training has
// finished.
func (m *Model) Predict(window []int) []float64 {
	cfg := m.Config

	hidden := make([][]float64, cfg.Layers)
	for l := range hidden {
		hidden[l] = make([]float64, cfg.HiddenSize)
	}

	for _, id := range window {
		x := m.row("embed", id)
		for l := 0; l < cfg.Layers; l++ {
			hidden[l] = m.gruStepData(l, x, hidden[l])
			x = hidden[l]
		}
	}

	outW := m.state["out.w"]
	outB := m.state["out.b"][0]
	logits := make([]float64, m.VocabSize)
	for i, row := range outW {
		sum := outB[i].Data
		for j := range row {
			sum += row[j].Data * hidden[cfg.Layers-1][j]
		}
		logits[i] = sum
	}
	return logits
}

func (m *Model) row(name string, i int) []float64 {
	src := m.state[name][i]
	out := make([]float64, len(src))
	for j, v := range src {
		out[j] = v.Data
	}
	return out
}

func (m *Model) gruStepData(layer int, x, h []float64) []float64 {
	matVec := func(name string, in []float64) []float64 {
		w := m.state[name]
		out := make([]float64, len(w))
		for i, row := range w {
			sum := 0.0
			for j := range row {
				sum += row[j].Data * in[j]
			}
			out[i] = sum
		}
		return out
	}
	bias := func(name string) []*value { return m.state[name][0] }
	sigmoid := func(v float64) float64 { return 1 / (1 + math.Exp(-v)) }

	wzx := matVec(fmt.Sprintf("gru%d.wz", layer), x)
	uzh := matVec(fmt.Sprintf("gru%d.uz", layer), h)
	wrx := matVec(fmt.Sprintf("gru%d.wr", layer), x)
	urh := matVec(fmt.Sprintf("gru%d.ur", layer), h)
	bz := bias(fmt.Sprintf("gru%d.bz", layer))
	br := bias(fmt.Sprintf("gru%d.br", layer))
	bh := bias(fmt.Sprintf("gru%d.bh", layer))

	n := m.Config.HiddenSize
	z := make([]float64, n)
	rh := make([]float64, n)
	for i := 0; i < n; i++ {
		z[i] = sigmoid(wzx[i] + uzh[i] + bz[i].Data)
		r := sigmoid(wrx[i] + urh[i] + br[i].Data)
		rh[i] = r * h[i]
	}

	whx := matVec(fmt.Sprintf("gru%d.wh", layer), x)
	uhrh := matVec(fmt.Sprintf("gru%d.uh", layer), rh)

	next := make([]float64, n)
	for i := 0; i < n; i++ {
		c := math.Tanh(whx[i] + uhrh[i] + bh[i].Data)
		next[i] = (1-z[i])*h[i] + z[i]*c
	}
	return next
}
