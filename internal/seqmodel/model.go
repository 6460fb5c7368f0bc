package seqmodel

import (
	"fmt"
	"math"
	"math/rand"
)

// Config holds the model hyperparameters.
type Config struct {
	// Window is the fixed context length W the model is trained with.
	Window int `json:"window"`
	// EmbedSize is the dense vector size each token id is embedded into.
	EmbedSize int `json:"embed_size"`
	// HiddenSize is the width of each recurrent layer.
	HiddenSize int `json:"hidden_size"`
	// Layers is the number of stacked recurrent layers.
	Layers int `json:"layers"`
	// Dropout is the rate applied between recurrent layers during training.
	Dropout float64 `json:"dropout"`
}

// DefaultConfig is the reference configuration: two stacked gated layers of
// width 128 with dropout 0.25, over a 100-token context.
func DefaultConfig() Config {
	return Config{
		Window:     100,
		EmbedSize:  64,
		HiddenSize: 128,
		Layers:     2,
		Dropout:    0.25,
	}
}

const initScale = 0.02

// Model learns P(next token id | window of W preceding ids) over a fixed
// vocabulary. The trained model is always used together with the vocabulary
// it was fitted against; it never sees raw tokens, only dense ids.
//
// Architecture: embedding -> stacked GRU layers -> linear projection to
// |V| logits. Softmax and temperature are applied by the caller.
type Model struct {
	Config    Config
	VocabSize int

	params []*value
	state  map[string][][]*value
	adamM  []float64
	adamV  []float64
	steps  int
}

// New initializes all weights from the given source of randomness with a
// small Gaussian so activations start in the linear range of the gates.
func New(cfg Config, vocabSize int, rng *rand.Rand) *Model {
	m := &Model{
		Config:    cfg,
		VocabSize: vocabSize,
		state:     make(map[string][][]*value),
	}

	createMatrix := func(name string, rows, cols int) {
		mat := make([][]*value, rows)
		for i := 0; i < rows; i++ {
			mat[i] = make([]*value, cols)
			for j := 0; j < cols; j++ {
				v := newValue(rng.NormFloat64() * initScale)
				mat[i][j] = v
				m.params = append(m.params, v)
			}
		}
		m.state[name] = mat
	}

	createMatrix("embed", vocabSize, cfg.EmbedSize)
	for l := 0; l < cfg.Layers; l++ {
		in := cfg.EmbedSize
		if l > 0 {
			in = cfg.HiddenSize
		}
		for _, gate := range []string{"z", "r", "h"} {
			createMatrix(fmt.Sprintf("gru%d.w%s", l, gate), cfg.HiddenSize, in)
			createMatrix(fmt.Sprintf("gru%d.u%s", l, gate), cfg.HiddenSize, cfg.HiddenSize)
			createMatrix(fmt.Sprintf("gru%d.b%s", l, gate), 1, cfg.HiddenSize)
		}
	}
	createMatrix("out.w", vocabSize, cfg.HiddenSize)
	createMatrix("out.b", 1, vocabSize)

	m.adamM = make([]float64, len(m.params))
	m.adamV = make([]float64, len(m.params))

	return m
}

// linear computes W*x for a weight matrix shaped [out][in].
func linear(w [][]*value, x []*value) []*value {
	out := make([]*value, len(w))
	for i, row := range w {
		sum := newValue(0)
		for j, xi := range x {
			sum = sum.Add(row[j].Mul(xi))
		}
		out[i] = sum
	}
	return out
}

// gruStep advances one recurrent layer by one timestep:
//
//	z = sigmoid(Wz x + Uz h + bz)      update gate
//	r = sigmoid(Wr x + Ur h + br)      reset gate
//	c = tanh(Wh x + Uh (r*h) + bh)     candidate state
//	h' = (1-z)*h + z*c
func (m *Model) gruStep(layer int, x, h []*value) []*value {
	wz := m.state[fmt.Sprintf("gru%d.wz", layer)]
	uz := m.state[fmt.Sprintf("gru%d.uz", layer)]
	bz := m.state[fmt.Sprintf("gru%d.bz", layer)][0]
	wr := m.state[fmt.Sprintf("gru%d.wr", layer)]
	ur := m.state[fmt.Sprintf("gru%d.ur", layer)]
	br := m.state[fmt.Sprintf("gru%d.br", layer)][0]
	wh := m.state[fmt.Sprintf("gru%d.wh", layer)]
	uh := m.state[fmt.Sprintf("gru%d.uh", layer)]
	bh := m.state[fmt.Sprintf("gru%d.bh", layer)][0]

	wzx, uzh := linear(wz, x), linear(uz, h)
	wrx, urh := linear(wr, x), linear(ur, h)

	n := m.Config.HiddenSize
	z := make([]*value, n)
	r := make([]*value, n)
	for i := 0; i < n; i++ {
		z[i] = wzx[i].Add(uzh[i]).Add(bz[i]).Sigmoid()
		r[i] = wrx[i].Add(urh[i]).Add(br[i]).Sigmoid()
	}

	rh := make([]*value, n)
	for i := 0; i < n; i++ {
		rh[i] = r[i].Mul(h[i])
	}
	whx, uhrh := linear(wh, x), linear(uh, rh)

	next := make([]*value, n)
	for i := 0; i < n; i++ {
		c := whx[i].Add(uhrh[i]).Add(bh[i]).Tanh()
		// h' = h + z*(c - h)
		delta := c.Add(h[i].MulConst(-1)).Mul(z[i])
		next[i] = h[i].Add(delta)
	}
	return next
}

// forward unrolls the network over a full window and returns the logits for
// the next-token distribution. When train is true, inverted dropout is
// applied to the output of every layer but the last, re-sampled per
// timestep.
func (m *Model) forward(window []int, train bool, rng *rand.Rand) []*value {
	cfg := m.Config
	embed := m.state["embed"]

	hidden := make([][]*value, cfg.Layers)
	for l := range hidden {
		hidden[l] = make([]*value, cfg.HiddenSize)
		for i := range hidden[l] {
			hidden[l][i] = newValue(0)
		}
	}

	keep := 1 - cfg.Dropout
	for _, id := range window {
		x := embed[id]
		for l := 0; l < cfg.Layers; l++ {
			hidden[l] = m.gruStep(l, x, hidden[l])
			x = hidden[l]
			if train && cfg.Dropout > 0 && l < cfg.Layers-1 {
				dropped := make([]*value, len(x))
				for i, xi := range x {
					if rng.Float64() < cfg.Dropout {
						dropped[i] = xi.MulConst(0)
					} else {
						dropped[i] = xi.MulConst(1 / keep)
					}
				}
				x = dropped
			}
		}
	}

	logits := linear(m.state["out.w"], hidden[cfg.Layers-1])
	bias := m.state["out.b"][0]
	for i := range logits {
		logits[i] = logits[i].Add(bias[i])
	}
	return logits
}

// softmaxValues converts logits into probabilities that sum to 1, subtracting
// the max logit first for numerical stability.
func softmaxValues(logits []*value) []*value {
	maxVal := logits[0].Data
	for _, l := range logits[1:] {
		if l.Data > maxVal {
			maxVal = l.Data
		}
	}

	exps := make([]*value, len(logits))
	total := newValue(0)
	for i, l := range logits {
		e := l.AddConst(-maxVal).Exp()
		exps[i] = e
		total = total.Add(e)
	}

	invTotal := total.Pow(-1)
	probs := make([]*value, len(logits))
	for i, e := range exps {
		probs[i] = e.Mul(invTotal)
	}
	return probs
}

// update performs one Adam optimization step over all parameters and resets
// gradients.
func (m *Model) update(lr float64) {
	m.steps++
	const beta1, beta2, eps = 0.9, 0.999, 1e-8

	for i, p := range m.params {
		m.adamM[i] = beta1*m.adamM[i] + (1-beta1)*p.Grad
		m.adamV[i] = beta2*m.adamV[i] + (1-beta2)*p.Grad*p.Grad

		mHat := m.adamM[i] / (1 - math.Pow(beta1, float64(m.steps)))
		vHat := m.adamV[i] / (1 - math.Pow(beta2, float64(m.steps)))

		p.Data -= lr * mHat / (math.Sqrt(vHat) + eps)
		p.Grad = 0
	}
}

func (m *Model) zeroGrads() {
	for _, p := range m.params {
		p.Grad = 0
	}
}
