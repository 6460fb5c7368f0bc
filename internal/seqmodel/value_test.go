package seqmodel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBackward_SimpleProduct(t *testing.T) {
	a := newValue(3)
	b := newValue(-2)
	out := a.Mul(b).Add(a) // f = a*b + a

	out.Backward()

	assert.InDelta(t, -6+3, out.Data, 1e-12)
	assert.InDelta(t, -2+1, a.Grad, 1e-12) // df/da = b + 1
	assert.InDelta(t, 3, b.Grad, 1e-12)    // df/db = a
}

// TestBackward_NumericGradient checks analytic gradients against central
// finite differences for a composite expression with every op the model
// actually uses.
func TestBackward_NumericGradient(t *testing.T) {
	f := func(av, bv float64) (*value, *value, *value) {
		a := newValue(av)
		b := newValue(bv)
		out := a.Mul(b).Tanh().
			Add(a.Sigmoid()).
			Add(b.Exp().MulConst(0.1)).
			Add(a.AddConst(3).Log()).
			Mul(b.Pow(2))
		return a, b, out
	}

	const av, bv = 0.7, -0.4
	const h = 1e-6

	a, b, out := f(av, bv)
	out.Backward()

	_, _, plusA := f(av+h, bv)
	_, _, minusA := f(av-h, bv)
	numericA := (plusA.Data - minusA.Data) / (2 * h)

	_, _, plusB := f(av, bv+h)
	_, _, minusB := f(av, bv-h)
	numericB := (plusB.Data - minusB.Data) / (2 * h)

	assert.InDelta(t, numericA, a.Grad, 1e-5)
	assert.InDelta(t, numericB, b.Grad, 1e-5)
}

func TestBackward_SharedSubexpression(t *testing.T) {
	// f = a*a: a participates twice, gradients must accumulate.
	a := newValue(5)
	out := a.Mul(a)

	out.Backward()

	assert.InDelta(t, 10, a.Grad, 1e-12)
}

func TestSoftmaxValues(t *testing.T) {
	logits := []*value{newValue(1), newValue(2), newValue(3)}
	probs := softmaxValues(logits)

	total := 0.0
	for _, p := range probs {
		total += p.Data
	}
	assert.InDelta(t, 1, total, 1e-12)
	assert.Greater(t, probs[2].Data, probs[1].Data)
	assert.Greater(t, probs[1].Data, probs[0].Data)
}

func TestSoftmaxValues_LargeLogits(t *testing.T) {
	// Max subtraction keeps exp from overflowing.
	logits := []*value{newValue(1000), newValue(1001)}
	probs := softmaxValues(logits)

	for _, p := range probs {
		assert.False(t, math.IsNaN(p.Data))
		assert.False(t, math.IsInf(p.Data, 0))
	}
	assert.InDelta(t, 1, probs[0].Data+probs[1].Data, 1e-12)
}
