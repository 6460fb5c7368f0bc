package seqmodel

import (
	"context"
	"errors"
	"math/rand"
)

// ErrInsufficientData is returned when training is attempted with no
// examples.
var ErrInsufficientData = errors.New("insufficient training data")

// Example is one supervised pair: a window of W token ids and the id that
// follows it.
type Example struct {
	Window []int
	Target int
}

// TrainOptions control one training run. Zero values fall back to the
// reference configuration (200 passes, batches of 32, Adam).
type TrainOptions struct {
	Epochs       int
	BatchSize    int
	LearningRate float64
	// Seed makes weight updates reproducible (dropout masks and example
	// shuffling both draw from it).
	Seed int64
	// OnEpoch, when set, receives the mean cross-entropy loss after each
	// full pass over the example set. External monitoring hook; errors
	// returned from it are not expected and not supported.
	OnEpoch func(epoch int, loss float64)
}

func (o TrainOptions) withDefaults() TrainOptions {
	if o.Epochs <= 0 {
		o.Epochs = 200
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 32
	}
	if o.LearningRate <= 0 {
		o.LearningRate = 0.005
	}
	return o
}

// Train minimizes categorical cross-entropy between the predicted next-token
// distribution and the one-hot target over mini-batches, for the configured
// number of passes. Gradients are accumulated across each batch and applied
// with one Adam step. The context is checked between batches so a run can be
// cancelled without finishing every pass.
func (m *Model) Train(ctx context.Context, examples []Example, opts TrainOptions) error {
	if len(examples) == 0 {
		return ErrInsufficientData
	}
	opts = opts.withDefaults()
	rng := rand.New(rand.NewSource(opts.Seed))

	order := make([]int, len(examples))
	for i := range order {
		order[i] = i
	}

	for epoch := 0; epoch < opts.Epochs; epoch++ {
		rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})

		epochLoss := 0.0
		for start := 0; start < len(order); start += opts.BatchSize {
			if err := ctx.Err(); err != nil {
				return err
			}

			end := start + opts.BatchSize
			if end > len(order) {
				end = len(order)
			}

			m.zeroGrads()
			for _, idx := range order[start:end] {
				loss := m.exampleLoss(examples[idx], rng)
				epochLoss += loss.Data
				loss.Backward()
			}

			// Scale accumulated gradients so the update magnitude does not
			// depend on the batch size.
			scale := 1.0 / float64(end-start)
			for _, p := range m.params {
				p.Grad *= scale
			}
			m.update(opts.LearningRate)
		}

		if opts.OnEpoch != nil {
			opts.OnEpoch(epoch+1, epochLoss/float64(len(examples)))
		}
	}
	return nil
}

// exampleLoss builds the forward graph for one example and returns the
// negative log-likelihood of the target id.
func (m *Model) exampleLoss(ex Example, rng *rand.Rand) *value {
	logits := m.forward(ex.Window, true, rng)
	probs := softmaxValues(logits)
	return probs[ex.Target].Log().MulConst(-1)
}
