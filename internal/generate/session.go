// Package generate implements the autoregressive decode loop that turns a
// trained model back into a bounded-length symbolic sequence.
package generate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/cadenza-ml/cadenza-api/internal/music"
	"github.com/cadenza-ml/cadenza-api/internal/vocab"
)

var (
	// ErrInvalidLength is returned when the requested output length is < 1.
	ErrInvalidLength = errors.New("invalid generation length")
	// ErrInvalidTemperature is returned for temperatures <= 0.
	ErrInvalidTemperature = errors.New("invalid temperature")
	// ErrUnknownSeedToken is returned when an externally supplied seed
	// contains a token absent from the target vocabulary.
	ErrUnknownSeedToken = errors.New("unknown seed token")
	// ErrInvalidSeed is returned when a supplied seed does not have exactly
	// the window length the model was trained with.
	ErrInvalidSeed = errors.New("invalid seed window")
)

// greedyTemperature is the cutoff below which sampling degenerates to a
// deterministic argmax decode with the lowest token id winning ties. The
// rescaled distribution at such temperatures is numerically a point mass
// anyway; making the rule explicit keeps the tau->0 limit stable.
const greedyTemperature = 1e-3

// State of a generation session.
type State int

const (
	StateSeeded State = iota
	StateGenerating
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateSeeded:
		return "SEEDED"
	case StateGenerating:
		return "GENERATING"
	case StateComplete:
		return "COMPLETE"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Predictor produces next-token logits for a fixed-length window of token
// ids. *seqmodel.Model satisfies this.
type Predictor interface {
	Predict(window []int) []float64
}

// Session is one autoregressive decode: seed -> sample -> append -> slide,
// repeated until the requested length is reached. Each sampled token is an
// input to producing the next, so a session is strictly sequential; distinct
// sessions are independent and may run concurrently.
type Session struct {
	model       Predictor
	vocab       *vocab.Vocabulary
	window      []int
	out         []int
	length      int
	temperature float64
	rng         *rand.Rand
	state       State
}

// NewSession validates the request and establishes the seed window. The seed
// is either drawn from real training data by the caller or supplied
// externally as token ids; it must be exactly the model's window length.
func NewSession(model Predictor, v *vocab.Vocabulary, seed []int, length int, temperature float64, rng *rand.Rand) (*Session, error) {
	if length < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLength, length)
	}
	if temperature <= 0 {
		return nil, fmt.Errorf("%w: %g", ErrInvalidTemperature, temperature)
	}
	for _, id := range seed {
		if _, err := v.Token(id); err != nil {
			return nil, fmt.Errorf("%w: id %d", ErrUnknownSeedToken, id)
		}
	}

	window := make([]int, len(seed))
	copy(window, seed)

	return &Session{
		model:       model,
		vocab:       v,
		window:      window,
		out:         make([]int, 0, length),
		length:      length,
		temperature: temperature,
		rng:         rng,
		state:       StateSeeded,
	}, nil
}

// SeedFromTokens resolves an externally supplied token seed against the
// target vocabulary. Every token must be known and the count must equal the
// model's window length.
func SeedFromTokens(v *vocab.Vocabulary, tokens []string, window int) ([]int, error) {
	if len(tokens) != window {
		return nil, fmt.Errorf("%w: got %d tokens, want %d", ErrInvalidSeed, len(tokens), window)
	}
	ids := make([]int, len(tokens))
	for i, tok := range tokens {
		id, err := v.ID(tok)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSeedToken, tok)
		}
		ids[i] = id
	}
	return ids, nil
}

// State reports where the session is in its lifecycle.
func (s *Session) State() State {
	return s.state
}

// Step advances the session by one sampled token. It checks the context
// first so a bounded-length request can be aborted without completing all
// steps.
func (s *Session) Step(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.state == StateComplete {
		return nil
	}
	s.state = StateGenerating

	logits := s.model.Predict(s.window)
	next := sample(logits, s.temperature, s.rng)

	s.out = append(s.out, next)
	// Slide: drop the oldest id, append the sampled one. The window length
	// stays fixed throughout the session.
	s.window = append(s.window[1:], next)

	if len(s.out) >= s.length {
		s.state = StateComplete
	}
	return nil
}

// Run advances the session to completion and decodes the accumulated token
// sequence into an ordered event sequence.
func (s *Session) Run(ctx context.Context) ([]music.Event, []string, error) {
	for s.state != StateComplete {
		if err := s.Step(ctx); err != nil {
			return nil, nil, err
		}
	}
	return s.Result()
}

// Result decodes the finished token-id sequence. It is only meaningful once
// the session is COMPLETE.
func (s *Session) Result() ([]music.Event, []string, error) {
	tokens, err := s.vocab.TokensOf(s.out)
	if err != nil {
		return nil, nil, err
	}
	events, err := music.DecodeAll(tokens)
	if err != nil {
		return nil, nil, err
	}
	return events, tokens, nil
}

// TokenIDs returns the generated ids so far.
func (s *Session) TokenIDs() []int {
	return s.out
}

// sample draws one token id from the temperature-rescaled categorical
// distribution. tau = 1 is the model's native distribution; larger values
// flatten it toward uniform, smaller values sharpen it. At or below
// greedyTemperature the decode is a deterministic argmax, lowest id first.
func sample(logits []float64, tau float64, rng *rand.Rand) int {
	if tau <= greedyTemperature {
		best := 0
		for i, l := range logits {
			if l > logits[best] {
				best = i
			}
		}
		return best
	}

	scaled := make([]float64, len(logits))
	maxLogit := math.Inf(-1)
	for i, l := range logits {
		scaled[i] = l / tau
		if scaled[i] > maxLogit {
			maxLogit = scaled[i]
		}
	}

	sum := 0.0
	for i := range scaled {
		scaled[i] = math.Exp(scaled[i] - maxLogit)
		sum += scaled[i]
	}

	// Inverse transform sampling over the normalized distribution.
	u := rng.Float64() * sum
	cumulative := 0.0
	for i, p := range scaled {
		cumulative += p
		if u < cumulative {
			return i
		}
	}
	return len(logits) - 1
}
