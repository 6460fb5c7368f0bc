// Package registry maps genre identifiers to their trained
// vocabulary/model pairs and exposes the single generation entry point
// consumed by the API layer.
package registry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/cadenza-ml/cadenza-api/internal/generate"
	"github.com/cadenza-ml/cadenza-api/internal/music"
	"github.com/cadenza-ml/cadenza-api/internal/seqmodel"
	"github.com/cadenza-ml/cadenza-api/internal/vocab"
)

// ErrModelNotFound is returned when no model is registered for a genre.
var ErrModelNotFound = errors.New("model not found")

// entry pairs a vocabulary with the model trained against it. A model is
// never applied against a foreign vocabulary, so the two only travel
// together. seedPool holds the corpus token-id sequences seeds are drawn
// from when a request does not supply its own.
type entry struct {
	vocab    *vocab.Vocabulary
	model    *seqmodel.Model
	window   int
	seedPool [][]int
}

// Registry is read-mostly: entries are registered during the load/training
// phase and shared immutably by concurrent generation sessions afterwards.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

func New() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Register inserts or replaces the entry for a genre.
func (r *Registry) Register(genre string, v *vocab.Vocabulary, m *seqmodel.Model, seedPool [][]int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[genre] = &entry{
		vocab:    v,
		model:    m,
		window:   m.Config.Window,
		seedPool: seedPool,
	}
}

// Genres lists registered genre ids in sorted order.
func (r *Registry) Genres() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	genres := make([]string, 0, len(r.entries))
	for g := range r.entries {
		genres = append(genres, g)
	}
	sort.Strings(genres)
	return genres
}

// Has reports whether a genre has a registered model.
func (r *Registry) Has(genre string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[genre]
	return ok
}

// GenerateParams are the per-request generation settings.
type GenerateParams struct {
	Length      int
	Temperature float64
	// SeedTokens, when non-nil, is an externally supplied seed window of
	// exactly the model's window length. When nil a seed is drawn from the
	// genre's training data.
	SeedTokens []string
	// RandomSeed pins the sampling RNG for reproducible output. When nil
	// the session uses wall-clock entropy.
	RandomSeed *int64
}

// GenerationResult is the finished output of one session.
type GenerationResult struct {
	Genre  string
	Tokens []string
	Events []music.Event
}

// Generate looks up the genre's entry and runs one full decode session.
// It fails with ErrModelNotFound before any generation work when the genre
// is absent.
func (r *Registry) Generate(ctx context.Context, genre string, params GenerateParams) (*GenerationResult, error) {
	r.mu.RLock()
	e, ok := r.entries[genre]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrModelNotFound, genre)
	}

	rngSeed := time.Now().UnixNano()
	if params.RandomSeed != nil {
		rngSeed = *params.RandomSeed
	}
	rng := rand.New(rand.NewSource(rngSeed))

	var seed []int
	var err error
	if params.SeedTokens != nil {
		seed, err = generate.SeedFromTokens(e.vocab, params.SeedTokens, e.window)
		if err != nil {
			return nil, err
		}
	} else {
		seed, err = e.drawSeed(rng)
		if err != nil {
			return nil, err
		}
	}

	session, err := generate.NewSession(e.model, e.vocab, seed, params.Length, params.Temperature, rng)
	if err != nil {
		return nil, err
	}

	events, tokens, err := session.Run(ctx)
	if err != nil {
		return nil, err
	}

	return &GenerationResult{
		Genre:  genre,
		Tokens: tokens,
		Events: events,
	}, nil
}

// drawSeed picks a random window from the genre's training sequences, so
// unseeded requests start from real corpus material.
func (e *entry) drawSeed(rng *rand.Rand) ([]int, error) {
	candidates := make([][]int, 0, len(e.seedPool))
	for _, ids := range e.seedPool {
		if len(ids) >= e.window {
			candidates = append(candidates, ids)
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no seed material for window %d", generate.ErrInvalidSeed, e.window)
	}

	ids := candidates[rng.Intn(len(candidates))]
	start := rng.Intn(len(ids) - e.window + 1)
	seed := make([]int, e.window)
	copy(seed, ids[start:start+e.window])
	return seed, nil
}
