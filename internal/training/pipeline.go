package training

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/cadenza-ml/cadenza-api/internal/corpus"
	"github.com/cadenza-ml/cadenza-api/internal/logger"
	"github.com/cadenza-ml/cadenza-api/internal/music"
	"github.com/cadenza-ml/cadenza-api/internal/registry"
	"github.com/cadenza-ml/cadenza-api/internal/seqmodel"
	"github.com/cadenza-ml/cadenza-api/internal/vocab"
)

// Options configure one per-genre training run. Zero values fall back to the
// reference configuration.
type Options struct {
	Genre     string
	CorpusDir string
	ModelsDir string

	Window       int
	Epochs       int
	BatchSize    int
	LearningRate float64
	EmbedSize    int
	HiddenSize   int
	Layers       int
	Dropout      float64
	Seed         int64
}

// Result summarizes a completed run.
type Result struct {
	Genre        string        `json:"genre"`
	Pieces       int           `json:"pieces"`
	VocabSize    int           `json:"vocab_size"`
	Examples     int           `json:"examples"`
	Epochs       int           `json:"epochs"`
	FinalLoss    float64       `json:"final_loss"`
	Duration     time.Duration `json:"-"`
	ArtifactPath string        `json:"artifact_path"`
}

func (o Options) modelConfig() seqmodel.Config {
	cfg := seqmodel.DefaultConfig()
	if o.Window > 0 {
		cfg.Window = o.Window
	}
	if o.EmbedSize > 0 {
		cfg.EmbedSize = o.EmbedSize
	}
	if o.HiddenSize > 0 {
		cfg.HiddenSize = o.HiddenSize
	}
	if o.Layers > 0 {
		cfg.Layers = o.Layers
	}
	if o.Dropout > 0 {
		cfg.Dropout = o.Dropout
	}
	return cfg
}

// Run executes the full pipeline for one genre: load corpus pieces, encode
// them to tokens, fit the vocabulary, window the id sequences into
// supervised examples, train the model, persist the artifact and register
// the result. One genre's run shares no mutable state with another's.
func Run(ctx context.Context, opts Options, reg *registry.Registry) (*Result, error) {
	start := time.Now()

	pieces, err := corpus.LoadGenre(opts.CorpusDir, opts.Genre)
	if err != nil {
		return nil, err
	}

	var all []string
	tokenPieces := make([][]string, len(pieces))
	for i, p := range pieces {
		tokenPieces[i] = music.EncodeAll(p.Events)
		all = append(all, tokenPieces[i]...)
	}

	v, err := vocab.Fit(all)
	if err != nil {
		return nil, fmt.Errorf("genre %s: %w", opts.Genre, err)
	}

	idPieces := make([][]int, len(tokenPieces))
	for i, tokens := range tokenPieces {
		// Tokens were just fitted, so mapping cannot fail.
		idPieces[i], err = v.IDs(tokens)
		if err != nil {
			return nil, err
		}
	}

	cfg := opts.modelConfig()
	examples := Slide(idPieces, cfg.Window)

	logger.Info("Training genre model", logger.Fields{
		"genre":    opts.Genre,
		"pieces":   len(pieces),
		"vocab":    v.Size(),
		"examples": len(examples),
		"window":   cfg.Window,
	})

	model := seqmodel.New(cfg, v.Size(), rand.New(rand.NewSource(opts.Seed)))

	finalLoss := 0.0
	err = model.Train(ctx, examples, seqmodel.TrainOptions{
		Epochs:       opts.Epochs,
		BatchSize:    opts.BatchSize,
		LearningRate: opts.LearningRate,
		Seed:         opts.Seed,
		OnEpoch: func(epoch int, loss float64) {
			finalLoss = loss
			if epoch%10 == 0 {
				logger.Info("Training pass complete", logger.Fields{
					"genre": opts.Genre,
					"epoch": epoch,
					"loss":  loss,
				})
			}
		},
	})
	if err != nil {
		return nil, fmt.Errorf("genre %s: %w", opts.Genre, err)
	}

	path, err := registry.SaveArtifact(opts.ModelsDir, registry.Artifact{
		Genre:     opts.Genre,
		Window:    cfg.Window,
		Tokens:    v.Tokens(),
		Model:     model.Snapshot(),
		SeedPool:  idPieces,
		TrainedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	reg.Register(opts.Genre, v, model, idPieces)

	epochs := opts.Epochs
	if epochs <= 0 {
		epochs = 200
	}
	return &Result{
		Genre:        opts.Genre,
		Pieces:       len(pieces),
		VocabSize:    v.Size(),
		Examples:     len(examples),
		Epochs:       epochs,
		FinalLoss:    finalLoss,
		Duration:     time.Since(start),
		ArtifactPath: path,
	}, nil
}
