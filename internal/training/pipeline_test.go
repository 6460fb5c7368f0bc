package training

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadenza-ml/cadenza-api/internal/registry"
	"github.com/cadenza-ml/cadenza-api/internal/seqmodel"
	"github.com/cadenza-ml/cadenza-api/internal/vocab"
)

func writeTestCorpus(t *testing.T, corpusDir, genre string) {
	t.Helper()
	genreDir := filepath.Join(corpusDir, genre)
	require.NoError(t, os.MkdirAll(genreDir, 0o755))

	pieces := map[string]string{
		"one.json": `[
			{"pitches": ["C4"], "duration": 1},
			{"pitches": ["D4"], "duration": 0.5},
			{"pitches": ["E4"], "duration": 1},
			{"pitches": ["C4"], "duration": 1},
			{"pitches": ["D4"], "duration": 0.5},
			{"pitches": ["E4"], "duration": 1},
			{"pitches": ["C4"], "duration": 1}
		]`,
		"two.json": `[
			{"pitches": ["D4"], "duration": 0.5},
			{"pitches": ["E4"], "duration": 1},
			{"pitches": ["C4"], "duration": 1},
			{"pitches": ["D4"], "duration": 0.5},
			{"pitches": ["E4"], "duration": 1}
		]`,
	}
	for name, body := range pieces {
		require.NoError(t, os.WriteFile(filepath.Join(genreDir, name), []byte(body), 0o644))
	}
}

func quickOptions(corpusDir, modelsDir string) Options {
	return Options{
		Genre:        "jazz",
		CorpusDir:    corpusDir,
		ModelsDir:    modelsDir,
		Window:       2,
		Epochs:       2,
		BatchSize:    4,
		LearningRate: 0.01,
		EmbedSize:    4,
		HiddenSize:   6,
		Layers:       1,
		Dropout:      0.1,
		Seed:         1,
	}
}

func TestRun_EndToEnd(t *testing.T) {
	corpusDir, modelsDir := t.TempDir(), t.TempDir()
	writeTestCorpus(t, corpusDir, "jazz")

	reg := registry.New()
	res, err := Run(context.Background(), quickOptions(corpusDir, modelsDir), reg)
	require.NoError(t, err)

	assert.Equal(t, "jazz", res.Genre)
	assert.Equal(t, 2, res.Pieces)
	assert.Equal(t, 3, res.VocabSize)
	// 7 tokens -> 5 examples, 5 tokens -> 3 examples, windowed per piece.
	assert.Equal(t, 8, res.Examples)
	assert.Equal(t, 2, res.Epochs)
	assert.FileExists(t, res.ArtifactPath)

	require.True(t, reg.Has("jazz"))
	out, err := reg.Generate(context.Background(), "jazz", registry.GenerateParams{
		Length:      5,
		Temperature: 1.0,
	})
	require.NoError(t, err)
	assert.Len(t, out.Tokens, 5)
}

func TestRun_ArtifactReloadable(t *testing.T) {
	corpusDir, modelsDir := t.TempDir(), t.TempDir()
	writeTestCorpus(t, corpusDir, "jazz")

	res, err := Run(context.Background(), quickOptions(corpusDir, modelsDir), registry.New())
	require.NoError(t, err)

	fresh := registry.New()
	require.NoError(t, fresh.LoadDir(modelsDir))
	assert.Equal(t, []string{"jazz"}, fresh.Genres())

	a, err := registry.LoadArtifact(res.ArtifactPath)
	require.NoError(t, err)
	assert.Equal(t, 2, a.Window)
	assert.Len(t, a.Tokens, 3)
}

func TestRun_MissingCorpus(t *testing.T) {
	reg := registry.New()
	_, err := Run(context.Background(), quickOptions(t.TempDir(), t.TempDir()), reg)
	assert.Error(t, err)
	assert.False(t, reg.Has("jazz"))
}

func TestRun_EmptyGenreDirectory(t *testing.T) {
	corpusDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(corpusDir, "jazz"), 0o755))

	_, err := Run(context.Background(), quickOptions(corpusDir, t.TempDir()), registry.New())
	assert.ErrorIs(t, err, vocab.ErrEmptyCorpus)
}

func TestRun_AllPiecesTooShort(t *testing.T) {
	corpusDir := t.TempDir()
	genreDir := filepath.Join(corpusDir, "jazz")
	require.NoError(t, os.MkdirAll(genreDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(genreDir, "tiny.json"),
		[]byte(`[{"pitches": ["C4"], "duration": 1}]`), 0o644))

	opts := quickOptions(corpusDir, t.TempDir())
	opts.Window = 5
	_, err := Run(context.Background(), opts, registry.New())
	assert.ErrorIs(t, err, seqmodel.ErrInsufficientData)
}
