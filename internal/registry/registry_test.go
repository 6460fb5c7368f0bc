package registry

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadenza-ml/cadenza-api/internal/generate"
	"github.com/cadenza-ml/cadenza-api/internal/seqmodel"
	"github.com/cadenza-ml/cadenza-api/internal/vocab"
)

func testEntry(t *testing.T) (*vocab.Vocabulary, *seqmodel.Model, [][]int) {
	t.Helper()
	v, err := vocab.Fit([]string{"C4:1", "D4:0.5", "E4:1", "R:1"})
	require.NoError(t, err)

	cfg := seqmodel.Config{Window: 3, EmbedSize: 4, HiddenSize: 8, Layers: 2, Dropout: 0.2}
	m := seqmodel.New(cfg, v.Size(), rand.New(rand.NewSource(1)))

	seedPool := [][]int{{0, 1, 2, 3, 0, 1, 2}}
	return v, m, seedPool
}

func seedValue(v int64) *int64 { return &v }

func TestRegistry_GenresAndHas(t *testing.T) {
	r := New()
	v, m, pool := testEntry(t)

	assert.Empty(t, r.Genres())
	assert.False(t, r.Has("jazz"))

	r.Register("jazz", v, m, pool)
	r.Register("blues", v, m, pool)

	assert.Equal(t, []string{"blues", "jazz"}, r.Genres())
	assert.True(t, r.Has("jazz"))
}

func TestGenerate_ModelNotFound(t *testing.T) {
	r := New()

	_, err := r.Generate(context.Background(), "jazz", GenerateParams{Length: 10, Temperature: 1.0})
	assert.ErrorIs(t, err, ErrModelNotFound)
}

func TestGenerate_DrawnSeed(t *testing.T) {
	r := New()
	v, m, pool := testEntry(t)
	r.Register("jazz", v, m, pool)

	res, err := r.Generate(context.Background(), "jazz", GenerateParams{
		Length:      8,
		Temperature: 1.0,
		RandomSeed:  seedValue(42),
	})
	require.NoError(t, err)

	assert.Equal(t, "jazz", res.Genre)
	assert.Len(t, res.Tokens, 8)
	assert.Len(t, res.Events, 8)
}

func TestGenerate_PinnedSeedIsReproducible(t *testing.T) {
	r := New()
	v, m, pool := testEntry(t)
	r.Register("jazz", v, m, pool)

	params := GenerateParams{Length: 12, Temperature: 1.1, RandomSeed: seedValue(7)}

	first, err := r.Generate(context.Background(), "jazz", params)
	require.NoError(t, err)
	second, err := r.Generate(context.Background(), "jazz", params)
	require.NoError(t, err)

	assert.Equal(t, first.Tokens, second.Tokens)
}

func TestGenerate_ExplicitSeedTokens(t *testing.T) {
	r := New()
	v, m, pool := testEntry(t)
	r.Register("jazz", v, m, pool)

	res, err := r.Generate(context.Background(), "jazz", GenerateParams{
		Length:      4,
		Temperature: 1.0,
		SeedTokens:  []string{"C4:1", "D4:0.5", "E4:1"},
		RandomSeed:  seedValue(3),
	})
	require.NoError(t, err)
	assert.Len(t, res.Tokens, 4)
}

func TestGenerate_SeedErrors(t *testing.T) {
	r := New()
	v, m, pool := testEntry(t)
	r.Register("jazz", v, m, pool)

	_, err := r.Generate(context.Background(), "jazz", GenerateParams{
		Length:      4,
		Temperature: 1.0,
		SeedTokens:  []string{"C4:1"}, // too short for window 3
	})
	assert.ErrorIs(t, err, generate.ErrInvalidSeed)

	_, err = r.Generate(context.Background(), "jazz", GenerateParams{
		Length:      4,
		Temperature: 1.0,
		SeedTokens:  []string{"C4:1", "D4:0.5", "G9:1"},
	})
	assert.ErrorIs(t, err, generate.ErrUnknownSeedToken)
}

func TestGenerate_InvalidParams(t *testing.T) {
	r := New()
	v, m, pool := testEntry(t)
	r.Register("jazz", v, m, pool)

	_, err := r.Generate(context.Background(), "jazz", GenerateParams{Length: 0, Temperature: 1.0})
	assert.ErrorIs(t, err, generate.ErrInvalidLength)

	_, err = r.Generate(context.Background(), "jazz", GenerateParams{Length: 5, Temperature: -0.5})
	assert.ErrorIs(t, err, generate.ErrInvalidTemperature)
}

func TestGenerate_NoSeedMaterial(t *testing.T) {
	r := New()
	v, m, _ := testEntry(t)
	// Every pool sequence shorter than the window.
	r.Register("jazz", v, m, [][]int{{0, 1}})

	_, err := r.Generate(context.Background(), "jazz", GenerateParams{Length: 5, Temperature: 1.0})
	assert.ErrorIs(t, err, generate.ErrInvalidSeed)
}

func TestArtifact_SaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	v, m, pool := testEntry(t)

	a := Artifact{
		Genre:     "jazz",
		Window:    m.Config.Window,
		Tokens:    v.Tokens(),
		Model:     m.Snapshot(),
		SeedPool:  pool,
		TrainedAt: time.Now().UTC(),
	}

	path, err := SaveArtifact(dir, a)
	require.NoError(t, err)

	loaded, err := LoadArtifact(path)
	require.NoError(t, err)
	assert.Equal(t, a.Genre, loaded.Genre)
	assert.Equal(t, a.Tokens, loaded.Tokens)
	assert.Equal(t, a.SeedPool, loaded.SeedPool)

	r := New()
	require.NoError(t, r.RegisterArtifact(loaded))
	require.True(t, r.Has("jazz"))

	// The restored model must generate identically to the one that was saved.
	live := New()
	live.Register("jazz", v, m, pool)

	params := GenerateParams{Length: 10, Temperature: 1.0, RandomSeed: seedValue(5)}
	fromLive, err := live.Generate(context.Background(), "jazz", params)
	require.NoError(t, err)
	fromLoaded, err := r.Generate(context.Background(), "jazz", params)
	require.NoError(t, err)

	assert.Equal(t, fromLive.Tokens, fromLoaded.Tokens)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	v, m, pool := testEntry(t)

	_, err := SaveArtifact(dir, Artifact{
		Genre:    "classical",
		Window:   m.Config.Window,
		Tokens:   v.Tokens(),
		Model:    m.Snapshot(),
		SeedPool: pool,
	})
	require.NoError(t, err)

	r := New()
	require.NoError(t, r.LoadDir(dir))
	assert.Equal(t, []string{"classical"}, r.Genres())
}

func TestLoadDir_MissingDirectory(t *testing.T) {
	r := New()
	require.NoError(t, r.LoadDir("/nonexistent/models"))
	assert.Empty(t, r.Genres())
}
