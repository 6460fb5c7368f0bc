package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadenza-ml/cadenza-api/internal/music"
)

func writePiece(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestLoadGenre(t *testing.T) {
	dir := t.TempDir()
	genreDir := filepath.Join(dir, "jazz")
	require.NoError(t, os.MkdirAll(genreDir, 0o755))

	writePiece(t, genreDir, "b_second.json", `[
		{"pitches": ["D4"], "duration": 0.5}
	]`)
	writePiece(t, genreDir, "a_first.json", `[
		{"pitches": ["C4"], "duration": 1},
		{"pitches": ["C4", "E4", "G4"], "duration": 0.5},
		{"pitches": [], "duration": 2}
	]`)
	writePiece(t, genreDir, "notes.txt", "not a piece")

	pieces, err := LoadGenre(dir, "jazz")
	require.NoError(t, err)
	require.Len(t, pieces, 2)

	// Sorted file-name order, not directory order.
	assert.Equal(t, "a_first", pieces[0].Name)
	assert.Equal(t, "b_second", pieces[1].Name)

	first := pieces[0].Events
	require.Len(t, first, 3)
	assert.Equal(t, music.NewEvent([]int{60}, 1), first[0])
	assert.Equal(t, music.NewEvent([]int{60, 64, 67}, 0.5), first[1])
	assert.True(t, first[2].IsRest())
	assert.Equal(t, 2.0, first[2].Duration)
}

func TestLoadGenre_MissingGenre(t *testing.T) {
	_, err := LoadGenre(t.TempDir(), "polka")
	assert.Error(t, err)
}

func TestLoadGenre_BadPitch(t *testing.T) {
	dir := t.TempDir()
	genreDir := filepath.Join(dir, "jazz")
	require.NoError(t, os.MkdirAll(genreDir, 0o755))
	writePiece(t, genreDir, "broken.json", `[{"pitches": ["X9"], "duration": 1}]`)

	_, err := LoadGenre(dir, "jazz")
	assert.Error(t, err)
}

func TestGenreCharacteristics(t *testing.T) {
	jazz, ok := GenreCharacteristics("jazz")
	require.True(t, ok)
	assert.NotEmpty(t, jazz.Chords)
	assert.NotEmpty(t, jazz.Instruments)
	assert.Less(t, jazz.TempoRange[0], jazz.TempoRange[1])

	_, ok = GenreCharacteristics("polka")
	assert.False(t, ok)
}
