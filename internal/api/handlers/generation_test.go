package handlers

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadenza-ml/cadenza-api/internal/config"
	"github.com/cadenza-ml/cadenza-api/internal/registry"
	"github.com/cadenza-ml/cadenza-api/internal/seqmodel"
	"github.com/cadenza-ml/cadenza-api/internal/vocab"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	v, err := vocab.Fit([]string{"C4:1", "D4:0.5", "E4:1", "R:1"})
	require.NoError(t, err)

	cfg := seqmodel.Config{Window: 3, EmbedSize: 4, HiddenSize: 8, Layers: 2, Dropout: 0.2}
	m := seqmodel.New(cfg, v.Size(), rand.New(rand.NewSource(1)))

	r := registry.New()
	r.Register("jazz", v, m, [][]int{{0, 1, 2, 3, 0, 1, 2}})
	return r
}

func generationRouter(t *testing.T, reg *registry.Registry) *gin.Engine {
	t.Helper()
	router := gin.New()
	h := NewGenerationHandler(reg, &config.Config{Environment: "test"}, nil)
	router.POST("/api/v1/genres/:genre/generations", h.Generate)
	return router
}

func postJSON(router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGenerate_Success(t *testing.T) {
	router := generationRouter(t, testRegistry(t))

	w := postJSON(router, "/api/v1/genres/jazz/generations", gin.H{
		"length":      5,
		"temperature": 0.8,
		"random_seed": 42,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Genre       string   `json:"genre"`
		Length      int      `json:"length"`
		Temperature float64  `json:"temperature"`
		Tokens      []string `json:"tokens"`
		Notes       []struct {
			MidiNoteNumber int     `json:"midiNoteNumber"`
			StartBeats     float64 `json:"startBeats"`
		} `json:"notes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "jazz", resp.Genre)
	assert.Equal(t, 5, resp.Length)
	assert.Equal(t, 0.8, resp.Temperature)
	assert.Len(t, resp.Tokens, 5)
}

func TestGenerate_Defaults(t *testing.T) {
	router := generationRouter(t, testRegistry(t))

	w := postJSON(router, "/api/v1/genres/jazz/generations", gin.H{})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Length      int      `json:"length"`
		Temperature float64  `json:"temperature"`
		Tokens      []string `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, defaultLength, resp.Length)
	assert.Equal(t, defaultTemperature, resp.Temperature)
	assert.Len(t, resp.Tokens, defaultLength)
}

func TestGenerate_UnknownGenre(t *testing.T) {
	router := generationRouter(t, testRegistry(t))

	w := postJSON(router, "/api/v1/genres/polka/generations", gin.H{"length": 5})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGenerate_BadParams(t *testing.T) {
	router := generationRouter(t, testRegistry(t))

	tests := []struct {
		name string
		body gin.H
	}{
		{"zero length", gin.H{"length": 0}},
		{"negative length", gin.H{"length": -3}},
		{"zero temperature", gin.H{"temperature": 0}},
		{"negative temperature", gin.H{"temperature": -1.5}},
		{"seed wrong length", gin.H{"seed": []string{"C4:1"}}},
		{"seed unknown token", gin.H{"seed": []string{"C4:1", "D4:0.5", "G9:4"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(router, "/api/v1/genres/jazz/generations", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestGenerate_ExplicitSeed(t *testing.T) {
	router := generationRouter(t, testRegistry(t))

	w := postJSON(router, "/api/v1/genres/jazz/generations", gin.H{
		"length":      4,
		"seed":        []string{"C4:1", "D4:0.5", "E4:1"},
		"random_seed": 7,
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGenerate_MalformedBody(t *testing.T) {
	router := generationRouter(t, testRegistry(t))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/genres/jazz/generations", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTrain_EndToEnd(t *testing.T) {
	corpusDir, modelsDir := t.TempDir(), t.TempDir()
	genreDir := filepath.Join(corpusDir, "blues")
	require.NoError(t, os.MkdirAll(genreDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(genreDir, "riff.json"), []byte(`[
		{"pitches": ["A2"], "duration": 1},
		{"pitches": ["C3"], "duration": 1},
		{"pitches": ["D3"], "duration": 1},
		{"pitches": ["A2"], "duration": 1},
		{"pitches": ["C3"], "duration": 1},
		{"pitches": ["D3"], "duration": 1}
	]`), 0o644))

	reg := registry.New()
	cfg := &config.Config{Environment: "test", CorpusDir: corpusDir, ModelsDir: modelsDir}

	router := gin.New()
	h := NewTrainingHandler(reg, cfg, nil, nil)
	router.POST("/api/v1/genres/:genre/train", h.Train)
	router.GET("/api/v1/training/history", h.History)

	w := postJSON(router, "/api/v1/genres/blues/train", gin.H{
		"window": 2, "epochs": 2, "batch_size": 4,
		"embed_size": 4, "hidden_size": 6, "layers": 1,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, reg.Has("blues"))

	// History works without a database, it is just empty.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/training/history", nil)
	hw := httptest.NewRecorder()
	router.ServeHTTP(hw, req)
	assert.Equal(t, http.StatusOK, hw.Code)
}

func TestTrain_MissingGenreCorpus(t *testing.T) {
	reg := registry.New()
	cfg := &config.Config{Environment: "test", CorpusDir: t.TempDir(), ModelsDir: t.TempDir()}

	router := gin.New()
	h := NewTrainingHandler(reg, cfg, nil, nil)
	router.POST("/api/v1/genres/:genre/train", h.Train)

	w := postJSON(router, "/api/v1/genres/polka/train", gin.H{"window": 2, "epochs": 1})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
