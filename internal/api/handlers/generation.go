package handlers

import (
	"net/http"
	"time"

	"github.com/cadenza-ml/cadenza-api/internal/config"
	"github.com/cadenza-ml/cadenza-api/internal/logger"
	"github.com/cadenza-ml/cadenza-api/internal/metrics"
	"github.com/cadenza-ml/cadenza-api/internal/music"
	"github.com/cadenza-ml/cadenza-api/internal/registry"
	"github.com/gin-gonic/gin"
)

const (
	defaultLength      = 200
	defaultTemperature = 1.0
)

// Global metrics instance shared by the music handlers
var sentryMetrics = metrics.NewSentryMetrics()

type GenerationHandler struct {
	registry *registry.Registry
	cfg      *config.Config
	cw       *metrics.Client
}

func NewGenerationHandler(reg *registry.Registry, cfg *config.Config, cw *metrics.Client) *GenerationHandler {
	return &GenerationHandler{
		registry: reg,
		cfg:      cfg,
		cw:       cw,
	}
}

type GenerateRequest struct {
	// Length is the number of tokens to generate. Defaults to 200.
	Length *int `json:"length"`
	// Temperature rescales the sampling distribution. Defaults to 1.0
	// (the model's native distribution).
	Temperature *float64 `json:"temperature"`
	// Seed optionally supplies the seed window as tokens; it must be
	// exactly the model's window length. When omitted the seed is drawn
	// from the genre's training data.
	Seed []string `json:"seed,omitempty"`
	// RandomSeed pins the sampling RNG for reproducible output.
	RandomSeed *int64 `json:"random_seed,omitempty"`
}

// Generate runs one full decode session for the genre in the path and
// returns the generated tokens plus the note events handed to the renderer.
func (h *GenerationHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	genre := c.Param("genre")

	length := defaultLength
	if req.Length != nil {
		length = *req.Length
	}
	temperature := defaultTemperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	startTime := time.Now()
	result, err := h.registry.Generate(c.Request.Context(), genre, registry.GenerateParams{
		Length:      length,
		Temperature: temperature,
		SeedTokens:  req.Seed,
		RandomSeed:  req.RandomSeed,
	})
	if err != nil {
		status := statusForError(err)
		if status >= http.StatusInternalServerError {
			logger.Error("Generation failed", err, logger.Fields{
				"request_id": c.GetString("request_id"),
				"genre":      genre,
			})
		}
		c.JSON(status, gin.H{
			"error":      err.Error(),
			"request_id": c.GetString("request_id"),
		})
		return
	}
	duration := time.Since(startTime)

	notes := music.EventsToNotes(result.Events)

	logger.Info("Generation completed", logger.Fields{
		"request_id":  c.GetString("request_id"),
		"genre":       genre,
		"tokens":      len(result.Tokens),
		"notes":       len(notes),
		"duration_ms": duration.Milliseconds(),
	})
	sentryMetrics.RecordGeneration(c.Request.Context(), genre, len(result.Tokens), temperature, duration)
	h.cw.RecordGeneration(genre, len(result.Tokens), duration)

	c.JSON(http.StatusOK, gin.H{
		"request_id":  c.GetString("request_id"),
		"genre":       genre,
		"length":      length,
		"temperature": temperature,
		"tokens":      result.Tokens,
		"notes":       notes,
		"duration_ms": duration.Milliseconds(),
	})
}
