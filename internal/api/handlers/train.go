package handlers

import (
	"net/http"
	"time"

	"github.com/cadenza-ml/cadenza-api/internal/config"
	"github.com/cadenza-ml/cadenza-api/internal/logger"
	"github.com/cadenza-ml/cadenza-api/internal/metrics"
	"github.com/cadenza-ml/cadenza-api/internal/models"
	"github.com/cadenza-ml/cadenza-api/internal/registry"
	"github.com/cadenza-ml/cadenza-api/internal/training"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type TrainingHandler struct {
	registry *registry.Registry
	cfg      *config.Config
	db       *gorm.DB
	cw       *metrics.Client
}

func NewTrainingHandler(reg *registry.Registry, cfg *config.Config, db *gorm.DB, cw *metrics.Client) *TrainingHandler {
	return &TrainingHandler{
		registry: reg,
		cfg:      cfg,
		db:       db,
		cw:       cw,
	}
}

type TrainRequest struct {
	// Model/training overrides; zero values use the reference
	// configuration (window 100, 200 passes, batches of 32).
	Window       int     `json:"window"`
	Epochs       int     `json:"epochs"`
	BatchSize    int     `json:"batch_size"`
	LearningRate float64 `json:"learning_rate"`
	EmbedSize    int     `json:"embed_size"`
	HiddenSize   int     `json:"hidden_size"`
	Layers       int     `json:"layers"`
	Dropout      float64 `json:"dropout"`
	Seed         int64   `json:"seed"`
}

// Train runs the full training pipeline for the genre in the path:
// corpus -> vocabulary -> windower -> model -> artifact -> registry. The run
// is synchronous; training one genre does not block generation for others.
func (h *TrainingHandler) Train(c *gin.Context) {
	var req TrainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	genre := c.Param("genre")

	result, err := training.Run(c.Request.Context(), training.Options{
		Genre:        genre,
		CorpusDir:    h.cfg.CorpusDir,
		ModelsDir:    h.cfg.ModelsDir,
		Window:       req.Window,
		Epochs:       req.Epochs,
		BatchSize:    req.BatchSize,
		LearningRate: req.LearningRate,
		EmbedSize:    req.EmbedSize,
		HiddenSize:   req.HiddenSize,
		Layers:       req.Layers,
		Dropout:      req.Dropout,
		Seed:         req.Seed,
	}, h.registry)
	if err != nil {
		status := statusForError(err)
		if status >= http.StatusInternalServerError {
			logger.Error("Training failed", err, logger.Fields{
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

	h.recordRun(result)
	sentryMetrics.RecordTraining(c.Request.Context(), genre, result.Examples, result.FinalLoss, result.Duration)
	h.cw.RecordTraining(genre, result.Examples, result.Duration)

	c.JSON(http.StatusOK, gin.H{
		"request_id":  c.GetString("request_id"),
		"result":      result,
		"duration_ms": result.Duration.Milliseconds(),
	})
}

// recordRun appends the run to the training history table. History is
// best-effort operational metadata; a missing or failing database never
// fails the training request.
func (h *TrainingHandler) recordRun(result *training.Result) {
	if h.db == nil {
		return
	}

	run := models.TrainingRun{
		Genre:        result.Genre,
		Pieces:       result.Pieces,
		VocabSize:    result.VocabSize,
		Examples:     result.Examples,
		Epochs:       result.Epochs,
		FinalLoss:    result.FinalLoss,
		DurationMS:   result.Duration.Milliseconds(),
		ArtifactPath: result.ArtifactPath,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.db.Create(&run).Error; err != nil {
		logger.Error("Failed to record training run", err, logger.Fields{
			"genre": result.Genre,
		})
	}
}

// History lists recent training runs, newest first.
func (h *TrainingHandler) History(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusOK, gin.H{"runs": []models.TrainingRun{}})
		return
	}

	var runs []models.TrainingRun
	if err := h.db.Order("created_at DESC").Limit(50).Find(&runs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load training history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}
