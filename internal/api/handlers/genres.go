package handlers

import (
	"net/http"

	"github.com/cadenza-ml/cadenza-api/internal/corpus"
	"github.com/cadenza-ml/cadenza-api/internal/registry"
	"github.com/gin-gonic/gin"
)

type GenresHandler struct {
	registry *registry.Registry
}

func NewGenresHandler(reg *registry.Registry) *GenresHandler {
	return &GenresHandler{registry: reg}
}

// List returns every genre with a loaded model, plus descriptive
// characteristics where known. The characteristics are presentation
// metadata only; they play no part in generation.
func (h *GenresHandler) List(c *gin.Context) {
	genres := h.registry.Genres()

	out := make([]gin.H, 0, len(genres))
	for _, g := range genres {
		item := gin.H{"id": g}
		if chars, ok := corpus.GenreCharacteristics(g); ok {
			item["characteristics"] = chars
		}
		out = append(out, item)
	}

	c.JSON(http.StatusOK, gin.H{
		"genres": out,
		"count":  len(out),
	})
}
