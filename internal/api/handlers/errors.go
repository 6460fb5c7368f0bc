package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/cadenza-ml/cadenza-api/internal/generate"
	"github.com/cadenza-ml/cadenza-api/internal/music"
	"github.com/cadenza-ml/cadenza-api/internal/registry"
	"github.com/cadenza-ml/cadenza-api/internal/seqmodel"
	"github.com/cadenza-ml/cadenza-api/internal/vocab"
)

// statusForError maps the core's typed failures onto HTTP statuses. Every
// failure stays distinct in the response body; only the status class is
// collapsed here.
func statusForError(err error) int {
	switch {
	case errors.Is(err, registry.ErrModelNotFound):
		return http.StatusNotFound
	case errors.Is(err, generate.ErrInvalidLength),
		errors.Is(err, generate.ErrInvalidTemperature),
		errors.Is(err, generate.ErrUnknownSeedToken),
		errors.Is(err, generate.ErrInvalidSeed),
		errors.Is(err, music.ErrMalformedToken),
		errors.Is(err, vocab.ErrUnknownToken),
		errors.Is(err, vocab.ErrIDOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, vocab.ErrEmptyCorpus),
		errors.Is(err, seqmodel.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
