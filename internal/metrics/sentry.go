package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
)

const (
	// HTTP status code threshold for considering a request successful
	successStatusCodeThreshold = http.StatusBadRequest
)

// SentryMetrics handles custom metrics for Sentry
type SentryMetrics struct {
	enabled bool
}

// NewSentryMetrics creates a new Sentry metrics client
func NewSentryMetrics() *SentryMetrics {
	return &SentryMetrics{
		enabled: true, // Always enabled if Sentry is configured
	}
}

// RecordAPIRequest records API request metrics
func (m *SentryMetrics) RecordAPIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "api.request")
	defer span.Finish()

	span.SetTag("endpoint", endpoint)
	span.SetTag("status_code", fmt.Sprintf("%d", statusCode))
	span.SetTag("success", fmt.Sprintf("%t", statusCode < successStatusCodeThreshold))

	span.SetData("duration_ms", duration.Milliseconds())
	span.SetData("endpoint", endpoint)
	span.SetData("status_code", statusCode)
}

// RecordGeneration records one completed generation session: how many tokens
// were sampled, at what temperature, and how long the decode loop took.
func (m *SentryMetrics) RecordGeneration(ctx context.Context, genre string, tokens int, temperature float64, duration time.Duration) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "music.generate")
	defer span.Finish()

	span.SetTag("genre", genre)
	span.SetData("tokens", tokens)
	span.SetData("temperature", temperature)
	span.SetData("duration_ms", duration.Milliseconds())
}

// RecordTraining records one completed training run.
func (m *SentryMetrics) RecordTraining(ctx context.Context, genre string, examples int, finalLoss float64, duration time.Duration) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "music.train")
	defer span.Finish()

	span.SetTag("genre", genre)
	span.SetData("examples", examples)
	span.SetData("final_loss", finalLoss)
	span.SetData("duration_ms", duration.Milliseconds())
}
