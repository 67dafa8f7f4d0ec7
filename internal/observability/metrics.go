package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Gallery instrument names
const (
	MetricImageAttempts = "gallery.image.resolve.attempts"
	MetricFormOutcomes  = "gallery.form.outcomes"
)

// GalleryMetrics holds the domain counters of the gallery frontend
type GalleryMetrics struct {
	imageAttempts metric.Int64Counter
	formOutcomes  metric.Int64Counter
}

// NewGalleryMetrics registers the domain instruments on meter
func NewGalleryMetrics(meter metric.Meter) (*GalleryMetrics, error) {
	imageAttempts, err := meter.Int64Counter(MetricImageAttempts,
		metric.WithDescription("Image candidate attempts by outcome"),
		metric.WithUnit("{attempt}"))
	if err != nil {
		return nil, err
	}

	formOutcomes, err := meter.Int64Counter(MetricFormOutcomes,
		metric.WithDescription("Record form submissions by terminal state"),
		metric.WithUnit("{submission}"))
	if err != nil {
		return nil, err
	}

	return &GalleryMetrics{imageAttempts: imageAttempts, formOutcomes: formOutcomes}, nil
}

// NopGalleryMetrics returns instruments that record nothing
func NopGalleryMetrics() *GalleryMetrics {
	m, _ := NewGalleryMetrics(noop.NewMeterProvider().Meter(instrumentationName))
	return m
}

// ImageAttempt counts one candidate attempt
func (m *GalleryMetrics) ImageAttempt(ctx context.Context, candidateIndex int, outcome string) {
	m.imageAttempts.Add(ctx, 1, metric.WithAttributes(
		attribute.Int("candidate.index", candidateIndex),
		attribute.String("outcome", outcome),
	))
}

// FormOutcome counts a finished record form submission
func (m *GalleryMetrics) FormOutcome(ctx context.Context, state, source string) {
	m.formOutcomes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("state", state),
		attribute.String("image.source", source),
	))
}
