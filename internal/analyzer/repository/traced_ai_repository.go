package repository

import (
	"context"
	"time"

	"chart-analyzer/internal/analyzer/dto"
	"chart-analyzer/pkg/logger"
	"chart-analyzer/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracedAIRepository wraps an AIRepository with a span and call logging.
type tracedAIRepository struct {
	next     AIRepository
	provider string
	logger   *logger.Logger
}

var _ AIRepository = (*tracedAIRepository)(nil)

// WithTracing decorates repo with observability for the given provider name.
func WithTracing(repo AIRepository, provider string, log *logger.Logger) AIRepository {
	return &tracedAIRepository{next: repo, provider: provider, logger: log}
}

func (r *tracedAIRepository) AnalyzeCharts(ctx context.Context, req *dto.AnalysisRequest) (string, error) {
	ctx, span := tracing.StartSpan(ctx, "ai.AnalyzeCharts", trace.WithAttributes(
		attribute.String("ai.provider", r.provider),
		attribute.Int("ai.images", len(req.Images)),
	))
	defer span.End()

	start := time.Now()
	analysis, err := r.next.AnalyzeCharts(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("ai.error_kind", ClassifyError(err)))
		span.SetStatus(codes.Error, "analysis request failed")
		return "", err
	}

	span.SetAttributes(attribute.Int("ai.response_chars", len(analysis)))
	logger.FromContext(ctx, r.logger).Info("Chart analysis received",
		logger.StringField("provider", r.provider),
		logger.IntField("images", len(req.Images)),
		logger.IntField("response_chars", len(analysis)),
		logger.Field("latency", time.Since(start).String()),
	)
	return analysis, nil
}
