package repository

import (
	"context"
	"fmt"
	"time"

	"chart-analyzer/internal/analyzer/dto"

	"golang.org/x/time/rate"
)

// AIRepository sends one multimodal analysis request to an inference provider
// and returns the first text block of the reply ("" when there is none).
type AIRepository interface {
	AnalyzeCharts(ctx context.Context, req *dto.AnalysisRequest) (string, error)
}

// newRequestLimiter spaces requests evenly across a minute. A non-positive
// budget disables limiting.
func newRequestLimiter(maxRequestPerMinute int) *rate.Limiter {
	if maxRequestPerMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	secondsPerRequest := time.Minute / time.Duration(maxRequestPerMinute)
	return rate.NewLimiter(rate.Every(secondsPerRequest), 1)
}

// unavailableAIRepository answers every request with the error that kept the
// provider client from being built, so the service can still start.
type unavailableAIRepository struct {
	err error
}

// NewUnavailableAIRepository returns an AIRepository that always fails with err.
func NewUnavailableAIRepository(err error) AIRepository {
	return &unavailableAIRepository{err: err}
}

func (r *unavailableAIRepository) AnalyzeCharts(ctx context.Context, req *dto.AnalysisRequest) (string, error) {
	return "", fmt.Errorf("inference provider unavailable: %w", r.err)
}
