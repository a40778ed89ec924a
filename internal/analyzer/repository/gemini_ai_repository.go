package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chart-analyzer/internal/analyzer/config"
	"chart-analyzer/internal/analyzer/dto"
	"chart-analyzer/pkg/logger"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// geminiAIRepository is an implementation of AIRepository that uses the Google Gemini API.
type geminiAIRepository struct {
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
	genAiClient    *genai.Client
}

// NewGeminiAIRepository creates a new instance of geminiAIRepository.
func NewGeminiAIRepository(cfg *config.Config, log *logger.Logger, genAiClient *genai.Client) (AIRepository, error) {
	if genAiClient == nil {
		return nil, errors.New("gemini client is required")
	}
	return &geminiAIRepository{
		cfg:            cfg,
		logger:         log,
		requestLimiter: newRequestLimiter(cfg.Gemini.MaxRequestPerMinute),
		genAiClient:    genAiClient,
	}, nil
}

// AnalyzeCharts sends the instruction block and the chart images as inline parts.
func (r *geminiAIRepository) AnalyzeCharts(ctx context.Context, req *dto.AnalysisRequest) (string, error) {
	if strings.TrimSpace(r.cfg.Gemini.APIKey) == "" {
		return "", errors.New("gemini api key is not configured")
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("failed to wait for request limit: %w", err)
	}

	contents := buildGeminiContents(req)
	genCfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(r.cfg.Gemini.MaxOutputTokens),
	}

	r.logger.Debug("Sending request to Gemini API",
		logger.StringField("model", r.cfg.Gemini.Model),
		logger.IntField("images", len(req.Images)),
	)

	resp, err := r.genAiClient.Models.GenerateContent(ctx, r.cfg.Gemini.Model, contents, genCfg)
	if err != nil {
		return "", fmt.Errorf("failed to send request to Gemini API: %w", err)
	}

	return firstGeminiText(resp), nil
}

func buildGeminiContents(req *dto.AnalysisRequest) []*genai.Content {
	parts := make([]*genai.Part, 0, len(req.Images)+1)
	parts = append(parts, genai.NewPartFromText(ChartAnalysisPrompt))
	for _, img := range req.Images {
		parts = append(parts, genai.NewPartFromBytes(img.Data, img.MediaType))
	}
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
}

func firstGeminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" && !part.Thought {
			return part.Text
		}
	}
	return ""
}
