package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chart-analyzer/internal/analyzer/config"
	"chart-analyzer/internal/analyzer/dto"
	"chart-analyzer/pkg/logger"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/time/rate"
)

// claudeAIRepository is an implementation of AIRepository that uses the Anthropic Messages API.
type claudeAIRepository struct {
	client         *anthropic.Client
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
}

// NewClaudeAIRepository creates a new instance of claudeAIRepository.
// SDK retries are disabled: a failed call surfaces immediately.
func NewClaudeAIRepository(cfg *config.Config, log *logger.Logger, opts ...option.RequestOption) AIRepository {
	clientOpts := []option.RequestOption{
		option.WithAPIKey(cfg.Anthropic.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.Anthropic.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.Anthropic.BaseURL))
	}
	clientOpts = append(clientOpts, opts...)

	client := anthropic.NewClient(clientOpts...)
	return &claudeAIRepository{
		client:         &client,
		cfg:            cfg,
		logger:         log,
		requestLimiter: newRequestLimiter(cfg.Anthropic.MaxRequestPerMinute),
	}
}

// AnalyzeCharts sends the instruction block and the chart images as a single user message.
func (r *claudeAIRepository) AnalyzeCharts(ctx context.Context, req *dto.AnalysisRequest) (string, error) {
	if strings.TrimSpace(r.cfg.Anthropic.APIKey) == "" {
		return "", errors.New("anthropic api key is not configured")
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("failed to wait for request limit: %w", err)
	}

	params := buildClaudeParams(r.cfg.Anthropic.Model, r.cfg.Anthropic.MaxTokens, req)

	r.logger.Debug("Sending request to Anthropic API",
		logger.StringField("model", r.cfg.Anthropic.Model),
		logger.IntField("images", len(req.Images)),
	)

	msg, err := r.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			logger.FromContext(ctx, r.logger).Error("Received non-OK response from Anthropic API", logger.IntField("status_code", apiErr.StatusCode), logger.StringField("model", r.cfg.Anthropic.Model))
		}
		return "", fmt.Errorf("failed to send request to Anthropic API: %w", err)
	}

	return firstClaudeText(msg), nil
}

func buildClaudeParams(model string, maxTokens int, req *dto.AnalysisRequest) anthropic.MessageNewParams {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(req.Images)+1)
	blocks = append(blocks, anthropic.NewTextBlock(ChartAnalysisPrompt))
	for _, img := range req.Images {
		blocks = append(blocks, anthropic.NewImageBlockBase64(img.MediaType, img.Base64()))
	}

	return anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(blocks...),
		},
	}
}

func firstClaudeText(msg *anthropic.Message) string {
	if msg == nil {
		return ""
	}
	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.AsText().Text
		}
	}
	return ""
}
