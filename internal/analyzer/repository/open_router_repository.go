package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chart-analyzer/internal/analyzer/config"
	"chart-analyzer/internal/analyzer/dto"
	"chart-analyzer/pkg/logger"
	"chart-analyzer/pkg/utils"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/time/rate"
)

// openRouterRepository is an implementation of AIRepository that uses the
// OpenAI-compatible OpenRouter chat completions API.
type openRouterRepository struct {
	client         *openai.Client
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
}

// NewOpenRouterRepository creates a new instance of openRouterRepository.
func NewOpenRouterRepository(cfg *config.Config, log *logger.Logger, opts ...option.RequestOption) AIRepository {
	clientOpts := []option.RequestOption{
		option.WithAPIKey(cfg.OpenRouter.APIKey),
		option.WithBaseURL(cfg.OpenRouter.BaseURL),
		option.WithMaxRetries(0),
	}
	clientOpts = append(clientOpts, opts...)

	client := openai.NewClient(clientOpts...)
	return &openRouterRepository{
		client:         &client,
		cfg:            cfg,
		logger:         log,
		requestLimiter: newRequestLimiter(cfg.OpenRouter.MaxRequestPerMinute),
	}
}

// AnalyzeCharts sends the instruction block and the charts as data URL image parts.
func (r *openRouterRepository) AnalyzeCharts(ctx context.Context, req *dto.AnalysisRequest) (string, error) {
	if strings.TrimSpace(r.cfg.OpenRouter.APIKey) == "" {
		return "", errors.New("openrouter api key is not configured")
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("failed to wait for request limit: %w", err)
	}

	params := buildOpenRouterParams(r.cfg.OpenRouter.Model, r.cfg.OpenRouter.MaxTokens, req)

	r.logger.Debug("Sending request to OpenRouter",
		logger.StringField("model", r.cfg.OpenRouter.Model),
		logger.IntField("images", len(req.Images)),
	)

	resp, err := r.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			logger.FromContext(ctx, r.logger).Error("Received non-OK response from OpenRouter", logger.IntField("status_code", apiErr.StatusCode))
		}
		return "", fmt.Errorf("failed to send request to OpenRouter: %w", err)
	}

	if len(resp.Choices) == 0 {
		r.logger.Warn("Received empty choices from OpenRouter")
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func buildOpenRouterParams(model string, maxTokens int, req *dto.AnalysisRequest) openai.ChatCompletionNewParams {
	parts := make([]openai.ChatCompletionContentPartUnionParam, 0, len(req.Images)+1)
	parts = append(parts, openai.TextContentPart(ChartAnalysisPrompt))
	for _, img := range req.Images {
		parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: utils.DataURL(img.MediaType, img.Data),
		}))
	}

	return openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(model),
		MaxTokens: openai.Int(int64(maxTokens)),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(parts),
		},
	}
}
