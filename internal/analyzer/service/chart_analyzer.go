package service

import (
	"context"
	"errors"
	"fmt"

	"chart-analyzer/internal/analyzer/config"
	"chart-analyzer/internal/analyzer/dto"
	"chart-analyzer/internal/analyzer/repository"
	"chart-analyzer/internal/entity"
	"chart-analyzer/pkg/logger"
	"chart-analyzer/pkg/telegram"
	"chart-analyzer/pkg/utils"
)

var (
	// ErrMissingCharts is returned when a required slot has no image.
	ErrMissingCharts = errors.New("missing required charts")
	// ErrAnalysisFailed covers every failure after validation.
	ErrAnalysisFailed = errors.New("failed to analyze charts")
)

// ChartAnalyzerService turns one chart submission into a written analysis.
type ChartAnalyzerService interface {
	Analyze(ctx context.Context, uploads []dto.ChartUpload) (*dto.AnalyzeResponse, error)
}

// NewChartAnalyzerService creates a new chart analyzer service.
// telegramBot may be nil, in which case reports are not forwarded.
func NewChartAnalyzerService(
	cfg *config.Config,
	log *logger.Logger,
	aiRepo repository.AIRepository,
	telegramBot telegram.Notifier,
) ChartAnalyzerService {
	return &chartAnalyzerService{
		cfg:         cfg,
		logger:      log,
		aiRepo:      aiRepo,
		telegramBot: telegramBot,
	}
}

type chartAnalyzerService struct {
	cfg         *config.Config
	logger      *logger.Logger
	aiRepo      repository.AIRepository
	telegramBot telegram.Notifier
}

// Analyze validates the submission, forwards it to the configured model and
// returns the first text block of the reply.
func (s *chartAnalyzerService) Analyze(ctx context.Context, uploads []dto.ChartUpload) (*dto.AnalyzeResponse, error) {
	log := logger.FromContext(ctx, s.logger)

	req, err := BuildAnalysisRequest(uploads)
	if err != nil {
		if errors.Is(err, ErrMissingCharts) {
			log.Warn("Rejected chart submission", logger.ErrorField(err))
			return nil, err
		}
		log.Error("Failed to prepare chart images", logger.ErrorField(err))
		return nil, fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}

	analysis, err := s.aiRepo.AnalyzeCharts(ctx, req)
	if err != nil {
		log.Error("Failed to analyze charts",
			logger.ErrorField(err),
			logger.StringField("cause", repository.ClassifyError(err)),
			logger.IntField("images", len(req.Images)),
		)
		return nil, fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}

	s.forward(log, analysis)

	return &dto.AnalyzeResponse{Analysis: analysis}, nil
}

// forward delivers the report to Telegram. Failures are logged only.
func (s *chartAnalyzerService) forward(log *logger.Logger, analysis string) {
	if s.telegramBot == nil {
		return
	}
	messages := telegram.FormatAnalysisForTelegram(analysis, utils.TimeNowIn(s.cfg.Telegram.TimeZone))
	if err := telegram.SendAll(s.telegramBot, messages); err != nil {
		log.Warn("Failed to forward analysis to telegram", logger.ErrorField(err))
		return
	}
	log.Debug("Forwarded analysis to telegram", logger.IntField("messages", len(messages)))
}

// BuildAnalysisRequest orders the uploads by slot and resolves the media type
// of each image. Empty uploads count as absent; unknown slots are ignored and
// the first upload for a slot wins.
func BuildAnalysisRequest(uploads []dto.ChartUpload) (*dto.AnalysisRequest, error) {
	bySlot := make(map[entity.SlotID]dto.ChartUpload, len(uploads))
	for _, u := range uploads {
		if len(u.Data) == 0 {
			continue
		}
		if _, ok := bySlot[u.Slot]; !ok {
			bySlot[u.Slot] = u
		}
	}

	for _, id := range entity.RequiredSlots() {
		if _, ok := bySlot[id]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingCharts, id)
		}
	}

	req := &dto.AnalysisRequest{}
	for _, id := range entity.SlotOrder() {
		u, ok := bySlot[id]
		if !ok {
			continue
		}
		mediaType, err := utils.ResolveImageType(u.ContentType, u.Data)
		if err != nil {
			return nil, fmt.Errorf("slot %s: %w", id, err)
		}
		req.Images = append(req.Images, dto.ChartImage{
			Slot:      id,
			MediaType: mediaType,
			Data:      u.Data,
		})
	}
	return req, nil
}
