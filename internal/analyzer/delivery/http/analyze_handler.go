package http

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"chart-analyzer/internal/analyzer/config"
	"chart-analyzer/internal/analyzer/dto"
	"chart-analyzer/internal/analyzer/service"
	"chart-analyzer/internal/entity"
	"chart-analyzer/pkg/common"
	"chart-analyzer/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	defaultMaxMemoryMB = 32
	defaultMaxBodyMB   = 64
)

// AnalyzeHandler handles chart submissions.
type AnalyzeHandler struct {
	analyzer  service.ChartAnalyzerService
	maxMemory int64
	bodyLimit string
	logger    *logger.Logger
}

// NewAnalyzeHandler creates a new AnalyzeHandler.
func NewAnalyzeHandler(cfg *config.Config, analyzer service.ChartAnalyzerService, logger *logger.Logger) *AnalyzeHandler {
	maxMemoryMB := cfg.Upload.MaxMemoryMB
	if maxMemoryMB <= 0 {
		maxMemoryMB = defaultMaxMemoryMB
	}
	maxBodyMB := cfg.Upload.MaxBodyMB
	if maxBodyMB <= 0 {
		maxBodyMB = defaultMaxBodyMB
	}
	return &AnalyzeHandler{
		analyzer:  analyzer,
		maxMemory: maxMemoryMB << 20,
		bodyLimit: fmt.Sprintf("%dM", maxBodyMB),
		logger:    logger,
	}
}

// RegisterRoutes registers the analysis routes to the Echo group.
func (h *AnalyzeHandler) RegisterRoutes(g *echo.Group) {
	g.POST(common.RouteAnalyze, h.Analyze, middleware.BodyLimit(h.bodyLimit))
}

// Analyze godoc
// @Summary Analyze trading charts
// @Description Send the primary, sector and macro charts (and optionally an alternative asset chart) to a multimodal model and return its written analysis
// @Tags analysis
// @Accept  multipart/form-data
// @Produce  json
// @Param   primary formData file true  "Primary stock chart"
// @Param   sector  formData file true  "Sector or competitor chart"
// @Param   macro   formData file true  "Market context chart"
// @Param   alt     formData file false "Alternative asset chart"
// @Success 200 {object} dto.AnalyzeResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 413 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/analyze [post]
func (h *AnalyzeHandler) Analyze(c echo.Context) error {
	req := c.Request()
	log := h.logger.With(logger.StringField("request_id", requestID(c)))
	ctx := logger.NewContext(req.Context(), log)

	if err := req.ParseMultipartForm(h.maxMemory); err != nil {
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: common.MessageMissingCharts})
		}
		var he *echo.HTTPError
		if errors.As(err, &he) {
			// body limit hit while streaming
			return he
		}
		log.Error("Failed to parse chart submission", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: common.MessageAnalysisFailed})
	}
	defer req.MultipartForm.RemoveAll()

	uploads, err := readUploads(req.MultipartForm)
	if err != nil {
		log.Error("Failed to read chart files", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: common.MessageAnalysisFailed})
	}

	resp, err := h.analyzer.Analyze(ctx, uploads)
	if err != nil {
		if errors.Is(err, service.ErrMissingCharts) {
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: common.MessageMissingCharts})
		}
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: common.MessageAnalysisFailed})
	}

	return c.JSON(http.StatusOK, resp)
}

// requestID prefers the id assigned by the middleware over the inbound header.
func requestID(c echo.Context) string {
	if rid := c.Response().Header().Get(echo.HeaderXRequestID); rid != "" {
		return rid
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}

// readUploads reads the first file of every known slot field.
func readUploads(form *multipart.Form) ([]dto.ChartUpload, error) {
	var uploads []dto.ChartUpload
	for _, id := range entity.SlotOrder() {
		files := form.File[string(id)]
		if len(files) == 0 {
			continue
		}
		fh := files[0]
		data, err := readFile(fh)
		if err != nil {
			return nil, fmt.Errorf("slot %s: %w", id, err)
		}
		uploads = append(uploads, dto.ChartUpload{
			Slot:        id,
			FileName:    fh.Filename,
			ContentType: fh.Header.Get(echo.HeaderContentType),
			Data:        data,
		})
	}
	return uploads, nil
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
