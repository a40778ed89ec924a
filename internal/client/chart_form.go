package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"chart-analyzer/internal/analyzer/dto"
	"chart-analyzer/internal/entity"
	"chart-analyzer/pkg/common"
	"chart-analyzer/pkg/utils"
)

// ErrIncompleteForm is returned by Submit while a required slot is empty.
var ErrIncompleteForm = errors.New(common.MessageUploadRequired)

// ChartForm holds the chart slots of one upload session and submits them to
// the analysis endpoint.
type ChartForm struct {
	endpoint   string
	httpClient *http.Client

	mu    sync.Mutex
	slots []*entity.ChartSlot
	busy  atomic.Bool
}

// NewChartForm creates a form with every slot empty. endpoint is the full URL
// of the analyze route; a nil httpClient means http.DefaultClient.
func NewChartForm(endpoint string, httpClient *http.Client) *ChartForm {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &ChartForm{
		endpoint:   endpoint,
		httpClient: httpClient,
		slots:      entity.NewChartSlots(),
	}
}

func (f *ChartForm) slot(id entity.SlotID) (*entity.ChartSlot, error) {
	for _, s := range f.slots {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, fmt.Errorf("unknown chart slot %q", id)
}

// Set stores an image in a slot. The media type comes from the file extension,
// falling back to the content itself.
func (f *ChartForm) Set(id entity.SlotID, fileName string, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%s is empty", fileName)
	}
	mediaType := utils.MediaTypeFromFileName(fileName)
	if mediaType == "" {
		mediaType = utils.SniffImageType(data)
	}
	if !utils.IsSupportedImageType(mediaType) {
		return fmt.Errorf("%s: %w", fileName, utils.ErrUnsupportedImageType)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	s, err := f.slot(id)
	if err != nil {
		return err
	}
	s.FileName = filepath.Base(fileName)
	s.MediaType = mediaType
	s.Data = data
	return nil
}

// SetFromFile reads path and stores it in a slot.
func (f *ChartForm) SetFromFile(id entity.SlotID, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read chart file: %w", err)
	}
	return f.Set(id, path, data)
}

// Clear empties a slot.
func (f *ChartForm) Clear(id entity.SlotID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, err := f.slot(id)
	if err != nil {
		return err
	}
	s.Clear()
	return nil
}

// Preview returns the data URL of the image in a slot, or "" when empty.
func (f *ChartForm) Preview(id entity.SlotID) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, err := f.slot(id)
	if err != nil || !s.Filled() {
		return ""
	}
	return utils.DataURL(s.MediaType, s.Data)
}

// CanSubmit reports whether every required slot holds an image.
func (f *ChartForm) CanSubmit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.slots {
		if s.Required && !s.Filled() {
			return false
		}
	}
	return true
}

// Busy reports whether a submission is in flight.
func (f *ChartForm) Busy() bool {
	return f.busy.Load()
}

// Submit sends the filled slots as one multipart request. On failure the
// returned text is the message to show in place of the analysis and the
// error carries the cause.
func (f *ChartForm) Submit(ctx context.Context) (string, error) {
	if !f.CanSubmit() {
		return common.MessageUploadRequired, ErrIncompleteForm
	}
	if !f.busy.CompareAndSwap(false, true) {
		return common.MessageClientFailure, errors.New("a submission is already in flight")
	}
	defer f.busy.Store(false)

	analysis, err := f.submit(ctx)
	if err != nil {
		return common.MessageClientFailure, err
	}
	return analysis, nil
}

func (f *ChartForm) submit(ctx context.Context) (string, error) {
	body, contentType, err := f.encode()
	if err != nil {
		return "", fmt.Errorf("failed to encode charts: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint, body)
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute HTTP request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp dto.ErrorResponse
		if json.Unmarshal(bodyBytes, &errResp) == nil && errResp.Error != "" {
			return "", fmt.Errorf("analysis request failed with status code %d: %s", resp.StatusCode, errResp.Error)
		}
		return "", fmt.Errorf("analysis request failed with status code %d", resp.StatusCode)
	}

	var out dto.AnalyzeResponse
	if err := json.Unmarshal(bodyBytes, &out); err != nil {
		return "", fmt.Errorf("failed to decode analysis response: %w", err)
	}
	return out.Analysis, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// encode writes each filled slot as a file part named after the slot, in
// slot order.
func (f *ChartForm) encode() (*bytes.Buffer, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for _, s := range f.slots {
		if !s.Filled() {
			continue
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, s.ID, quoteEscaper.Replace(s.FileName)))
		h.Set("Content-Type", s.MediaType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(s.Data); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return body, w.FormDataContentType(), nil
}
