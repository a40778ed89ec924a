package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"chart-analyzer/internal/analyzer/config"
	"chart-analyzer/internal/analyzer/dto"
	"chart-analyzer/internal/entity"
	"chart-analyzer/pkg/logger"
	"chart-analyzer/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedMessage struct {
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
	Messages  []struct {
		Role    string `json:"role"`
		Content []struct {
			Type   string `json:"type"`
			Text   string `json:"text"`
			Source struct {
				Type      string `json:"type"`
				MediaType string `json:"media_type"`
				Data      string `json:"data"`
			} `json:"source"`
		} `json:"content"`
	} `json:"messages"`
}

const claudeTextReply = `{
  "id": "msg_01",
  "type": "message",
  "role": "assistant",
  "model": "claude-3-5-sonnet-20241022",
  "content": [{"type": "text", "text": "ANALYSIS REPORT - AAPL"}],
  "stop_reason": "end_turn",
  "stop_sequence": null,
  "usage": {"input_tokens": 10, "output_tokens": 5}
}`

func newClaudeTestServer(t *testing.T, status int, body string, captured *capturedMessage, calls *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		if captured != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newClaudeTestConfig(baseURL string) *config.Config {
	cfg := &config.Config{}
	cfg.Anthropic.APIKey = "test-key"
	cfg.Anthropic.BaseURL = baseURL
	cfg.Anthropic.Model = "claude-3-5-sonnet-20241022"
	cfg.Anthropic.MaxTokens = 2000
	return cfg
}

func testRequest(withAlt bool) *dto.AnalysisRequest {
	req := &dto.AnalysisRequest{Images: []dto.ChartImage{
		{Slot: entity.SlotPrimary, MediaType: "image/png", Data: []byte("primary")},
		{Slot: entity.SlotSector, MediaType: "image/jpeg", Data: []byte("sector")},
		{Slot: entity.SlotMacro, MediaType: "image/webp", Data: []byte("macro")},
	}}
	if withAlt {
		req.Images = append(req.Images, dto.ChartImage{Slot: entity.SlotAlt, MediaType: "image/gif", Data: []byte("alt")})
	}
	return req
}

func TestClaudeAnalyzeChartsSendsOrderedImages(t *testing.T) {
	for _, withAlt := range []bool{false, true} {
		var captured capturedMessage
		var calls int32
		srv := newClaudeTestServer(t, http.StatusOK, claudeTextReply, &captured, &calls)
		repo := NewClaudeAIRepository(newClaudeTestConfig(srv.URL), logger.NewNop())

		req := testRequest(withAlt)
		got, err := repo.AnalyzeCharts(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "ANALYSIS REPORT - AAPL", got)

		assert.Equal(t, "claude-3-5-sonnet-20241022", captured.Model)
		assert.Equal(t, 2000, captured.MaxTokens)
		require.Len(t, captured.Messages, 1)
		assert.Equal(t, "user", captured.Messages[0].Role)

		content := captured.Messages[0].Content
		require.Len(t, content, len(req.Images)+1)
		assert.Equal(t, "text", content[0].Type)
		assert.Contains(t, content[0].Text, "professional technical analyst")

		for i, img := range req.Images {
			part := content[i+1]
			assert.Equal(t, "image", part.Type)
			assert.Equal(t, "base64", part.Source.Type)
			assert.Equal(t, img.MediaType, part.Source.MediaType)
			decoded, err := utils.DecodeBase64(part.Source.Data)
			require.NoError(t, err)
			assert.Equal(t, img.Data, decoded)
		}
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	}
}

func TestClaudeAnalyzeChartsReturnsFirstTextBlock(t *testing.T) {
	body := `{"id":"msg_02","type":"message","role":"assistant","model":"m",
"content":[{"type":"thinking","thinking":"hmm","signature":"sig"},{"type":"text","text":"first"},{"type":"text","text":"second"}],
"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":1}}`
	var calls int32
	srv := newClaudeTestServer(t, http.StatusOK, body, nil, &calls)
	repo := NewClaudeAIRepository(newClaudeTestConfig(srv.URL), logger.NewNop())

	got, err := repo.AnalyzeCharts(context.Background(), testRequest(false))
	require.NoError(t, err)
	assert.Equal(t, "first", got)
}

func TestClaudeAnalyzeChartsWithoutTextBlock(t *testing.T) {
	body := `{"id":"msg_03","type":"message","role":"assistant","model":"m","content":[],"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":0}}`
	var calls int32
	srv := newClaudeTestServer(t, http.StatusOK, body, nil, &calls)
	repo := NewClaudeAIRepository(newClaudeTestConfig(srv.URL), logger.NewNop())

	got, err := repo.AnalyzeCharts(context.Background(), testRequest(false))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClaudeAnalyzeChartsDoesNotRetry(t *testing.T) {
	body := `{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`
	var calls int32
	srv := newClaudeTestServer(t, http.StatusServiceUnavailable, body, nil, &calls)
	repo := NewClaudeAIRepository(newClaudeTestConfig(srv.URL), logger.NewNop())

	_, err := repo.AnalyzeCharts(context.Background(), testRequest(false))
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClaudeAnalyzeChartsWithoutAPIKey(t *testing.T) {
	var calls int32
	srv := newClaudeTestServer(t, http.StatusOK, claudeTextReply, nil, &calls)
	cfg := newClaudeTestConfig(srv.URL)
	cfg.Anthropic.APIKey = ""
	repo := NewClaudeAIRepository(cfg, logger.NewNop())

	_, err := repo.AnalyzeCharts(context.Background(), testRequest(false))
	require.Error(t, err)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestFirstClaudeTextNil(t *testing.T) {
	assert.Empty(t, firstClaudeText(nil))
}
