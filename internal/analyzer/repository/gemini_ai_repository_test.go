package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"chart-analyzer/internal/analyzer/config"
	"chart-analyzer/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestNewGeminiAIRepositoryRequiresClient(t *testing.T) {
	_, err := NewGeminiAIRepository(&config.Config{}, logger.NewNop(), nil)
	assert.Error(t, err)
}

func TestGeminiAnalyzeChartsWithoutAPIKey(t *testing.T) {
	repo, err := NewGeminiAIRepository(&config.Config{}, logger.NewNop(), &genai.Client{})
	require.NoError(t, err)

	_, err = repo.AnalyzeCharts(context.Background(), testRequest(false))
	assert.Error(t, err)
}

func TestBuildGeminiContents(t *testing.T) {
	req := testRequest(true)
	contents := buildGeminiContents(req)

	require.Len(t, contents, 1)
	assert.EqualValues(t, genai.RoleUser, contents[0].Role)

	parts := contents[0].Parts
	require.Len(t, parts, 5)
	assert.Contains(t, parts[0].Text, "professional technical analyst")
	for i, img := range req.Images {
		require.NotNil(t, parts[i+1].InlineData)
		assert.Equal(t, img.MediaType, parts[i+1].InlineData.MIMEType)
		assert.Equal(t, img.Data, parts[i+1].InlineData.Data)
	}
}

func TestFirstGeminiText(t *testing.T) {
	assert.Empty(t, firstGeminiText(nil))
	assert.Empty(t, firstGeminiText(&genai.GenerateContentResponse{}))

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "thinking", Thought: true},
				{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte{1}}},
				{Text: "report"},
				{Text: "ignored"},
			}},
		}},
	}
	assert.Equal(t, "report", firstGeminiText(resp))
}

type capturedGeminiRequest struct {
	Contents []struct {
		Role  string `json:"role"`
		Parts []struct {
			Text       string `json:"text"`
			InlineData *struct {
				MIMEType string `json:"mimeType"`
				Data     []byte `json:"data"`
			} `json:"inlineData"`
		} `json:"parts"`
	} `json:"contents"`
	GenerationConfig struct {
		MaxOutputTokens int `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

const geminiTextReply = `{
  "candidates": [{"content": {"role": "model", "parts": [{"text": "ANALYSIS REPORT - NVDA"}]}, "finishReason": "STOP"}]
}`

func newGeminiTestRepository(t *testing.T, status int, body string, captured *capturedGeminiRequest, calls *int32) AIRepository {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/gemini-2.5-flash:generateContent"), r.URL.Path)
		if captured != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.Gemini.APIKey = "g-key"
	cfg.Gemini.Model = "gemini-2.5-flash"
	cfg.Gemini.MaxOutputTokens = 2000

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      cfg.Gemini.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: srv.URL},
	})
	require.NoError(t, err)

	repo, err := NewGeminiAIRepository(cfg, logger.NewNop(), client)
	require.NoError(t, err)
	return repo
}

func TestGeminiAnalyzeChartsSendsOrderedImages(t *testing.T) {
	var captured capturedGeminiRequest
	var calls int32
	repo := newGeminiTestRepository(t, http.StatusOK, geminiTextReply, &captured, &calls)

	req := testRequest(true)
	got, err := repo.AnalyzeCharts(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "ANALYSIS REPORT - NVDA", got)

	assert.Equal(t, 2000, captured.GenerationConfig.MaxOutputTokens)
	require.Len(t, captured.Contents, 1)
	assert.Equal(t, "user", captured.Contents[0].Role)

	parts := captured.Contents[0].Parts
	require.Len(t, parts, len(req.Images)+1)
	assert.Equal(t, ChartAnalysisPrompt, parts[0].Text)
	for i, img := range req.Images {
		require.NotNil(t, parts[i+1].InlineData)
		assert.Equal(t, img.MediaType, parts[i+1].InlineData.MIMEType)
		assert.Equal(t, img.Data, parts[i+1].InlineData.Data)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGeminiAnalyzeChartsDoesNotRetry(t *testing.T) {
	var calls int32
	body := `{"error": {"code": 503, "message": "overloaded", "status": "UNAVAILABLE"}}`
	repo := newGeminiTestRepository(t, http.StatusServiceUnavailable, body, nil, &calls)

	_, err := repo.AnalyzeCharts(context.Background(), testRequest(false))
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
