package dto

import (
	"chart-analyzer/internal/entity"
	"chart-analyzer/pkg/utils"
)

// ChartUpload is a slot file as received from the upload form.
type ChartUpload struct {
	Slot        entity.SlotID
	FileName    string
	ContentType string
	Data        []byte
}

// ChartImage is one image part of a multimodal request.
type ChartImage struct {
	Slot      entity.SlotID
	MediaType string
	Data      []byte
}

// Base64 returns the inline transport representation of the image.
func (i ChartImage) Base64() string {
	return utils.EncodeBase64(i.Data)
}

// AnalysisRequest is the ordered set of images sent to the model after
// the fixed instruction block.
type AnalysisRequest struct {
	Images []ChartImage
}

// AnalyzeResponse is the success body of POST /api/analyze.
type AnalyzeResponse struct {
	Analysis string `json:"analysis"`
}
