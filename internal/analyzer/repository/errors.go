package repository

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go/v3"
)

// ClassifyError names the failure mode of a provider call. It is only used
// for operator logs; callers of the API always see one generic message.
func ClassifyError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	}

	var anthropicErr *anthropic.Error
	if errors.As(err, &anthropicErr) {
		return classifyStatus(anthropicErr.StatusCode)
	}
	var openaiErr *openai.Error
	if errors.As(err, &openaiErr) {
		return classifyStatus(openaiErr.StatusCode)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return "network"
	}
	return "unknown"
}

func classifyStatus(code int) string {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return "auth"
	case code == http.StatusTooManyRequests:
		return "rate_limited"
	case code >= http.StatusInternalServerError:
		return "provider_unavailable"
	default:
		return "rejected"
	}
}
