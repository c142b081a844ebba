package llm

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3"

	"github.com/anna-secretary/anna/internal/engine"
)

// ClassifyAPIError maps a model-call error onto the shared failure
// taxonomy. Quota exhaustion sometimes arrives as a 429 and sometimes as
// a plain message mentioning the quota, so both count as rate_limited.
func ClassifyAPIError(err error) engine.Class {
	if err == nil {
		return engine.ClassFatal
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return engine.ClassRateLimited
		case apiErr.StatusCode >= 500:
			return engine.ClassTransient
		case apiErr.StatusCode >= 400:
			return engine.ClassInvalidRequest
		}
		msg := strings.ToLower(apiErr.Message)
		if strings.Contains(msg, "quota") || strings.Contains(msg, "rate limit") {
			return engine.ClassRateLimited
		}
		return engine.ClassFatal
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "quota") || strings.Contains(msg, "rate limit") {
		return engine.ClassRateLimited
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return engine.ClassTransient
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return engine.ClassTransient
	}

	return engine.ClassFatal
}

// isUnavailableModel reports whether the error is the provider rejecting
// the model identifier itself (unknown, retired, or not enabled for the
// key), as opposed to a malformed request.
func isUnavailableModel(err error) bool {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.StatusCode != http.StatusBadRequest && apiErr.StatusCode != http.StatusNotFound {
		return false
	}
	return strings.Contains(strings.ToLower(apiErr.Message), "model")
}
