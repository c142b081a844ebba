package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/openai/openai-go/v3"

	"github.com/anna-secretary/anna/internal/engine"
)

func TestClassifyAPIError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want engine.Class
	}{
		{"429", &openai.Error{StatusCode: 429, Message: "rate limit exceeded"}, engine.ClassRateLimited},
		{"500", &openai.Error{StatusCode: 500, Message: "internal"}, engine.ClassTransient},
		{"503", &openai.Error{StatusCode: 503, Message: "overloaded"}, engine.ClassTransient},
		{"400", &openai.Error{StatusCode: 400, Message: "bad schema"}, engine.ClassInvalidRequest},
		{"401", &openai.Error{StatusCode: 401, Message: "bad key"}, engine.ClassInvalidRequest},
		{
			"wrapped api error",
			fmt.Errorf("chat: %w", &openai.Error{StatusCode: 429, Message: "slow down"}),
			engine.ClassRateLimited,
		},
		{"quota message", errors.New("resource exhausted: quota exceeded for today"), engine.ClassRateLimited},
		{"rate limit message", errors.New("provider says rate limit hit"), engine.ClassRateLimited},
		{"deadline", context.DeadlineExceeded, engine.ClassTransient},
		{"plain error", errors.New("json: cannot unmarshal"), engine.ClassFatal},
		{"nil", nil, engine.ClassFatal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyAPIError(tt.err); got != tt.want {
				t.Errorf("ClassifyAPIError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsUnavailableModel(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"404 model", &openai.Error{StatusCode: 404, Message: "model gemini-x is not found"}, true},
		{"400 model", &openai.Error{StatusCode: 400, Message: "Model not available for this key"}, true},
		{"400 other", &openai.Error{StatusCode: 400, Message: "messages must not be empty"}, false},
		{"429 mentioning model", &openai.Error{StatusCode: 429, Message: "model overloaded"}, false},
		{"plain error", errors.New("model missing"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isUnavailableModel(tt.err); got != tt.want {
				t.Errorf("isUnavailableModel(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
