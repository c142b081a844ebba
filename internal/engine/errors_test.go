package engine

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Class
	}{
		{"nil", nil, ClassFatal},
		{"http 429", &StatusError{429}, ClassRateLimited},
		{"http 500", &StatusError{500}, ClassTransient},
		{"http 503", &StatusError{503}, ClassTransient},
		{"http 404", &StatusError{404}, ClassInvalidRequest},
		{"http 400", &StatusError{400}, ClassInvalidRequest},
		{"wrapped status", fmt.Errorf("fetch: %w", &StatusError{502}), ClassTransient},
		{"blocked", &BlockedError{Strategy: "jina", Reason: "denial page"}, ClassBlocked},
		{"deadline", context.DeadlineExceeded, ClassTransient},
		{"dns", &net.DNSError{IsTimeout: true}, ClassTransient},
		{"op error", &net.OpError{Op: "dial", Err: errors.New("refused")}, ClassTransient},
		{"plain error", errors.New("something odd"), ClassFatal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestClassString(t *testing.T) {
	tests := []struct {
		class Class
		want  string
	}{
		{ClassTransient, "transient"},
		{ClassRateLimited, "rate_limited"},
		{ClassInvalidRequest, "invalid_request"},
		{ClassBlocked, "blocked"},
		{ClassFatal, "fatal"},
	}
	for _, tt := range tests {
		if got := tt.class.String(); got != tt.want {
			t.Errorf("Class(%d).String() = %q, want %q", tt.class, got, tt.want)
		}
	}
}

func TestExhaustedError(t *testing.T) {
	underlying := &StatusError{503}
	err := &ExhaustedError{
		URL:       "https://example.com/x",
		Attempted: []string{"tavily", "jina", "direct"},
		LastErr:   underlying,
	}

	msg := err.Error()
	for _, name := range []string{"tavily", "jina", "direct"} {
		if !strings.Contains(msg, name) {
			t.Errorf("message %q missing strategy %q", msg, name)
		}
	}
	if !errors.Is(err, underlying) {
		t.Error("ExhaustedError should unwrap to the last strategy error")
	}
}
