package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func stubStrategy(name string, fn func(ctx context.Context, url string) (*RawResult, error)) Strategy {
	return Strategy{Name: name, Timeout: time.Second, Attempt: fn}
}

func okResult(method Method) *RawResult {
	return &RawResult{
		Content: strings.Repeat("content ", 40),
		Title:   "Title",
		Method:  method,
	}
}

func TestCascadeShortCircuit(t *testing.T) {
	Init(Config{})

	var calls []string
	strategies := []Strategy{
		stubStrategy("first", func(ctx context.Context, url string) (*RawResult, error) {
			calls = append(calls, "first")
			return okResult(MethodAPIPrimary), nil
		}),
		stubStrategy("second", func(ctx context.Context, url string) (*RawResult, error) {
			calls = append(calls, "second")
			return okResult(MethodProxyFallback), nil
		}),
	}

	doc, err := runCascade(context.Background(), "https://example.com/a", strategies)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Method != MethodAPIPrimary {
		t.Errorf("method = %q, want %q", doc.Method, MethodAPIPrimary)
	}
	if len(calls) != 1 || calls[0] != "first" {
		t.Errorf("later strategies ran after success: %v", calls)
	}
}

func TestCascadeFallsThrough(t *testing.T) {
	Init(Config{})

	strategies := []Strategy{
		stubStrategy("first", func(ctx context.Context, url string) (*RawResult, error) {
			return nil, &StatusError{403}
		}),
		stubStrategy("second", func(ctx context.Context, url string) (*RawResult, error) {
			return okResult(MethodProxyFallback), nil
		}),
	}

	doc, err := runCascade(context.Background(), "https://example.com/a", strategies)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Method != MethodProxyFallback {
		t.Errorf("method = %q, want %q", doc.Method, MethodProxyFallback)
	}
}

func TestCascadeExhaustedListsAllInOrder(t *testing.T) {
	Init(Config{})

	lastErr := errors.New("direct boom")
	strategies := []Strategy{
		stubStrategy("tavily", func(ctx context.Context, url string) (*RawResult, error) {
			return nil, &StatusError{500}
		}),
		stubStrategy("jina", func(ctx context.Context, url string) (*RawResult, error) {
			return nil, &BlockedError{Strategy: "jina", Reason: "denial page"}
		}),
		stubStrategy("direct", func(ctx context.Context, url string) (*RawResult, error) {
			return nil, lastErr
		}),
	}

	_, err := runCascade(context.Background(), "https://example.com/a", strategies)
	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected ExhaustedError, got %v", err)
	}

	want := []string{"tavily", "jina", "direct"}
	if len(exhausted.Attempted) != len(want) {
		t.Fatalf("attempted = %v, want %v", exhausted.Attempted, want)
	}
	for i, name := range want {
		if exhausted.Attempted[i] != name {
			t.Errorf("attempted[%d] = %q, want %q", i, exhausted.Attempted[i], name)
		}
	}
	if !errors.Is(err, lastErr) {
		t.Errorf("expected last strategy error to surface, got %v", exhausted.LastErr)
	}
}

func TestCascadeRejectsShortContent(t *testing.T) {
	Init(Config{MinContentLen: 200})

	strategies := []Strategy{
		stubStrategy("thin", func(ctx context.Context, url string) (*RawResult, error) {
			return &RawResult{Content: "too short", Method: MethodDirectFetch}, nil
		}),
	}

	_, err := runCascade(context.Background(), "https://example.com/a", strategies)
	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected ExhaustedError, got %v", err)
	}
	var blocked *BlockedError
	if !errors.As(exhausted.LastErr, &blocked) {
		t.Errorf("short content should register as blocked, got %v", exhausted.LastErr)
	}
}

func TestCascadeTimeoutPerStrategy(t *testing.T) {
	Init(Config{})

	strategies := []Strategy{
		{
			Name:    "slow",
			Timeout: 10 * time.Millisecond,
			Attempt: func(ctx context.Context, url string) (*RawResult, error) {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(time.Second):
					return okResult(MethodAPIPrimary), nil
				}
			},
		},
		stubStrategy("fast", func(ctx context.Context, url string) (*RawResult, error) {
			return okResult(MethodDirectFetch), nil
		}),
	}

	doc, err := runCascade(context.Background(), "https://example.com/a", strategies)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Method != MethodDirectFetch {
		t.Errorf("slow strategy timeout should fall through, got method %q", doc.Method)
	}
}

func TestArticleStrategyOrder(t *testing.T) {
	got := articleStrategies()
	want := []string{"tavily", "jina", "direct"}
	if len(got) != len(want) {
		t.Fatalf("expected %d strategies, got %d", len(want), len(got))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("strategy[%d] = %q, want %q", i, got[i].Name, name)
		}
	}
}
