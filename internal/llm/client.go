package llm

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Config holds the model-call settings, injected from main.
type Config struct {
	Keys        []string // ordered credential pool, non-empty
	BaseURL     string   // OpenAI-compatible endpoint
	Model       string
	MaxTokens   int64
	Temperature float64
}

// Client issues chat completions through the credential rotator. One
// Client per process; per-call state lives inside CallWithRotation.
type Client struct {
	rotator     *Rotator
	baseURL     string
	maxTokens   int64
	temperature float64
}

// NewClient wires a client to a fresh rotator over cfg.Keys.
func NewClient(cfg Config) *Client {
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2500
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.8
	}
	return &Client{
		rotator:     NewRotator(cfg.Keys, cfg.Model),
		baseURL:     cfg.BaseURL,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

// Rotator exposes the underlying rotator for metrics and tests.
func (c *Client) Rotator() *Rotator { return c.rotator }

func (c *Client) apiFor(key string) openai.Client {
	opts := []option.RequestOption{option.WithAPIKey(key)}
	if c.baseURL != "" {
		opts = append(opts, option.WithBaseURL(c.baseURL))
	}
	return openai.NewClient(opts...)
}

// Complete sends one prompt (with optional system message) and returns the
// model's text, rotated across credentials on quota failures.
func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if system != "" {
		msgs = append(msgs, openai.SystemMessage(system))
	}
	msgs = append(msgs, openai.UserMessage(prompt))
	return c.complete(ctx, msgs)
}

// Chat sends a full message sequence (system + history + current turn).
func (c *Client) Chat(ctx context.Context, msgs []openai.ChatCompletionMessageParamUnion) (string, error) {
	return c.complete(ctx, msgs)
}

func (c *Client) complete(ctx context.Context, msgs []openai.ChatCompletionMessageParamUnion) (string, error) {
	return CallWithRotation(ctx, c.rotator, func(ctx context.Context, key, model string) (string, error) {
		api := c.apiFor(key)
		resp, err := api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model:       openai.ChatModel(model),
			Messages:    msgs,
			MaxTokens:   openai.Int(c.maxTokens),
			Temperature: openai.Float(c.temperature),
		})
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", errors.New("empty completion")
		}
		return cleanModelOutput(resp.Choices[0].Message.Content), nil
	})
}

var thinkRe = regexp.MustCompile(`(?is)^<think>.*?</think>`)

// cleanModelOutput drops reasoning preambles some models prepend.
func cleanModelOutput(s string) string {
	return strings.TrimSpace(thinkRe.ReplaceAllString(s, ""))
}

// stripFences removes markdown code fences from model output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
