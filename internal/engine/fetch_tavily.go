package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Hosted extraction API strategy (Tavily). Preferred: structured output,
// highest success rate, but paid and rate-limited.

const tavilyExtractURL = "https://api.tavily.com/extract"

var errTavilyDisabled = errors.New("tavily: no API key configured")

type tavilyRequest struct {
	URLs          []string `json:"urls"`
	IncludeImages bool     `json:"include_images"`
	ExtractDepth  string   `json:"extract_depth"`
}

type tavilyResponse struct {
	Results []struct {
		URL        string `json:"url"`
		RawContent string `json:"raw_content"`
	} `json:"results"`
	FailedResults []struct {
		URL   string `json:"url"`
		Error string `json:"error"`
	} `json:"failed_results"`
}

func tavilyExtract(ctx context.Context, pageURL string) (*RawResult, error) {
	if cfg.TavilyAPIKey == "" {
		return nil, errTavilyDisabled
	}
	metrics.TavilyRequests.Add(1)

	payload, err := json.Marshal(tavilyRequest{
		URLs:         []string{pageURL},
		ExtractDepth: "basic",
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tavilyExtractURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.TavilyAPIKey)

	resp, err := cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("tavily: read body: %w", err)
	}

	var out tavilyResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("tavily: decode: %w", err)
	}

	if len(out.Results) == 0 || out.Results[0].RawContent == "" {
		// Tavily reports per-URL failures inside a 200 response.
		if len(out.FailedResults) > 0 {
			return nil, fmt.Errorf("tavily: refused %s: %s", out.FailedResults[0].URL, out.FailedResults[0].Error)
		}
		return nil, errors.New("tavily: empty result")
	}

	return &RawResult{Content: out.Results[0].RawContent, Method: MethodAPIPrimary}, nil
}
