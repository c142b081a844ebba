package engine

import (
	"context"
	"net/http"
	"time"
)

// TranscriptFetcher is implemented by the video transcript cascade.
// A nil Transcript with a nil error means the video has no captions.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, url string) (*Transcript, error)
}

// Config holds all engine configuration, injected from main.
type Config struct {
	TavilyAPIKey    string // empty = hosted extraction API disabled
	MaxContentChars int    // body cap applied after extraction
	MinContentLen   int    // below this a strategy result counts as failed
	FetchTimeout    time.Duration

	CacheTTL             time.Duration
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration

	HTTPClient  *http.Client
	Transcripts TranscriptFetcher // nil = video URLs rejected
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (video).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	if c.MaxContentChars == 0 {
		c.MaxContentChars = 45000
	}
	if c.MinContentLen == 0 {
		c.MinContentLen = 200
	}
	if c.FetchTimeout == 0 {
		c.FetchTimeout = 20 * time.Second
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	cfg = c
	Cfg = &cfg
	initCache()
}
