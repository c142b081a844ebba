package engine

import (
	"context"
	"time"
)

// Method identifies which strategy produced a document.
type Method string

const (
	MethodAPIPrimary      Method = "api_primary"
	MethodProxyFallback   Method = "proxy_fallback"
	MethodDirectFetch     Method = "direct_fetch"
	MethodVideoCaptionAPI Method = "video_caption_api"
	MethodVideoClientSim  Method = "video_client_sim"
	MethodVideoAuthed     Method = "video_authenticated"
)

// Document is the pipeline's canonical output, independent of which
// strategy produced it. Immutable after creation; owned by the caller.
type Document struct {
	SourceURL    string
	Title        string // empty when no title could be determined
	Body         string
	Method       Method
	UsedAuthMode bool
}

// RawResult is a strategy's output before normalization.
type RawResult struct {
	Content string
	Title   string
	Method  Method
}

// Strategy is one concrete method of turning a URL into raw text.
// Stateless: Attempt must not retain anything between calls.
type Strategy struct {
	Name         string
	Timeout      time.Duration
	RequiresAuth bool
	Attempt      func(ctx context.Context, url string) (*RawResult, error)
}

// Transcript is the video cascade's terminal result.
type Transcript struct {
	VideoID     string
	Title       string
	Author      string
	Description string
	Duration    int // seconds
	Text        string
	Method      Method
	UsedCookies bool
}
