package engine

import "sync/atomic"

// Metrics tracks operational counters across the engine.
var metrics struct {
	ExtractRequests    atomic.Int64
	FetchRequests      atomic.Int64
	FetchErrors        atomic.Int64
	TavilyRequests     atomic.Int64
	JinaRequests       atomic.Int64
	DirectRequests     atomic.Int64
	CascadeExhausted   atomic.Int64
	VideoRequests      atomic.Int64
	VideoAuthenticated atomic.Int64
	VideoNoTranscript  atomic.Int64
}

// IncrVideoRequests is called by the video sub-package.
func IncrVideoRequests() { metrics.VideoRequests.Add(1) }

// IncrVideoAuthenticated counts cascades that had to escalate to cookies.
func IncrVideoAuthenticated() { metrics.VideoAuthenticated.Add(1) }

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"extract_requests":    metrics.ExtractRequests.Load(),
		"fetch_requests":      metrics.FetchRequests.Load(),
		"fetch_errors":        metrics.FetchErrors.Load(),
		"tavily_requests":     metrics.TavilyRequests.Load(),
		"jina_requests":       metrics.JinaRequests.Load(),
		"direct_requests":     metrics.DirectRequests.Load(),
		"cascade_exhausted":   metrics.CascadeExhausted.Load(),
		"video_requests":      metrics.VideoRequests.Load(),
		"video_authenticated": metrics.VideoAuthenticated.Load(),
		"video_no_transcript": metrics.VideoNoTranscript.Load(),
		"cache_hits":          hits,
		"cache_misses":        misses,
	}
}
