package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Extract is the single entry point for the rest of the application.
// It classifies the URL, dispatches to the article or video cascade, and
// returns a normalized document with the body length-capped.
//
// A video URL without captions surfaces ErrNoTranscript — it is never
// retried through the article cascade, because the watch page HTML is not
// the content the user asked for.
func Extract(ctx context.Context, rawURL string) (*Document, error) {
	metrics.ExtractRequests.Add(1)

	cleaned := CleanURL(rawURL)
	if doc, ok := extractCache.get(cleaned); ok {
		return doc, nil
	}

	var doc *Document
	var err error
	if IsVideoURL(cleaned) {
		doc, err = extractVideo(ctx, cleaned)
	} else {
		doc, err = ExtractArticle(ctx, cleaned)
	}
	if err != nil {
		return nil, err
	}

	// Cap after extraction, never before: the cascade decides acceptability
	// on the full content, the cap only bounds downstream summarization cost.
	doc.Body = TruncateRunes(doc.Body, cfg.MaxContentChars, "...")

	extractCache.set(cleaned, doc)
	return doc, nil
}

func extractVideo(ctx context.Context, cleaned string) (*Document, error) {
	if cfg.Transcripts == nil {
		return nil, errors.New("video transcripts are not configured")
	}

	tr, err := cfg.Transcripts.Fetch(ctx, cleaned)
	if err != nil {
		return nil, fmt.Errorf("video transcript: %w", err)
	}
	if tr == nil {
		metrics.VideoNoTranscript.Add(1)
		slog.Info("no transcript available", slog.String("url", cleaned))
		return nil, ErrNoTranscript
	}

	return &Document{
		SourceURL:    cleaned,
		Title:        tr.Title,
		Body:         tr.Text,
		Method:       tr.Method,
		UsedAuthMode: tr.UsedCookies,
	}, nil
}
