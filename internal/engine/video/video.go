// Package video implements the transcript cascade for video-hosting URLs:
// an unauthenticated captions API first, then simulated-client subtitle
// downloads, then — only when everything else failed and a stored cookie
// file exists — the same strategies in authenticated mode.
package video

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/anna-secretary/anna/internal/engine"
)

// simClients lists the client identities tried against the upstream
// service, in order. Each declares a different player to the download
// worker; some identities are throttled when others are not.
var simClients = []string{"android", "tv", "ios"}

// Fetcher runs the transcript cascade. All strategy functions are fields
// so tests can substitute them; zero values are filled by New.
type Fetcher struct {
	CookieFile string // empty or missing file = authenticated mode unavailable
	Langs      []string

	limiter *rate.Limiter

	captions func(ctx context.Context, videoID string, langs []string, cookieHeader string) (string, error)
	download func(ctx context.Context, videoID, client string, authed bool) (string, error)
	metadata func(ctx context.Context, videoID string, authed bool) (*metadataResult, error)
}

// New builds a Fetcher with the real strategy implementations.
// langs defaults to ru,en — the original assistant's audience.
func New(cookieFile string, langs []string) *Fetcher {
	if len(langs) == 0 {
		langs = []string{"ru", "en"}
	}
	f := &Fetcher{
		CookieFile: cookieFile,
		Langs:      langs,
		// Short pacing between download attempts so one cascade run does
		// not trip upstream rate detection by itself.
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
	}
	f.captions = fetchCaptionsAPI
	f.download = f.downloadSubtitles
	f.metadata = f.fetchMetadata
	return f
}

// Fetch resolves the video id and walks the cascade. Returns (nil, nil)
// when no captions exist anywhere — a valid terminal state, distinct from
// a provider error.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*engine.Transcript, error) {
	videoID, err := ParseVideoID(url)
	if err != nil {
		return nil, err
	}
	engine.IncrVideoRequests()

	text, method, usedCookies, err := f.runCascade(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, nil
	}

	tr := &engine.Transcript{
		VideoID:     videoID,
		Title:       "YouTube Video " + videoID,
		Text:        text,
		Method:      method,
		UsedCookies: usedCookies,
	}

	// Metadata is a separate lightweight call; its failure never aborts
	// the transcript result.
	if meta, err := f.metadata(ctx, videoID, usedCookies); err == nil {
		tr.Title = meta.Title
		tr.Author = meta.Author
		tr.Description = meta.Description
		tr.Duration = meta.Duration
	} else {
		slog.Warn("video metadata fetch failed, using generic title",
			slog.String("id", videoID), slog.Any("error", err))
	}

	return tr, nil
}

// runCascade tries strategies strictly in order, each only when the
// previous returned nothing usable. A non-nil error means the cascade
// was interrupted, not that the video has no captions.
func (f *Fetcher) runCascade(ctx context.Context, videoID string) (text string, method engine.Method, usedCookies bool, err error) {
	// 1. Unauthenticated captions API.
	if text := f.tryCaptions(ctx, videoID, ""); text != "" {
		return text, engine.MethodVideoCaptionAPI, false, nil
	}

	// 2. Simulated-client downloads, paced.
	for _, client := range simClients {
		if err := f.limiter.Wait(ctx); err != nil {
			return "", "", false, err
		}
		text, err := f.download(ctx, videoID, client, false)
		if err != nil {
			slog.Warn("subtitle download failed",
				slog.String("id", videoID),
				slog.String("client", client),
				slog.Any("error", err))
			continue
		}
		if text != "" {
			return text, engine.MethodVideoClientSim, false, nil
		}
	}

	// 3. Authenticated mode, gated on a stored credential. Never used
	// unless every anonymous path failed, and never de-escalated.
	if !f.cookiesValid() {
		return "", "", false, nil
	}
	engine.IncrVideoAuthenticated()
	slog.Info("escalating to authenticated mode", slog.String("id", videoID))

	if header, err := cookieHeader(f.CookieFile); err == nil {
		if text := f.tryCaptions(ctx, videoID, header); text != "" {
			return text, engine.MethodVideoAuthed, true, nil
		}
	}

	text, dlErr := f.download(ctx, videoID, "web", true)
	if dlErr != nil {
		slog.Warn("authenticated subtitle download failed",
			slog.String("id", videoID), slog.Any("error", dlErr))
		return "", "", false, nil
	}
	if text != "" {
		return text, engine.MethodVideoAuthed, true, nil
	}
	return "", "", false, nil
}

func (f *Fetcher) tryCaptions(ctx context.Context, videoID, cookieHeader string) string {
	text, err := f.captions(ctx, videoID, f.Langs, cookieHeader)
	if err != nil {
		slog.Warn("captions API failed",
			slog.String("id", videoID),
			slog.Bool("authed", cookieHeader != ""),
			slog.Any("error", err))
		return ""
	}
	return text
}

// cookiesValid reports whether a stored authentication credential exists.
// Presence is a boolean gate; the contents are never inspected here.
func (f *Fetcher) cookiesValid() bool {
	if f.CookieFile == "" {
		return false
	}
	info, err := os.Stat(f.CookieFile)
	return err == nil && info.Size() > 0
}

var _ engine.TranscriptFetcher = (*Fetcher)(nil)

// errNoUsableOutput is returned by strategies that ran but produced
// nothing the cascade can use.
var errNoUsableOutput = errors.New("no usable output")
