package video

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lrstanley/go-ytdlp"
)

// Subtitle download strategies run yt-dlp as a separate worker process per
// request. The worker's stdout mixes diagnostics with the payload, so the
// contract is: the last line that parses as a JSON object wins.

type ytdlpRequest struct {
	URL            string
	Client         string // simulated player identity; empty in authenticated mode
	CookieFile     string // non-empty only in authenticated mode
	OutputTemplate string // subtitle artifact path prefix; empty for metadata-only runs
	SubLangs       []string
	MetadataOnly   bool
}

// runWorker is swappable in tests; the real implementation shells out.
var runWorker = runYtdlpWorker

func runYtdlpWorker(ctx context.Context, req ytdlpRequest) (stdout string, err error) {
	dl := ytdlp.New().NoWarnings()

	if req.MetadataOnly {
		dl = dl.SkipDownload().DumpSingleJSON().NoPlaylist()
	} else {
		dl = dl.SkipDownload().
			WriteSubs().
			WriteAutoSubs().
			SubFormat("vtt").
			SubLangs(strings.Join(req.SubLangs, ",")).
			Output(req.OutputTemplate).
			Quiet()
	}

	switch {
	case req.CookieFile != "":
		dl = dl.Cookies(req.CookieFile)
	case req.Client != "":
		dl = dl.ExtractorArgs("youtube:player_client=" + req.Client + ";skip=dash,hls")
	}

	res, err := dl.Run(ctx, req.URL)
	if err != nil {
		return "", fmt.Errorf("yt-dlp: %w", err)
	}
	return res.Stdout, nil
}

// downloadSubtitles runs one simulated-client (or authenticated) subtitle
// download. Artifacts live in a per-invocation directory keyed by video id
// and client name, removed on every exit path.
func (f *Fetcher) downloadSubtitles(ctx context.Context, videoID, client string, authed bool) (string, error) {
	workdir, err := os.MkdirTemp("", "yt_"+videoID+"_"+client+"_")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(workdir)

	req := ytdlpRequest{
		URL:            watchURL(videoID),
		OutputTemplate: filepath.Join(workdir, "sub"),
		SubLangs:       f.Langs,
	}
	if authed {
		req.CookieFile = f.CookieFile
	} else {
		req.Client = client
	}

	if _, err := runWorker(ctx, req); err != nil {
		return "", err
	}

	files, err := filepath.Glob(filepath.Join(workdir, "*.vtt"))
	if err != nil || len(files) == 0 {
		return "", nil // worker ran but produced no captions
	}

	// Several language tracks may land; the largest is the real one.
	target := files[0]
	var best int64
	for _, name := range files {
		if info, err := os.Stat(name); err == nil && info.Size() > best {
			best = info.Size()
			target = name
		}
	}

	raw, err := os.ReadFile(target)
	if err != nil {
		return "", err
	}
	return cleanSubtitles(string(raw)), nil
}

type metadataResult struct {
	Title       string  `json:"title"`
	Author      string  `json:"uploader"`
	Description string  `json:"description"`
	DurationSec float64 `json:"duration"`
	Duration    int     `json:"-"`
}

// fetchMetadata does a metadata-only worker run and parses the trailing
// JSON object out of its stdout.
func (f *Fetcher) fetchMetadata(ctx context.Context, videoID string, authed bool) (*metadataResult, error) {
	req := ytdlpRequest{URL: watchURL(videoID), MetadataOnly: true}
	if authed {
		req.CookieFile = f.CookieFile
	}

	stdout, err := runWorker(ctx, req)
	if err != nil {
		return nil, err
	}

	raw, ok := trailingJSON(stdout)
	if !ok {
		return nil, errNoUsableOutput
	}
	var meta metadataResult
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, err
	}
	if meta.Title == "" {
		return nil, errNoUsableOutput
	}
	meta.Duration = int(meta.DurationSec)
	return &meta, nil
}

// trailingJSON scans lines from the end for a single valid JSON object.
// Upstream tooling prints diagnostics to the same stream, so anything
// before the last JSON line is ignored.
func trailingJSON(stdout string) (json.RawMessage, bool) {
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, "{") || !strings.HasSuffix(line, "}") {
			continue
		}
		if json.Valid([]byte(line)) {
			return json.RawMessage(line), true
		}
	}
	return nil, false
}

func watchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}
