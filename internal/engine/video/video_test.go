package video

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/anna-secretary/anna/internal/engine"
)

func noMetadata(ctx context.Context, videoID string, authed bool) (*metadataResult, error) {
	return nil, errNoUsableOutput
}

// writeCookieFile creates a minimal Netscape cookie file for the video host.
func writeCookieFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cookies.txt")
	content := "# Netscape HTTP Cookie File\n" +
		".youtube.com\tTRUE\t/\tTRUE\t0\tSID\tabc123\n" +
		".google.com\tTRUE\t/\tTRUE\t0\tHSID\txyz789\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFetchCaptionsFirst(t *testing.T) {
	f := New("", nil)
	downloads := 0
	f.captions = func(ctx context.Context, videoID string, langs []string, cookieHeader string) (string, error) {
		if cookieHeader != "" {
			t.Error("first captions attempt must be unauthenticated")
		}
		return "caption text", nil
	}
	f.download = func(ctx context.Context, videoID, client string, authed bool) (string, error) {
		downloads++
		return "", nil
	}
	f.metadata = noMetadata

	tr, err := f.Fetch(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr == nil {
		t.Fatal("expected transcript")
	}
	if tr.Method != engine.MethodVideoCaptionAPI {
		t.Errorf("method = %q, want %q", tr.Method, engine.MethodVideoCaptionAPI)
	}
	if tr.UsedCookies {
		t.Error("captions API result must not be marked authenticated")
	}
	if downloads != 0 {
		t.Errorf("download strategies ran after captions succeeded: %d", downloads)
	}
	if tr.Title != "YouTube Video dQw4w9WgXcQ" {
		t.Errorf("expected generic title when metadata fails, got %q", tr.Title)
	}
}

func TestFetchClientOrder(t *testing.T) {
	f := New("", nil)
	f.captions = func(ctx context.Context, videoID string, langs []string, cookieHeader string) (string, error) {
		return "", errNoCaptions
	}
	var clients []string
	f.download = func(ctx context.Context, videoID, client string, authed bool) (string, error) {
		clients = append(clients, client)
		if client == "tv" {
			return "tv captions", nil
		}
		return "", nil
	}
	f.metadata = noMetadata

	tr, err := f.Fetch(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.Method != engine.MethodVideoClientSim {
		t.Errorf("method = %q, want %q", tr.Method, engine.MethodVideoClientSim)
	}
	want := []string{"android", "tv"}
	if len(clients) != len(want) {
		t.Fatalf("clients = %v, want %v", clients, want)
	}
	for i := range want {
		if clients[i] != want[i] {
			t.Errorf("clients[%d] = %q, want %q", i, clients[i], want[i])
		}
	}
}

func TestFetchNoCaptionsAnywhere(t *testing.T) {
	// No cookie file: the cascade ends after the anonymous strategies,
	// and "nothing found" is nil/nil, not an error.
	f := New("", nil)
	f.captions = func(ctx context.Context, videoID string, langs []string, cookieHeader string) (string, error) {
		return "", errNoCaptions
	}
	var authedSeen bool
	f.download = func(ctx context.Context, videoID, client string, authed bool) (string, error) {
		if authed {
			authedSeen = true
		}
		return "", nil
	}
	f.metadata = noMetadata

	tr, err := f.Fetch(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if tr != nil {
		t.Fatalf("expected nil transcript, got %+v", tr)
	}
	if authedSeen {
		t.Error("authenticated mode must not run without a cookie file")
	}
}

func TestFetchEscalatesToAuthenticated(t *testing.T) {
	f := New(writeCookieFile(t), nil)
	var captionHeaders []string
	f.captions = func(ctx context.Context, videoID string, langs []string, cookieHeader string) (string, error) {
		captionHeaders = append(captionHeaders, cookieHeader)
		return "", errNoCaptions
	}
	var order []string
	f.download = func(ctx context.Context, videoID, client string, authed bool) (string, error) {
		if authed {
			order = append(order, "authed:"+client)
			return "authed captions", nil
		}
		order = append(order, client)
		return "", nil
	}
	f.metadata = noMetadata

	tr, err := f.Fetch(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.Method != engine.MethodVideoAuthed {
		t.Errorf("method = %q, want %q", tr.Method, engine.MethodVideoAuthed)
	}
	if !tr.UsedCookies {
		t.Error("authenticated result must carry the auth marker")
	}

	// All anonymous clients first, authenticated web client last.
	want := []string{"android", "tv", "ios", "authed:web"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}

	// The captions API ran twice: anonymous first, then with cookies.
	if len(captionHeaders) != 2 {
		t.Fatalf("captions attempts = %d, want 2", len(captionHeaders))
	}
	if captionHeaders[0] != "" {
		t.Error("first captions attempt must be anonymous")
	}
	if captionHeaders[1] == "" {
		t.Error("second captions attempt must carry the cookie header")
	}
}

func TestFetchCanceledContextIsNotNoCaptions(t *testing.T) {
	// A deadline hit mid-cascade must surface as an error, never as the
	// nil/nil "video has no subtitles" terminal state.
	f := New("", nil)
	f.captions = func(ctx context.Context, videoID string, langs []string, cookieHeader string) (string, error) {
		return "", errNoCaptions
	}
	downloads := 0
	f.download = func(ctx context.Context, videoID, client string, authed bool) (string, error) {
		downloads++
		return "", nil
	}
	f.metadata = noMetadata

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr, err := f.Fetch(ctx, "https://youtu.be/dQw4w9WgXcQ")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if tr != nil {
		t.Fatalf("expected nil transcript on cancellation, got %+v", tr)
	}
	if downloads != 0 {
		t.Errorf("download strategies ran after cancellation: %d", downloads)
	}
}

func TestFetchInvalidURL(t *testing.T) {
	f := New("", nil)
	if _, err := f.Fetch(context.Background(), "https://example.com/page"); !errors.Is(err, engine.ErrInvalidVideoURL) {
		t.Fatalf("expected ErrInvalidVideoURL, got %v", err)
	}
}

func TestFetchMetadataOverlay(t *testing.T) {
	f := New("", nil)
	f.captions = func(ctx context.Context, videoID string, langs []string, cookieHeader string) (string, error) {
		return "caption text", nil
	}
	f.metadata = func(ctx context.Context, videoID string, authed bool) (*metadataResult, error) {
		return &metadataResult{Title: "Реальное название", Author: "Канал", Duration: 120}, nil
	}

	tr, err := f.Fetch(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.Title != "Реальное название" || tr.Author != "Канал" || tr.Duration != 120 {
		t.Errorf("metadata not applied: %+v", tr)
	}
}

func TestCookieHeader(t *testing.T) {
	header, err := cookieHeader(writeCookieFile(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "SID=abc123; HSID=xyz789"
	if header != want {
		t.Errorf("header = %q, want %q", header, want)
	}
}

func TestCookieHeaderIgnoresForeignDomains(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.txt")
	content := ".example.com\tTRUE\t/\tTRUE\t0\tfoo\tbar\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := cookieHeader(path); err == nil {
		t.Fatal("expected error for a file without video-host entries")
	}
}
