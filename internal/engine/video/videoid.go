package video

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/anna-secretary/anna/internal/engine"
)

var videoIDRe = regexp.MustCompile(`^[0-9A-Za-z_-]{11}$`)

// ParseVideoID resolves the canonical 11-character video identifier from
// any of the common URL shapes (watch?v=, youtu.be/, /shorts/, /embed/,
// /live/). Fails with engine.ErrInvalidVideoURL when none can be parsed.
func ParseVideoID(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", engine.ErrInvalidVideoURL
	}

	host := strings.ToLower(u.Hostname())
	var candidate string

	switch {
	case host == "youtu.be":
		candidate = strings.TrimPrefix(u.Path, "/")
		if i := strings.Index(candidate, "/"); i >= 0 {
			candidate = candidate[:i]
		}
	case host == "youtube.com" || strings.HasSuffix(host, ".youtube.com"):
		if v := u.Query().Get("v"); v != "" {
			candidate = v
		} else {
			for _, prefix := range []string{"/shorts/", "/embed/", "/live/"} {
				if rest, ok := strings.CutPrefix(u.Path, prefix); ok {
					if i := strings.Index(rest, "/"); i >= 0 {
						rest = rest[:i]
					}
					candidate = rest
					break
				}
			}
		}
	}

	if !videoIDRe.MatchString(candidate) {
		return "", engine.ErrInvalidVideoURL
	}
	return candidate, nil
}
