package engine

import (
	"net/url"
	"strings"
)

// trackingParams is the exact deny-list of query parameters stripped from
// article URLs. Deliberately not a prefix heuristic: unknown parameters
// stay untouched because some sites need them to serve the right page.
var trackingParams = []string{
	"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content",
	"fbclid", "gclid", "yclid", "_ga", "mc_eid",
}

// CleanURL strips known tracking parameters from a URL. Video-hosting
// URLs are returned unchanged — their query parameters carry the video id.
// Unparseable input is returned as-is; the fetch will surface the error.
func CleanURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if IsVideoURL(rawURL) {
		return rawURL
	}
	q := u.Query()
	changed := false
	for _, p := range trackingParams {
		if q.Has(p) {
			q.Del(p)
			changed = true
		}
	}
	if !changed {
		return rawURL
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// videoHosts are hostname suffixes routed to the video transcript cascade.
var videoHosts = []string{"youtube.com", "youtu.be"}

// IsVideoURL reports whether the URL belongs to a video-hosting domain.
func IsVideoURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, v := range videoHosts {
		if host == v || strings.HasSuffix(host, "."+v) {
			return true
		}
	}
	return false
}
