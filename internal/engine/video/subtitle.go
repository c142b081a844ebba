package video

import (
	"regexp"
	"strings"
)

var (
	subTagRe  = regexp.MustCompile(`<[^>]+>`)
	subNbspRe = regexp.MustCompile(`&nbsp;`)
)

// cleanSubtitles flattens a raw VTT stream into plain text: cue timings,
// header metadata and markup go away, and repeated caption lines (auto-
// generated captions emit each line twice) collapse to one occurrence.
func cleanSubtitles(raw string) string {
	seen := make(map[string]struct{})
	var cleaned []string

	for _, line := range strings.Split(raw, "\n") {
		l := strings.TrimSpace(line)
		if l == "" || l == "WEBVTT" || strings.Contains(l, "-->") {
			continue
		}
		if strings.HasPrefix(l, "Kind:") || strings.HasPrefix(l, "Language:") || strings.HasPrefix(l, "<c>") {
			continue
		}
		l = subTagRe.ReplaceAllString(l, "")
		l = subNbspRe.ReplaceAllString(l, " ")
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		cleaned = append(cleaned, l)
	}

	return strings.Join(cleaned, " ")
}
