package video

import "testing"

func TestCleanSubtitles(t *testing.T) {
	raw := `WEBVTT
Kind: captions
Language: ru

00:00:00.000 --> 00:00:02.500
привет всем

00:00:02.500 --> 00:00:05.000
привет всем
это <b>важная</b> часть

00:00:05.000 --> 00:00:07.000
<c>это важная часть</c>
финал&nbsp;разговора
`
	got := cleanSubtitles(raw)
	want := "привет всем это важная часть финал разговора"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCleanSubtitlesEmpty(t *testing.T) {
	if got := cleanSubtitles("WEBVTT\n\n00:00:00.000 --> 00:00:01.000\n"); got != "" {
		t.Errorf("expected empty result, got %q", got)
	}
}

func TestCleanSubtitlesDedupAcrossCues(t *testing.T) {
	raw := "line one\nline two\nline one\nline two\nline three"
	got := cleanSubtitles(raw)
	want := "line one line two line three"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
