package engine

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
)

// Anonymized rendering-proxy strategy (Jina Reader). Free tier, looser
// reliability; the proxy renders the page and returns markdown.

const jinaReaderBase = "https://r.jina.ai/"

// deniedMarker appears verbatim in the proxy's body when the target site
// refused the render. The proxy still answers 200 in that case.
const deniedMarker = "Access Denied"

var jinaSelfLinkRe = regexp.MustCompile(`\[https://r\.jina\.ai/.+\]`)

func jinaExtract(ctx context.Context, pageURL string) (*RawResult, error) {
	metrics.JinaRequests.Add(1)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, jinaReaderBase+pageURL, nil)
	if err != nil {
		return nil, err
	}
	// Browser UA keeps the proxy from rate-limiting unknown clients.
	req.Header.Set("User-Agent", UserAgentChrome)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("X-Return-Format", "markdown")

	resp, err := cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jina: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("jina: read body: %w", err)
	}

	text := string(body)
	if strings.Contains(text, deniedMarker) {
		return nil, &BlockedError{Strategy: "jina", Reason: "proxy returned denial page"}
	}

	// Proxy junk: everything after "## Related" is link noise, and the
	// proxy sometimes embeds links to itself.
	text, _, _ = strings.Cut(text, "## Related")
	text = jinaSelfLinkRe.ReplaceAllString(text, "")

	return &RawResult{Content: strings.TrimSpace(text), Method: MethodProxyFallback}, nil
}
