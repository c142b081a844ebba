package engine

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// Direct download + DOM-based content extraction. Last fallback: fetch the
// page ourselves and pull the main text with readability, then goquery when
// readability cannot find an article node.

func directExtract(ctx context.Context, pageURL string) (*RawResult, error) {
	metrics.DirectRequests.Add(1)
	metrics.FetchRequests.Add(1)

	ctx, cancel := context.WithTimeout(ctx, cfg.FetchTimeout)
	defer cancel()

	resp, err := fetchWithRetry(ctx, pageURL)
	if err != nil {
		metrics.FetchErrors.Add(1)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := readResponseBody(resp)
	if err != nil {
		metrics.FetchErrors.Add(1)
		return nil, err
	}

	parsedURL, _ := url.Parse(pageURL)
	article, err := readability.FromReader(strings.NewReader(string(body)), parsedURL)
	if err != nil {
		return directExtractGoquery(body)
	}

	md, err := htmltomarkdown.ConvertString(article.Content)
	if err != nil {
		md = article.TextContent
	}

	return &RawResult{
		Content: strings.TrimSpace(md),
		Title:   article.Title,
		Method:  MethodDirectFetch,
	}, nil
}

// directExtractGoquery uses goquery for structured HTML parsing when
// readability fails.
func directExtractGoquery(body []byte) (*RawResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("direct: parse HTML: %w", err)
	}

	title := doc.Find("title").First().Text()
	if title == "" {
		doc.Find("meta[property=og:title]").Each(func(i int, s *goquery.Selection) {
			if title == "" {
				title, _ = s.Attr("content")
			}
		})
	}

	removeSelectors := []string{
		"script", "style", "noscript", "iframe", "svg",
		"header", "footer", "nav", "aside",
		".advertisement", ".ad", ".sidebar", ".comments",
		"[role=navigation]", "[role=banner]", "[role=contentinfo]",
	}
	doc.Find(strings.Join(removeSelectors, ", ")).Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	contentSel := doc.Find("article, main, .content, .post-content, .article-content, #content").First()
	if contentSel.Length() == 0 {
		contentSel = doc.Find("body")
	}

	content := CollapseWhitespace(strings.TrimSpace(contentSel.Text()))

	return &RawResult{
		Content: content,
		Title:   strings.TrimSpace(title),
		Method:  MethodDirectFetch,
	}, nil
}
