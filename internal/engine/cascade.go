package engine

import (
	"context"
	"log/slog"
	"time"
)

// articleStrategies returns the fixed-priority strategy order for article
// URLs: hosted extraction API, then the rendering proxy, then a direct
// download with DOM extraction. Order is a deliberate cost/reliability
// trade-off and never changes at runtime.
func articleStrategies() []Strategy {
	return []Strategy{
		{Name: "tavily", Timeout: 30 * time.Second, Attempt: tavilyExtract},
		{Name: "jina", Timeout: 25 * time.Second, Attempt: jinaExtract},
		{Name: "direct", Timeout: 20 * time.Second, Attempt: directExtract},
	}
}

// ExtractArticle runs the article extraction cascade: strategies execute
// strictly in order, each bounded by its own timeout, each failure absorbed
// and classified locally. The first acceptable result short-circuits the
// cascade. Fails with *ExhaustedError only when every strategy failed.
func ExtractArticle(ctx context.Context, rawURL string) (*Document, error) {
	return runCascade(ctx, CleanURL(rawURL), articleStrategies())
}

// runCascade iterates strategies with early return. The loop is the only
// success/failure bookkeeping: no flags, so the short-circuit property
// holds structurally.
func runCascade(ctx context.Context, cleaned string, strategies []Strategy) (*Document, error) {
	var attempted []string
	var lastErr error

	for _, s := range strategies {
		attempted = append(attempted, s.Name)

		sctx, cancel := context.WithTimeout(ctx, s.Timeout)
		res, err := s.Attempt(sctx, cleaned)
		cancel()

		if err != nil {
			lastErr = err
			slog.Warn("strategy failed",
				slog.String("strategy", s.Name),
				slog.String("class", Classify(err).String()),
				slog.String("url", cleaned),
				slog.Any("error", err))
			continue
		}
		if len(res.Content) < cfg.MinContentLen {
			lastErr = &BlockedError{Strategy: s.Name, Reason: "content below minimum length"}
			slog.Warn("strategy returned too little content",
				slog.String("strategy", s.Name),
				slog.Int("len", len(res.Content)))
			continue
		}

		slog.Info("extraction succeeded",
			slog.String("strategy", s.Name),
			slog.Int("chars", len(res.Content)))
		return &Document{
			SourceURL: cleaned,
			Title:     res.Title,
			Body:      res.Content,
			Method:    res.Method,
		}, nil
	}

	metrics.CascadeExhausted.Add(1)
	return nil, &ExhaustedError{URL: cleaned, Attempted: attempted, LastErr: lastErr}
}
