// Package llm wraps outbound model calls with credential rotation and
// bounded retry. Quota failures advance to the next credential; everything
// else gets a small fixed-backoff retry budget before surfacing.
package llm

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/anna-secretary/anna/internal/engine"
)

// FallbackModel is the known-good substitute when the configured model
// identifier turns out to be unavailable at the provider.
const FallbackModel = "google/gemini-2.5-flash-lite"

// Credential is one entry of the rotating API-key pool.
type Credential struct {
	Key   string
	Index int
}

// Rotator holds the process-wide credential cursor. The pool is fixed at
// startup; only the cursor mutates. Concurrent calls may observe each
// other's rotations — credentials are interchangeable, not session-bound,
// so "eventually consistent, monotonically advancing" is the invariant.
type Rotator struct {
	mu   sync.Mutex
	keys []string
	idx  int

	model         string
	fallbackModel string
	maxRetries    int           // generic retries per credential
	backoff       time.Duration // fixed wait between generic retries
}

// NewRotator builds a rotator over an ordered, non-empty key list.
func NewRotator(keys []string, model string) *Rotator {
	if model == "" {
		model = FallbackModel
	}
	return &Rotator{
		keys:          keys,
		model:         model,
		fallbackModel: FallbackModel,
		maxRetries:    2,
		backoff:       2 * time.Second,
	}
}

// Size returns the credential pool size.
func (r *Rotator) Size() int { return len(r.keys) }

// Current returns the credential under the cursor.
func (r *Rotator) Current() Credential {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Credential{Key: r.keys[r.idx], Index: r.idx}
}

// Index returns the cursor position. Exposed for tests and metrics.
func (r *Rotator) Index() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.idx
}

// advance moves the cursor past from, wrapping around. If another call
// already advanced it, the move is skipped — one rotation per observed
// failure is enough for the whole process.
func (r *Rotator) advance(from int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.idx == from {
		r.idx = (r.idx + 1) % len(r.keys)
	}
}

// CallWithRotation runs op until it succeeds or the total bound of
// pool-size × (maxRetries + 1) attempts is spent. op receives the current
// credential and the model identifier to use.
//
// Per failure class:
//   - rate_limited, pool > 1: advance the credential, reset the retry
//     budget, try again immediately. Rotation does not consume retries.
//     After every credential has been tried once, surface the error.
//   - invalid_request naming an unavailable model: substitute the fallback
//     model once and retry immediately with the same credential.
//   - transient or fatal: wait the fixed backoff and retry the same
//     credential, at most maxRetries times.
//   - anything else: terminal, surface immediately.
//
// The error surfaced is always the last classified one, never a generic
// "exhausted" message.
func CallWithRotation[T any](ctx context.Context, r *Rotator, op func(ctx context.Context, key, model string) (T, error)) (T, error) {
	var zero T
	var lastErr error

	model := r.model
	modelSwapped := false
	rotations := 0
	attempt := 0

	for {
		cred := r.Current()
		result, err := op(ctx, cred.Key, model)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if isUnavailableModel(err) && !modelSwapped && model != r.fallbackModel {
			slog.Warn("model unavailable, substituting fallback",
				slog.String("model", model),
				slog.String("fallback", r.fallbackModel))
			model = r.fallbackModel
			modelSwapped = true
			continue
		}

		switch ClassifyAPIError(err) {
		case engine.ClassRateLimited:
			if r.Size() > 1 && rotations < r.Size()-1 {
				slog.Warn("credential rate-limited, rotating",
					slog.Int("index", cred.Index),
					slog.Any("error", err))
				r.advance(cred.Index)
				rotations++
				attempt = 0
				continue
			}
			if r.Size() > 1 {
				// Full wrap-around: leave the cursor where the run found it.
				r.advance(cred.Index)
				return zero, lastErr
			}
			fallthrough // single credential: treat like a transient failure

		case engine.ClassTransient, engine.ClassFatal:
			if attempt < r.maxRetries {
				attempt++
				slog.Debug("model call failed, retrying",
					slog.Int("attempt", attempt),
					slog.Any("error", err))
				select {
				case <-time.After(r.backoff):
				case <-ctx.Done():
					return zero, ctx.Err()
				}
				continue
			}
			return zero, lastErr

		default:
			return zero, lastErr
		}
	}
}
