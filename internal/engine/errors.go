package engine

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// Class tags a failure for cascade and retry decisions.
// Classes are never conflated: a rate limit is not a timeout,
// and a blocked page is not a malformed request.
type Class int

const (
	ClassTransient Class = iota // timeout, connection reset, DNS, 5xx
	ClassRateLimited
	ClassInvalidRequest // 4xx other than 429
	ClassBlocked        // explicit denial or empty-body heuristic
	ClassFatal          // everything unclassified
)

func (c Class) String() string {
	switch c {
	case ClassTransient:
		return "transient"
	case ClassRateLimited:
		return "rate_limited"
	case ClassInvalidRequest:
		return "invalid_request"
	case ClassBlocked:
		return "blocked"
	default:
		return "fatal"
	}
}

// StatusError wraps a non-success HTTP status code.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// BlockedError marks content rejected by the blocked/denied heuristic
// (some proxies return a 200 with a denial page instead of an error).
type BlockedError struct {
	Strategy string
	Reason   string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("%s: blocked: %s", e.Strategy, e.Reason)
}

// ExhaustedError is raised when every configured strategy has failed.
// It names each attempted strategy in order so the caller can report
// "no route worked" instead of a single misleading underlying error.
type ExhaustedError struct {
	URL       string
	Attempted []string
	LastErr   error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all strategies exhausted for %s (tried: %s): %v",
		e.URL, strings.Join(e.Attempted, ", "), e.LastErr)
}

func (e *ExhaustedError) Unwrap() error { return e.LastErr }

// ErrNoTranscript is the non-error terminal state for video URLs that
// simply have no captions. Distinct from a provider failure.
var ErrNoTranscript = errors.New("no transcript available")

// ErrInvalidVideoURL is returned when no video identifier can be parsed.
var ErrInvalidVideoURL = errors.New("invalid video URL")

// Classify maps an error onto the failure taxonomy.
func Classify(err error) Class {
	if err == nil {
		return ClassFatal
	}

	var blocked *BlockedError
	if errors.As(err, &blocked) {
		return ClassBlocked
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusTooManyRequests:
			return ClassRateLimited
		case statusErr.StatusCode >= 500:
			return ClassTransient
		case statusErr.StatusCode >= 400:
			return ClassInvalidRequest
		}
		return ClassFatal
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ClassTransient
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ClassTransient
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ClassTransient
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ClassTransient
	}

	return ClassFatal
}
