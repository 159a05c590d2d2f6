// Package llm holds what the model provider adapters share: HTTP status
// classification and image encoding.
package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/rfqx/internal/core/domain"
)

// maxBodyInError bounds how much of a provider error body ends up in a message.
const maxBodyInError = 512

// StatusError is a non-2xx provider response.
type StatusError struct {
	Provider   string
	StatusCode int
	Message    string

	// RetryAfter is the server's Retry-After hint, zero when absent.
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if len(msg) > maxBodyInError {
		msg = msg[:maxBodyInError] + "..."
	}
	if msg == "" {
		return fmt.Sprintf("%s: status %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, msg)
}

// Unwrap maps the status onto the transient sentinels so callers can use
// errors.Is(err, domain.ErrRateLimited).
func (e *StatusError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusTooManyRequests:
		return domain.ErrRateLimited
	case e.StatusCode == http.StatusRequestTimeout,
		e.StatusCode == 529, // Anthropic "overloaded"
		e.StatusCode >= 500:
		return domain.ErrServiceUnavailable
	default:
		return nil
	}
}

// Retryable reports whether the request may succeed if repeated.
func (e *StatusError) Retryable() bool {
	return e.Unwrap() != nil
}

// NewStatusError builds a StatusError from a response status, body and
// headers. header may be nil.
func NewStatusError(provider string, status int, body string, header http.Header) *StatusError {
	e := &StatusError{Provider: provider, StatusCode: status, Message: body}
	if header != nil {
		e.RetryAfter = ParseRetryAfter(header.Get("Retry-After"))
	}
	return e
}

// ParseRetryAfter reads a Retry-After value in seconds or as an HTTP date.
func ParseRetryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// IsTransient reports whether err is worth retrying: rate limits, server
// errors, network failures and per-call deadlines. Cancellation is not.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, domain.ErrRateLimited) || errors.Is(err, domain.ErrServiceUnavailable) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// RetryAfter returns the server's backoff hint carried by err, if any.
func RetryAfter(err error) time.Duration {
	var se *StatusError
	if errors.As(err, &se) {
		return se.RetryAfter
	}
	return 0
}

// Base64 encodes image bytes for JSON payloads.
func Base64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DataURL encodes an image as a data: URL.
func DataURL(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = "image/png"
	}
	return "data:" + mimeType + ";base64," + Base64(data)
}
