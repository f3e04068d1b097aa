// Package provider hosts the resilient fetch primitive and the adapters for
// the two upstream data sources.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
)

// HTTPError reports a non-success response status.
type HTTPError struct {
	Status int
	URL    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.Status, e.URL)
}

// Policy bundles the per-attempt timeout with the bounded retry/backoff
// settings shared by both adapters.
type Policy struct {
	MaxRetries   int
	InitialDelay time.Duration
	BackoffCap   time.Duration
	Timeout      time.Duration
}

// DefaultPolicy returns the fetch policy both adapters use unless configured
// otherwise: at most one retry, 750ms initial delay doubling up to 3s, 12s
// per-attempt timeout.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:   1,
		InitialDelay: 750 * time.Millisecond,
		BackoffCap:   3 * time.Second,
		Timeout:      12 * time.Second,
	}
}

func (p Policy) withDefaults() Policy {
	def := DefaultPolicy()
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = def.InitialDelay
	}
	if p.BackoffCap <= 0 {
		p.BackoffCap = def.BackoffCap
	}
	if p.Timeout <= 0 {
		p.Timeout = def.Timeout
	}
	return p
}

// FetchJSON performs a GET with its own timeout-scoped context and decodes
// the response body into dest. A fresh cancellation is created per call so
// retried attempts never share one.
func FetchJSON(ctx context.Context, client *http.Client, url string, header http.Header, timeout time.Duration, dest any) error {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{Status: resp.StatusCode, URL: url}
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Retryable classifies a failure: server-side trouble (5xx), rate limiting
// (429), and network/timeout/abort flavored errors are worth another attempt;
// everything else propagates immediately.
func Retryable(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status >= 500 || httpErr.Status == http.StatusTooManyRequests
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, hint := range []string{"timeout", "network", "connection", "abort", "unexpected eof"} {
		if strings.Contains(msg, hint) {
			return true
		}
	}
	return false
}

// WithRetry invokes op, retrying retryable failures up to policy.MaxRetries
// additional attempts. The backoff delay applies before each retry, doubling
// up to the cap; the first attempt runs immediately.
func WithRetry[T any](ctx context.Context, policy Policy, op func(context.Context) (T, error)) (T, error) {
	policy = policy.withDefaults()
	delay := policy.InitialDelay
	var zero T
	for attempt := 0; ; attempt++ {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		if attempt >= policy.MaxRetries || !Retryable(err) {
			return zero, err
		}
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if delay > policy.BackoffCap {
			delay = policy.BackoffCap
		}
	}
}
