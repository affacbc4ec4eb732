// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages: a
// backoff loop for overloaded servers, a minimum-interval throttle and
// status checking.
package httputil

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// RetryBaseDelay is the first backoff delay when the server gives no
// Retry-After hint. Tests override it to avoid real sleeps.
var RetryBaseDelay = 10 * time.Second

// maxRetryAfter caps the delay a server may request through Retry-After.
const maxRetryAfter = 5 * time.Minute

const defaultMaxRetries = 5

// retryable reports whether a response status asks the client to come back
// later. dblp answers 429 when rate limited and 503 while overloaded.
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable
}

// DoWithRetry sends req and retries while the server answers 429 or 503.
// The wait before each retry is the server's Retry-After value in seconds
// when present, otherwise RetryBaseDelay doubled per attempt.
//
// A maxRetries of 0 selects the default of 5. Retried response bodies are
// drained and closed. A cancelled ctx ends the wait with ctx.Err(). Once
// the retries are used up the last response is returned unchanged for the
// caller to inspect.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}
		if !retryable(resp.StatusCode) || attempt >= maxRetries {
			return resp, nil
		}

		wait := backoff(resp.Header.Get("Retry-After"), attempt)
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		slog.Warn("server busy, retrying",
			"host", req.URL.Host, "status", resp.StatusCode, "wait", wait,
			"attempt", attempt+1, "max_retries", maxRetries)

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}

// backoff returns the delay before retry number attempt+1.
func backoff(retryAfter string, attempt int) time.Duration {
	if secs, err := strconv.Atoi(retryAfter); err == nil && secs >= 0 {
		return min(time.Duration(secs)*time.Second, maxRetryAfter)
	}
	return RetryBaseDelay << attempt
}
