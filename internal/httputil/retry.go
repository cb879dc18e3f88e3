// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the URL source and the
// NLP service client.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"time"

	"github.com/pdiddy/docgraph/pkg/types"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// retryable responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = 2 * time.Second

const defaultMaxRetries = 3

// Retryable reports whether an HTTP status is worth retrying: 429 and any
// 5xx except 501 Not Implemented.
func Retryable(status int) bool {
	if status == http.StatusTooManyRequests {
		return true
	}
	return status >= 500 && status != http.StatusNotImplemented
}

// DoWithRetry executes an HTTP request and retries on retryable statuses
// with exponential backoff. The delay starts at RetryBaseDelay and doubles
// each attempt.
//
// A negative maxRetries selects the default (3) and 0 disables retries. On
// each retry the response
// body is drained and closed before sleeping. If the context is cancelled
// during a backoff wait the function returns ctx.Err(). After exhausting
// retries the last response is returned so the caller can inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries < 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		r := req.Clone(ctx)
		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("rewinding request body: %w", err)
			}
			r.Body = body
		}

		resp, err := client.Do(r)
		if err != nil {
			return nil, err
		}

		if !Retryable(resp.StatusCode) || attempt >= maxRetries {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// Failure converts a transport error or a non-2xx response status into an
// ExtractionFailure. Timeouts and connection errors are retryable, as are
// retryable statuses. A nil error with a 2xx status returns nil.
func Failure(err error, status int) error {
	if err != nil {
		var netErr net.Error
		switch {
		case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
			return &types.ExtractionFailure{Kind: types.FailureTimeout, Retryable: true, Err: err}
		case errors.Is(err, context.Canceled):
			return &types.ExtractionFailure{Kind: types.FailureNetwork, Retryable: false, Err: err}
		default:
			return &types.ExtractionFailure{Kind: types.FailureNetwork, Retryable: true, Err: err}
		}
	}
	if status >= 200 && status < 300 {
		return nil
	}
	return &types.ExtractionFailure{
		Kind:      types.FailureNetwork,
		Retryable: Retryable(status),
		Err:       fmt.Errorf("HTTP %d %s", status, http.StatusText(status)),
	}
}

// NewClient returns an http.Client with the configured timeout.
func NewClient(cfg types.HTTPConfig) *http.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
