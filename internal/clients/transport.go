// internal/clients/transport.go
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	// ErrNotFound means the collaborator answered authoritatively that
	// the record does not exist. Never retried.
	ErrNotFound = errors.New("record not found")
	// ErrUnavailable means the collaborator could not be reached or
	// answered with a server error after all attempts.
	ErrUnavailable = errors.New("collaborator unavailable")
)

const (
	maxAttempts    = 3
	attemptTimeout = 5 * time.Second
	retryBackoff   = 200 * time.Millisecond
)

// doJSON performs an HTTP request against a collaborator service with
// bounded retries and a per-attempt timeout. Client errors (4xx) are
// terminal; network failures and 5xx answers are retried. On success
// the response body is decoded into out when out is non-nil.
func doJSON(ctx context.Context, method, url string, reqBody, out any) error {
	var payload []byte
	if reqBody != nil {
		var err error
		payload, err = json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
			case <-time.After(retryBackoff):
			}
		}

		body, retryable, err := attemptJSON(ctx, method, url, payload)
		if err == nil {
			if out == nil || len(body) == 0 {
				return nil
			}
			if err := json.Unmarshal(body, out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
			return nil
		}
		if !retryable {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("%w: %d attempts failed: %v", ErrUnavailable, maxAttempts, lastErr)
}

func attemptJSON(ctx context.Context, method, url string, payload []byte) (body []byte, retryable bool, err error) {
	ctx, cancel := context.WithTimeout(ctx, attemptTimeout)
	defer cancel()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, false, fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, ErrNotFound
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("status %d", resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, false, fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read response: %w", err)
	}
	return body, false, nil
}
