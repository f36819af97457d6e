// Package clients holds one thin wrapper per upstream travel API. Every
// client is context-aware, retries transient failures with bounded
// exponential backoff, and has a deterministic fallback generator used when
// it is unconfigured or the call ultimately fails.
package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/roamio/roamio-api/pkg/observability"
)

const (
	maxRetries  = 2
	backoffBase = 300 * time.Millisecond
)

// doJSON executes a request built by build, retrying transport errors and
// 5xx responses, and decodes the successful body into out. Non-5xx failures
// are permanent. The request is rebuilt per attempt so bodies are fresh.
func doJSON(ctx context.Context, hc *http.Client, provider string, build func(ctx context.Context) (*http.Request, error), out any) error {
	start := time.Now()
	defer func() {
		observability.ProviderCallDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	}()

	backoff := retry.WithMaxRetries(maxRetries, retry.NewExponential(backoffBase))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := build(ctx)
		if err != nil {
			return err
		}

		resp, err := hc.Do(req)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("%s request: %w", provider, err))
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
		if err != nil {
			return retry.RetryableError(fmt.Errorf("%s response read: %w", provider, err))
		}

		if resp.StatusCode >= http.StatusInternalServerError {
			return retry.RetryableError(fmt.Errorf("%s returned %d: %s", provider, resp.StatusCode, truncate(body)))
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("%s returned %d: %s", provider, resp.StatusCode, truncate(body))
		}

		if out == nil {
			return nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("%s response parse: %w", provider, err)
		}
		return nil
	})
}

func truncate(body []byte) string {
	const limit = 256
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
