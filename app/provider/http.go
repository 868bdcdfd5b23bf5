package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dmaslov/media-scrape/app/retry"
)

// getBytes performs a GET with the shared retry policy and per-call timeout.
// Non-2xx responses surface as retry.StatusError so the policy can tell
// rate limits and server faults apart from permanent client errors.
func getBytes(ctx context.Context, client *http.Client, policy retry.Policy, timeout time.Duration,
	url string, header http.Header, userAgent string) ([]byte, error) {

	var body []byte

	err := policy.Do(ctx, func(ctx context.Context) error {
		timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("User-Agent", userAgent)
		for key, values := range header {
			for _, value := range values {
				req.Header.Set(key, value)
			}
		}

		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to fetch URL: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &retry.StatusError{Code: resp.StatusCode, Status: resp.Status}
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return body, nil
}

func getJSON(ctx context.Context, client *http.Client, policy retry.Policy, timeout time.Duration,
	url string, header http.Header, userAgent string, v any) error {

	body, err := getBytes(ctx, client, policy, timeout, url, header, userAgent)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}
