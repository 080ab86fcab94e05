// Package external holds the HTTP adapters for the weather and news collaborators.
package external

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Chative-Personal-Assistant/agent/contract"
)

const maxResponseSizeBytes = 2 << 20

// ErrNotFound marks a 404 from the upstream, e.g. an unknown city.
var ErrNotFound = errors.New("resource not found upstream")

type options struct {
	httpClient *http.Client
}

// Option customizes the HTTP adapters.
type Option func(*options)

func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		if client != nil {
			o.httpClient = client
		}
	}
}

func newHTTPClient(timeout time.Duration, opts []Option) *http.Client {
	o := options{httpClient: &http.Client{Timeout: timeout}}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o.httpClient
}

func parseBaseURL(raw string, name string) (string, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(raw), "/")
	if baseURL == "" {
		return "", fmt.Errorf("%w: %s base url is required", contractx.ErrValidation, name)
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return "", fmt.Errorf("%w: invalid %s base url: %v", contractx.ErrValidation, name, err)
	}
	return baseURL, nil
}

// getJSON issues a GET and decodes a 2xx body into out. Transport failures and
// 5xx/401/429 statuses are ErrExternalUnavailable; other non-2xx statuses and
// undecodable bodies are ErrExternalBadResponse.
func getJSON(ctx context.Context, client *http.Client, endpoint string, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", contractx.ErrExternalBadResponse, err)
	}
	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", contractx.ErrExternalUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", contractx.ErrExternalUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %w: status=%d", contractx.ErrExternalBadResponse, ErrNotFound, resp.StatusCode)
	case resp.StatusCode >= http.StatusInternalServerError,
		resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status=%d body=%s", contractx.ErrExternalUnavailable, resp.StatusCode, snippet(raw))
	case resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices:
		return fmt.Errorf("%w: status=%d body=%s", contractx.ErrExternalBadResponse, resp.StatusCode, snippet(raw))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", contractx.ErrExternalBadResponse, err)
	}
	return nil
}

func snippet(raw []byte) string {
	const limit = 256
	s := strings.TrimSpace(string(raw))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
