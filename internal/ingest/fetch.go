package ingest

import (
	"context"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
)

// Fetcher downloads source texts and cover images over HTTP with
// retries on transient failures.
type Fetcher struct {
	client *resty.Client
}

// NewFetcher builds a Fetcher with the given per-request timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(3).
		SetRetryWaitTime(2 * time.Second).
		SetRetryMaxWaitTime(10 * time.Second).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			code := resp.StatusCode()
			return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
		})
	return &Fetcher{client: client}
}

// NewFetcherWithClient wraps an existing resty client. Tests use it to
// point the fetcher at a local server.
func NewFetcherWithClient(client *resty.Client) *Fetcher {
	return &Fetcher{client: client}
}

// Text fetches url and returns its body as UTF-8 text.
func (f *Fetcher) Text(ctx context.Context, url string) (string, error) {
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", fmt.Errorf("fetch text %s: %w", url, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("fetch text %s: unexpected status %d", url, resp.StatusCode())
	}
	body := resp.Body()
	if !utf8.Valid(body) {
		return "", fmt.Errorf("fetch text %s: body is not valid UTF-8", url)
	}
	return string(body), nil
}

// Download fetches url and returns the raw body with its content type.
func (f *Fetcher) Download(ctx context.Context, url string) ([]byte, string, error) {
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, "", fmt.Errorf("download %s: %w", url, err)
	}
	if resp.IsError() {
		return nil, "", fmt.Errorf("download %s: unexpected status %d", url, resp.StatusCode())
	}
	return resp.Body(), resp.Header().Get("Content-Type"), nil
}
