package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Response is the raw result of one webhook POST.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       string
}

// Transport sends one request and reports the raw response. It never
// retries; delivery policy lives above it.
type Transport interface {
	Send(ctx context.Context, url string, body []byte, header http.Header) (*Response, error)
}

// HTTPTransport is the production Transport on a tuned http.Client.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport creates an HTTP transport with the given per-request
// timeout. In-flight requests are bounded by this timeout, not by retry
// cancellation.
func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func (t *HTTPTransport) Send(ctx context.Context, url string, body []byte, header http.Header) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       string(b),
	}, nil
}
