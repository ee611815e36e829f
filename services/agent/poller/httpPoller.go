package poller

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
)

type httpPoller struct {
	client *http.Client
}

// NewHTTPPoller creates a new HTTP-based poller with a default timeout
func NewHTTPPoller(timeout time.Duration) *httpPoller {
	return &httpPoller{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Poll performs an HTTP GET to the provided URL and extracts exactly the JSON sub-path (gjson syntax)
func (p *httpPoller) Poll(ctx context.Context, url string, path string) (gjson.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return gjson.Result{}, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return gjson.Result{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return gjson.Result{}, errStatusNotOK(resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, err
	}

	result := gjson.GetBytes(body, path)
	if !result.Exists() {
		return gjson.Result{}, errPathNotFound(path)
	}

	return result, nil
}

// IsInterfaceNil returns true if the value under the interface is nil
func (p *httpPoller) IsInterfaceNil() bool {
	return p == nil
}
