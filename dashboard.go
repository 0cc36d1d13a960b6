/*
photo-dash endpoint client

PUT <endpoint> with module payload, GET <endpoint>/quiet for quiet hours
*/

package sds011dash

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	USER_AGENT      = "photo-dash-sds011/1.0"
	REQUEST_TIMEOUT = 5 * time.Second
)

// StatusError is non 2xx reply
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
}

type DashboardClient struct {
	endpoint   string
	httpClient http.Client
}

func NewDashboardClient(endpoint string, timeout time.Duration) *DashboardClient {
	if timeout <= 0 {
		timeout = REQUEST_TIMEOUT
	}
	return &DashboardClient{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: http.Client{Timeout: timeout},
	}
}

func (c *DashboardClient) Endpoint() string {
	return c.endpoint
}

func (c *DashboardClient) do(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", USER_AGENT)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL, err)
	}
	if resp.StatusCode < 200 || 299 < resp.StatusCode {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, &StatusError{Method: req.Method, URL: req.URL.String(), StatusCode: resp.StatusCode}
	}
	return resp, nil
}

func (c *DashboardClient) FetchQuietHours(ctx context.Context) (QuietWindow, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/quiet", nil)
	if err != nil {
		return QuietWindow{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return QuietWindow{}, err
	}
	defer resp.Body.Close()

	var window QuietWindow
	if err := json.NewDecoder(resp.Body).Decode(&window); err != nil {
		return QuietWindow{}, fmt.Errorf("failed to decode quiet hours: %w", err)
	}
	return window, nil
}

func (c *DashboardClient) Deliver(ctx context.Context, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}
