package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/alexanderramin/focussync/internal/contract"
)

// Client talks to a running focussync daemon's control API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient accepts either a host:port address or a full URL.
func NewClient(addr string) *Client {
	base := strings.TrimRight(addr, "/")
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return &Client{baseURL: base, http: &http.Client{Timeout: 5 * time.Second}}
}

func (c *Client) Status(ctx context.Context) (*contract.SessionStatus, error) {
	var s contract.SessionStatus
	if err := c.do(ctx, http.MethodGet, "/status", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) Toggle(ctx context.Context) (*contract.SessionStatus, error) {
	var s contract.SessionStatus
	if err := c.do(ctx, http.MethodPost, "/toggle", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) SetPreferences(ctx context.Context, req contract.PreferencesRequest) (*contract.SessionStatus, error) {
	var s contract.SessionStatus
	if err := c.do(ctx, http.MethodPut, "/preferences", req, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("contacting focussync daemon at %s (is `focussync run` running?): %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var e contract.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&e); err == nil && e.Error != "" {
			return fmt.Errorf("%s %s: %s", method, path, e.Error)
		}
		return fmt.Errorf("%s %s: %s", method, path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
