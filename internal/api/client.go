// Package api is the HTTP client for the CodeMate REST endpoints. It owns the
// session cookie jar, the error taxonomy, and the prioritized fallback-path
// chains some endpoints require.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/ArponRoy7/codemate-go/internal/metrics"
)

// ErrUnauthorized is returned for any 401 response. The session probe treats
// it as "not authenticated"; everything else treats it as a redirect-to-login
// signal.
var ErrUnauthorized = errors.New("api: not authenticated")

// Error is a server-rejected request (4xx/5xx other than 401). Message holds
// the server's message field when one was present.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: server returned status %d", e.Status)
	}
	return fmt.Sprintf("api: server returned status %d: %s", e.Status, e.Message)
}

// Client talks to the CodeMate API. The zero value is not usable; construct
// with New.
type Client struct {
	base string
	http *http.Client
}

// New creates a Client for the given base URL. The client carries a cookie
// jar so the session cookie set by login/signup rides along on every call.
func New(baseURL string, timeout time.Duration) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
	}
}

// do executes one request against base+path. A non-nil body is sent as JSON;
// a non-nil out receives the decoded response body. 401 maps to
// ErrUnauthorized, other non-2xx statuses to *Error.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("api: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.APIRequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.APIFailures.WithLabelValues("transport").Inc()
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.APIFailures.WithLabelValues("transport").Inc()
		return fmt.Errorf("api: read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		metrics.APIFailures.WithLabelValues("unauthorized").Inc()
		return ErrUnauthorized
	}
	if resp.StatusCode >= 400 {
		metrics.APIFailures.WithLabelValues("server").Inc()
		return &Error{Status: resp.StatusCode, Message: serverMessage(data)}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("api: decode response: %w", err)
		}
	}
	return nil
}

// tryPaths executes the same request against an ordered list of candidate
// paths. The first attempt that does not error wins. A 401 aborts the chain
// immediately since re-authentication will not improve on another path; any
// other failure falls through to the next candidate, and the last error is
// returned once the list is exhausted.
func (c *Client) tryPaths(ctx context.Context, method string, paths []string, query url.Values, body, out interface{}) error {
	var last error
	for _, p := range paths {
		err := c.do(ctx, method, p, query, body, out)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrUnauthorized) {
			return err
		}
		last = err
	}
	return last
}

// serverMessage extracts the human message from an error body. The backend
// uses "message" on most routes and "error" on a few.
func serverMessage(data []byte) string {
	var payload struct {
		Message string `json:"message"`
		Err     string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Err != "" {
			return payload.Err
		}
	}
	const max = 200
	s := strings.TrimSpace(string(data))
	if len(s) > max {
		s = s[:max]
	}
	return s
}
