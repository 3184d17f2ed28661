// Package backend is the single request layer toward the airline REST API.
// Every call is scoped by a session.Session passed in by the caller; the
// tenant and bearer headers are added by interceptors, never by call sites.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/airline-booking-bff/internal/observability"
	"github.com/robertarktes/airline-booking-bff/internal/session"
)

type Client struct {
	baseURL      string
	httpClient   *http.Client
	interceptors []Interceptor
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithInterceptors appends interceptors after the default ones.
func WithInterceptors(in ...Interceptor) Option {
	return func(c *Client) { c.interceptors = append(c.interceptors, in...) }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{},
		interceptors: []Interceptor{SessionHeaders, AcceptLanguage, TraceContext},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do sends in as a JSON body (when non-nil) and decodes a 2xx response into
// out (when non-nil). Nothing is retried.
func (c *Client) do(ctx context.Context, sess session.Session, op, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.Wrapf(err, "%s: encode request", op)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Wrapf(err, "%s: build request", op)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for _, intercept := range c.interceptors {
		intercept(req, sess)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		observability.BackendRequestDuration.WithLabelValues(op, "error").Observe(time.Since(start).Seconds())
		return errors.Mark(errors.Wrapf(err, "%s", op), ErrTransport)
	}
	defer resp.Body.Close()
	observability.BackendRequestDuration.WithLabelValues(op, strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Wrapf(newAPIError(resp.StatusCode, readMessage(resp.Body)), "%s", op)
	}

	if out == nil {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "%s: read response", op), ErrTransport)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "%s: decode response", op)
	}
	return nil
}

// readMessage extracts the backend's error text. JSON bodies with a
// "message" or "error" field are unwrapped, anything else is used verbatim.
func readMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil {
		return ""
	}
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(data, &envelope) == nil {
		if envelope.Message != "" {
			return envelope.Message
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	}
	return strings.TrimSpace(string(data))
}
