package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client is an authenticated client of the Lair API.
type Client struct {
	http *resty.Client
}

// NewClient creates a client for the configured server.
func NewClient(cfg Config) (*Client, error) {
	base, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL %q: %w", cfg.URL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid server URL %q: scheme must be http or https", cfg.URL)
	}

	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}

	rc := resty.New().
		SetBaseURL(strings.TrimSuffix(base.String(), "/")+"/api").
		SetTimeout(time.Duration(timeout)*time.Second).
		SetHeader("Accept", "application/json").
		SetRetryCount(0).
		SetDisableWarn(true)
	if cfg.Token != "" {
		rc.SetAuthToken(cfg.Token)
	}

	return &Client{http: rc}, nil
}

// request describes one API call.
type request struct {
	method    string
	path      string
	query     url.Values
	body      any
	expected  int
	operation string
	out       any
}

// do sends the request and decodes the response body into req.out when the
// status matches. The returned header is only valid on success.
func (c *Client) do(ctx context.Context, req request) (http.Header, error) {
	r := c.http.R().SetContext(ctx)
	if len(req.query) > 0 {
		r.SetQueryParamsFromValues(req.query)
	}
	if req.body != nil {
		r.SetHeader("Content-Type", "application/json").SetBody(req.body)
	}

	res, err := r.Execute(req.method, req.path)
	if err != nil {
		return nil, fmt.Errorf("could not %s: %w", req.operation, err)
	}

	if res.StatusCode() != req.expected {
		return nil, &UnexpectedResponseError{
			Operation:  req.operation,
			StatusCode: res.StatusCode(),
			Expected:   req.expected,
			Body:       res.String(),
		}
	}

	if req.out != nil && len(strings.TrimSpace(res.String())) > 0 {
		if err := c.http.JSONUnmarshal(res.Body(), req.out); err != nil {
			return nil, fmt.Errorf("could not %s: failed to decode response: %w", req.operation, err)
		}
	}

	return res.Header(), nil
}
