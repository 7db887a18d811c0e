// Package upstream is the HTTP client for the collaborator services: the
// curriculum and progress service, the quiz generator/grader and the auth
// service. Every response is checked against a JSON schema before it is
// decoded, and failures are reported as *TransportError or *SchemaError.
package upstream

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
	defaultTimeout    = 10 * time.Second
	defaultCookieName = "better-auth.session_token"
	maxResponseBytes  = 4 << 20
)

// Endpoints are the collaborator base URLs.
type Endpoints struct {
	Curriculum string
	Progress   string
	Quiz       string
	Auth       string
}

// Client talks to every collaborator.
type Client struct {
	endpoints  Endpoints
	client     *http.Client
	cookieName string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client. Its timeout is kept as is.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.client = &http.Client{Timeout: d, Transport: c.client.Transport}
	}
}

// WithCookieName sets the cookie the session token is forwarded in.
func WithCookieName(name string) Option {
	return func(c *Client) {
		c.cookieName = name
	}
}

// NewClient creates a collaborator client.
func NewClient(endpoints Endpoints, opts ...Option) *Client {
	c := &Client{
		endpoints: Endpoints{
			Curriculum: strings.TrimRight(endpoints.Curriculum, "/"),
			Progress:   strings.TrimRight(endpoints.Progress, "/"),
			Quiz:       strings.TrimRight(endpoints.Quiz, "/"),
			Auth:       strings.TrimRight(endpoints.Auth, "/"),
		},
		client:     &http.Client{Timeout: defaultTimeout},
		cookieName: defaultCookieName,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type call struct {
	op     string
	method string
	url    string
	body   any
	schema string
	cookie string
}

// do sends the request, maps failures to the error taxonomy, validates the
// body against the call's schema and returns it.
func (c *Client) do(ctx context.Context, cl call) ([]byte, int, error) {
	var reqBody io.Reader
	if cl.body != nil {
		data, err := json.Marshal(cl.body)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: marshal request: %w", cl.op, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, cl.url, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: create request: %w", cl.op, err)
	}
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cl.cookie != "" {
		req.AddCookie(&http.Cookie{Name: c.cookieName, Value: cl.cookie})
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, &TransportError{Op: cl.op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, &TransportError{Op: cl.op, Status: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		cause := fmt.Errorf("status %d", resp.StatusCode)
		if resp.StatusCode == http.StatusNotFound {
			cause = ErrNotFound
		}
		return body, resp.StatusCode, &TransportError{
			Op:     cl.op,
			Status: resp.StatusCode,
			Body:   excerpt(body),
			Err:    cause,
		}
	}

	if err := validate(cl.op, cl.schema, body); err != nil {
		return body, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

func decode(op string, body []byte, dst any) error {
	if err := json.Unmarshal(body, dst); err != nil {
		return &SchemaError{Op: op, Detail: err.Error(), Err: err}
	}
	return nil
}
