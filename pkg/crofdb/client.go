package crofdb

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samvad-hq/crofdb-go/pkg/httpclient"
)

const (
	// DefaultBaseURL is the production endpoint of the hosted database.
	DefaultBaseURL = "https://database.nahcrof.com"
	// DefaultTimeout bounds a single request when no timeout is configured.
	DefaultTimeout = 30 * time.Second

	requestIDHeader = "X-Request-Id"
	userAgent       = "crofdb-go"
)

// Client talks to a single database location using one credential pair.
type Client struct {
	username string
	apiKey   string
	baseURL  string
	http     httpclient.Client
	log      Logger
}

type options struct {
	baseURL    string
	timeout    time.Duration
	retryCount int
	retryWait  time.Duration
	userAgent  string
	http       httpclient.Client
	log        Logger
}

// Option configures a Client.
type Option func(*options)

// WithBaseURL overrides DefaultBaseURL.
func WithBaseURL(baseURL string) Option {
	return func(o *options) { o.baseURL = baseURL }
}

// WithTimeout sets the per-request timeout of the default transport.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithRetries makes the default transport retry failed round trips using
// resty's default retry conditions. Zero disables retries.
func WithRetries(count int, wait time.Duration) Option {
	return func(o *options) {
		o.retryCount = count
		o.retryWait = wait
	}
}

// WithUserAgent sets the User-Agent header of the default transport.
func WithUserAgent(ua string) Option {
	return func(o *options) { o.userAgent = ua }
}

// WithHTTPClient replaces the default resty transport. Timeout, retry and
// user agent options are ignored when a transport is supplied.
func WithHTTPClient(c httpclient.Client) Option {
	return func(o *options) { o.http = c }
}

// WithLogger attaches a structured logger.
func WithLogger(log Logger) Option {
	return func(o *options) { o.log = log }
}

// New returns a Client for the given credentials. Credentials are used as-is.
func New(username, apiKey string, opts ...Option) *Client {
	o := options{
		baseURL:   DefaultBaseURL,
		timeout:   DefaultTimeout,
		userAgent: userAgent,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	base := strings.TrimRight(strings.TrimSpace(o.baseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}

	log := ensureLogger(o.log)
	transport := o.http
	if transport == nil {
		transport = httpclient.NewRestyClientWithOptions(httpclient.Options{
			Timeout:    o.timeout,
			RetryCount: o.retryCount,
			RetryWait:  o.retryWait,
			UserAgent:  o.userAgent,
			Logger:     log,
		})
	}

	return &Client{
		username: username,
		apiKey:   apiKey,
		baseURL:  base,
		http:     transport,
		log:      log,
	}
}

// Location returns the database location (username) the client is bound to.
func (c *Client) Location() string { return c.username }

// BaseURL returns the endpoint root requests are sent to.
func (c *Client) BaseURL() string { return c.baseURL }

// credentials is embedded in every POST body.
type credentials struct {
	Location string `json:"location"`
	Token    string `json:"token"`
}

func (c *Client) credentials() credentials {
	return credentials{Location: c.username, Token: c.apiKey}
}

func (c *Client) endpoint(op string) string {
	return c.baseURL + "/" + op
}

// get issues a GET to op with the credentials added to query.
func (c *Client) get(ctx context.Context, op string, query url.Values) ([]byte, error) {
	if query == nil {
		query = url.Values{}
	}
	query.Set("location", c.username)
	query.Set("token", c.apiKey)

	reqID := uuid.NewString()
	start := time.Now()
	resp, err := c.http.Get(ctx, c.endpoint(op), query, map[string]string{requestIDHeader: reqID})
	return c.check(op, reqID, start, resp, err)
}

// post issues a POST to op with body encoded as JSON.
func (c *Client) post(ctx context.Context, op string, body any) ([]byte, error) {
	reqID := uuid.NewString()
	start := time.Now()
	resp, err := c.http.PostJSON(ctx, c.endpoint(op), body, map[string]string{requestIDHeader: reqID})
	return c.check(op, reqID, start, resp, err)
}

// check maps transport and status failures onto the typed errors.
func (c *Client) check(op, reqID string, start time.Time, resp httpclient.Response, err error) ([]byte, error) {
	meta := map[string]any{
		"op":         op,
		"location":   c.username,
		"request_id": reqID,
		"elapsed_ms": time.Since(start).Milliseconds(),
	}

	if err != nil {
		meta["error"] = err.Error()
		c.log.ErrorObj("crofdb request failed", "crofdb_request", meta)
		return nil, &NetworkError{Op: op, Err: err}
	}

	body := resp.Body()
	status := resp.StatusCode()
	meta["status"] = status
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		meta["body"] = responseSnippet(body)
		c.log.WarnObj("crofdb request rejected", "crofdb_request", meta)
		return nil, &ServerError{Op: op, StatusCode: status, Body: string(body)}
	}

	c.log.DebugObj("crofdb request completed", "crofdb_request", meta)
	return body, nil
}

func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
