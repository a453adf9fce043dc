package httpclient

import (
	"context"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

// Options tunes the underlying resty client.
type Options struct {
	Timeout    time.Duration
	RetryCount int
	RetryWait  time.Duration
	UserAgent  string
	// Logger receives resty's own warnings, such as retry attempts. Nil discards them.
	Logger Logger
}

// RestyClient adapts resty.Client to the httpclient.Client interface.
type RestyClient struct {
	client *resty.Client
}

// NewRestyClient creates a new RestyClient with the specified timeout.
func NewRestyClient(timeout time.Duration) *RestyClient {
	return NewRestyClientWithOptions(Options{Timeout: timeout})
}

// NewRestyClientWithOptions creates a RestyClient with timeout, retry and user agent settings.
func NewRestyClientWithOptions(opts Options) *RestyClient {
	return &RestyClient{client: newRestyBaseClient(opts)}
}

// newRestyBaseClient creates a new resty.Client from opts.
func newRestyBaseClient(opts Options) *resty.Client {
	c := resty.New()
	c.SetLogger(newRestyLogger(opts.Logger))
	if opts.Timeout > 0 {
		c.SetTimeout(opts.Timeout)
	}
	if opts.RetryCount > 0 {
		c.SetRetryCount(opts.RetryCount)
		if opts.RetryWait > 0 {
			c.SetRetryWaitTime(opts.RetryWait)
		}
	}
	if opts.UserAgent != "" {
		c.SetHeader("User-Agent", opts.UserAgent)
	}
	return c
}

// Get performs an HTTP GET request with the specified context, URL, query and headers.
func (r *RestyClient) Get(ctx context.Context, endpoint string, query url.Values, headers map[string]string) (Response, error) {
	req := r.client.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}
	resp, err := req.Get(endpoint)
	if err != nil {
		return nil, err
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// PostJSON performs an HTTP POST request with a JSON encoded body.
func (r *RestyClient) PostJSON(ctx context.Context, endpoint string, body any, headers map[string]string) (Response, error) {
	req := r.client.R().
		SetContext(ctx).
		SetBody(body)

	if len(headers) > 0 {
		req.SetHeaders(headers)
	}

	req.SetHeader("Content-Type", "application/json")

	resp, err := req.Post(endpoint)
	if err != nil {
		return nil, err
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte    { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int { return r.resp.StatusCode() }
