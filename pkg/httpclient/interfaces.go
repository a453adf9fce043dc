package httpclient

import (
	"context"
	"net/url"
)

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	Get(ctx context.Context, endpoint string, query url.Values, headers map[string]string) (Response, error)
	// PostJSON encodes body as JSON and posts it to endpoint.
	PostJSON(ctx context.Context, endpoint string, body any, headers map[string]string) (Response, error)
}
