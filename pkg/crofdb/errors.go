package crofdb

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when the server reports the key as missing.
var ErrNotFound = errors.New("key does not exist")

// NetworkError represents a failure to complete the HTTP round trip.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("crofdb %s: request failed: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ServerError is returned when the server answers with a non-2xx status.
// Body holds the raw response text.
type ServerError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("crofdb %s: status %d: %s", e.Op, e.StatusCode, e.Body)
}

// ParseError is returned when a successful response cannot be decoded.
type ParseError struct {
	Op   string
	Body string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("crofdb %s: decode response: %v", e.Op, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// notFoundError ties a missing key to ErrNotFound.
type notFoundError struct {
	Key string
}

func (e *notFoundError) Error() string {
	return fmt.Sprintf("crofdb getKey: %q: %v", e.Key, ErrNotFound)
}

func (e *notFoundError) Unwrap() error {
	return ErrNotFound
}
