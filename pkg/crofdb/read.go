package crofdb

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
)

const (
	opGetKey  = "getKey"
	opGetKeys = "getKeys"
	opGetAll  = "getAll"

	// keyNotFound is what the server puts in keycontent for a missing key.
	keyNotFound = "Key not found"
)

type getKeyResponse struct {
	Keycontent json.RawMessage `json:"keycontent"`
}

// Get returns the value stored under key. A missing key yields an error
// matching ErrNotFound. Non-string values (numbers, booleans, objects) are
// returned as their JSON text.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	query := url.Values{}
	query.Set("keyname", key)

	body, err := c.get(ctx, opGetKey, query)
	if err != nil {
		return "", err
	}

	var resp getKeyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &ParseError{Op: opGetKey, Body: string(body), Err: err}
	}
	if len(resp.Keycontent) == 0 || string(resp.Keycontent) == "null" {
		return "", &ParseError{Op: opGetKey, Body: string(body), Err: errors.New("keycontent missing from response")}
	}

	var content string
	if err := json.Unmarshal(resp.Keycontent, &content); err != nil {
		return string(resp.Keycontent), nil
	}
	if content == keyNotFound {
		return "", &notFoundError{Key: key}
	}
	return content, nil
}

// GetKeys returns the requested keys as reported by the server. Missing keys
// are passed through in whatever shape the server uses.
func (c *Client) GetKeys(ctx context.Context, keys ...string) (Entries, error) {
	query := url.Values{}
	query.Set("keynamenum", strconv.Itoa(len(keys)))
	for i, k := range keys {
		query.Set("key_"+strconv.Itoa(i), k)
	}

	body, err := c.get(ctx, opGetKeys, query)
	if err != nil {
		return nil, err
	}
	return decodeEntries(opGetKeys, body)
}

// GetAll returns every entry stored in the location.
func (c *Client) GetAll(ctx context.Context) (Entries, error) {
	body, err := c.get(ctx, opGetAll, nil)
	if err != nil {
		return nil, err
	}
	return decodeEntries(opGetAll, body)
}

func decodeEntries(op string, body []byte) (Entries, error) {
	var entries Entries
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, &ParseError{Op: op, Body: string(body), Err: err}
	}
	if entries == nil {
		entries = Entries{}
	}
	return entries, nil
}
