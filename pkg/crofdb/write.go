package crofdb

import "context"

const (
	opMakeKey = "makeKey"
	opDelKey  = "delKey"
	opResetDB = "resetDB"

	successBody = "success"
)

// WriteResult is the outcome of a write the server accepted with a 2xx status.
// OK is true only when the server answered exactly "success"; Message keeps the
// raw text either way.
type WriteResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

type makeKeyRequest struct {
	credentials
	Keyname    string `json:"keyname"`
	Keycontent string `json:"keycontent"`
}

type delKeyRequest struct {
	credentials
	Keyname string `json:"keyname"`
}

// Create stores value under key.
func (c *Client) Create(ctx context.Context, key, value string) (WriteResult, error) {
	return c.write(ctx, opMakeKey, makeKeyRequest{
		credentials: c.credentials(),
		Keyname:     key,
		Keycontent:  value,
	})
}

// Delete removes key.
func (c *Client) Delete(ctx context.Context, key string) (WriteResult, error) {
	return c.write(ctx, opDelKey, delKeyRequest{
		credentials: c.credentials(),
		Keyname:     key,
	})
}

// Reset deletes every key in the location.
func (c *Client) Reset(ctx context.Context) (WriteResult, error) {
	return c.write(ctx, opResetDB, c.credentials())
}

func (c *Client) write(ctx context.Context, op string, body any) (WriteResult, error) {
	raw, err := c.post(ctx, op, body)
	if err != nil {
		return WriteResult{}, err
	}

	text := string(raw)
	res := WriteResult{OK: text == successBody, Message: text}
	if !res.OK {
		c.log.WarnObj("crofdb write not acknowledged", "crofdb_write", map[string]any{
			"op":       op,
			"location": c.username,
			"message":  responseSnippet(raw),
		})
	}
	return res, nil
}
