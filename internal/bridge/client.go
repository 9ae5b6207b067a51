package bridge

import (
	"context"
	"encoding/json"
	"fmt"

	"namedesk/internal/types"
)

// Client implements API over an Invoker. Every failure, whether in dispatch,
// transport or decoding, comes back as a failure envelope.
type Client struct {
	invoker Invoker
}

var _ API = (*Client)(nil)

// NewClient wraps invoker
func NewClient(invoker Invoker) *Client {
	return &Client{invoker: invoker}
}

func (c *Client) ListRecords(ctx context.Context) types.RecordsResult {
	out, err := invokeAs[types.RecordsResult](ctx, c.invoker, ListRecords)
	if err != nil {
		return types.RecordsFailure(err)
	}
	if out.Records == nil {
		out.Records = []types.Record{}
	}
	return out
}

func (c *Client) AddRecord(ctx context.Context, id, name string) types.Result {
	out, err := invokeAs[types.Result](ctx, c.invoker, AddRecord, id, name)
	if err != nil {
		return types.Failure(err)
	}
	return out
}

func (c *Client) DeleteRecord(ctx context.Context, id, name string) types.Result {
	out, err := invokeAs[types.Result](ctx, c.invoker, DeleteRecord, id, name)
	if err != nil {
		return types.Failure(err)
	}
	return out
}

func (c *Client) ListDirectory(ctx context.Context, path string) types.DirectoryResult {
	out, err := invokeAs[types.DirectoryResult](ctx, c.invoker, ListDirectory, path)
	if err != nil {
		return types.DirectoryFailure(err)
	}
	if out.Entries == nil {
		out.Entries = []string{}
	}
	return out
}

func invokeAs[T any](ctx context.Context, invoker Invoker, cmd Command, args ...any) (T, error) {
	var zero T
	if invoker == nil {
		return zero, fmt.Errorf("%w: no invoker", ErrNotReady)
	}
	raw, err := invoker.Invoke(ctx, cmd, args...)
	if err != nil {
		return zero, err
	}
	return decode[T](cmd, raw)
}

// decode accepts the envelope itself, a pointer to it, or its JSON encoding
func decode[T any](cmd Command, raw any) (T, error) {
	var out T
	if raw == nil {
		return out, fmt.Errorf("%s: empty response", cmd)
	}
	switch v := raw.(type) {
	case T:
		return v, nil
	case *T:
		if v == nil {
			return out, fmt.Errorf("%s: empty response", cmd)
		}
		return *v, nil
	case json.RawMessage:
		if err := json.Unmarshal(v, &out); err != nil {
			return out, fmt.Errorf("decode %s response: %w", cmd, err)
		}
		return out, nil
	case []byte:
		if err := json.Unmarshal(v, &out); err != nil {
			return out, fmt.Errorf("decode %s response: %w", cmd, err)
		}
		return out, nil
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return out, fmt.Errorf("decode %s response: %w", cmd, err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decode %s response: %w", cmd, err)
	}
	return out, nil
}
