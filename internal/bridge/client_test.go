package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"namedesk/internal/types"
)

type invokerFunc func(ctx context.Context, cmd Command, args ...any) (any, error)

func (f invokerFunc) Invoke(ctx context.Context, cmd Command, args ...any) (any, error) {
	return f(ctx, cmd, args...)
}

func TestClientConvertsDispatchErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := NewClient(NewDispatcher(nil))

	recs := c.ListRecords(ctx)
	if recs.Success || !strings.Contains(recs.Error, "not ready") || recs.Records == nil {
		t.Errorf("ListRecords = %+v", recs)
	}
	if res := c.AddRecord(ctx, "a", "b"); res.Success || res.Error == "" {
		t.Errorf("AddRecord = %+v", res)
	}
	if res := c.DeleteRecord(ctx, "a", "b"); res.Success || res.Error == "" {
		t.Errorf("DeleteRecord = %+v", res)
	}
	dir := c.ListDirectory(ctx, "/")
	if dir.Success || dir.Entries == nil {
		t.Errorf("ListDirectory = %+v", dir)
	}
}

func TestClientDecodesEnvelopes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name string
		raw  any
	}{
		{"value", types.RecordsResult{Success: true, Records: []types.Record{{ID: "1", Name: "A"}}}},
		{"pointer", &types.RecordsResult{Success: true, Records: []types.Record{{ID: "1", Name: "A"}}}},
		{"raw json", json.RawMessage(`{"success":true,"records":[{"id":"1","name":"A"}]}`)},
		{"map", map[string]any{"success": true, "records": []any{map[string]any{"id": "1", "name": "A"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := NewClient(invokerFunc(func(context.Context, Command, ...any) (any, error) { return tt.raw, nil }))
			got := c.ListRecords(ctx)
			if !got.Success || len(got.Records) != 1 || got.Records[0] != (types.Record{ID: "1", Name: "A"}) {
				t.Errorf("ListRecords = %+v", got)
			}
		})
	}
}

func TestClientDecodeFailures(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	bad := NewClient(invokerFunc(func(context.Context, Command, ...any) (any, error) {
		return json.RawMessage(`{"success":`), nil
	}))
	if res := bad.AddRecord(ctx, "1", "A"); res.Success || !strings.Contains(res.Error, "decode add-record") {
		t.Errorf("AddRecord = %+v", res)
	}

	empty := NewClient(invokerFunc(func(context.Context, Command, ...any) (any, error) { return nil, nil }))
	if res := empty.DeleteRecord(ctx, "1", "A"); res.Success || !strings.Contains(res.Error, "empty response") {
		t.Errorf("DeleteRecord = %+v", res)
	}

	failing := NewClient(invokerFunc(func(context.Context, Command, ...any) (any, error) {
		return nil, errors.New("connection refused")
	}))
	if res := failing.ListDirectory(ctx, "/"); res.Error != "connection refused" {
		t.Errorf("ListDirectory = %+v", res)
	}

	if res := NewClient(nil).AddRecord(ctx, "1", "A"); res.Success {
		t.Error("nil invoker must fail")
	}
}

func TestClientPassesArguments(t *testing.T) {
	t.Parallel()
	var gotCmd Command
	var gotArgs []any
	c := NewClient(invokerFunc(func(_ context.Context, cmd Command, args ...any) (any, error) {
		gotCmd, gotArgs = cmd, args
		return types.OK(), nil
	}))

	if res := c.DeleteRecord(context.Background(), "u1", "Alice"); !res.Success {
		t.Fatalf("DeleteRecord = %+v", res)
	}
	if gotCmd != DeleteRecord || len(gotArgs) != 2 || gotArgs[0] != "u1" || gotArgs[1] != "Alice" {
		t.Errorf("invoked %s %v", gotCmd, gotArgs)
	}
}
