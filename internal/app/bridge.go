package app

import (
	"context"
	"time"

	"namedesk/internal/bridge"
	"namedesk/internal/types"
)

// invokeTimeout bounds one call from the webview
const invokeTimeout = 30 * time.Second

// Bridge is the struct bound into the webview. Its exported methods are the
// only backend capabilities the UI can reach.
type Bridge struct {
	app    *App
	client *bridge.Client
}

func (b *Bridge) callContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(b.app.context(), invokeTimeout)
}

// ListRecords returns every stored record
func (b *Bridge) ListRecords() types.RecordsResult {
	ctx, cancel := b.callContext()
	defer cancel()
	return b.client.ListRecords(ctx)
}

// AddRecord stores (id, name)
func (b *Bridge) AddRecord(id, name string) types.Result {
	ctx, cancel := b.callContext()
	defer cancel()
	return b.client.AddRecord(ctx, id, name)
}

// DeleteRecord removes the record matching both id and name
func (b *Bridge) DeleteRecord(id, name string) types.Result {
	ctx, cancel := b.callContext()
	defer cancel()
	return b.client.DeleteRecord(ctx, id, name)
}

// ListDirectory lists path recursively
func (b *Bridge) ListDirectory(path string) types.DirectoryResult {
	ctx, cancel := b.callContext()
	defer cancel()
	return b.client.ListDirectory(ctx, path)
}
