package backend

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"namedesk/internal/bridge"
	"namedesk/internal/directory"
	apperrors "namedesk/internal/infrastructure/errors"
	"namedesk/internal/infrastructure/logging"
	"namedesk/internal/repository"
	"namedesk/internal/types"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const maxIDLength = 128

// recordArgs are the arguments of add-record and delete-record
type recordArgs struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

var notBlank = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return validation.NewError("validation_not_blank", "cannot be blank")
	}
	return nil
})

func (a recordArgs) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.ID, notBlank, validation.RuneLength(1, maxIDLength)),
		validation.Field(&a.Name, notBlank),
	)
}

// handlers holds everything the command handlers may touch
type handlers struct {
	repo    repository.RecordRepository
	lister  *directory.Lister
	watcher *directory.Watcher
	logger  logging.Logger

	mu          sync.Mutex
	watchedPath string
}

func (h *handlers) register(d *bridge.Dispatcher) error {
	table := map[bridge.Command]bridge.Handler{
		bridge.ListRecords:   h.listRecords,
		bridge.AddRecord:     h.addRecord,
		bridge.DeleteRecord:  h.deleteRecord,
		bridge.ListDirectory: h.listDirectory,
	}
	for _, cmd := range bridge.Commands() {
		if err := d.Register(cmd, table[cmd]); err != nil {
			return err
		}
	}
	return nil
}

func (h *handlers) listRecords(ctx context.Context, _ []any) (any, error) {
	records, err := h.repo.List(ctx)
	if err != nil {
		return types.RecordsResult{Success: false, Error: message(err), Records: []types.Record{}}, nil
	}
	return types.RecordsResult{Success: true, Records: records}, nil
}

func (h *handlers) addRecord(ctx context.Context, args []any) (any, error) {
	in, err := parseRecordArgs("add-record", args)
	if err != nil {
		return failed(err), nil
	}
	if err := in.Validate(); err != nil {
		return failed(apperrors.New("add-record", err, apperrors.ErrCodeValidation)), nil
	}
	if err := h.repo.Insert(ctx, types.Record{ID: in.ID, Name: in.Name}); err != nil {
		return failed(err), nil
	}
	return types.OK(), nil
}

// deleteRecord skips Validate: an unknown pair, blank or not, is a no-op.
func (h *handlers) deleteRecord(ctx context.Context, args []any) (any, error) {
	in, err := parseRecordArgs("delete-record", args)
	if err != nil {
		return failed(err), nil
	}
	if _, err := h.repo.Delete(ctx, in.ID, in.Name); err != nil {
		return failed(err), nil
	}
	return types.OK(), nil
}

func (h *handlers) listDirectory(ctx context.Context, args []any) (any, error) {
	path, err := stringArg("list-directory", args, 0, "path")
	if err != nil {
		return types.DirectoryResult{Success: false, Error: message(err), Entries: []string{}}, nil
	}

	entries, err := h.lister.List(ctx, path)
	if err != nil {
		logging.LogError(h.logger, err, "ListDirectory", map[string]interface{}{"path": path})
		return types.DirectoryResult{Success: false, Error: message(err), Entries: []string{}}, nil
	}

	if h.watcher != nil {
		h.mu.Lock()
		h.watchedPath = path
		h.mu.Unlock()
		if err := h.watcher.Watch(path); err != nil {
			h.logger.Warn("directory watch failed", "path", path, "error", err)
		}
	}
	return types.DirectoryResult{Success: true, Entries: entries}, nil
}

// changedPath is the path the UI asked for, reported back on change
func (h *handlers) changedPath() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.watchedPath
}

func parseRecordArgs(command string, args []any) (recordArgs, error) {
	id, err := stringArg(command, args, 0, "id")
	if err != nil {
		return recordArgs{}, err
	}
	name, err := stringArg(command, args, 1, "name")
	if err != nil {
		return recordArgs{}, err
	}
	return recordArgs{ID: id, Name: name}, nil
}

func stringArg(command string, args []any, i int, field string) (string, error) {
	if i >= len(args) {
		return "", apperrors.Validation(command, field, "missing")
	}
	s, ok := args[i].(string)
	if !ok {
		return "", apperrors.Validation(command, field, fmt.Sprintf("must be a string, got %T", args[i]))
	}
	return s, nil
}

func failed(err error) types.Result {
	return types.Result{Success: false, Error: message(err)}
}

// message is the user-facing text of err, never empty
func message(err error) string {
	if msg := apperrors.MessageOf(err); msg != "" {
		return msg
	}
	return "unknown error"
}
