package repository

import (
	"context"
	"time"

	"namedesk/internal/database"
	queries "namedesk/internal/database/generated"
	repoerrors "namedesk/internal/infrastructure/errors"
	"namedesk/internal/infrastructure/logging"
	"namedesk/internal/types"
)

// SQLiteRepository implements RecordRepository over the generated queries
type SQLiteRepository struct {
	queries     *queries.Queries
	retryConfig *repoerrors.RetryConfig
	logger      logging.Logger
}

var _ RecordRepository = (*SQLiteRepository)(nil)

// NewSQLiteRepository uses the default retry policy
func NewSQLiteRepository(dbService database.Service, logger logging.Logger) *SQLiteRepository {
	return NewSQLiteRepositoryWithConfig(dbService, nil, logger)
}

// NewSQLiteRepositoryWithConfig creates a repository with a custom retry policy
func NewSQLiteRepositoryWithConfig(dbService database.Service, retryConfig *repoerrors.RetryConfig, logger logging.Logger) *SQLiteRepository {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	if retryConfig == nil {
		retryConfig = repoerrors.DefaultRetryConfig()
		retryConfig.Logger = repoerrors.NewLoggerBridge(logger)
	}
	return &SQLiteRepository{
		queries:     dbService.Queries(),
		retryConfig: retryConfig,
		logger:      logger,
	}
}

// List returns all records
func (r *SQLiteRepository) List(ctx context.Context) ([]types.Record, error) {
	const op = "ListRecords"
	start := time.Now()

	var rows []queries.Record
	err := repoerrors.WithRetryContext(ctx, r.retryConfig, func() error {
		var err error
		rows, err = r.queries.ListRecords(ctx)
		return repoerrors.Wrap(op, err)
	}, op)
	if err != nil {
		logging.LogError(r.logger, err, op, nil)
		return []types.Record{}, err
	}

	records := make([]types.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, types.Record{ID: row.ID, Name: row.Name})
	}

	logging.LogOperation(r.logger, op, time.Since(start), map[string]interface{}{
		"count": len(records),
	})
	return records, nil
}

// Insert adds record
func (r *SQLiteRepository) Insert(ctx context.Context, record types.Record) error {
	const op = "InsertRecord"
	start := time.Now()
	errContext := map[string]string{"id": record.ID}

	err := repoerrors.WithRetryContext(ctx, r.retryConfig, func() error {
		err := r.queries.InsertRecord(ctx, queries.InsertRecordParams{
			ID:   record.ID,
			Name: record.Name,
		})
		return repoerrors.WrapWithContext(op, err, errContext)
	}, op)
	if err != nil {
		logging.LogError(r.logger, err, op, nil)
		return err
	}

	logging.LogOperation(r.logger, op, time.Since(start), map[string]interface{}{
		"id": record.ID,
	})
	return nil
}

// Delete removes the rows matching id and name
func (r *SQLiteRepository) Delete(ctx context.Context, id, name string) (int64, error) {
	const op = "DeleteRecord"
	start := time.Now()
	errContext := map[string]string{"id": id}

	var affected int64
	err := repoerrors.WithRetryContext(ctx, r.retryConfig, func() error {
		var err error
		affected, err = r.queries.DeleteRecord(ctx, queries.DeleteRecordParams{ID: id, Name: name})
		return repoerrors.WrapWithContext(op, err, errContext)
	}, op)
	if err != nil {
		logging.LogError(r.logger, err, op, nil)
		return 0, err
	}

	logging.LogOperation(r.logger, op, time.Since(start), map[string]interface{}{
		"id":       id,
		"affected": affected,
	})
	return affected, nil
}

// Count returns the number of stored records
func (r *SQLiteRepository) Count(ctx context.Context) (int64, error) {
	const op = "CountRecords"

	var count int64
	err := repoerrors.WithRetryContext(ctx, r.retryConfig, func() error {
		var err error
		count, err = r.queries.CountRecords(ctx)
		return repoerrors.Wrap(op, err)
	}, op)
	if err != nil {
		logging.LogError(r.logger, err, op, nil)
		return 0, err
	}
	return count, nil
}
