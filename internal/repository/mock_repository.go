package repository

import (
	"context"
	"fmt"
	"sync"

	"namedesk/internal/infrastructure/errors"
	"namedesk/internal/types"
)

// MockRepository is an in-memory RecordRepository for tests
type MockRepository struct {
	mu              sync.RWMutex
	records         []types.Record
	listCallCount   int
	insertCallCount int
	deleteCallCount int
	shouldFailList  bool
	shouldFailWrite bool
}

var _ RecordRepository = (*MockRepository)(nil)

// NewMockRepository creates an empty mock repository
func NewMockRepository() *MockRepository {
	return &MockRepository{}
}

// SetFailureModes makes reads and/or writes fail with a connection error
func (m *MockRepository) SetFailureModes(list, write bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFailList = list
	m.shouldFailWrite = write
}

// GetCallCounts returns how often each method was called
func (m *MockRepository) GetCallCounts() (list, insert, delete int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listCallCount, m.insertCallCount, m.deleteCallCount
}

func (m *MockRepository) List(ctx context.Context) ([]types.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCallCount++

	if m.shouldFailList {
		return []types.Record{}, errors.New("ListRecords", fmt.Errorf("mock list failure"), errors.ErrCodeConnection)
	}
	out := make([]types.Record, len(m.records))
	copy(out, m.records)
	return out, nil
}

func (m *MockRepository) Insert(ctx context.Context, record types.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insertCallCount++

	if m.shouldFailWrite {
		return errors.New("InsertRecord", fmt.Errorf("mock insert failure"), errors.ErrCodeConnection)
	}
	for _, existing := range m.records {
		if existing.ID == record.ID {
			return errors.NewWithContext("InsertRecord",
				fmt.Errorf("UNIQUE constraint failed: records.id"),
				errors.ErrCodeDuplicate, map[string]string{"id": record.ID})
		}
	}
	m.records = append(m.records, record)
	return nil
}

func (m *MockRepository) Delete(ctx context.Context, id, name string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCallCount++

	if m.shouldFailWrite {
		return 0, errors.New("DeleteRecord", fmt.Errorf("mock delete failure"), errors.ErrCodeConnection)
	}
	kept := m.records[:0]
	var removed int64
	for _, r := range m.records {
		if r.ID == id && r.Name == name {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	m.records = kept
	return removed, nil
}

func (m *MockRepository) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.shouldFailList {
		return 0, errors.New("CountRecords", fmt.Errorf("mock count failure"), errors.ErrCodeConnection)
	}
	return int64(len(m.records)), nil
}
