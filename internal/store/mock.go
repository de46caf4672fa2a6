package store

import (
	"context"
	"sort"
	"sync"

	"fjacquet/bank-ingest/internal/models"
	"fjacquet/bank-ingest/internal/tabular"
)

// MockRecordStore is an in-memory implementation of the record repository for testing.
type MockRecordStore struct {
	mu      sync.Mutex
	keys    map[string][]string
	appends map[string]int

	// Error flags for testing error conditions
	ExistingKeysError map[string]error
	AppendError       map[string]error
}

// NewMockRecordStore creates an empty MockRecordStore.
func NewMockRecordStore() *MockRecordStore {
	return &MockRecordStore{
		keys:              make(map[string][]string),
		appends:           make(map[string]int),
		ExistingKeysError: make(map[string]error),
		AppendError:       make(map[string]error),
	}
}

// Seed registers keys as already persisted for a mapping type.
func (m *MockRecordStore) Seed(mappingType string, keys ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[mappingType] = append(m.keys[mappingType], keys...)
}

// ExistingKeys returns a copy of the keys stored for a mapping type.
func (m *MockRecordStore) ExistingKeys(_ context.Context, mappingType string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ExistingKeysError[mappingType]; err != nil {
		return nil, err
	}
	return append([]string{}, m.keys[mappingType]...), nil
}

// Append stores the surrogate keys of table.
func (m *MockRecordStore) Append(_ context.Context, mappingType string, table *tabular.Table) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appends[mappingType]++
	if err := m.AppendError[mappingType]; err != nil {
		return 0, err
	}
	for i := 0; i < table.Len(); i++ {
		m.keys[mappingType] = append(m.keys[mappingType], table.Text(i, models.ColumnSurrogateKey))
	}
	return table.Len(), nil
}

// AppendCalls returns how many times Append was called for a mapping type.
func (m *MockRecordStore) AppendCalls(mappingType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appends[mappingType]
}

// MockIngestionHistoryStore keeps history rows in memory.
type MockIngestionHistoryStore struct {
	mu      sync.Mutex
	Entries []IngestionHistory

	InsertError error
}

// InsertIngestionHistory records a copy of history.
func (m *MockIngestionHistoryStore) InsertIngestionHistory(_ context.Context, history *IngestionHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertError != nil {
		return m.InsertError
	}
	m.Entries = append(m.Entries, *history)
	return nil
}

// GetLatest returns up to limit entries, newest first.
func (m *MockIngestionHistoryStore) GetLatest(_ context.Context, limit int) ([]IngestionHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]IngestionHistory{}, m.Entries...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// MockSchemaStore counts initializations.
type MockSchemaStore struct {
	Calls           int
	InitializeError error
}

// Initialize records the call.
func (m *MockSchemaStore) Initialize(context.Context) error {
	m.Calls++
	return m.InitializeError
}

// NewMockStorage creates a Storage backed entirely by in-memory mocks.
func NewMockStorage() (*Storage, *MockRecordStore, *MockIngestionHistoryStore) {
	records := NewMockRecordStore()
	history := &MockIngestionHistoryStore{}
	return &Storage{Records: records, IngestionHistory: history, Schema: &MockSchemaStore{}}, records, history
}
