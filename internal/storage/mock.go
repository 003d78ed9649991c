package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/tavernkeep/tavern-engine/pkg/tavern"
	"github.com/tavernkeep/tavern-engine/pkg/world"
)

// MockStorage is an in-memory Storage for tests. Zero value is not
// usable; construct with NewMockStorage.
type MockStorage struct {
	PingFunc         func(ctx context.Context) error
	SaveSnapshotFunc func(ctx context.Context, id uuid.UUID, snap *world.Snapshot) error
	LoadSnapshotFunc func(ctx context.Context, id uuid.UUID) (*world.Snapshot, error)

	mu        sync.Mutex
	snapshots map[uuid.UUID]*world.Snapshot
	taverns   map[string]*tavern.Tavern // filename -> content
}

var _ Storage = (*MockStorage)(nil)

func NewMockStorage() *MockStorage {
	return &MockStorage{
		snapshots: make(map[uuid.UUID]*world.Snapshot),
		taverns:   make(map[string]*tavern.Tavern),
	}
}

// AddTavern registers content under a filename.
func (m *MockStorage) AddTavern(filename string, tv *tavern.Tavern) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.taverns[filename] = tv
}

func (m *MockStorage) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

func (m *MockStorage) Close() error { return nil }

func (m *MockStorage) SaveSnapshot(ctx context.Context, id uuid.UUID, snap *world.Snapshot) error {
	if m.SaveSnapshotFunc != nil {
		return m.SaveSnapshotFunc(ctx, id, snap)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[id] = snap
	return nil
}

func (m *MockStorage) LoadSnapshot(ctx context.Context, id uuid.UUID) (*world.Snapshot, error) {
	if m.LoadSnapshotFunc != nil {
		return m.LoadSnapshotFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshots[id], nil
}

func (m *MockStorage) DeleteSnapshot(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snapshots, id)
	return nil
}

func (m *MockStorage) GetTavern(ctx context.Context, filename string) (*tavern.Tavern, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tv, ok := m.taverns[filename]
	if !ok {
		return nil, &NotFoundError{Filename: filename}
	}
	return tv, nil
}

func (m *MockStorage) ListTaverns(ctx context.Context) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.taverns))
	for filename, tv := range m.taverns {
		out[tv.Name] = filename
	}
	return out, nil
}

// NotFoundError reports missing tavern content.
type NotFoundError struct {
	Filename string
}

func (e *NotFoundError) Error() string {
	return "tavern not found: " + e.Filename
}
