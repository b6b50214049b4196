package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/codeverse/backend/internal/models"
	"github.com/codeverse/backend/internal/storage"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockSupervisor is a mock implementation of ConnectionSupervisor
type mockSupervisor struct {
	availability models.Availability
	pingErr      error
}

func (m *mockSupervisor) EnsureConnected(ctx context.Context) models.Availability {
	return m.availability
}

func (m *mockSupervisor) Ping(ctx context.Context) error {
	return m.pingErr
}

// mockTutorialRepository is a mock implementation of TutorialRepository backed by a map
type mockTutorialRepository struct {
	mu        sync.Mutex
	tutorials map[string]models.Tutorial
	order     []string
	nextID    string
	err       error
	getErr    error
	updateErr error
	deleteErr error
	calls     map[string]int

	// exportHook runs at the start of Export, outside the mock lock
	exportHook func()
}

func newMockTutorialRepository(tutorials ...models.Tutorial) *mockTutorialRepository {
	m := &mockTutorialRepository{
		tutorials: make(map[string]models.Tutorial),
		nextID:    "65f1a2b3c4d5e6f708192a3b",
		calls:     make(map[string]int),
	}
	for _, t := range tutorials {
		m.tutorials[t.ID] = t
		m.order = append(m.order, t.ID)
	}
	return m
}

func (m *mockTutorialRepository) record(method string) {
	m.calls[method]++
}

func (m *mockTutorialRepository) GetAll(ctx context.Context) ([]models.Tutorial, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("GetAll")
	if m.err != nil {
		return nil, m.err
	}
	tutorials := make([]models.Tutorial, 0, len(m.order))
	for _, id := range m.order {
		tutorials = append(tutorials, m.tutorials[id])
	}
	return tutorials, nil
}

func (m *mockTutorialRepository) Export(ctx context.Context) ([]models.Tutorial, error) {
	if m.exportHook != nil {
		m.exportHook()
	}
	return m.GetAll(ctx)
}

func (m *mockTutorialRepository) GetByID(ctx context.Context, id string) (*models.Tutorial, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("GetByID")
	if m.err != nil {
		return nil, m.err
	}
	if m.getErr != nil {
		return nil, m.getErr
	}
	t, ok := m.tutorials[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &t, nil
}

func (m *mockTutorialRepository) Create(ctx context.Context, tutorial *models.Tutorial) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Create")
	if m.err != nil {
		return "", m.err
	}
	t := *tutorial
	t.ID = m.nextID
	m.tutorials[t.ID] = t
	m.order = append(m.order, t.ID)
	return t.ID, nil
}

func (m *mockTutorialRepository) Update(ctx context.Context, id string, tutorial *models.Tutorial) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Update")
	if m.err != nil {
		return false, m.err
	}
	if m.updateErr != nil {
		return false, m.updateErr
	}
	if _, ok := m.tutorials[id]; !ok {
		return false, nil
	}
	t := *tutorial
	t.ID = id
	m.tutorials[id] = t
	return true, nil
}

func (m *mockTutorialRepository) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Delete")
	if m.err != nil {
		return false, m.err
	}
	if m.deleteErr != nil {
		return false, m.deleteErr
	}
	if _, ok := m.tutorials[id]; !ok {
		return false, nil
	}
	delete(m.tutorials, id)
	return true, nil
}

// failingMirror is a mock implementation of MirrorStore whose writes always fail
type failingMirror struct {
	mirror  *storage.Mirror
	loadErr error
}

func (m *failingMirror) Load() (*storage.Mirror, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.mirror, nil
}

func (m *failingMirror) Save(mirror *storage.Mirror) error {
	return models.ErrMirrorIO
}

func (m *failingMirror) Update(fn func(m *storage.Mirror) error) error {
	if m.loadErr != nil {
		return m.loadErr
	}
	if err := fn(m.mirror); err != nil {
		return err
	}
	return models.ErrMirrorIO
}

func (m *failingMirror) Exists() bool {
	return false
}

// setupTestMirror creates a mirror file store in a temporary directory holding the given tutorials
func setupTestMirror(t *testing.T, tutorials ...models.Tutorial) MirrorStore {
	t.Helper()
	store := storage.NewFileStore(filepath.Join(t.TempDir(), "tutorials.json"), zap.NewNop())
	if len(tutorials) > 0 {
		require.NoError(t, store.Save(storage.NewMirrorFrom(tutorials)))
	}
	return store
}

func strPtr(s string) *string {
	return &s
}
