package scope

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"doc-assistant-gw/internal/pkg/logger"
)

// ErrSelectionLimit is returned when a toggle would grow the selection past
// its maximum size. The selection is left unchanged.
var ErrSelectionLimit = errors.New("document selection limit reached")

// DefaultMaxSize caps how many documents may scope a single query.
const DefaultMaxSize = 20

const persistTimeout = 10 * time.Second

// Credentials identify the owning user for remote persistence.
type Credentials struct {
	Owner string
	Token string
}

// RemoteStore persists the document selection so it survives reloads. Local
// state is authoritative for the running session; the remote copy is a
// durability aid only.
type RemoteStore interface {
	Load(ctx context.Context, creds Credentials) ([]string, bool, error)
	Save(ctx context.Context, creds Credentials, documentIds []string) error
	Clear(ctx context.Context, creds Credentials) error
}

// Manager maintains the set of document ids that scope retrieval. Every
// mutation kicks off a best-effort asynchronous persistence attempt;
// persistence failures are logged and never revert local state.
type Manager struct {
	mu      sync.Mutex
	ids     map[string]struct{}
	maxSize int

	creds  Credentials
	remote RemoteStore
	logger logger.ILogger
	wg     sync.WaitGroup

	// version stamps each mutation under mu; persistMu serializes the save
	// goroutines and lastPersisted lets a late, older snapshot be skipped so
	// the remote copy never moves backwards.
	version       uint64
	persistMu     sync.Mutex
	lastPersisted uint64
}

func NewManager(creds Credentials, remote RemoteStore, maxSize int, log logger.ILogger) *Manager {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Manager{
		ids:     make(map[string]struct{}),
		maxSize: maxSize,
		creds:   creds,
		remote:  remote,
		logger:  log,
	}
}

// Restore loads a previously persisted selection, if any. Returns true when
// one was found so the caller can inform the user.
func (m *Manager) Restore(ctx context.Context) (bool, error) {
	ids, found, err := m.remote.Load(ctx, m.creds)
	if err != nil {
		m.logger.Warn("Scope", "Restore selection failed", map[string]interface{}{
			"owner": m.creds.Owner, "error": err.Error(),
		})
		return false, err
	}
	if !found {
		return false, nil
	}

	m.mu.Lock()
	m.ids = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if len(m.ids) >= m.maxSize {
			break
		}
		m.ids[id] = struct{}{}
	}
	m.mu.Unlock()

	m.logger.Info("Scope", "Selection restored", map[string]interface{}{
		"owner": m.creds.Owner, "size": len(ids),
	})
	return true, nil
}

// Toggle adds the id if absent (and under the limit), removes it if present.
// Returns whether the id is selected afterwards. When the selection is full
// and the id is absent, ErrSelectionLimit is returned and nothing changes.
func (m *Manager) Toggle(documentId string) (bool, error) {
	m.mu.Lock()
	if _, present := m.ids[documentId]; present {
		delete(m.ids, documentId)
		m.mu.Unlock()
		m.persistAsync()
		return false, nil
	}
	if len(m.ids) >= m.maxSize {
		m.mu.Unlock()
		return false, ErrSelectionLimit
	}
	m.ids[documentId] = struct{}{}
	m.mu.Unlock()

	m.persistAsync()
	return true, nil
}

// Remove always succeeds locally, selected or not.
func (m *Manager) Remove(documentId string) {
	m.mu.Lock()
	delete(m.ids, documentId)
	m.mu.Unlock()
	m.persistAsync()
}

// Clear empties the selection locally and remotely.
func (m *Manager) Clear() {
	m.mu.Lock()
	m.ids = make(map[string]struct{})
	m.version++
	v := m.version
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.persistMu.Lock()
		defer m.persistMu.Unlock()
		if v < m.lastPersisted {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := m.remote.Clear(ctx, m.creds); err != nil {
			m.logger.Warn("Scope", "Clear selection remotely failed", map[string]interface{}{
				"owner": m.creds.Owner, "error": err.Error(),
			})
			return
		}
		m.lastPersisted = v
	}()
}

// Selection returns the selected document ids, sorted for stable output.
func (m *Manager) Selection() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.ids))
	for id := range m.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (m *Manager) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ids)
}

func (m *Manager) MaxSize() int {
	return m.maxSize
}

// Wait blocks until in-flight persistence attempts settle. For shutdown and
// tests.
func (m *Manager) Wait() {
	m.wg.Wait()
}

func (m *Manager) persistAsync() {
	// Version and snapshot are taken in one critical section so the stamp
	// always matches the state it describes.
	m.mu.Lock()
	m.version++
	v := m.version
	snapshot := make([]string, 0, len(m.ids))
	for id := range m.ids {
		snapshot = append(snapshot, id)
	}
	m.mu.Unlock()
	sort.Strings(snapshot)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.persistMu.Lock()
		defer m.persistMu.Unlock()
		if v < m.lastPersisted {
			// A newer snapshot already reached the store
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := m.remote.Save(ctx, m.creds, snapshot); err != nil {
			// Best effort: local selection stays authoritative
			m.logger.Warn("Scope", "Persist selection failed", map[string]interface{}{
				"owner": m.creds.Owner, "size": len(snapshot), "error": err.Error(),
			})
			return
		}
		m.lastPersisted = v
	}()
}
