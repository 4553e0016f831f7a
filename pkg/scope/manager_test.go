package scope

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"doc-assistant-gw/internal/pkg/logger"
)

type fakeRemote struct {
	mu     sync.Mutex
	stored []string
	found  bool
	err    error
	saves  int
	clears int
}

func (r *fakeRemote) Load(ctx context.Context, creds Credentials) ([]string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stored, r.found, r.err
}

func (r *fakeRemote) Save(ctx context.Context, creds Credentials, documentIds []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if r.err != nil {
		return r.err
	}
	r.stored = documentIds
	return nil
}

func (r *fakeRemote) Clear(ctx context.Context, creds Credentials) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clears++
	if r.err != nil {
		return r.err
	}
	r.stored = nil
	return nil
}

func newManager(remote RemoteStore, maxSize int) *Manager {
	return NewManager(Credentials{Owner: "u1", Token: "tok"}, remote, maxSize, logger.NewNopLogger())
}

func TestToggleAddAndRemove(t *testing.T) {
	m := newManager(&fakeRemote{}, 3)

	selected, err := m.Toggle("d1")
	if err != nil || !selected {
		t.Fatalf("Toggle add = (%v, %v), want (true, nil)", selected, err)
	}

	selected, err = m.Toggle("d1")
	if err != nil || selected {
		t.Fatalf("Toggle remove = (%v, %v), want (false, nil)", selected, err)
	}
	if m.Size() != 0 {
		t.Errorf("Size = %d, want 0", m.Size())
	}
}

func TestToggleAtLimitRejected(t *testing.T) {
	m := newManager(&fakeRemote{}, 2)

	for _, id := range []string{"d1", "d2"} {
		if _, err := m.Toggle(id); err != nil {
			t.Fatalf("Toggle(%s) error: %v", id, err)
		}
	}

	_, err := m.Toggle("d3")
	if !errors.Is(err, ErrSelectionLimit) {
		t.Fatalf("Toggle over limit error = %v, want ErrSelectionLimit", err)
	}

	// Selection unchanged, not truncated
	got := m.Selection()
	if len(got) != 2 || got[0] != "d1" || got[1] != "d2" {
		t.Errorf("Selection = %v, want [d1 d2]", got)
	}
}

func TestToggleSelectedIdAtLimitStillRemoves(t *testing.T) {
	m := newManager(&fakeRemote{}, 2)
	m.Toggle("d1")
	m.Toggle("d2")

	selected, err := m.Toggle("d2")
	if err != nil || selected {
		t.Fatalf("Toggle selected id at limit = (%v, %v), want (false, nil)", selected, err)
	}
	if m.Size() != 1 {
		t.Errorf("Size = %d, want 1", m.Size())
	}
}

func TestRemoveAndClearUnconditional(t *testing.T) {
	remote := &fakeRemote{}
	m := newManager(remote, 5)
	m.Toggle("d1")
	m.Toggle("d2")

	m.Remove("d1")
	m.Remove("never-selected")
	if m.Size() != 1 {
		t.Errorf("Size after Remove = %d, want 1", m.Size())
	}

	m.Clear()
	if m.Size() != 0 {
		t.Errorf("Size after Clear = %d, want 0", m.Size())
	}

	m.Wait()
	remote.mu.Lock()
	defer remote.mu.Unlock()
	if remote.clears != 1 {
		t.Errorf("remote clears = %d, want 1", remote.clears)
	}
}

func TestMutationsPersistRemotely(t *testing.T) {
	remote := &fakeRemote{}
	m := newManager(remote, 5)

	m.Toggle("d1")
	m.Toggle("d2")
	m.Wait()

	// A save that lost the race to a newer snapshot may be skipped, so the
	// count can be 1 or 2; the final stored state must be the full selection.
	remote.mu.Lock()
	defer remote.mu.Unlock()
	if remote.saves < 1 || remote.saves > 2 {
		t.Errorf("remote saves = %d, want 1 or 2", remote.saves)
	}
	if len(remote.stored) != 2 || remote.stored[0] != "d1" || remote.stored[1] != "d2" {
		t.Errorf("stored = %v, want [d1 d2]", remote.stored)
	}
}

func TestRapidMutationsConvergeRemotely(t *testing.T) {
	remote := &fakeRemote{}
	m := newManager(remote, 20)

	for i := 0; i < 10; i++ {
		m.Toggle(fmt.Sprintf("d%02d", i))
	}
	m.Remove("d03")
	m.Wait()

	want := m.Selection()
	remote.mu.Lock()
	defer remote.mu.Unlock()
	if len(remote.stored) != len(want) {
		t.Fatalf("stored = %v, want %v", remote.stored, want)
	}
	for i := range want {
		if remote.stored[i] != want[i] {
			t.Fatalf("stored = %v, want %v", remote.stored, want)
		}
	}
}

func TestClearNotOvertakenByOlderSave(t *testing.T) {
	remote := &fakeRemote{}
	m := newManager(remote, 5)

	m.Toggle("d1")
	m.Toggle("d2")
	m.Clear()
	m.Wait()

	remote.mu.Lock()
	defer remote.mu.Unlock()
	if remote.clears != 1 {
		t.Errorf("remote clears = %d, want 1", remote.clears)
	}
	if len(remote.stored) != 0 {
		t.Errorf("stored = %v, want empty after clear", remote.stored)
	}
}

func TestPersistFailureKeepsLocalState(t *testing.T) {
	remote := &fakeRemote{err: errors.New("store down")}
	m := newManager(remote, 5)

	selected, err := m.Toggle("d1")
	if err != nil || !selected {
		t.Fatalf("Toggle = (%v, %v), want (true, nil)", selected, err)
	}
	m.Wait()

	// Local selection is the source of truth; no rollback
	if m.Size() != 1 {
		t.Errorf("Size = %d, want 1", m.Size())
	}
}

func TestRestore(t *testing.T) {
	tests := []struct {
		name         string
		remote       *fakeRemote
		wantRestored bool
		wantErr      bool
		wantSize     int
	}{
		{"nothing persisted", &fakeRemote{found: false}, false, false, 0},
		{"selection found", &fakeRemote{found: true, stored: []string{"a", "b"}}, true, false, 2},
		{"load failure", &fakeRemote{err: errors.New("down")}, false, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newManager(tt.remote, 5)
			restored, err := m.Restore(context.Background())
			if restored != tt.wantRestored {
				t.Errorf("restored = %v, want %v", restored, tt.wantRestored)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if m.Size() != tt.wantSize {
				t.Errorf("Size = %d, want %d", m.Size(), tt.wantSize)
			}
		})
	}
}

func TestRestoreNeverExceedsLimit(t *testing.T) {
	var stored []string
	for i := 0; i < 30; i++ {
		stored = append(stored, fmt.Sprintf("d%d", i))
	}
	m := newManager(&fakeRemote{found: true, stored: stored}, 20)

	restored, err := m.Restore(context.Background())
	if err != nil || !restored {
		t.Fatalf("Restore = (%v, %v)", restored, err)
	}
	if m.Size() != 20 {
		t.Errorf("Size = %d, want 20", m.Size())
	}
}
