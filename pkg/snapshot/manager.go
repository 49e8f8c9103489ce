package snapshot

import (
	"context"
	"errors"
	"time"

	nverrors "github.com/matzehuels/netview/pkg/errors"
)

// ErrNoActive is returned by operations that need an active snapshot.
var ErrNoActive = errors.New("no active snapshot")

// Persister stores the snapshot list of a session.
type Persister interface {
	// AppendSnapshot stores s at the end of the session's list and returns
	// its index.
	AppendSnapshot(ctx context.Context, sessionID string, s Snapshot) (int, error)
	RenameSnapshot(ctx context.Context, sessionID string, idx int, name string) error
	DeleteSnapshot(ctx context.Context, sessionID string, idx int) error
}

// Manager tracks the snapshots of one session.
// It is not safe for concurrent use.
type Manager struct {
	sessionID string
	store     Persister
	snaps     []Snapshot
	active    int
	dirty     bool

	// Now returns the time used for generated names; tests override it.
	Now func() time.Time
}

// NewManager creates a manager over the given snapshots with no active
// snapshot. store may be nil for views that never persist.
func NewManager(sessionID string, snaps []Snapshot, store Persister) *Manager {
	cp := make([]Snapshot, len(snaps))
	for i, s := range snaps {
		cp[i] = s.Clone()
	}
	return &Manager{
		sessionID: sessionID,
		store:     store,
		snaps:     cp,
		active:    None,
		Now:       time.Now,
	}
}

// Len returns the number of snapshots.
func (m *Manager) Len() int { return len(m.snaps) }

// Names returns the snapshot names in order.
func (m *Manager) Names() []string {
	out := make([]string, len(m.snaps))
	for i, s := range m.snaps {
		out[i] = s.Name
	}
	return out
}

// Get returns a deep copy of snapshot idx.
func (m *Manager) Get(idx int) (Snapshot, bool) {
	if idx < 0 || idx >= len(m.snaps) {
		return Snapshot{}, false
	}
	return m.snaps[idx].Clone(), true
}

// Active returns the index of the active snapshot, or [None].
func (m *Manager) Active() int { return m.active }

// ActiveName returns the active snapshot's name or a placeholder.
func (m *Manager) ActiveName() string { return Label(m.snaps, m.active) }

// Dirty reports whether the view has edits not in the active snapshot.
func (m *Manager) Dirty() bool { return m.dirty }

// MarkDirty sets the dirty flag and reports whether it changed.
func (m *Manager) MarkDirty() bool {
	if m.dirty {
		return false
	}
	m.dirty = true
	return true
}

// Select makes idx the active snapshot and clears the dirty flag. It returns
// a deep copy of the snapshot to apply; for [None] the copy is zero and ok is
// false.
func (m *Manager) Select(idx int) (s Snapshot, ok bool, err error) {
	if idx != None && (idx < 0 || idx >= len(m.snaps)) {
		return Snapshot{}, false, nverrors.New(nverrors.ErrCodeSnapshotNotFound, "snapshot %d does not exist", idx)
	}
	m.active = idx
	m.dirty = false
	if idx == None {
		return Snapshot{}, false, nil
	}
	return m.snaps[idx].Clone(), true, nil
}

// DefaultName returns a timestamp label for a new snapshot.
func (m *Manager) DefaultName() string { return m.Now().Format(NameFormat) }

// Save persists s as a new snapshot, makes it active and clears the dirty
// flag. An empty name is replaced by [Manager.DefaultName].
func (m *Manager) Save(ctx context.Context, s Snapshot) (int, error) {
	s, err := m.Prepare(s)
	if err != nil {
		return None, err
	}
	if err := m.StoreAppend(ctx, s); err != nil {
		return None, err
	}
	return m.CommitSave(s), nil
}

// Prepare names, timestamps and validates a snapshot about to be saved.
func (m *Manager) Prepare(s Snapshot) (Snapshot, error) {
	s = s.Clone()
	if s.Name == "" {
		s.Name = m.DefaultName()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = m.Now()
	}
	if err := nverrors.ValidateName(s.Name); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}

// The Store methods only write to the persister and never touch the
// manager's list, so callers may run them without the lock that guards the
// manager. Each is followed by the matching Commit on success.

// StoreAppend appends s to the persisted list.
func (m *Manager) StoreAppend(ctx context.Context, s Snapshot) error {
	if m.store == nil {
		return nil
	}
	if _, err := m.store.AppendSnapshot(ctx, m.sessionID, s); err != nil {
		return nverrors.Wrap(nverrors.ErrCodeStorage, err, "save snapshot %q", s.Name)
	}
	return nil
}

// StoreRename renames the persisted snapshot idx.
func (m *Manager) StoreRename(ctx context.Context, idx int, name string) error {
	if m.store == nil {
		return nil
	}
	if err := m.store.RenameSnapshot(ctx, m.sessionID, idx, name); err != nil {
		return nverrors.Wrap(nverrors.ErrCodeStorage, err, "rename snapshot %d", idx)
	}
	return nil
}

// StoreDelete deletes the persisted snapshot idx.
func (m *Manager) StoreDelete(ctx context.Context, idx int) error {
	if m.store == nil {
		return nil
	}
	if err := m.store.DeleteSnapshot(ctx, m.sessionID, idx); err != nil {
		return nverrors.Wrap(nverrors.ErrCodeStorage, err, "delete snapshot %d", idx)
	}
	return nil
}

// CommitSave appends a stored snapshot, makes it active and clears the
// dirty flag.
func (m *Manager) CommitSave(s Snapshot) int {
	m.snaps = append(m.snaps, s)
	m.active = len(m.snaps) - 1
	m.dirty = false
	return m.active
}

// RenameTarget returns the snapshot a rename applies to: the active one.
func (m *Manager) RenameTarget(name string) (int, error) {
	if m.active == None {
		return None, ErrNoActive
	}
	if err := nverrors.ValidateName(name); err != nil {
		return None, err
	}
	return m.active, nil
}

// CommitRename renames snapshot idx after it was stored.
func (m *Manager) CommitRename(idx int, name string) {
	if idx >= 0 && idx < len(m.snaps) {
		m.snaps[idx].Name = name
	}
}

// CommitDelete removes snapshot idx after it was deleted from the store.
// Deleting the active snapshot leaves none active and the view dirty; a
// later active snapshot shifts down by one.
func (m *Manager) CommitDelete(idx int) {
	if idx < 0 || idx >= len(m.snaps) {
		return
	}
	m.snaps = append(m.snaps[:idx], m.snaps[idx+1:]...)
	switch {
	case m.active == idx:
		m.active = None
		m.dirty = true
	case m.active > idx:
		m.active--
	}
}

// Rename renames the active snapshot.
func (m *Manager) Rename(ctx context.Context, name string) error {
	idx, err := m.RenameTarget(name)
	if err != nil {
		return err
	}
	if err := m.StoreRename(ctx, idx, name); err != nil {
		return err
	}
	m.CommitRename(idx, name)
	return nil
}

// Delete removes the active snapshot. Afterwards no snapshot is active and
// the view counts as dirty since its state is no longer saved anywhere.
func (m *Manager) Delete(ctx context.Context) error {
	if m.active == None {
		return ErrNoActive
	}
	idx := m.active
	if err := m.StoreDelete(ctx, idx); err != nil {
		return err
	}
	m.CommitDelete(idx)
	return nil
}
