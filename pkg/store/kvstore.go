package store

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	nverrors "github.com/matzehuels/netview/pkg/errors"
	"github.com/matzehuels/netview/pkg/fileio"
	"github.com/matzehuels/netview/pkg/kv"
	"github.com/matzehuels/netview/pkg/session"
	"github.com/matzehuels/netview/pkg/snapshot"
)

// Key prefixes used in the backend.
const (
	prefixSession = "session:"
	prefixHeader  = "header:"
	prefixConfig  = "config:"
)

// KVOptions configures a KVStore.
type KVOptions struct {
	// Uncompressed stores sessions as plain JSON instead of gzip.
	Uncompressed bool

	// Retry applies to transient backend failures. Zero means
	// kv.DefaultRetry.
	Retry kv.Retry

	Logger *log.Logger
}

// KVStore keeps sessions in a key/value backend. Each session is one value;
// a small header value per session keeps listings cheap. Snapshot changes
// rewrite the whole session and are serialised within the process.
type KVStore struct {
	backend kv.Backend
	gzip    bool
	retry   kv.Retry
	log     *log.Logger
	mu      sync.Mutex
}

// NewKVStore creates a store over b.
func NewKVStore(b kv.Backend, opts KVOptions) *KVStore {
	return &KVStore{
		backend: b,
		gzip:    !opts.Uncompressed,
		retry:   cmp.Or(opts.Retry, kv.DefaultRetry),
		log:     discardLogger(opts.Logger),
	}
}

// Backend implements Store.
func (s *KVStore) Backend() string { return s.backend.Name() }

// Close closes the backend.
func (s *KVStore) Close() error { return s.backend.Close() }

func (s *KVStore) get(ctx context.Context, key string) (data []byte, ok bool, err error) {
	err = s.retry.Do(ctx, func() error {
		data, ok, err = s.backend.Get(ctx, key)
		return err
	})
	return data, ok, err
}

func (s *KVStore) set(ctx context.Context, key string, data []byte) error {
	return s.retry.Do(ctx, func() error {
		return s.backend.Set(ctx, key, data)
	})
}

// =============================================================================
// Config
// =============================================================================

// GetConfig implements Store.
func (s *KVStore) GetConfig(ctx context.Context, key string) (raw json.RawMessage, ok bool, err error) {
	start := time.Now()
	defer func() { observe(ctx, s.Backend(), "get_config", start, err) }()

	data, ok, err := s.get(ctx, prefixConfig+key)
	if err != nil {
		return nil, false, storageError(err, "get config %s", key)
	}
	return data, ok, nil
}

// PutConfig implements Store.
func (s *KVStore) PutConfig(ctx context.Context, key string, value json.RawMessage) (err error) {
	start := time.Now()
	defer func() { observe(ctx, s.Backend(), "put_config", start, err) }()

	if !json.Valid(value) {
		return nverrors.New(nverrors.ErrCodeInvalidFormat, "config %s is not valid JSON", key)
	}
	return storageError(s.set(ctx, prefixConfig+key, value), "put config %s", key)
}

// =============================================================================
// Sessions
// =============================================================================

// SessionHeaders implements Store.
func (s *KVStore) SessionHeaders(ctx context.Context) (hs []session.Header, err error) {
	start := time.Now()
	defer func() { observe(ctx, s.Backend(), "list_sessions", start, err) }()

	keys, err := s.backend.Keys(ctx, prefixHeader)
	if err != nil {
		return nil, storageError(err, "list sessions")
	}
	hs = make([]session.Header, 0, len(keys))
	for _, k := range keys {
		data, ok, err := s.get(ctx, k)
		if err != nil {
			return nil, storageError(err, "read %s", k)
		}
		if !ok {
			continue
		}
		var h session.Header
		if err := json.Unmarshal(data, &h); err != nil {
			s.log.Warn("skipping unreadable session header", "key", k, "err", err)
			continue
		}
		hs = append(hs, h)
	}
	sortHeaders(hs)
	return hs, nil
}

func sortHeaders(hs []session.Header) {
	slices.SortFunc(hs, func(a, b session.Header) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
}

// GetSession implements Store.
func (s *KVStore) GetSession(ctx context.Context, id string) (sess *session.Session, err error) {
	start := time.Now()
	defer func() { observe(ctx, s.Backend(), "get_session", start, err) }()
	return s.load(ctx, id)
}

func (s *KVStore) load(ctx context.Context, id string) (*session.Session, error) {
	sess, _, err := s.read(ctx, id)
	return sess, err
}

// read returns the decoded session together with its stored bytes.
func (s *KVStore) read(ctx context.Context, id string) (*session.Session, []byte, error) {
	if err := nverrors.ValidateSessionID(id); err != nil {
		return nil, nil, err
	}
	data, ok, err := s.get(ctx, prefixSession+id)
	if err != nil {
		return nil, nil, storageError(err, "get session %s", id)
	}
	if !ok {
		return nil, nil, sessionNotFound(id)
	}
	sess, err := fileio.Decode(bytes.NewReader(data), s.gzip)
	if err != nil {
		return nil, nil, storageError(err, "decode session %s", id)
	}
	return sess, data, nil
}

// PutSession implements Store.
func (s *KVStore) PutSession(ctx context.Context, sess *session.Session) (err error) {
	start := time.Now()
	defer func() { observe(ctx, s.Backend(), "put_session", start, err) }()

	if sess != nil && sess.ID == "" {
		sess.ID = session.GenerateID()
	}
	if err := sess.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, _, err := s.get(ctx, prefixSession+sess.ID)
	if err != nil {
		return storageError(err, "get session %s", sess.ID)
	}
	return s.save(ctx, sess, prev)
}

// save writes the session and its header. If the header cannot be written
// the session value is put back to prev (or removed when prev is nil) so a
// failed save leaves nothing behind. Must be called with mu held.
func (s *KVStore) save(ctx context.Context, sess *session.Session, prev []byte) error {
	now := time.Now()
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = now
	}
	sess.UpdatedAt = now

	data, err := fileio.Marshal(sess, s.gzip)
	if err != nil {
		return nverrors.Wrap(nverrors.ErrCodeInternal, err, "encode session %s", sess.ID)
	}
	header, err := json.Marshal(sess.Header())
	if err != nil {
		return nverrors.Wrap(nverrors.ErrCodeInternal, err, "encode header %s", sess.ID)
	}
	if err := s.set(ctx, prefixSession+sess.ID, data); err != nil {
		return storageError(err, "put session %s", sess.ID)
	}
	if err := s.set(ctx, prefixHeader+sess.ID, header); err != nil {
		s.restore(ctx, sess.ID, prev)
		return storageError(err, "put header %s", sess.ID)
	}
	s.log.Debug("session stored", "id", sess.ID, "name", sess.Name, "bytes", len(data), "backend", s.Backend())
	return nil
}

func (s *KVStore) restore(ctx context.Context, id string, prev []byte) {
	key := prefixSession + id
	var err error
	if prev == nil {
		err = s.backend.Delete(ctx, key)
	} else {
		err = s.set(ctx, key, prev)
	}
	if err != nil {
		s.log.Warn("could not roll back session", "id", id, "err", err)
	}
}

// DeleteSession implements Store.
func (s *KVStore) DeleteSession(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { observe(ctx, s.Backend(), "delete_session", start, err) }()

	if err := nverrors.ValidateSessionID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok, err := s.get(ctx, prefixHeader+id)
	if err != nil {
		return storageError(err, "get session %s", id)
	}
	if !ok {
		return sessionNotFound(id)
	}
	for _, k := range []string{prefixSession + id, prefixHeader + id} {
		if err := s.backend.Delete(ctx, k); err != nil {
			return storageError(err, "delete %s", k)
		}
	}
	return nil
}

// update loads a session, applies fn and stores the result.
func (s *KVStore) update(ctx context.Context, id string, fn func(*session.Session) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, prev, err := s.read(ctx, id)
	if err != nil {
		return err
	}
	if err := fn(sess); err != nil {
		return err
	}
	return s.save(ctx, sess, prev)
}

// =============================================================================
// Snapshots
// =============================================================================

// AppendSnapshot implements snapshot.Persister.
func (s *KVStore) AppendSnapshot(ctx context.Context, id string, snap snapshot.Snapshot) (idx int, err error) {
	start := time.Now()
	defer func() { observe(ctx, s.Backend(), "append_snapshot", start, err) }()

	err = s.update(ctx, id, func(sess *session.Session) error {
		if len(snap.Positions) > len(sess.Nodes) {
			return nverrors.New(nverrors.ErrCodeInvalidInput, "snapshot has %d positions for %d nodes", len(snap.Positions), len(sess.Nodes))
		}
		sess.Snapshots = append(sess.Snapshots, snap.Clone())
		idx = len(sess.Snapshots) - 1
		return nil
	})
	if err != nil {
		return snapshot.None, err
	}
	return idx, nil
}

// RenameSnapshot implements snapshot.Persister.
func (s *KVStore) RenameSnapshot(ctx context.Context, id string, idx int, name string) (err error) {
	start := time.Now()
	defer func() { observe(ctx, s.Backend(), "rename_snapshot", start, err) }()

	return s.update(ctx, id, func(sess *session.Session) error {
		if idx < 0 || idx >= len(sess.Snapshots) {
			return snapshotNotFound(id, idx)
		}
		sess.Snapshots[idx].Name = name
		return nil
	})
}

// DeleteSnapshot implements snapshot.Persister.
func (s *KVStore) DeleteSnapshot(ctx context.Context, id string, idx int) (err error) {
	start := time.Now()
	defer func() { observe(ctx, s.Backend(), "delete_snapshot", start, err) }()

	return s.update(ctx, id, func(sess *session.Session) error {
		if idx < 0 || idx >= len(sess.Snapshots) {
			return snapshotNotFound(id, idx)
		}
		sess.Snapshots = slices.Delete(sess.Snapshots, idx, idx+1)
		return nil
	})
}

// ClearAll implements Store.
func (s *KVStore) ClearAll(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { observe(ctx, s.Backend(), "clear", start, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()
	return storageError(s.backend.Clear(ctx), "clear %s store", s.Backend())
}

var _ Store = (*KVStore)(nil)
