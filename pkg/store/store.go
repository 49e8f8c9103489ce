package store

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/netview/pkg/config"
	nverrors "github.com/matzehuels/netview/pkg/errors"
	"github.com/matzehuels/netview/pkg/kv"
	"github.com/matzehuels/netview/pkg/observability"
	"github.com/matzehuels/netview/pkg/session"
	"github.com/matzehuels/netview/pkg/snapshot"
)

// ErrNotFound is wrapped by errors for missing sessions and snapshots.
var ErrNotFound = kv.ErrNotFound

// Store persists sessions.
type Store interface {
	// GetConfig returns the blob stored under key.
	GetConfig(ctx context.Context, key string) (json.RawMessage, bool, error)
	PutConfig(ctx context.Context, key string, value json.RawMessage) error

	// SessionHeaders lists sessions, most recently updated first.
	SessionHeaders(ctx context.Context) ([]session.Header, error)
	GetSession(ctx context.Context, id string) (*session.Session, error)

	// PutSession inserts or replaces a session. An empty id is generated
	// and written back to s.
	PutSession(ctx context.Context, s *session.Session) error
	DeleteSession(ctx context.Context, id string) error

	snapshot.Persister

	// ClearAll removes every session and config blob.
	ClearAll(ctx context.Context) error

	// Backend names the storage backend.
	Backend() string

	Close() error
}

// Open creates the store selected by st. The file backend defaults to the
// sessions directory under [config.DataDir].
func Open(ctx context.Context, st config.StoreSettings, logger *log.Logger) (Store, error) {
	if st.Timeout.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, st.Timeout.Duration)
		defer cancel()
	}

	switch st.Backend {
	case config.BackendFile, "":
		dir := Dir(st)
		b, err := kv.NewFileBackend(dir)
		if err != nil {
			return nil, nverrors.Wrap(nverrors.ErrCodeStorage, err, "open %s", dir)
		}
		return NewKVStore(b, KVOptions{Logger: logger}), nil

	case config.BackendRedis:
		b, err := kv.NewRedisBackend(ctx, kv.RedisOptions{
			Addr:     st.RedisAddr,
			Password: st.RedisPassword,
			DB:       st.RedisDB,
		})
		if err != nil {
			return nil, nverrors.Wrap(nverrors.ErrCodeStorage, err, "connect to redis at %s", st.RedisAddr)
		}
		return NewKVStore(b, KVOptions{Logger: logger}), nil

	case config.BackendMongo:
		return NewMongoStore(ctx, st.MongoURI, st.MongoDatabase, MongoOptions{Logger: logger})
	}
	return nil, nverrors.New(nverrors.ErrCodeInvalidInput, "unknown store backend %q", st.Backend)
}

// Dir returns the directory of the file backend.
func Dir(st config.StoreSettings) string {
	if st.Dir != "" {
		return st.Dir
	}
	return filepath.Join(config.DataDir(), "sessions")
}

// observe reports an operation to the store hooks.
func observe(ctx context.Context, backend, op string, start time.Time, err error) {
	observability.Store().OnStoreOp(ctx, backend, op, time.Since(start), err)
}

func sessionNotFound(id string) error {
	return nverrors.Wrap(nverrors.ErrCodeSessionNotFound, ErrNotFound, "session %s", id)
}

func snapshotNotFound(id string, idx int) error {
	return nverrors.Wrap(nverrors.ErrCodeSnapshotNotFound, ErrNotFound, "snapshot %d of session %s", idx, id)
}

// storageError wraps backend failures. Errors that already carry a code are
// returned unchanged.
func storageError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	var e *nverrors.Error
	if errors.As(err, &e) {
		return err
	}
	return nverrors.Wrap(nverrors.ErrCodeStorage, err, format, args...)
}

func discardLogger(l *log.Logger) *log.Logger {
	if l == nil {
		return log.NewWithOptions(io.Discard, log.Options{})
	}
	return l
}
