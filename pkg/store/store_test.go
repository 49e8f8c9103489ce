package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/netview/pkg/config"
	nverrors "github.com/matzehuels/netview/pkg/errors"
	"github.com/matzehuels/netview/pkg/kv"
	"github.com/matzehuels/netview/pkg/network"
	"github.com/matzehuels/netview/pkg/observability"
	"github.com/matzehuels/netview/pkg/session"
	"github.com/matzehuels/netview/pkg/snapshot"
	"github.com/matzehuels/netview/pkg/viewstate"
)

func sample(name string) *session.Session {
	s := session.New(name,
		[]network.Fields{{"id": "a", "w": 1.0}, {"id": "b", "w": 2.5}, {"id": "c", "w": 4.0}},
		[]network.Fields{{"source": "a", "target": "b"}, {"source": "b", "target": "c"}},
	)
	s.ID = ""
	return s
}

// stores returns every store implementation available in this environment.
func stores(t *testing.T) map[string]Store {
	t.Helper()
	fb, err := kv.NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	out := map[string]Store{
		"memory":       NewKVStore(kv.NewMemoryBackend(), KVOptions{}),
		"file":         NewKVStore(fb, KVOptions{}),
		"uncompressed": NewKVStore(kv.NewMemoryBackend(), KVOptions{Uncompressed: true}),
	}
	if uri := os.Getenv("NETVIEW_MONGO_URI"); uri != "" {
		ctx := context.Background()
		db := "netview_test_" + time.Now().Format("150405")
		ms, err := NewMongoStore(ctx, uri, db, MongoOptions{})
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() {
			ms.ClearAll(ctx)
			ms.Close()
		})
		out["mongo"] = ms
	}
	return out
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			in := sample("net")
			if err := st.PutSession(ctx, in); err != nil {
				t.Fatal(err)
			}
			if in.ID == "" {
				t.Fatal("id not generated")
			}

			out, err := st.GetSession(ctx, in.ID)
			if err != nil {
				t.Fatal(err)
			}
			if out.Name != "net" || len(out.Nodes) != 3 || len(out.Edges) != 2 {
				t.Errorf("session = %+v", out)
			}
			if w := out.Nodes[1]["w"]; w != 2.5 {
				t.Errorf("w = %#v, want 2.5", w)
			}

			hs, err := st.SessionHeaders(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if len(hs) != 1 || hs[0].ID != in.ID || hs[0].Nodes != 3 || hs[0].Edges != 2 {
				t.Errorf("headers = %+v", hs)
			}

			if err := st.DeleteSession(ctx, in.ID); err != nil {
				t.Fatal(err)
			}
			_, err = st.GetSession(ctx, in.ID)
			if !nverrors.Is(err, nverrors.ErrCodeSessionNotFound) || !errors.Is(err, ErrNotFound) {
				t.Errorf("get deleted: %v", err)
			}
			if err := st.DeleteSession(ctx, in.ID); !nverrors.Is(err, nverrors.ErrCodeSessionNotFound) {
				t.Errorf("delete twice: %v", err)
			}
		})
	}
}

func TestSnapshots(t *testing.T) {
	ctx := context.Background()
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			s := sample("snaps")
			if err := st.PutSession(ctx, s); err != nil {
				t.Fatal(err)
			}
			for i, n := range []string{"one", "two", "three"} {
				idx, err := st.AppendSnapshot(ctx, s.ID, snapshot.Snapshot{Name: n, Positions: []snapshot.Position{{X: float64(i)}}})
				if err != nil {
					t.Fatal(err)
				}
				if idx != i {
					t.Errorf("append %s: idx = %d, want %d", n, idx, i)
				}
			}
			if err := st.RenameSnapshot(ctx, s.ID, 1, "TWO"); err != nil {
				t.Fatal(err)
			}
			if err := st.DeleteSnapshot(ctx, s.ID, 0); err != nil {
				t.Fatal(err)
			}

			out, err := st.GetSession(ctx, s.ID)
			if err != nil {
				t.Fatal(err)
			}
			var names []string
			for _, sn := range out.Snapshots {
				names = append(names, sn.Name)
			}
			if want := []string{"TWO", "three"}; !reflect.DeepEqual(names, want) {
				t.Errorf("snapshots = %v, want %v", names, want)
			}
			if out.Snapshots[1].Positions[0].X != 2 {
				t.Errorf("positions = %+v", out.Snapshots[1].Positions)
			}

			if err := st.RenameSnapshot(ctx, s.ID, 5, "x"); !nverrors.Is(err, nverrors.ErrCodeSnapshotNotFound) {
				t.Errorf("rename out of range: %v", err)
			}
			if err := st.DeleteSnapshot(ctx, s.ID, -1); !nverrors.Is(err, nverrors.ErrCodeSnapshotNotFound) {
				t.Errorf("delete out of range: %v", err)
			}
			if _, err := st.AppendSnapshot(ctx, "nope", snapshot.Snapshot{Name: "x"}); !nverrors.Is(err, nverrors.ErrCodeSessionNotFound) {
				t.Errorf("append to missing session: %v", err)
			}
		})
	}
}

// headerFailBackend fails header writes while failHeaders is set.
type headerFailBackend struct {
	kv.Backend
	failHeaders bool
}

func (b *headerFailBackend) Set(ctx context.Context, key string, data []byte) error {
	if b.failHeaders && strings.HasPrefix(key, prefixHeader) {
		return errors.New("quota exceeded")
	}
	return b.Backend.Set(ctx, key, data)
}

func TestFailedHeaderWriteRollsBack(t *testing.T) {
	ctx := context.Background()
	b := &headerFailBackend{Backend: kv.NewMemoryBackend()}
	st := NewKVStore(b, KVOptions{})

	sess := sample("rollback")
	if err := st.PutSession(ctx, sess); err != nil {
		t.Fatal(err)
	}

	b.failHeaders = true
	if _, err := st.AppendSnapshot(ctx, sess.ID, snapshot.Snapshot{Name: "lost"}); !nverrors.Is(err, nverrors.ErrCodeStorage) {
		t.Fatalf("AppendSnapshot err = %v, want STORAGE", err)
	}
	fresh := sample("fresh")
	if err := st.PutSession(ctx, fresh); err == nil {
		t.Fatal("PutSession should fail")
	}
	b.failHeaders = false

	got, err := st.GetSession(ctx, sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Snapshots) != 0 {
		t.Errorf("failed append left %d snapshots", len(got.Snapshots))
	}
	if _, err := st.GetSession(ctx, fresh.ID); !nverrors.Is(err, nverrors.ErrCodeSessionNotFound) {
		t.Errorf("failed put left the session behind: %v", err)
	}
}

func TestConfig(t *testing.T) {
	ctx := context.Background()
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok, err := st.GetConfig(ctx, "view"); ok || err != nil {
				t.Fatalf("missing config: ok=%v err=%v", ok, err)
			}
			want := json.RawMessage(`{"layout_profile":"dense"}`)
			if err := st.PutConfig(ctx, "view", want); err != nil {
				t.Fatal(err)
			}
			got, ok, err := st.GetConfig(ctx, "view")
			if err != nil || !ok || string(got) != string(want) {
				t.Errorf("GetConfig = %s %v %v", got, ok, err)
			}
			if err := st.PutConfig(ctx, "bad", json.RawMessage(`{`)); !nverrors.Is(err, nverrors.ErrCodeInvalidFormat) {
				t.Errorf("invalid json: %v", err)
			}
		})
	}
}

func TestClearAll(t *testing.T) {
	ctx := context.Background()
	st := NewKVStore(kv.NewMemoryBackend(), KVOptions{})
	st.PutSession(ctx, sample("a"))
	st.PutConfig(ctx, "k", json.RawMessage(`1`))
	if err := st.ClearAll(ctx); err != nil {
		t.Fatal(err)
	}
	hs, _ := st.SessionHeaders(ctx)
	if len(hs) != 0 {
		t.Errorf("headers after clear = %v", hs)
	}
}

func TestPutSessionValidates(t *testing.T) {
	st := NewKVStore(kv.NewMemoryBackend(), KVOptions{})
	err := st.PutSession(context.Background(), &session.Session{Name: "x"})
	if !nverrors.Is(err, nverrors.ErrCodeInvalidSession) {
		t.Errorf("err = %v", err)
	}
}

func TestSortHeaders(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	hs := []session.Header{
		{Name: "old", UpdatedAt: t0},
		{Name: "b", UpdatedAt: t0.Add(time.Hour)},
		{Name: "A", UpdatedAt: t0.Add(time.Hour)},
	}
	sortHeaders(hs)
	var got []string
	for _, h := range hs {
		got = append(got, h.Name)
	}
	if want := []string{"A", "b", "old"}; !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	st, err := Open(ctx, config.StoreSettings{Backend: config.BackendFile, Dir: t.TempDir()}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	if st.Backend() != "file" {
		t.Errorf("backend = %s", st.Backend())
	}

	_, err = Open(ctx, config.StoreSettings{Backend: "sqlite"}, nil)
	if !nverrors.Is(err, nverrors.ErrCodeInvalidInput) {
		t.Errorf("unknown backend: %v", err)
	}
}

type recordingHooks struct {
	mu  sync.Mutex
	ops []string
}

func (r *recordingHooks) OnStoreOp(_ context.Context, backend, op string, _ time.Duration, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, backend+":"+op)
}

func TestStoreHooks(t *testing.T) {
	rec := &recordingHooks{}
	observability.SetStoreHooks(rec)
	defer observability.Reset()

	ctx := context.Background()
	st := NewKVStore(kv.NewMemoryBackend(), KVOptions{})
	s := sample("hooks")
	st.PutSession(ctx, s)
	st.GetSession(ctx, s.ID)

	want := []string{"memory:put_session", "memory:get_session"}
	if !reflect.DeepEqual(rec.ops, want) {
		t.Errorf("ops = %v, want %v", rec.ops, want)
	}
}

// A view persists snapshots through the store it was given.
func TestViewPersistsSnapshots(t *testing.T) {
	ctx := context.Background()
	st := NewKVStore(kv.NewMemoryBackend(), KVOptions{})
	s := sample("view")
	if err := st.PutSession(ctx, s); err != nil {
		t.Fatal(err)
	}

	v, err := viewstate.New(s, snapshot.None, viewstate.Options{Store: st})
	if err != nil {
		t.Fatal(err)
	}
	defer v.Close()
	if _, err := v.Converge(ctx, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := v.Save(ctx, "converged"); err != nil {
		t.Fatal(err)
	}

	stored, err := st.GetSession(ctx, s.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored.Snapshots) != 1 || stored.Snapshots[0].Name != "converged" || len(stored.Snapshots[0].Positions) != 3 {
		t.Fatalf("stored snapshots = %+v", stored.Snapshots)
	}

	reopened, err := viewstate.New(stored, 0, viewstate.Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	for i := range 3 {
		a, _ := v.NodePosition(i)
		b, _ := reopened.NodePosition(i)
		if a.X != b.X || a.Y != b.Y {
			t.Errorf("node %d: saved (%v,%v) reopened (%v,%v)", i, a.X, a.Y, b.X, b.Y)
		}
	}
}
