package fileio

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	nverrors "github.com/matzehuels/netview/pkg/errors"
	"github.com/matzehuels/netview/pkg/network"
	"github.com/matzehuels/netview/pkg/session"
	"github.com/matzehuels/netview/pkg/snapshot"
)

const doc = `{
  "name": "tiny",
  "nodes": [{"id": "a", "w": 1.5}, {"id": "b", "w": 2}],
  "edges": [{"source": "a", "target": "b"}]
}`

func TestDecode(t *testing.T) {
	s, err := Decode(strings.NewReader(doc), false)
	if err != nil {
		t.Fatal(err)
	}
	if s.ID == "" {
		t.Error("missing id not generated")
	}
	if s.Name != "tiny" || len(s.Nodes) != 2 || len(s.Edges) != 1 {
		t.Errorf("session = %+v", s)
	}
	if w, ok := s.Nodes[1]["w"].(float64); !ok || w != 2 {
		t.Errorf("w = %#v, want float64 2", s.Nodes[1]["w"])
	}
	if s.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
}

func TestDecodeFillsMissingArrays(t *testing.T) {
	s, err := Decode(strings.NewReader(`{"name": "empty"}`), false)
	if err != nil {
		t.Fatal(err)
	}
	if s.Nodes == nil || s.Edges == nil {
		t.Errorf("arrays not filled: %+v", s)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		gz   bool
		code nverrors.Code
	}{
		{"bad json", `{"nodes": [`, false, nverrors.ErrCodeInvalidFormat},
		{"not gzip", doc, true, nverrors.ErrCodeInvalidFormat},
		{"bad id", `{"id": "../x", "nodes": [], "edges": []}`, false, nverrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.in), tt.gz)
			if !nverrors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestWriteReadFile(t *testing.T) {
	for _, name := range []string{"net.json", "net.json.gz"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			in := session.New("", []network.Fields{{"id": "a"}, {"id": "b"}}, []network.Fields{{"source": "a", "target": "b"}})
			in.Snapshots = []snapshot.Snapshot{{Name: "s", Positions: []snapshot.Position{{X: 1, Y: 2}, {X: 3, Y: 4}}}}
			if err := WriteFile(path, in); err != nil {
				t.Fatal(err)
			}
			out, err := ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if out.ID != in.ID || out.Name != "net" || len(out.Nodes) != 2 {
				t.Errorf("read back %+v", out)
			}
			if len(out.Snapshots) != 1 || out.Snapshots[0].Positions[1] != (snapshot.Position{X: 3, Y: 4}) {
				t.Errorf("snapshots = %+v", out.Snapshots)
			}
		})
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.json"))
	if !nverrors.Is(err, nverrors.ErrCodeFileNotFound) {
		t.Errorf("err = %v, want FILE_NOT_FOUND", err)
	}
}

func TestFetchURLGzip(t *testing.T) {
	body, err := Marshal(map[string]any{
		"nodes": []map[string]any{{"id": "x"}},
		"edges": []any{},
	}, true)
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer srv.Close()

	s, err := FetchURL(context.Background(), srv.URL+"/data/remote.json.gz")
	if err != nil {
		t.Fatal(err)
	}
	if s.Name != "remote" || len(s.Nodes) != 1 {
		t.Errorf("session = %+v", s)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	type payload struct {
		A int    `json:"a"`
		B string `json:"b"`
	}
	for _, gz := range []bool{false, true} {
		data, err := Marshal(payload{A: 1, B: "x"}, gz)
		if err != nil {
			t.Fatal(err)
		}
		if gz == bytes.HasPrefix(data, []byte("{")) {
			t.Errorf("gzip=%v produced %q...", gz, data[:2])
		}
		var out payload
		if err := Unmarshal(data, gz, &out); err != nil {
			t.Fatal(err)
		}
		if out != (payload{A: 1, B: "x"}) {
			t.Errorf("gzip=%v: %+v", gz, out)
		}
	}
}

func TestBaseName(t *testing.T) {
	tests := map[string]string{
		"/tmp/net.json":  "net",
		"net.json.gz":    "net",
		"/data/graph":    "graph",
		"archive.tar.gz": "archive",
		"/":              "",
	}
	for in, want := range tests {
		if got := baseName(in); got != want {
			t.Errorf("baseName(%q) = %q, want %q", in, got, want)
		}
	}
}
