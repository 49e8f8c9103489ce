package fileio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	nverrors "github.com/matzehuels/netview/pkg/errors"
	"github.com/matzehuels/netview/pkg/httputil"
	"github.com/matzehuels/netview/pkg/network"
	"github.com/matzehuels/netview/pkg/session"
)

// GzipExt marks compressed documents.
const GzipExt = ".gz"

// IsGzip reports whether name ends in ".gz".
func IsGzip(name string) bool {
	return strings.EqualFold(filepath.Ext(name), GzipExt)
}

// =============================================================================
// Generic JSON codec
// =============================================================================

// DecodeJSON decodes one JSON value from r into v, decompressing first when
// gzipped is true.
func DecodeJSON(r io.Reader, gzipped bool, v any) error {
	if gzipped {
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nverrors.Wrap(nverrors.ErrCodeInvalidFormat, err, "gzip")
		}
		defer zr.Close()
		r = zr
	}
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return nverrors.Wrap(nverrors.ErrCodeInvalidFormat, err, "decode")
	}
	return nil
}

// Encode writes v as indented JSON to w, gzip-compressed when gzipped is
// true.
func Encode(w io.Writer, v any, gzipped bool) error {
	var zw *gzip.Writer
	if gzipped {
		zw = gzip.NewWriter(w)
		w = zw
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if zw != nil {
		if err := zw.Close(); err != nil {
			return fmt.Errorf("gzip: %w", err)
		}
	}
	return nil
}

// Marshal is Encode into a byte slice.
func Marshal(v any, gzipped bool) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, v, gzipped); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal is DecodeJSON from a byte slice.
func Unmarshal(data []byte, gzipped bool, v any) error {
	return DecodeJSON(bytes.NewReader(data), gzipped, v)
}

// =============================================================================
// Sessions
// =============================================================================

// Decode reads a session document from r.
func Decode(r io.Reader, gzipped bool) (*session.Session, error) {
	var s session.Session
	if err := DecodeJSON(r, gzipped, &s); err != nil {
		return nil, err
	}
	normalize(&s)
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// normalize fills defaults and turns json.Number values back into plain
// float64 or string field values.
func normalize(s *session.Session) {
	if s.ID == "" {
		s.ID = session.GenerateID()
	}
	if s.Nodes == nil {
		s.Nodes = []network.Fields{}
	}
	if s.Edges == nil {
		s.Edges = []network.Fields{}
	}
	for _, recs := range [][]network.Fields{s.Nodes, s.Edges} {
		for _, rec := range recs {
			for k, v := range rec {
				if n, ok := v.(json.Number); ok {
					rec[k] = numberValue(n)
				}
			}
		}
	}
	for i := range s.Snapshots {
		for j, f := range s.Snapshots[i].Filters {
			if n, ok := f.Value.(json.Number); ok {
				s.Snapshots[i].Filters[j].Value = numberValue(n)
			}
		}
	}
	now := time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = s.CreatedAt
	}
}

func numberValue(n json.Number) any {
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

// ReadFile reads a session from path. A missing name is taken from the file
// name.
func ReadFile(path string) (*session.Session, error) {
	if err := nverrors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nverrors.Wrap(nverrors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	s, err := Decode(f, IsGzip(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = baseName(path)
	}
	return s, nil
}

// FetchURL downloads a session from rawURL.
func FetchURL(ctx context.Context, rawURL string) (*session.Session, error) {
	return FetchURLWith(ctx, httputil.NewClient(), rawURL)
}

// FetchURLWith downloads a session using client.
func FetchURLWith(ctx context.Context, client *httputil.Client, rawURL string) (*session.Session, error) {
	if err := nverrors.ValidateURL(rawURL); err != nil {
		return nil, err
	}
	data, err := client.Fetch(ctx, rawURL)
	if err != nil {
		return nil, nverrors.Wrap(nverrors.ErrCodeNetwork, err, "fetch %s", rawURL)
	}
	u, _ := url.Parse(rawURL)
	s, err := Decode(bytes.NewReader(data), IsGzip(u.Path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rawURL, err)
	}
	if s.Name == "" {
		s.Name = baseName(u.Path)
	}
	return s, nil
}

// WriteFile writes v to path as JSON, gzip-compressed for ".gz" paths.
// The file is replaced atomically.
func WriteFile(path string, v any) error {
	if err := nverrors.ValidatePath(path); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".netview-*")
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, v, IsGzip(path)); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func baseName(p string) string {
	name := filepath.Base(p)
	if IsGzip(name) {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if name == "." || name == "/" {
		return ""
	}
	return name
}
