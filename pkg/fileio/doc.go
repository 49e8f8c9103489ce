// Package fileio reads and writes session documents.
//
// Sessions travel as JSON (see package session for the shape), optionally
// gzip-compressed. Compression is chosen by extension: a path or URL whose
// path ends in ".gz" is read and written through gzip.
//
//	s, err := fileio.ReadFile("network.json.gz")
//	s, err := fileio.FetchURL(ctx, "https://example.org/network.json")
//	err := fileio.WriteFile("export.json.gz", s)
//
// Decoding fills in what a hand-written document usually lacks: a missing
// id is generated and missing node/edge arrays become empty ones. Documents
// that still fail [session.Session.Validate] are rejected with
// INVALID_SESSION.
package fileio
