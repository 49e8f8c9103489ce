// Package kv provides the byte-oriented key/value backends under the
// session store.
//
// A [Backend] stores opaque values under string keys and can list keys by
// prefix. Three implementations exist:
//
//   - [FileBackend]: one file per key under a directory (the CLI default)
//   - [MemoryBackend]: a map, used by the store tests
//   - [RedisBackend]: a Redis database, shared between machines
//
// Keys are namespaced by the caller ("session:<id>", "config:<key>").
// Backends mark transient failures with [Unavailable]; a [Retry] policy
// repeats only those.
package kv
