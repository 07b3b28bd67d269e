// Package storage persists small string values outside process memory.
//
// # Overview
//
// The client keeps exactly one durable value today: the bearer token under the
// well-known key "token". The package exposes it through a key/value interface
// so the session does not care where the value lives.
//
// # Backends
//
//   - FileStorage: one file per key under a directory (default
//     $XDG_CONFIG_HOME/docreview). Files are written 0600.
//   - SQLiteStorage: a single kv table in a SQLite database (modernc.org/sqlite,
//     WAL mode). Useful when several profiles share one data directory.
//   - MemoryStorage: process-local map for tests and --ephemeral runs.
//
// # Usage
//
//	st, err := storage.Open(storage.DriverFile, "/home/me/.config/docreview")
//	if err != nil {
//	    return err
//	}
//	defer st.Close()
//
//	token, ok, err := st.Get(ctx, storage.KeyToken)
package storage
