// Package localstore provides a small string key/value store that stands in for a
// browser's origin-scoped local storage.
//
// Two implementations are available:
//
//   - SQLite: a single-table database file (modernc.org/sqlite, no cgo) used by the
//     running program. Each user gets one file, so the store is scoped the same way
//     local storage is scoped to an origin.
//   - Memory: a map guarded by a mutex, used by tests and by callers that do not
//     need persistence.
//
// Keys and values are opaque strings. Callers own their encoding; the scene state
// package stores JSON and decimal timestamps here.
package localstore
