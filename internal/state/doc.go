// Package state defines the persisted scene model and the stores that mirror it.
//
// # Overview
//
// A Scene is the ordered list of decorative elements plus the time of the last
// scheduled addition. The scene manager owns the in-memory Scene; a Store is only a
// side-effect mirror that lets the next run pick up where this one stopped.
//
// # Core Types
//
// Element:
//   - One decorative item: an image URL or a placeholder glyph
//   - Position in percent of the scene, size, stacking order, creation time
//   - Immutable once created
//
// Scene:
//   - Elements only grow, except through an explicit reset
//   - LastAdditionAt is the zero time when no addition has happened yet
//
// Store:
//   - Load never fails on bad data: absent or malformed entries yield an empty Scene
//   - Save writes both entries, Clear removes both
//
// # Persisted Layout
//
// KVStore keeps the two entries a browser build would keep in local storage:
//
//	christmasElements   JSON array of elements
//	lastElementUpdate   decimal epoch milliseconds
//
// Element JSON uses the keys id, imageUrl, position{x,y}, size{width,height},
// zIndex and addedDate (RFC 3339).
//
// Older builds wrote a calendar-day string ("Mon Dec 01 2025") to
// lastElementUpdate. Only epoch milliseconds are understood now; any other value is
// treated as absent, which makes the next due-check add a single element.
//
// # Testing Considerations
//
// MemoryStore is a ready-to-use fake; its zero value behaves like a first run.
// KVStore over localstore.Memory exercises the real encoding without touching disk.
package state
