// Package scene implements the scene state manager: it restores the persisted
// scene, decides on every tick whether new decorative elements are due, adds them
// one at a time, and resets the scene on a confirmed request.
//
// # Scheduling
//
// The schedule is a rolling interval (six hours by default) measured from the
// last addition:
//
//	no previous addition     -> 1 element due (seeds a fresh scene)
//	elapsed < interval       -> nothing due
//	elapsed >= interval      -> floor(elapsed / interval) elements due
//
// Every element of a cycle is stamped with the time of the due-check that started
// the cycle, so after a catch-up the next addition is one interval from that check.
//
// # Adding Elements
//
// Elements are requested from a generator.Provider sequentially, with a short
// stagger between them. A provider error never escapes: the element is replaced
// by a random placeholder glyph so a cycle always adds exactly the number of
// elements that were due. Each append is persisted immediately.
//
// # Concurrency
//
// Check and AddElements share a single-slot semaphore. A call that finds the slot
// taken returns ErrBusy instead of waiting, so overlapping ticks cannot interleave
// writes. Reset does not take the slot; it bumps an epoch under the state lock and
// the running cycle stops appending as soon as it notices.
package scene
