// Package sched provides the single-threaded event loop that drives a page.
//
// Every piece of work that touches a page (DOM events, deferred submissions,
// notification removal, animation frames) runs on one Loop, one callback at a
// time. Nothing on a page needs locking because nothing on a page runs in
// parallel.
//
// # Clocks
//
// A Loop runs in one of two modes:
//
//   - Real (New + Run): a goroutine fires due tasks off a time.Timer and
//     drains work posted from other goroutines via Post.
//   - Manual (NewManual): time only moves when Advance or Drain is called.
//     Tests and the simulate command use this mode for deterministic timing.
//
// # Lifetimes
//
// A task may be bound to a Lifetime, usually the page node it acts on:
//
//	loop.After(500*time.Millisecond, submit, sched.Bind(doc.Lifetime(form)))
//
// When the task comes due and its Lifetime is no longer alive (the node was
// removed, or the page navigated away) the task is dropped instead of run.
// CancelAll drops every pending task at once and is wired to page unload.
package sched
