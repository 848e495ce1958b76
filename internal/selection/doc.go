// Package selection holds the builder's current choice of columns,
// measures, filters and ordering.
//
// A Set is owned by exactly one goroutine, the one running the interactive
// session. It has no internal locking. Work that runs elsewhere (query
// synthesis, risk checks) must operate on a Snapshot taken by the owner.
//
// Every mutation is reported to the registered Listener after it has been
// applied, so observers always see the new state.
package selection
