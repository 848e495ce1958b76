// Package builder is the session controller that sits between an editor
// and the query core.
//
// A Builder owns one selection and the catalog it was built against. Every
// mutation invalidates the cached query text and is published to the
// Observer. Query text is synthesized lazily, on the first call to
// QueryText, RunQuery or SendTextToEditor after a change.
//
// Thread-safety model:
//   - A Builder must be used from the goroutine that owns the editing
//     session. It does no locking.
//   - Snapshot() returns a copy that may be handed to other goroutines,
//     for example to synthesize in the background.
//
// The Builder never runs queries. RunQuery hands an ExecutionRequest to an
// Executor supplied by the caller.
package builder
