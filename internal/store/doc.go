// Package store provides SQLite-backed storage for saved builder sessions
// and the log of query execution requests.
//
// # Tables
//
//   - sessions: one row per saved session, keyed by name. The document is
//     stored as JSON text.
//   - query_log: append-only log of execution requests. Rows are ordered
//     by seq, an autoincrement logical clock, never by timestamp.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
