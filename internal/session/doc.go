// Package session converts a selection to and from a persisted document.
//
// Only the fields listed on the entry types are written. Capabilities and
// risk results are never persisted; they are re-derived from the live
// catalog when a document is loaded. Loading is tolerant: entries that no
// longer resolve are reported and kept aside, and everything else loads.
package session
