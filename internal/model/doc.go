// Package model defines the value types shared by the query builder core:
// column references, data types, column roles, sort order and the model
// capability descriptor.
//
// Column values are small and immutable. The metadata catalog owns the
// authoritative definition of every column; the core only holds copies of
// the identity and type facts it needs and looks columns up again by Key
// whenever it has to resolve them (for example when a session is loaded).
//
// IDENTITY:
//
// Tabular object names are case-insensitive, so two references are the
// same column when their table and caption match after Unicode NFC
// normalisation and case folding. Use Key for every identity comparison;
// never compare Table/Caption strings directly.
package model
