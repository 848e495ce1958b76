// Package filter defines filter operators, the rules that decide which
// operators are legal for a column, and the Predicate value that binds an
// operator and its operands to a column.
//
// APPLICABILITY:
//
// Whether an operator may be used is a pure function of the column's data
// type and the model Capabilities. It is never stored on a predicate, so a
// predicate that was legal under one model may become illegal after the
// active model changes. Callers detect that with Predicate.Validate.
//
// The presentation order of operators is pinned to the All slice and does
// not depend on the numeric values of the Operator constants.
package filter
