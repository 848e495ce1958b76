package filter

import (
	"strings"

	"github.com/roach88/qbuilder/internal/model"
)

// Predicate binds a column to an operator and its operands.
//
// Predicate is a value type. The With* methods return modified copies so a
// predicate held by a snapshot can never change underneath a reader.
type Predicate struct {
	Column   model.Column
	Operator Operator
	Value    string // primary operand
	Value2   string // secondary operand, Between only
}

// New returns a predicate. Value2 is dropped unless op is Between.
func New(col model.Column, op Operator, value, value2 string) Predicate {
	p := Predicate{Column: col, Operator: op, Value: value, Value2: value2}
	if !op.UsesValue2() {
		p.Value2 = ""
	}
	return p
}

// Default returns a predicate on col using the first applicable operator.
func Default(col model.Column, caps model.Capabilities) Predicate {
	ops := Applicable(col.DataType, caps)
	return Predicate{Column: col, Operator: ops[0]}
}

// WithOperator returns a copy using op. Value2 is cleared unless op is Between.
func (p Predicate) WithOperator(op Operator) Predicate {
	p.Operator = op
	if !op.UsesValue2() {
		p.Value2 = ""
	}
	return p
}

// WithValues returns a copy with new operands. Value2 is ignored unless the
// operator is Between.
func (p Predicate) WithValues(value, value2 string) Predicate {
	p.Value = value
	if p.Operator.UsesValue2() {
		p.Value2 = value2
	} else {
		p.Value2 = ""
	}
	return p
}

// ShowValue reports whether an editor should display the primary operand.
func (p Predicate) ShowValue() bool {
	return p.Operator.UsesValue()
}

// ShowValue2 reports whether an editor should display the secondary operand.
func (p Predicate) ShowValue2() bool {
	return p.Operator.UsesValue2()
}

// Operators returns the operators an editor may offer for this predicate.
func (p Predicate) Operators(caps model.Capabilities) []Operator {
	return Applicable(p.Column.DataType, caps)
}

// Validate checks that the operator is still legal under caps.
func (p Predicate) Validate(caps model.Capabilities) error {
	if !IsApplicable(p.Operator, p.Column.DataType, caps) {
		return &NotApplicableError{Operator: p.Operator, Column: p.Column, Caps: caps}
	}
	return nil
}

// SplitList splits a set operand into its entries. Entries are separated by
// commas or newlines, trimmed, and empty entries are skipped.
func SplitList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
