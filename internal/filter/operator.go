package filter

import (
	"fmt"
	"strings"

	"github.com/roach88/qbuilder/internal/model"
)

// Operator is a filter operator.
type Operator int

const (
	Is Operator = iota
	IsNot
	IsBlank
	IsNotBlank
	StartsWith
	DoesNotStartWith
	Contains
	DoesNotContain
	In
	NotIn
	GreaterThan
	GreaterThanOrEqual
	LessThan
	LessThanOrEqual
	Between
)

// All lists every operator in presentation order.
var All = []Operator{
	Is, IsNot, IsBlank, IsNotBlank,
	StartsWith, DoesNotStartWith, Contains, DoesNotContain,
	In, NotIn,
	GreaterThan, GreaterThanOrEqual, LessThan, LessThanOrEqual, Between,
}

var operatorNames = map[Operator]string{
	Is:                 "Is",
	IsNot:              "IsNot",
	IsBlank:            "IsBlank",
	IsNotBlank:         "IsNotBlank",
	StartsWith:         "StartsWith",
	DoesNotStartWith:   "DoesNotStartWith",
	Contains:           "Contains",
	DoesNotContain:     "DoesNotContain",
	In:                 "In",
	NotIn:              "NotIn",
	GreaterThan:        "GreaterThan",
	GreaterThanOrEqual: "GreaterThanOrEqual",
	LessThan:           "LessThan",
	LessThanOrEqual:    "LessThanOrEqual",
	Between:            "Between",
}

// category groups operators that share one applicability rule.
type category int

const (
	categoryAny category = iota
	categoryText
	categorySet
	categoryOrdered
)

// categoryOf returns the rule group of an operator.
// Panics on values outside the enumeration: that is a programming error,
// never a user-facing condition.
func categoryOf(op Operator) category {
	switch op {
	case Is, IsNot, IsBlank, IsNotBlank:
		return categoryAny
	case StartsWith, DoesNotStartWith, Contains, DoesNotContain:
		return categoryText
	case In, NotIn:
		return categorySet
	case GreaterThan, GreaterThanOrEqual, LessThan, LessThanOrEqual, Between:
		return categoryOrdered
	default:
		panic(fmt.Sprintf("filter: unknown operator %d", int(op)))
	}
}

func (op Operator) String() string {
	if name, ok := operatorNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Operator(%d)", int(op))
}

// Valid reports whether op is a member of the enumeration.
func (op Operator) Valid() bool {
	_, ok := operatorNames[op]
	return ok
}

// UsesValue reports whether the operator reads the primary operand.
func (op Operator) UsesValue() bool {
	return op != IsBlank && op != IsNotBlank
}

// UsesValue2 reports whether the operator reads the secondary operand.
func (op Operator) UsesValue2() bool {
	return op == Between
}

// ParseOperator parses an operator name (case-insensitive).
func ParseOperator(s string) (Operator, error) {
	want := strings.TrimSpace(s)
	for _, op := range All {
		if strings.EqualFold(operatorNames[op], want) {
			return op, nil
		}
	}
	return Is, fmt.Errorf("%w: %q", ErrUnknownOperator, s)
}

// Applicable returns the operators legal for a column of the given data
// type under caps, in presentation order.
func Applicable(dt model.DataType, caps model.Capabilities) []Operator {
	ops := make([]Operator, 0, len(All))
	for _, op := range All {
		if IsApplicable(op, dt, caps) {
			ops = append(ops, op)
		}
	}
	return ops
}

// IsApplicable reports whether op is legal for dt under caps.
func IsApplicable(op Operator, dt model.DataType, caps model.Capabilities) bool {
	switch categoryOf(op) {
	case categoryAny:
		return true
	case categoryText:
		return dt.IsText()
	case categorySet:
		return dt.IsText() && caps.TreatAs
	case categoryOrdered:
		return !dt.IsText()
	}
	return false
}
