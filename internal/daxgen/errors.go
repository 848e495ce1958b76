package daxgen

import (
	"errors"
	"fmt"

	"github.com/roach88/qbuilder/internal/filter"
	"github.com/roach88/qbuilder/internal/model"
)

var (
	// ErrMissingOperand is returned when an operator needs an operand that is empty.
	ErrMissingOperand = errors.New("missing filter value")

	// ErrInvalidOperand is returned when an operand does not parse as the column's type.
	ErrInvalidOperand = errors.New("invalid filter value")

	// ErrMissingExpression is returned for an authored measure without an expression.
	ErrMissingExpression = errors.New("measure has no expression")
)

// SynthesisError reports why query text could not be produced.
// Filter is the index of the offending filter, or -1 when the problem is
// not a filter (an authored measure without an expression).
type SynthesisError struct {
	Filter   int
	Column   model.Column
	Operator filter.Operator
	Err      error
}

func (e *SynthesisError) Error() string {
	if e.Filter < 0 {
		return fmt.Sprintf("measure %s: %v", columnRef(e.Column), e.Err)
	}
	return fmt.Sprintf("filter %d on %s (%s): %v", e.Filter+1, columnRef(e.Column), e.Operator, e.Err)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}
