package filter

import (
	"errors"
	"fmt"

	"github.com/roach88/qbuilder/internal/model"
)

var (
	// ErrUnknownOperator is returned when parsing an operator name fails.
	ErrUnknownOperator = errors.New("unknown filter operator")

	// ErrOperatorNotApplicable is returned when an operator is not legal for
	// the column's data type under the active capabilities.
	ErrOperatorNotApplicable = errors.New("filter operator not applicable")
)

// NotApplicableError describes which operator was rejected and why.
type NotApplicableError struct {
	Operator Operator
	Column   model.Column
	Caps     model.Capabilities
}

func (e *NotApplicableError) Error() string {
	return fmt.Sprintf("operator %s cannot be used on %s[%s] (%s)",
		e.Operator, e.Column.Table, e.Column.Caption, e.reason())
}

func (e *NotApplicableError) Unwrap() error {
	return ErrOperatorNotApplicable
}

func (e *NotApplicableError) reason() string {
	switch categoryOf(e.Operator) {
	case categoryText:
		return "text columns only"
	case categorySet:
		if !e.Column.DataType.IsText() {
			return "text columns only"
		}
		return "the model does not support TREATAS"
	case categoryOrdered:
		return "not available for text columns"
	default:
		return "not available"
	}
}
