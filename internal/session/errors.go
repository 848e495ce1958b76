package session

import (
	"errors"
	"fmt"
)

var (
	ErrUnresolvedReference = errors.New("unresolved reference")
	ErrUnknownOperator     = errors.New("unknown operator")
	ErrUnknownRole         = errors.New("unknown role")
	ErrUnknownDirection    = errors.New("unknown sort direction")
	ErrDuplicate           = errors.New("duplicate entry")
)

// DeserializationError describes one document entry that did not load.
type DeserializationError struct {
	Section Section
	Index   int
	Field   string // offending field, empty when the whole entry is at fault
	Table   string
	Caption string
	Err     error
}

func (e *DeserializationError) Error() string {
	loc := fmt.Sprintf("%s[%d] %s.%s", e.Section, e.Index, e.Table, e.Caption)
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %v", loc, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %v", loc, e.Err)
}

func (e *DeserializationError) Unwrap() error {
	return e.Err
}
