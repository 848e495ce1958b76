package selection

// ChangeKind says which part of the selection changed.
type ChangeKind int

const (
	ChangeColumns ChangeKind = iota
	ChangeFilters
	ChangeOrderBy
	ChangeSelected
	ChangeCleared

	// ChangeModel is reported through Replace when the owner swaps the
	// catalog and refreshes the entries from it.
	ChangeModel
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeColumns:
		return "columns"
	case ChangeFilters:
		return "filters"
	case ChangeOrderBy:
		return "order_by"
	case ChangeSelected:
		return "selected"
	case ChangeCleared:
		return "cleared"
	case ChangeModel:
		return "model"
	default:
		return "unknown"
	}
}

// Change describes one mutation. Index is the affected position, or -1.
type Change struct {
	Kind  ChangeKind
	Index int
}

// Listener receives selection changes.
type Listener interface {
	SelectionChanged(Change)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(Change)

// SelectionChanged calls f(c).
func (f ListenerFunc) SelectionChanged(c Change) {
	f(c)
}
