package selection

import (
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/qbuilder/internal/filter"
	"github.com/roach88/qbuilder/internal/model"
)

var (
	// ErrDuplicateColumn is returned when a column is already selected.
	ErrDuplicateColumn = errors.New("column already selected")

	// ErrNotFound is returned when a column key is not part of the set.
	ErrNotFound = errors.New("column not in selection")

	// ErrIndexOutOfRange is returned for an invalid filter or order index.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrNotMeasure is returned when a measure operation targets a column.
	ErrNotMeasure = errors.New("not an authored measure")
)

// RemovePolicy decides what happens to filters and order entries when their
// column is removed from Columns.
type RemovePolicy int

const (
	// RemoveKeepDependents leaves filters and order entries in place.
	// Filters do not need a projected column to be meaningful.
	RemoveKeepDependents RemovePolicy = iota

	// RemoveCascade also removes the filters and order entries on the column.
	RemoveCascade
)

// DefaultMeasurePrefix is the caption prefix for new authored measures.
const DefaultMeasurePrefix = "MyMeasure"

// Set is the selection under construction.
type Set struct {
	columns []model.Column
	filters []filter.Predicate
	orderBy []model.OrderItem

	selected     int // index into columns of the active column, -1 when none
	removePolicy RemovePolicy
	listener     Listener
}

// Option configures a Set.
type Option func(*Set)

// WithRemovePolicy sets the policy applied by RemoveColumn.
func WithRemovePolicy(p RemovePolicy) Option {
	return func(s *Set) {
		s.removePolicy = p
	}
}

// WithListener registers a change listener.
func WithListener(l Listener) Option {
	return func(s *Set) {
		s.listener = l
	}
}

// New creates an empty selection.
func New(opts ...Option) *Set {
	s := &Set{selected: -1}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetListener replaces the change listener. Pass nil to stop notifications.
func (s *Set) SetListener(l Listener) {
	s.listener = l
}

func (s *Set) notify(kind ChangeKind, index int) {
	if s.listener != nil {
		s.listener.SelectionChanged(Change{Kind: kind, Index: index})
	}
}

// Columns returns a copy of the chosen columns in projection order.
func (s *Set) Columns() []model.Column {
	return slices.Clone(s.columns)
}

// Filters returns a copy of the chosen filters.
func (s *Set) Filters() []filter.Predicate {
	return slices.Clone(s.filters)
}

// OrderBy returns a copy of the order entries in precedence order.
func (s *Set) OrderBy() []model.OrderItem {
	return slices.Clone(s.orderBy)
}

// Len returns the number of chosen columns.
func (s *Set) Len() int {
	return len(s.columns)
}

// IndexOf returns the position of key in Columns, or -1.
func (s *Set) IndexOf(key model.Key) int {
	return slices.IndexFunc(s.columns, func(c model.Column) bool { return c.Key() == key })
}

// Contains reports whether key is among the chosen columns.
func (s *Set) Contains(key model.Key) bool {
	return s.IndexOf(key) >= 0
}

// Selected returns the active column, if any.
func (s *Set) Selected() (model.Column, int, bool) {
	if s.selected < 0 || s.selected >= len(s.columns) {
		return model.Column{}, -1, false
	}
	return s.columns[s.selected], s.selected, true
}

// Select makes the column at index active.
func (s *Set) Select(index int) error {
	if index < 0 || index >= len(s.columns) {
		return fmt.Errorf("select column %d: %w", index, ErrIndexOutOfRange)
	}
	s.selected = index
	s.notify(ChangeSelected, index)
	return nil
}

// AddColumn appends col to Columns.
func (s *Set) AddColumn(col model.Column) error {
	if s.Contains(col.Key()) {
		return fmt.Errorf("%s[%s]: %w", col.Table, col.Caption, ErrDuplicateColumn)
	}
	s.columns = append(s.columns, col)
	s.notify(ChangeColumns, len(s.columns)-1)
	return nil
}

// RemoveColumn removes the column identified by key.
func (s *Set) RemoveColumn(key model.Key) error {
	idx := s.IndexOf(key)
	if idx < 0 {
		return ErrNotFound
	}
	s.columns = slices.Delete(s.columns, idx, idx+1)
	switch {
	case s.selected == idx:
		s.selected = -1
	case s.selected > idx:
		s.selected--
	}

	if s.removePolicy == RemoveCascade {
		s.filters = slices.DeleteFunc(s.filters, func(p filter.Predicate) bool { return p.Column.Key() == key })
		s.orderBy = slices.DeleteFunc(s.orderBy, func(o model.OrderItem) bool { return o.Column.Key() == key })
	}
	s.notify(ChangeColumns, idx)
	return nil
}

// MoveColumn moves the column at from to position to.
func (s *Set) MoveColumn(from, to int) error {
	active, _, hasActive := s.Selected()
	if err := move(s.columns, from, to); err != nil {
		return fmt.Errorf("move column: %w", err)
	}
	if hasActive {
		s.selected = s.IndexOf(active.Key())
	}
	s.notify(ChangeColumns, to)
	return nil
}

// AddMeasure appends a new authored measure on table and makes it the
// active column. The caption is unique among the chosen columns. Adding a
// measure never fails.
func (s *Set) AddMeasure(table, prefix string) model.Column {
	if prefix == "" {
		prefix = DefaultMeasurePrefix
	}
	m := model.NewAuthoredMeasure(table, UniqueMeasureName(s.columns, prefix), "")
	s.columns = append(s.columns, m)
	s.selected = len(s.columns) - 1
	s.notify(ChangeColumns, s.selected)
	return m
}

// SetMeasureExpression changes the expression of an authored measure.
func (s *Set) SetMeasureExpression(key model.Key, expression string) error {
	idx, err := s.authoredIndex(key)
	if err != nil {
		return err
	}
	s.columns[idx].Expression = expression
	s.rebind(key, s.columns[idx])
	s.notify(ChangeColumns, idx)
	return nil
}

// RenameMeasure changes the caption of an authored measure.
func (s *Set) RenameMeasure(key model.Key, caption string) error {
	idx, err := s.authoredIndex(key)
	if err != nil {
		return err
	}
	m := s.columns[idx]
	newKey := model.NewKey(m.Table, caption)
	if newKey != key && s.Contains(newKey) {
		return fmt.Errorf("%s[%s]: %w", m.Table, caption, ErrDuplicateColumn)
	}
	m.Caption = caption
	m.Name = ""
	s.columns[idx] = m
	s.rebind(key, m)
	s.notify(ChangeColumns, idx)
	return nil
}

// rebind points the filters and order entries on key at col, so they
// follow edits made to the projected measure.
func (s *Set) rebind(key model.Key, col model.Column) {
	for i := range s.filters {
		if s.filters[i].Column.Key() == key {
			s.filters[i].Column = col
		}
	}
	for i := range s.orderBy {
		if s.orderBy[i].Column.Key() == key {
			s.orderBy[i].Column = col
		}
	}
}

func (s *Set) authoredIndex(key model.Key) (int, error) {
	idx := s.IndexOf(key)
	if idx < 0 {
		return -1, ErrNotFound
	}
	if !s.columns[idx].IsAuthored() {
		return -1, ErrNotMeasure
	}
	return idx, nil
}

// AddFilter appends a filter on col using the first applicable operator.
// A column may carry any number of filters.
func (s *Set) AddFilter(col model.Column, caps model.Capabilities) int {
	s.filters = append(s.filters, filter.Default(col, caps))
	s.notify(ChangeFilters, len(s.filters)-1)
	return len(s.filters) - 1
}

// AddPredicate appends a fully specified filter as-is. Its operator is not
// checked so restored sessions keep filters that became illegal; use
// InvalidFilters to find them.
func (s *Set) AddPredicate(p filter.Predicate) int {
	s.filters = append(s.filters, filter.New(p.Column, p.Operator, p.Value, p.Value2))
	s.notify(ChangeFilters, len(s.filters)-1)
	return len(s.filters) - 1
}

// RemoveFilter removes the filter at index.
func (s *Set) RemoveFilter(index int) error {
	if index < 0 || index >= len(s.filters) {
		return fmt.Errorf("remove filter %d: %w", index, ErrIndexOutOfRange)
	}
	s.filters = slices.Delete(s.filters, index, index+1)
	s.notify(ChangeFilters, index)
	return nil
}

// MoveFilter moves the filter at from to position to.
func (s *Set) MoveFilter(from, to int) error {
	if err := move(s.filters, from, to); err != nil {
		return fmt.Errorf("move filter: %w", err)
	}
	s.notify(ChangeFilters, to)
	return nil
}

// SetFilterOperator changes the operator of the filter at index. The
// operator must be applicable under caps.
func (s *Set) SetFilterOperator(index int, op filter.Operator, caps model.Capabilities) error {
	if index < 0 || index >= len(s.filters) {
		return fmt.Errorf("set filter operator %d: %w", index, ErrIndexOutOfRange)
	}
	p := s.filters[index].WithOperator(op)
	if err := p.Validate(caps); err != nil {
		return err
	}
	s.filters[index] = p
	s.notify(ChangeFilters, index)
	return nil
}

// SetFilterValues changes the operands of the filter at index.
func (s *Set) SetFilterValues(index int, value, value2 string) error {
	if index < 0 || index >= len(s.filters) {
		return fmt.Errorf("set filter values %d: %w", index, ErrIndexOutOfRange)
	}
	s.filters[index] = s.filters[index].WithValues(value, value2)
	s.notify(ChangeFilters, index)
	return nil
}

// AddOrderBy appends an order entry. Any reachable column may be used,
// not only projected ones.
func (s *Set) AddOrderBy(col model.Column, dir model.SortDirection) error {
	key := col.Key()
	if slices.ContainsFunc(s.orderBy, func(o model.OrderItem) bool { return o.Column.Key() == key }) {
		return fmt.Errorf("order by %s[%s]: %w", col.Table, col.Caption, ErrDuplicateColumn)
	}
	s.orderBy = append(s.orderBy, model.OrderItem{Column: col, Direction: dir})
	s.notify(ChangeOrderBy, len(s.orderBy)-1)
	return nil
}

// RemoveOrderBy removes the order entry at index.
func (s *Set) RemoveOrderBy(index int) error {
	if index < 0 || index >= len(s.orderBy) {
		return fmt.Errorf("remove order by %d: %w", index, ErrIndexOutOfRange)
	}
	s.orderBy = slices.Delete(s.orderBy, index, index+1)
	s.notify(ChangeOrderBy, index)
	return nil
}

// MoveOrderBy changes the precedence of an order entry.
func (s *Set) MoveOrderBy(from, to int) error {
	if err := move(s.orderBy, from, to); err != nil {
		return fmt.Errorf("move order by: %w", err)
	}
	s.notify(ChangeOrderBy, to)
	return nil
}

// SetSortDirection changes the direction of the order entry at index.
func (s *Set) SetSortDirection(index int, dir model.SortDirection) error {
	if index < 0 || index >= len(s.orderBy) {
		return fmt.Errorf("set sort direction %d: %w", index, ErrIndexOutOfRange)
	}
	s.orderBy[index].Direction = dir
	s.notify(ChangeOrderBy, index)
	return nil
}

// Clear empties the selection.
func (s *Set) Clear() {
	s.columns = nil
	s.filters = nil
	s.orderBy = nil
	s.selected = -1
	s.notify(ChangeCleared, -1)
}

// HasMeasures reports whether any chosen column is a measure.
func (s *Set) HasMeasures() bool {
	return slices.ContainsFunc(s.columns, model.Column.IsMeasure)
}

// CanRunQuery reports whether there is anything to execute.
func (s *Set) CanRunQuery() bool {
	return len(s.columns) > 0
}

// CanSendTextToEditor reports whether query text can be copied to an editor.
func (s *Set) CanSendTextToEditor() bool {
	return len(s.columns) > 0
}

// CanOrderBy reports whether the editor should enable ordering.
func (s *Set) CanOrderBy() bool {
	return len(s.columns) > 0
}

// InvalidFilters returns the indexes of filters whose operator is not
// applicable under caps, for example after switching to another model.
func (s *Set) InvalidFilters(caps model.Capabilities) []int {
	var bad []int
	for i, p := range s.filters {
		if p.Validate(caps) != nil {
			bad = append(bad, i)
		}
	}
	return bad
}

// IsRisky reports whether the selection is likely to produce a crossjoin.
func (s *Set) IsRisky() bool {
	return IsRisky(s.columns)
}

// Snapshot returns an immutable copy of the selection.
func (s *Set) Snapshot() Snapshot {
	return Snapshot{
		Columns: s.Columns(),
		Filters: s.Filters(),
		OrderBy: s.OrderBy(),
	}
}

// Snapshot is a point-in-time copy of a Set, safe to hand to another
// goroutine.
type Snapshot struct {
	Columns []model.Column
	Filters []filter.Predicate
	OrderBy []model.OrderItem
}

// IsRisky reports whether the snapshot is likely to produce a crossjoin.
func (s Snapshot) IsRisky() bool {
	return IsRisky(s.Columns)
}

// Restore replaces the contents of s with snap.
func (s *Set) Restore(snap Snapshot) {
	s.columns = slices.Clone(snap.Columns)
	s.filters = slices.Clone(snap.Filters)
	s.orderBy = slices.Clone(snap.OrderBy)
	s.selected = -1
	s.notify(ChangeCleared, -1)
}

// Replace swaps in snap, for example after the columns were looked up
// again in another model, and reports a single change of kind. The active
// column stays active when snap still holds it.
func (s *Set) Replace(snap Snapshot, kind ChangeKind) {
	active, _, hasActive := s.Selected()
	s.columns = slices.Clone(snap.Columns)
	s.filters = slices.Clone(snap.Filters)
	s.orderBy = slices.Clone(snap.OrderBy)
	s.selected = -1
	if hasActive {
		s.selected = s.IndexOf(active.Key())
	}
	s.notify(kind, -1)
}

func move[T any](items []T, from, to int) error {
	if from < 0 || from >= len(items) || to < 0 || to >= len(items) {
		return ErrIndexOutOfRange
	}
	item := items[from]
	if from < to {
		copy(items[from:to], items[from+1:to+1])
	} else {
		copy(items[to+1:from+1], items[to:from])
	}
	items[to] = item
	return nil
}
