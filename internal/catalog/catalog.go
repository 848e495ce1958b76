package catalog

import (
	"errors"
	"fmt"

	"github.com/roach88/qbuilder/internal/model"
)

// ErrNotFound is returned when a table or column does not exist in the model.
var ErrNotFound = errors.New("not found in model")

// Catalog is the view of model metadata the builder needs.
type Catalog interface {
	// ResolveColumn looks up a column or measure by table and caption.
	// Returns an error wrapping ErrNotFound when either is unknown.
	ResolveColumn(table, caption string) (model.Column, error)

	// ListTables returns table names in declaration order.
	ListTables() []string

	// Capabilities returns what the connected engine supports.
	Capabilities() model.Capabilities
}

// Table is a model table and its columns and measures.
type Table struct {
	Name    string
	Columns []model.Column
}

// Model is an immutable in-memory Catalog.
type Model struct {
	caps   model.Capabilities
	tables []Table
	index  map[model.Key]model.Column
	byName map[string]int
}

var _ Catalog = (*Model)(nil)

// NewModel builds a Model. Column tables are taken from the enclosing
// Table. Returns an error on duplicate tables or captions.
func NewModel(caps model.Capabilities, tables ...Table) (*Model, error) {
	m := &Model{
		caps:   caps,
		index:  make(map[model.Key]model.Column),
		byName: make(map[string]int, len(tables)),
	}
	for _, t := range tables {
		folded := model.FoldName(t.Name)
		if _, dup := m.byName[folded]; dup {
			return nil, fmt.Errorf("duplicate table %q", t.Name)
		}
		m.byName[folded] = len(m.tables)

		cols := make([]model.Column, len(t.Columns))
		for i, c := range t.Columns {
			c.Table = t.Name
			key := c.Key()
			if _, dup := m.index[key]; dup {
				return nil, fmt.Errorf("duplicate caption %q in table %q", c.Caption, t.Name)
			}
			m.index[key] = c
			cols[i] = c
		}
		m.tables = append(m.tables, Table{Name: t.Name, Columns: cols})
	}
	return m, nil
}

// MustModel is NewModel that panics on error. Intended for fixtures.
func MustModel(caps model.Capabilities, tables ...Table) *Model {
	m, err := NewModel(caps, tables...)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Model) ResolveColumn(table, caption string) (model.Column, error) {
	if c, ok := m.index[model.NewKey(table, caption)]; ok {
		return c, nil
	}
	if _, ok := m.byName[model.FoldName(table)]; !ok {
		return model.Column{}, fmt.Errorf("table %q: %w", table, ErrNotFound)
	}
	return model.Column{}, fmt.Errorf("%q in table %q: %w", caption, table, ErrNotFound)
}

func (m *Model) ListTables() []string {
	names := make([]string, len(m.tables))
	for i, t := range m.tables {
		names[i] = t.Name
	}
	return names
}

func (m *Model) Capabilities() model.Capabilities {
	return m.caps
}

// Table returns a copy of the named table.
func (m *Model) Table(name string) (Table, bool) {
	i, ok := m.byName[model.FoldName(name)]
	if !ok {
		return Table{}, false
	}
	t := m.tables[i]
	return Table{Name: t.Name, Columns: append([]model.Column(nil), t.Columns...)}, true
}
