package session

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/roach88/qbuilder/internal/catalog"
	"github.com/roach88/qbuilder/internal/filter"
	"github.com/roach88/qbuilder/internal/model"
	"github.com/roach88/qbuilder/internal/selection"
)

// Serialize converts a selection snapshot to a document.
func Serialize(snap selection.Snapshot, id, modelName string) Document {
	doc := Document{
		Version: Version,
		ID:      id,
		Model:   modelName,
		Columns: make([]ColumnEntry, 0, len(snap.Columns)),
		Filters: make([]FilterEntry, 0, len(snap.Filters)),
		OrderBy: make([]OrderEntry, 0, len(snap.OrderBy)),
	}
	for _, c := range snap.Columns {
		e := ColumnEntry{Table: c.Table, Caption: c.Caption, Role: c.Role.String()}
		if c.IsAuthored() {
			e.Authored = true
			e.Expression = c.Expression
		}
		doc.Columns = append(doc.Columns, e)
	}
	for _, p := range snap.Filters {
		doc.Filters = append(doc.Filters, FilterEntry{
			Table:      p.Column.Table,
			Caption:    p.Column.Caption,
			Operator:   p.Operator.String(),
			Operand1:   p.Value,
			Operand2:   p.Value2,
			Expression: authoredExpression(p.Column),
			Authored:   p.Column.IsAuthored(),
		})
	}
	for _, o := range snap.OrderBy {
		doc.OrderBy = append(doc.OrderBy, OrderEntry{
			Table:      o.Column.Table,
			Caption:    o.Column.Caption,
			Direction:  o.Direction.String(),
			Expression: authoredExpression(o.Column),
			Authored:   o.Column.IsAuthored(),
		})
	}
	return doc
}

func authoredExpression(c model.Column) string {
	if c.IsAuthored() {
		return c.Expression
	}
	return ""
}

// Unresolved is a document entry whose column is missing from the catalog.
// Entry holds the original ColumnEntry, FilterEntry or OrderEntry.
type Unresolved struct {
	Section Section
	Index   int
	Entry   any
}

// LoadResult is the outcome of Deserialize.
type LoadResult struct {
	Selection selection.Snapshot

	// Problems has one *DeserializationError per entry that did not load,
	// unresolved entries included.
	Problems []error

	// Unresolved keeps entries whose reference no longer resolves.
	Unresolved []Unresolved
}

// OK reports whether every entry loaded.
func (r *LoadResult) OK() bool {
	return len(r.Problems) == 0
}

// Deserialize rebuilds a selection from doc against cat. It never fails as
// a whole; entries that cannot load are reported in the result.
func Deserialize(doc Document, cat catalog.Catalog) *LoadResult {
	if doc.Version > Version {
		slog.Warn("session document is newer than this build",
			"version", doc.Version,
			"supported", Version)
	}

	d := &decoder{
		cat:      cat,
		result:   &LoadResult{},
		authored: make(map[model.Key]model.Column),
	}
	d.columns(doc.Columns)
	d.filters(doc.Filters)
	d.orderBy(doc.OrderBy)

	slog.Debug("session deserialized",
		"id", doc.ID,
		"columns", len(d.result.Selection.Columns),
		"filters", len(d.result.Selection.Filters),
		"order_by", len(d.result.Selection.OrderBy),
		"problems", len(d.result.Problems))
	return d.result
}

type decoder struct {
	cat      catalog.Catalog
	result   *LoadResult
	authored map[model.Key]model.Column
}

func (d *decoder) problem(section Section, index int, field, table, caption string, err error) {
	d.result.Problems = append(d.result.Problems, &DeserializationError{
		Section: section,
		Index:   index,
		Field:   field,
		Table:   table,
		Caption: caption,
		Err:     err,
	})
}

func (d *decoder) unresolved(section Section, index int, table, caption string, entry any, cause error) {
	d.problem(section, index, "", table, caption, fmt.Errorf("%w: %w", ErrUnresolvedReference, cause))
	d.result.Unresolved = append(d.result.Unresolved, Unresolved{Section: section, Index: index, Entry: entry})
}

// resolve finds a column by identity. A non-empty expression restores an
// authored measure without consulting the catalog for the caption; its
// table must still exist.
func (d *decoder) resolve(table, caption, expression string, authored bool) (model.Column, error) {
	if c, ok := d.authored[model.NewKey(table, caption)]; ok {
		return c, nil
	}
	if !authored && expression == "" {
		return d.cat.ResolveColumn(table, caption)
	}
	folded := model.FoldName(table)
	if !slices.ContainsFunc(d.cat.ListTables(), func(t string) bool { return model.FoldName(t) == folded }) {
		return model.Column{}, fmt.Errorf("table %q: %w", table, catalog.ErrNotFound)
	}
	c := model.NewAuthoredMeasure(table, caption, expression)
	d.authored[c.Key()] = c
	return c, nil
}

func (d *decoder) columns(entries []ColumnEntry) {
	seen := make(map[model.Key]bool, len(entries))
	for i, e := range entries {
		role, err := model.ParseRole(e.Role)
		if err != nil {
			d.problem(SectionColumns, i, "role", e.Table, e.Caption, fmt.Errorf("%w: %q", ErrUnknownRole, e.Role))
			continue
		}
		if e.Authored && role != model.RoleMeasure {
			d.problem(SectionColumns, i, "role", e.Table, e.Caption, fmt.Errorf("%w: authored entries must be measures", ErrUnknownRole))
			continue
		}
		key := model.NewKey(e.Table, e.Caption)
		if seen[key] {
			d.problem(SectionColumns, i, "", e.Table, e.Caption, ErrDuplicate)
			continue
		}

		expr := ""
		if e.Authored {
			expr = e.Expression
		}
		col, err := d.resolve(e.Table, e.Caption, expr, e.Authored)
		if err != nil {
			d.unresolved(SectionColumns, i, e.Table, e.Caption, e, err)
			continue
		}
		if col.Role != role {
			d.problem(SectionColumns, i, "role", e.Table, e.Caption,
				fmt.Errorf("%w: document says %s, model says %s", ErrUnknownRole, role, col.Role))
			continue
		}
		seen[key] = true
		d.result.Selection.Columns = append(d.result.Selection.Columns, col)
	}
}

func (d *decoder) filters(entries []FilterEntry) {
	for i, e := range entries {
		op, err := filter.ParseOperator(e.Operator)
		if err != nil {
			d.problem(SectionFilters, i, "operator", e.Table, e.Caption, fmt.Errorf("%w: %q", ErrUnknownOperator, e.Operator))
			continue
		}
		col, err := d.resolve(e.Table, e.Caption, e.Expression, e.Authored)
		if err != nil {
			d.unresolved(SectionFilters, i, e.Table, e.Caption, e, err)
			continue
		}
		// Applicability is not checked here. A filter that drifted out of
		// the capability set is still part of the selection and is
		// reported by synthesis.
		d.result.Selection.Filters = append(d.result.Selection.Filters, filter.New(col, op, e.Operand1, e.Operand2))
	}
}

func (d *decoder) orderBy(entries []OrderEntry) {
	seen := make(map[model.Key]bool, len(entries))
	for i, e := range entries {
		dir, err := model.ParseSortDirection(e.Direction)
		if err != nil {
			d.problem(SectionOrderBy, i, "direction", e.Table, e.Caption, fmt.Errorf("%w: %q", ErrUnknownDirection, e.Direction))
			continue
		}
		key := model.NewKey(e.Table, e.Caption)
		if seen[key] {
			d.problem(SectionOrderBy, i, "", e.Table, e.Caption, ErrDuplicate)
			continue
		}
		col, err := d.resolve(e.Table, e.Caption, e.Expression, e.Authored)
		if err != nil {
			d.unresolved(SectionOrderBy, i, e.Table, e.Caption, e, err)
			continue
		}
		seen[key] = true
		d.result.Selection.OrderBy = append(d.result.Selection.OrderBy, model.OrderItem{Column: col, Direction: dir})
	}
}
