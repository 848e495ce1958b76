package daxgen

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/qbuilder/internal/filter"
	"github.com/roach88/qbuilder/internal/model"
	"github.com/roach88/qbuilder/internal/selection"
)

const (
	indent      = "    "
	startMarker = "// START QUERY BUILDER"
	endMarker   = "// END QUERY BUILDER"
)

// BetweenPolicy decides how Between treats an empty operand.
type BetweenPolicy int

const (
	// BetweenStrict rejects Between unless both operands are present.
	BetweenStrict BetweenPolicy = iota

	// BetweenOneSided turns Between with one empty operand into a single
	// >= or <= comparison.
	BetweenOneSided
)

// Synthesizer turns selections into DAX text. The zero value is not
// usable; create one with New.
type Synthesizer struct {
	between BetweenPolicy
	markers bool
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithBetweenPolicy sets the Between fallback.
func WithBetweenPolicy(p BetweenPolicy) Option {
	return func(s *Synthesizer) {
		s.between = p
	}
}

// WithMarkers turns the START/END QUERY BUILDER comment lines on or off.
func WithMarkers(on bool) Option {
	return func(s *Synthesizer) {
		s.markers = on
	}
}

// New creates a Synthesizer. Markers are on and Between is strict by default.
func New(opts ...Option) *Synthesizer {
	s := &Synthesizer{between: BetweenStrict, markers: true}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BuildQuery synthesizes with default options.
func BuildQuery(caps model.Capabilities, columns []model.Column, filters []filter.Predicate, orderBy []model.OrderItem) (string, error) {
	return New().Build(caps, columns, filters, orderBy)
}

// BuildSnapshot synthesizes a selection snapshot.
func (s *Synthesizer) BuildSnapshot(caps model.Capabilities, snap selection.Snapshot) (string, error) {
	return s.Build(caps, snap.Columns, snap.Filters, snap.OrderBy)
}

// Build synthesizes DAX for the given selection.
// Returns a *SynthesisError when a filter is illegal under caps or cannot
// be translated; no partial text is returned in that case.
func (s *Synthesizer) Build(caps model.Capabilities, columns []model.Column, filters []filter.Predicate, orderBy []model.OrderItem) (string, error) {
	// Capability drift is checked for every filter before any translation.
	for i, p := range filters {
		if err := p.Validate(caps); err != nil {
			return "", &SynthesisError{Filter: i, Column: p.Column, Operator: p.Operator, Err: err}
		}
	}

	q := &query{synth: s}
	if len(columns) == 0 && len(filters) > 0 {
		columns = filterColumns(filters)
	}
	if err := q.collect(columns, filters, orderBy); err != nil {
		return "", err
	}
	return q.render(), nil
}

// projected is one output column.
type projected struct {
	column model.Column
	name   string // unique output name
	inner  string // SUMMARIZECOLUMNS name when wrapped
}

// query accumulates the parts of one DAX statement.
type query struct {
	synth *Synthesizer

	defines    []string
	groupBy    []string
	filterArgs []string
	measures   []projected
	conditions []string // filters on measures, applied to the SUMMARIZECOLUMNS rows
	output     []projected
	orderBy    []model.OrderItem
	wrapped    bool
}

func (q *query) collect(columns []model.Column, filters []filter.Predicate, orderBy []model.OrderItem) error {
	// ORDER BY only sees the columns of the EVALUATE table, so order
	// entries outside the projection are appended to it. The { BLANK() }
	// placeholder has nothing to order.
	if len(columns) > 0 {
		columns = withOrderColumns(columns, orderBy)
		q.orderBy = orderBy
	}

	names := make(map[string]bool, len(columns))
	defined := make(map[model.Key]bool)
	// Measure filters compare the projected values, which needs the
	// SELECTCOLUMNS wrap to drop the helper columns.
	q.wrapped = measureBeforeColumn(columns) || hasMeasureFilter(filters)

	define := func(c model.Column) error {
		if !c.IsAuthored() || defined[c.Key()] {
			return nil
		}
		expr := strings.TrimSpace(c.Expression)
		if expr == "" {
			return &SynthesisError{Filter: -1, Column: c, Err: ErrMissingExpression}
		}
		defined[c.Key()] = true
		expr = strings.ReplaceAll(expr, "\n", "\n"+indent+indent)
		q.defines = append(q.defines, fmt.Sprintf("MEASURE %s = %s", columnRef(c), expr))
		return nil
	}

	for _, c := range columns {
		if err := define(c); err != nil {
			return err
		}
		p := projected{column: c, name: uniqueName(names, c.Caption)}
		if c.IsMeasure() {
			p.inner = p.name
			if q.wrapped {
				p.inner = fmt.Sprintf("__m%d", len(q.measures))
			}
			q.measures = append(q.measures, p)
		} else {
			q.groupBy = append(q.groupBy, columnRef(c))
		}
		q.output = append(q.output, p)
	}

	for i, p := range filters {
		if err := define(p.Column); err != nil {
			return err
		}
		target := ref(p.Column)
		if p.Column.IsMeasure() {
			target = bracket(q.measureColumn(p.Column))
		}
		cond, err := q.synth.conditionOn(p, target)
		if err != nil {
			return &SynthesisError{Filter: i, Column: p.Column, Operator: p.Operator, Err: err}
		}
		switch {
		case p.Column.IsMeasure():
			q.conditions = append(q.conditions, cond)
		case p.Operator == filter.In:
			// TREATAS is already a filter table.
			q.filterArgs = append(q.filterArgs, cond)
		default:
			col := columnRef(p.Column)
			q.filterArgs = append(q.filterArgs, fmt.Sprintf("KEEPFILTERS( FILTER( ALL( %s ), %s ) )", col, cond))
		}
	}
	return nil
}

// measureColumn returns the SUMMARIZECOLUMNS column holding measure m,
// adding a helper column when m is not projected.
func (q *query) measureColumn(m model.Column) string {
	key := m.Key()
	for _, p := range q.measures {
		if p.column.Key() == key {
			return p.inner
		}
	}
	// Not in output, so the SELECTCOLUMNS wrap drops it.
	p := projected{column: m, inner: fmt.Sprintf("__m%d", len(q.measures))}
	q.measures = append(q.measures, p)
	return p.inner
}

func (q *query) render() string {
	var lines []string
	if q.synth.markers {
		lines = append(lines, startMarker)
	}
	if len(q.defines) > 0 {
		lines = append(lines, "DEFINE")
		for _, d := range q.defines {
			lines = append(lines, indent+d)
		}
	}
	lines = append(lines, "EVALUATE")
	lines = append(lines, q.table()...)
	if len(q.orderBy) > 0 {
		lines = append(lines, "ORDER BY")
		for i, o := range q.orderBy {
			line := indent + q.orderRef(o.Column) + " " + o.Direction.String()
			if i < len(q.orderBy)-1 {
				line += ","
			}
			lines = append(lines, line)
		}
	}
	if q.synth.markers {
		lines = append(lines, endMarker)
	}
	return strings.Join(lines, "\n") + "\n"
}

// table returns the EVALUATE table expression.
func (q *query) table() []string {
	if len(q.output) == 0 {
		return []string{"{ BLANK() }"}
	}

	var args [][]string
	for _, g := range q.groupBy {
		args = append(args, []string{g})
	}
	for _, f := range q.filterArgs {
		args = append(args, []string{f})
	}
	for _, m := range q.measures {
		args = append(args, []string{stringLit(m.inner) + ", " + measureRef(m.column)})
	}
	expr := call("SUMMARIZECOLUMNS", args)

	if len(q.conditions) > 0 {
		expr = call("FILTER", [][]string{expr, {strings.Join(q.conditions, " && ")}})
	}

	if q.wrapped {
		args = [][]string{expr}
		for _, p := range q.output {
			src := columnRef(p.column)
			if p.column.IsMeasure() {
				src = bracket(p.inner)
			}
			args = append(args, []string{stringLit(p.name) + ", " + src})
		}
		expr = call("SELECTCOLUMNS", args)
	}
	return expr
}

// orderRef returns the ORDER BY reference for c, which is always a column
// of the result.
func (q *query) orderRef(c model.Column) string {
	key := c.Key()
	for _, p := range q.output {
		if p.column.Key() != key {
			continue
		}
		if q.wrapped || p.column.IsMeasure() {
			return bracket(p.name)
		}
		return columnRef(p.column)
	}
	panic(fmt.Sprintf("daxgen: order column %s not in the result", columnRef(c)))
}

// condition translates a predicate on its own column.
func (s *Synthesizer) condition(p filter.Predicate) (string, error) {
	return s.conditionOn(p, ref(p.Column))
}

// conditionOn translates a predicate to a boolean DAX expression over col.
// For In on a column the result is a TREATAS filter table instead.
func (s *Synthesizer) conditionOn(p filter.Predicate, col string) (string, error) {
	dt := p.Column.DataType

	switch p.Operator {
	case filter.IsBlank:
		return fmt.Sprintf("ISBLANK( %s )", col), nil
	case filter.IsNotBlank:
		return fmt.Sprintf("NOT ISBLANK( %s )", col), nil

	case filter.Is, filter.IsNot:
		lit, err := operand(dt, p.Value)
		if err != nil {
			return "", err
		}
		op := "="
		if p.Operator == filter.IsNot {
			op = "<>"
		}
		return fmt.Sprintf("%s %s %s", col, op, lit), nil

	case filter.StartsWith, filter.DoesNotStartWith, filter.Contains, filter.DoesNotContain:
		if p.Value == "" {
			return "", ErrMissingOperand
		}
		search := fmt.Sprintf("SEARCH( %s, %s, 1, 0 )", searchLit(p.Value), col)
		switch p.Operator {
		case filter.StartsWith:
			return search + " = 1", nil
		case filter.DoesNotStartWith:
			return search + " <> 1", nil
		case filter.Contains:
			return search + " >= 1", nil
		default:
			return search + " = 0", nil
		}

	case filter.In, filter.NotIn:
		items := filter.SplitList(p.Value)
		if len(items) == 0 {
			return "", ErrMissingOperand
		}
		lits := make([]string, len(items))
		for i, item := range items {
			lits[i] = stringLit(item)
		}
		set := "{ " + strings.Join(lits, ", ") + " }"
		switch {
		case p.Operator == filter.In && p.Column.IsMeasure():
			return fmt.Sprintf("%s IN %s", col, set), nil
		case p.Operator == filter.In:
			return fmt.Sprintf("TREATAS( %s, %s )", set, col), nil
		}
		return fmt.Sprintf("NOT %s IN %s", col, set), nil

	case filter.GreaterThan, filter.GreaterThanOrEqual, filter.LessThan, filter.LessThanOrEqual:
		lit, err := operand(dt, p.Value)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %s %s", col, comparison[p.Operator], lit), nil

	case filter.Between:
		return s.betweenCondition(col, dt, p.Value, p.Value2)

	default:
		panic(fmt.Sprintf("daxgen: unhandled operator %s", p.Operator))
	}
}

var comparison = map[filter.Operator]string{
	filter.GreaterThan:        ">",
	filter.GreaterThanOrEqual: ">=",
	filter.LessThan:           "<",
	filter.LessThanOrEqual:    "<=",
}

func (s *Synthesizer) betweenCondition(col string, dt model.DataType, lo, hi string) (string, error) {
	loEmpty, hiEmpty := strings.TrimSpace(lo) == "", strings.TrimSpace(hi) == ""
	if (loEmpty && hiEmpty) || ((loEmpty || hiEmpty) && s.between == BetweenStrict) {
		return "", ErrMissingOperand
	}
	var parts []string
	if !loEmpty {
		lit, err := literal(dt, lo)
		if err != nil {
			return "", err
		}
		parts = append(parts, fmt.Sprintf("%s >= %s", col, lit))
	}
	if !hiEmpty {
		lit, err := literal(dt, hi)
		if err != nil {
			return "", err
		}
		parts = append(parts, fmt.Sprintf("%s <= %s", col, lit))
	}
	return strings.Join(parts, " && "), nil
}

// operand formats a single operand. Only text accepts an empty value.
func operand(dt model.DataType, v string) (string, error) {
	if strings.TrimSpace(v) == "" && !dt.IsText() {
		return "", ErrMissingOperand
	}
	return literal(dt, v)
}

// call renders fn( args ) with one argument per line.
func call(fn string, args [][]string) []string {
	out := []string{fn + "("}
	for i, arg := range args {
		for j, line := range arg {
			line = indent + line
			if j == len(arg)-1 && i < len(args)-1 {
				line += ","
			}
			out = append(out, line)
		}
	}
	return append(out, ")")
}

// measureBeforeColumn reports whether a measure precedes a regular column,
// in which case SUMMARIZECOLUMNS alone cannot keep the projection order.
func measureBeforeColumn(columns []model.Column) bool {
	seenMeasure := false
	for _, c := range columns {
		if c.IsMeasure() {
			seenMeasure = true
		} else if seenMeasure {
			return true
		}
	}
	return false
}

// hasMeasureFilter reports whether any filter targets a measure.
func hasMeasureFilter(filters []filter.Predicate) bool {
	return slices.ContainsFunc(filters, func(p filter.Predicate) bool { return p.Column.IsMeasure() })
}

// withOrderColumns appends the order columns missing from columns.
func withOrderColumns(columns []model.Column, orderBy []model.OrderItem) []model.Column {
	out := columns
	for _, o := range orderBy {
		key := o.Column.Key()
		if !slices.ContainsFunc(out, func(c model.Column) bool { return c.Key() == key }) {
			out = append(slices.Clip(out), o.Column)
		}
	}
	return out
}

// filterColumns returns the distinct filtered columns in filter order.
func filterColumns(filters []filter.Predicate) []model.Column {
	seen := make(map[model.Key]bool, len(filters))
	var cols []model.Column
	for _, p := range filters {
		if key := p.Column.Key(); !seen[key] {
			seen[key] = true
			cols = append(cols, p.Column)
		}
	}
	return cols
}

// uniqueName returns name, or name with a numeric suffix when it is taken.
func uniqueName(taken map[string]bool, name string) string {
	candidate := name
	for n := 2; taken[model.FoldName(candidate)]; n++ {
		candidate = fmt.Sprintf("%s (%d)", name, n)
	}
	taken[model.FoldName(candidate)] = true
	return candidate
}
