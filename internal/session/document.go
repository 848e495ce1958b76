package session

// Version is the document version written by Serialize.
const Version = 1

// Document is the persisted form of a selection.
type Document struct {
	Version int           `json:"version" yaml:"version"`
	ID      string        `json:"id,omitempty" yaml:"id,omitempty"`
	Model   string        `json:"model,omitempty" yaml:"model,omitempty"`
	Columns []ColumnEntry `json:"columns" yaml:"columns"`
	Filters []FilterEntry `json:"filters" yaml:"filters"`
	OrderBy []OrderEntry  `json:"order_by" yaml:"order_by"`
}

// ColumnEntry is a projected column. Catalog columns are stored by
// identity only; authored measures also carry their expression.
type ColumnEntry struct {
	Table      string `json:"table" yaml:"table"`
	Caption    string `json:"caption" yaml:"caption"`
	Role       string `json:"role,omitempty" yaml:"role,omitempty"`
	Expression string `json:"expression,omitempty" yaml:"expression,omitempty"`
	Authored   bool   `json:"authored,omitempty" yaml:"authored,omitempty"`
}

// FilterEntry is a filter predicate. Authored and Expression are set only
// when the filtered column is an authored measure, so the filter still
// loads after the measure left Columns.
type FilterEntry struct {
	Table      string `json:"table" yaml:"table"`
	Caption    string `json:"caption" yaml:"caption"`
	Operator   string `json:"operator" yaml:"operator"`
	Operand1   string `json:"operand1" yaml:"operand1"`
	Operand2   string `json:"operand2" yaml:"operand2"`
	Expression string `json:"expression,omitempty" yaml:"expression,omitempty"`
	Authored   bool   `json:"authored,omitempty" yaml:"authored,omitempty"`
}

// OrderEntry is an ORDER BY item.
type OrderEntry struct {
	Table      string `json:"table" yaml:"table"`
	Caption    string `json:"caption" yaml:"caption"`
	Direction  string `json:"direction,omitempty" yaml:"direction,omitempty"`
	Expression string `json:"expression,omitempty" yaml:"expression,omitempty"`
	Authored   bool   `json:"authored,omitempty" yaml:"authored,omitempty"`
}

// Section names a list in the document.
type Section string

const (
	SectionColumns Section = "columns"
	SectionFilters Section = "filters"
	SectionOrderBy Section = "order_by"
)
