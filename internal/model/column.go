package model

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Column is an immutable reference to a selectable field.
type Column struct {
	Table    string   `json:"table"`
	Caption  string   `json:"caption"`
	Name     string   `json:"name,omitempty"` // model object name, defaults to Caption
	DataType DataType `json:"data_type"`
	Role     Role     `json:"role"`

	// Expression is the DAX expression of an authored measure.
	Expression string `json:"expression,omitempty"`

	// ModelItem is true when the column comes from the catalog and false for
	// measures authored inside the builder.
	ModelItem bool `json:"model_item"`
}

// NewColumn returns a catalog column reference.
func NewColumn(table, caption string, dt DataType) Column {
	return Column{Table: table, Caption: caption, DataType: dt, Role: RoleColumn, ModelItem: true}
}

// NewMeasure returns a catalog measure reference.
func NewMeasure(table, caption string, dt DataType) Column {
	return Column{Table: table, Caption: caption, DataType: dt, Role: RoleMeasure, ModelItem: true}
}

// NewAuthoredMeasure returns a user-authored measure. Authored measures
// have no catalog entry; their type is Variant until the engine says
// otherwise.
func NewAuthoredMeasure(table, caption, expression string) Column {
	return Column{
		Table:      table,
		Caption:    caption,
		DataType:   DataTypeVariant,
		Role:       RoleMeasure,
		Expression: expression,
	}
}

// ObjectName returns the name used to reference the object in query text.
func (c Column) ObjectName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Caption
}

// IsMeasure reports whether the reference is a measure.
func (c Column) IsMeasure() bool {
	return c.Role == RoleMeasure
}

// IsAuthored reports whether the reference is a measure authored in the builder.
func (c Column) IsAuthored() bool {
	return c.Role == RoleMeasure && !c.ModelItem
}

// Key returns the identity of the column.
func (c Column) Key() Key {
	return NewKey(c.Table, c.Caption)
}

// Key identifies a column by table and caption.
// Keys are comparable and safe to use as map keys.
type Key struct {
	Table   string
	Caption string
}

// NewKey builds a normalised identity key.
func NewKey(table, caption string) Key {
	return Key{Table: FoldName(table), Caption: FoldName(caption)}
}

// FoldName normalises an object name for case-insensitive comparison.
// A Caser is stateful, so each call gets its own.
func FoldName(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

// OrderItem is an ORDER BY entry.
type OrderItem struct {
	Column    Column        `json:"column"`
	Direction SortDirection `json:"direction"`
}
