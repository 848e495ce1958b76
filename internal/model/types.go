package model

import (
	"fmt"
	"strings"
)

// DataType is the catalog data type of a column or measure.
type DataType int

const (
	DataTypeVariant DataType = iota
	DataTypeString
	DataTypeInt64
	DataTypeDouble
	DataTypeDecimal
	DataTypeCurrency
	DataTypeDateTime
	DataTypeBoolean
)

var dataTypeNames = map[DataType]string{
	DataTypeVariant:  "variant",
	DataTypeString:   "string",
	DataTypeInt64:    "int64",
	DataTypeDouble:   "double",
	DataTypeDecimal:  "decimal",
	DataTypeCurrency: "currency",
	DataTypeDateTime: "datetime",
	DataTypeBoolean:  "boolean",
}

// dataTypeAliases maps accepted spellings to data types.
var dataTypeAliases = map[string]DataType{
	"variant":  DataTypeVariant,
	"string":   DataTypeString,
	"text":     DataTypeString,
	"int64":    DataTypeInt64,
	"integer":  DataTypeInt64,
	"int":      DataTypeInt64,
	"double":   DataTypeDouble,
	"decimal":  DataTypeDecimal,
	"currency": DataTypeCurrency,
	"datetime": DataTypeDateTime,
	"date":     DataTypeDateTime,
	"boolean":  DataTypeBoolean,
	"bool":     DataTypeBoolean,
}

// IsText reports whether values of this type are strings.
// Every other type is treated as "numeric or other" by the filter rules.
func (d DataType) IsText() bool {
	return d == DataTypeString
}

// IsNumeric reports whether the type holds plain numbers.
func (d DataType) IsNumeric() bool {
	switch d {
	case DataTypeInt64, DataTypeDouble, DataTypeDecimal, DataTypeCurrency:
		return true
	default:
		return false
	}
}

func (d DataType) String() string {
	if name, ok := dataTypeNames[d]; ok {
		return name
	}
	return fmt.Sprintf("DataType(%d)", int(d))
}

// ParseDataType parses a data type name (case-insensitive).
func ParseDataType(s string) (DataType, error) {
	d, ok := dataTypeAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return DataTypeVariant, fmt.Errorf("unknown data type %q", s)
	}
	return d, nil
}

// Role classifies a column reference. Behaviour differs only in a few
// places (crossjoin risk, projection, measure authoring), so the role is a
// tag on Column rather than a separate type.
type Role int

const (
	RoleColumn Role = iota
	RoleMeasure
)

func (r Role) String() string {
	switch r {
	case RoleColumn:
		return "Column"
	case RoleMeasure:
		return "Measure"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// ParseRole parses "Column" or "Measure" (case-insensitive).
// An empty string is a Column, so documents that omit the role still load.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "column":
		return RoleColumn, nil
	case "measure":
		return RoleMeasure, nil
	default:
		return RoleColumn, fmt.Errorf("unknown role %q", s)
	}
}

// SortDirection is the direction of an ORDER BY entry.
type SortDirection int

const (
	Ascending SortDirection = iota
	Descending
)

func (s SortDirection) String() string {
	if s == Descending {
		return "DESC"
	}
	return "ASC"
}

// ParseSortDirection parses ASC/DESC (case-insensitive, empty means ASC).
func ParseSortDirection(s string) (SortDirection, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "ASC", "ASCENDING":
		return Ascending, nil
	case "DESC", "DESCENDING":
		return Descending, nil
	default:
		return Ascending, fmt.Errorf("unknown sort direction %q", s)
	}
}

// Capabilities describes optional query features of the connected model.
//
// The descriptor is refreshed whenever the active model changes and is
// read-only to the core. It is never persisted with a session.
type Capabilities struct {
	Model string `json:"model,omitempty"` // model name, informational only

	// TreatAs is true when the model supports TREATAS, which the In and
	// NotIn filters on text columns rely on.
	TreatAs bool `json:"treatas"`
}
