package daxgen

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/qbuilder/internal/model"
)

// dateLayouts are the accepted DateTime operand formats, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

func tableRef(table string) string {
	return "'" + strings.ReplaceAll(table, "'", "''") + "'"
}

func bracket(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

func columnRef(c model.Column) string {
	return tableRef(c.Table) + bracket(c.ObjectName())
}

func measureRef(c model.Column) string {
	return bracket(c.ObjectName())
}

// ref returns the reference used for c inside an expression.
func ref(c model.Column) string {
	if c.IsMeasure() {
		return measureRef(c)
	}
	return columnRef(c)
}

func stringLit(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// searchLit quotes s for SEARCH, escaping its wildcards with ~.
func searchLit(s string) string {
	r := strings.NewReplacer("~", "~~", "*", "~*", "?", "~?")
	return stringLit(r.Replace(s))
}

// literal formats an operand for a column of type dt.
func literal(dt model.DataType, v string) (string, error) {
	switch dt {
	case model.DataTypeString:
		return stringLit(v), nil
	case model.DataTypeInt64:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return "", fmt.Errorf("%w: %q is not an integer", ErrInvalidOperand, v)
		}
		return strconv.FormatInt(n, 10), nil
	case model.DataTypeDouble, model.DataTypeDecimal, model.DataTypeCurrency:
		return number(v)
	case model.DataTypeDateTime:
		return dateLiteral(v)
	case model.DataTypeBoolean:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return "", fmt.Errorf("%w: %q is not a boolean", ErrInvalidOperand, v)
		}
		if b {
			return "TRUE()", nil
		}
		return "FALSE()", nil
	default:
		// Variant: numbers stay numbers, everything else is text.
		if lit, err := number(v); err == nil {
			return lit, nil
		}
		return stringLit(v), nil
	}
}

func number(v string) (string, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("%w: %q is not a number", ErrInvalidOperand, v)
	}
	return strconv.FormatFloat(f, 'f', -1, 64), nil
}

func dateLiteral(v string) (string, error) {
	s := strings.TrimSpace(v)
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		lit := fmt.Sprintf("DATE( %d, %d, %d )", t.Year(), int(t.Month()), t.Day())
		if h, m, sec := t.Clock(); h != 0 || m != 0 || sec != 0 {
			lit += fmt.Sprintf(" + TIME( %d, %d, %d )", h, m, sec)
		}
		return lit, nil
	}
	return "", fmt.Errorf("%w: %q is not a date", ErrInvalidOperand, v)
}
