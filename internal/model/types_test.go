package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDataType(t *testing.T) {
	tests := []struct {
		in   string
		want DataType
	}{
		{"string", DataTypeString},
		{"Text", DataTypeString},
		{" int64 ", DataTypeInt64},
		{"integer", DataTypeInt64},
		{"DOUBLE", DataTypeDouble},
		{"decimal", DataTypeDecimal},
		{"currency", DataTypeCurrency},
		{"date", DataTypeDateTime},
		{"datetime", DataTypeDateTime},
		{"bool", DataTypeBoolean},
		{"variant", DataTypeVariant},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDataType(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseDataType("float128")
	assert.Error(t, err)
}

func TestDataTypeIsText(t *testing.T) {
	assert.True(t, DataTypeString.IsText())
	for _, dt := range []DataType{DataTypeVariant, DataTypeInt64, DataTypeDouble, DataTypeDecimal, DataTypeCurrency, DataTypeDateTime, DataTypeBoolean} {
		assert.False(t, dt.IsText(), dt.String())
	}
	assert.True(t, DataTypeCurrency.IsNumeric())
	assert.False(t, DataTypeDateTime.IsNumeric())
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("")
	require.NoError(t, err)
	assert.Equal(t, RoleColumn, r)

	r, err = ParseRole("measure")
	require.NoError(t, err)
	assert.Equal(t, RoleMeasure, r)
	assert.Equal(t, "Measure", r.String())

	_, err = ParseRole("hierarchy")
	assert.Error(t, err)
}

func TestParseSortDirection(t *testing.T) {
	d, err := ParseSortDirection("")
	require.NoError(t, err)
	assert.Equal(t, Ascending, d)

	d, err = ParseSortDirection("desc")
	require.NoError(t, err)
	assert.Equal(t, Descending, d)
	assert.Equal(t, "DESC", d.String())

	_, err = ParseSortDirection("sideways")
	assert.Error(t, err)
}

func TestKeyIsCaseInsensitive(t *testing.T) {
	a := NewColumn("Customer", "Country", DataTypeString)
	b := NewColumn("CUSTOMER", "country", DataTypeString)
	assert.Equal(t, a.Key(), b.Key())

	c := NewColumn("Customer", "City", DataTypeString)
	assert.NotEqual(t, a.Key(), c.Key())
}

func TestKeyNormalisesUnicode(t *testing.T) {
	// "é" precomposed vs "e" + combining acute
	a := NewKey("Caf\u00e9", "Name")
	b := NewKey("Cafe\u0301", "Name")
	assert.Equal(t, a, b)
}

func TestAuthoredMeasure(t *testing.T) {
	m := NewAuthoredMeasure("Sales", "MyMeasure", "SUM('Sales'[Amount])")
	assert.True(t, m.IsMeasure())
	assert.True(t, m.IsAuthored())
	assert.False(t, m.ModelItem)
	assert.Equal(t, "MyMeasure", m.ObjectName())

	cat := NewMeasure("Sales", "Total Sales", DataTypeCurrency)
	assert.True(t, cat.IsMeasure())
	assert.False(t, cat.IsAuthored())
}

func TestObjectNameFallsBackToCaption(t *testing.T) {
	c := NewColumn("Sales", "Amount", DataTypeDouble)
	assert.Equal(t, "Amount", c.ObjectName())
	c.Name = "SalesAmount"
	assert.Equal(t, "SalesAmount", c.ObjectName())
}
