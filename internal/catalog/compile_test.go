package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qbuilder/internal/model"
)

func TestLoadDir(t *testing.T) {
	m, err := LoadDir("testdata/sales", "")
	require.NoError(t, err)

	assert.Equal(t, []string{"Customer", "Product", "Sales"}, m.ListTables())
	assert.Equal(t, model.Capabilities{Model: "Sales", TreatAs: true}, m.Capabilities())

	c, err := m.ResolveColumn("sales", "totalsales")
	require.NoError(t, err)
	assert.Equal(t, "Sales", c.Table)
	assert.Equal(t, "TotalSales", c.Caption)
	assert.Equal(t, "Total Sales", c.ObjectName())
	assert.Equal(t, model.DataTypeCurrency, c.DataType)
	assert.True(t, c.IsMeasure())
	assert.False(t, c.IsAuthored())

	c, err = m.ResolveColumn("Customer", "Customer Count")
	require.NoError(t, err)
	assert.Equal(t, model.DataTypeInt64, c.DataType)
}

func TestLoadDir_DeclarationOrder(t *testing.T) {
	m, err := LoadDir("testdata/sales", "Sales")
	require.NoError(t, err)

	sales, ok := m.Table("Sales")
	require.True(t, ok)
	var captions []string
	for _, c := range sales.Columns {
		captions = append(captions, c.Caption)
	}
	// Columns first, then measures.
	assert.Equal(t, []string{"Amount", "Quantity", "OrderDate", "Returned", "TotalSales", "Order Count"}, captions)
}

func TestLoadDir_Missing(t *testing.T) {
	_, err := LoadDir("testdata/nope", "")
	assert.Error(t, err)
}

func TestCompileString_TreatAsDefaultsOff(t *testing.T) {
	m, err := CompileString(`
model: Tiny: table: T: column: C: type: "string"
`, "")
	require.NoError(t, err)
	assert.False(t, m.Capabilities().TreatAs)
	assert.Equal(t, "Tiny", m.Capabilities().Model)
}

func TestCompileString_Errors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		model string
		field string
	}{
		{"no model", `foo: 1`, "", "model"},
		{"no tables", `model: M: capabilities: treatas: true`, "", "table"},
		{"missing type", `model: M: table: T: column: C: name: "c"`, "", "column.C"},
		{"unknown type", `model: M: table: T: column: C: type: "blob"`, "", "column.C.type"},
		{"unknown model", `model: M: table: T: column: C: type: "string"`, "Other", "model"},
		{
			"ambiguous model",
			`model: A: table: T: column: C: type: "string"
model: B: table: T: column: C: type: "string"`,
			"", "model",
		},
		{"syntax", `model: {`, "", "cue"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileString(tt.src, tt.model)
			require.Error(t, err)
			var ce *CompileError
			require.True(t, errors.As(err, &ce), "got %T: %v", err, err)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestCompileString_PositionInMessage(t *testing.T) {
	_, err := CompileString("model: M: table: T: {\n\tcolumn: C: type: \"blob\"\n}\n", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model.cue:2:")
}
