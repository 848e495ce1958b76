package daxgen

import (
	"errors"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qbuilder/internal/filter"
	"github.com/roach88/qbuilder/internal/model"
	"github.com/roach88/qbuilder/internal/selection"
	"github.com/roach88/qbuilder/internal/testutil"
)

var (
	treatAs   = model.Capabilities{TreatAs: true}
	noTreatAs = model.Capabilities{}
)

func assertGolden(t *testing.T, name, dax string) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(dax))
}

func TestBuild_ScenarioA_ProjectionOnly(t *testing.T) {
	dax, err := BuildQuery(noTreatAs, []model.Column{testutil.Amount}, nil, nil)
	require.NoError(t, err)
	assertGolden(t, "scenario_a_projection", dax)
}

func TestBuild_ScenarioB_FilteredWithMeasure(t *testing.T) {
	columns := []model.Column{testutil.Country, testutil.TotalSales}
	filters := []filter.Predicate{filter.New(testutil.Country, filter.Is, "France", "")}

	assert.False(t, selection.IsRisky(columns))

	dax, err := BuildQuery(noTreatAs, columns, filters, nil)
	require.NoError(t, err)
	assertGolden(t, "scenario_b_filtered", dax)
}

func TestBuild_FullSelection(t *testing.T) {
	myMeasure := model.NewAuthoredMeasure("Sales", "MyMeasure", "SUM('Sales'[Amount])")
	columns := []model.Column{testutil.Country, testutil.Category, myMeasure, testutil.TotalSales}
	filters := []filter.Predicate{
		filter.New(testutil.Country, filter.In, "France, Germany", ""),
		filter.New(testutil.Category, filter.Contains, "Bike*", ""),
		filter.New(testutil.Amount, filter.Between, "10", "99.5"),
		filter.New(testutil.OrderDate, filter.GreaterThanOrEqual, "2024-01-31", ""),
		filter.New(testutil.TotalSales, filter.GreaterThan, "1000", ""),
	}
	orderBy := []model.OrderItem{
		{Column: testutil.Country, Direction: model.Ascending},
		{Column: testutil.TotalSales, Direction: model.Descending},
	}

	dax, err := BuildQuery(treatAs, columns, filters, orderBy)
	require.NoError(t, err)
	assertGolden(t, "full_selection", dax)
}

func TestBuild_MeasureFirstKeepsProjectionOrder(t *testing.T) {
	columns := []model.Column{testutil.TotalSales, testutil.Country}
	orderBy := []model.OrderItem{{Column: testutil.Country, Direction: model.Descending}}

	dax, err := BuildQuery(noTreatAs, columns, nil, orderBy)
	require.NoError(t, err)
	assertGolden(t, "reordered_projection", dax)
}

func TestBuild_EmptySelection(t *testing.T) {
	dax, err := BuildQuery(noTreatAs, nil, nil, nil)
	require.NoError(t, err)
	assertGolden(t, "empty_selection", dax)
}

func TestBuild_FilterOnly(t *testing.T) {
	filters := []filter.Predicate{
		filter.New(testutil.Country, filter.StartsWith, "Fr", ""),
		filter.New(testutil.City, filter.IsBlank, "ignored", ""),
	}

	dax, err := BuildQuery(noTreatAs, nil, filters, nil)
	require.NoError(t, err)
	assertGolden(t, "filter_only", dax)
}

func TestBuild_FilterOnlyProjectsEachColumnOnce(t *testing.T) {
	filters := []filter.Predicate{
		filter.New(testutil.Country, filter.IsNot, "Spain", ""),
		filter.New(testutil.Country, filter.IsNotBlank, "", ""),
	}
	dax, err := New(WithMarkers(false)).Build(noTreatAs, nil, filters, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, countLines(dax, "    'Customer'[Country],"))
	assert.Contains(t, dax, "'Customer'[Country] <> \"Spain\"")
	assert.Contains(t, dax, "NOT ISBLANK( 'Customer'[Country] )")
}

func TestBuild_EveryColumnReferencedOnceInOrder(t *testing.T) {
	columns := []model.Column{testutil.Country, testutil.City, testutil.Category, testutil.TotalSales, testutil.OrderCount}
	dax, err := New(WithMarkers(false)).Build(noTreatAs, columns, nil, nil)
	require.NoError(t, err)

	want := "EVALUATE\n" +
		"SUMMARIZECOLUMNS(\n" +
		"    'Customer'[Country],\n" +
		"    'Customer'[City],\n" +
		"    'Product'[Category],\n" +
		"    \"TotalSales\", [TotalSales],\n" +
		"    \"Order Count\", [Order Count]\n" +
		")\n"
	assert.Equal(t, want, dax)
}

func TestBuild_ScenarioD_InOnNumericFails(t *testing.T) {
	columns := []model.Column{testutil.Amount}
	filters := []filter.Predicate{filter.New(testutil.Amount, filter.In, "1,2", "")}

	for _, caps := range []model.Capabilities{noTreatAs, treatAs} {
		dax, err := BuildQuery(caps, columns, filters, nil)
		require.Error(t, err)
		assert.Empty(t, dax)

		var se *SynthesisError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, 0, se.Filter)
		assert.Equal(t, filter.In, se.Operator)
		assert.True(t, errors.Is(err, filter.ErrOperatorNotApplicable))
	}
}

func TestBuild_CapabilityDrift(t *testing.T) {
	columns := []model.Column{testutil.Country}
	filters := []filter.Predicate{
		filter.New(testutil.Country, filter.Is, "France", ""),
		filter.New(testutil.Country, filter.NotIn, "Spain", ""),
	}

	_, err := BuildQuery(treatAs, columns, filters, nil)
	require.NoError(t, err)

	_, err = BuildQuery(noTreatAs, columns, filters, nil)
	var se *SynthesisError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 1, se.Filter)
	assert.Contains(t, err.Error(), "filter 2")
}

func TestBuild_DoesNotMutateInputs(t *testing.T) {
	columns := []model.Column{testutil.TotalSales, testutil.Country}
	filters := []filter.Predicate{filter.New(testutil.Amount, filter.Between, "1", "2")}
	orderBy := []model.OrderItem{{Column: testutil.Country}}

	colsCopy := append([]model.Column(nil), columns...)
	filtersCopy := append([]filter.Predicate(nil), filters...)
	orderCopy := append([]model.OrderItem(nil), orderBy...)

	_, err := BuildQuery(noTreatAs, columns, filters, orderBy)
	require.NoError(t, err)

	assert.Equal(t, colsCopy, columns)
	assert.Equal(t, filtersCopy, filters)
	assert.Equal(t, orderCopy, orderBy)
}

func TestBuild_Snapshot(t *testing.T) {
	s := selection.New()
	require.NoError(t, s.AddColumn(testutil.Amount))
	dax, err := New().BuildSnapshot(noTreatAs, s.Snapshot())
	require.NoError(t, err)
	assertGolden(t, "scenario_a_projection", dax)
}

func TestBuild_AuthoredMeasureWithoutExpression(t *testing.T) {
	m := model.NewAuthoredMeasure("Sales", "MyMeasure", "  ")
	_, err := BuildQuery(noTreatAs, []model.Column{m}, nil, nil)
	require.Error(t, err)

	var se *SynthesisError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, -1, se.Filter)
	assert.True(t, errors.Is(err, ErrMissingExpression))
	assert.Contains(t, err.Error(), "'Sales'[MyMeasure]")
}

func TestBuild_AuthoredMeasureDefinedOnce(t *testing.T) {
	m := model.NewAuthoredMeasure("Sales", "Margin", "[TotalSales] -\nSUM('Sales'[Cost])")
	dax, err := New(WithMarkers(false)).Build(noTreatAs,
		[]model.Column{testutil.Country, m},
		[]filter.Predicate{filter.New(m, filter.GreaterThan, "0", "")},
		[]model.OrderItem{{Column: m, Direction: model.Descending}},
	)
	require.NoError(t, err)
	assert.Equal(t, 1, countLines(dax, "    MEASURE 'Sales'[Margin] = [TotalSales] -"))
	assert.Contains(t, dax, "\n        SUM('Sales'[Cost])\n")
	assert.Contains(t, dax, "[__m0] > 0")
	assert.Contains(t, dax, "\"Margin\", [__m0]")
	assert.Contains(t, dax, "ORDER BY\n    [Margin] DESC\n")
}

func TestBuild_OutputNamesAreUnique(t *testing.T) {
	supplierCountry := model.NewColumn("Supplier", "Country", model.DataTypeString)
	countryMeasure := model.NewMeasure("Sales", "Country", model.DataTypeInt64)

	dax, err := New(WithMarkers(false)).Build(noTreatAs,
		[]model.Column{countryMeasure, testutil.Country, supplierCountry}, nil, nil)
	require.NoError(t, err)
	assert.Contains(t, dax, "\"Country\", [__m0]")
	assert.Contains(t, dax, "\"Country (2)\", 'Customer'[Country]")
	assert.Contains(t, dax, "\"Country (3)\", 'Supplier'[Country]")
}

func TestBuild_OrderByUnprojectedColumn(t *testing.T) {
	orderBy := []model.OrderItem{
		{Column: testutil.Amount, Direction: model.Descending},
		{Column: testutil.OrderCount},
		{Column: testutil.Country},
	}
	dax, err := BuildQuery(noTreatAs, []model.Column{testutil.Country}, nil, orderBy)
	require.NoError(t, err)
	assertGolden(t, "order_by_unprojected", dax)
}

func TestBuild_OrderByOnlyEmptySelection(t *testing.T) {
	dax, err := New(WithMarkers(false)).Build(noTreatAs, nil, nil,
		[]model.OrderItem{{Column: testutil.Amount}})
	require.NoError(t, err)
	assert.Equal(t, "EVALUATE\n{ BLANK() }\n", dax)
}

func TestBuild_OrderByAfterFilterOnlyProjection(t *testing.T) {
	dax, err := New(WithMarkers(false)).Build(noTreatAs, nil,
		[]filter.Predicate{filter.New(testutil.Country, filter.IsNotBlank, "", "")},
		[]model.OrderItem{{Column: testutil.City, Direction: model.Descending}})
	require.NoError(t, err)
	assert.Contains(t, dax, "    'Customer'[Country],\n    'Customer'[City],\n")
	assert.Contains(t, dax, "ORDER BY\n    'Customer'[City] DESC\n")
}

func TestBuild_MeasureFilterComparesProjectedValue(t *testing.T) {
	filters := []filter.Predicate{
		filter.New(testutil.Amount, filter.GreaterThanOrEqual, "10", ""),
		filter.New(testutil.OrderCount, filter.GreaterThanOrEqual, "5", ""),
		filter.New(testutil.OrderCount, filter.IsNotBlank, "", ""),
	}
	dax, err := BuildQuery(noTreatAs, []model.Column{testutil.Country}, filters, nil)
	require.NoError(t, err)
	assertGolden(t, "measure_filter_unprojected", dax)
}

func TestBuild_MeasureFilterReusesProjectedMeasure(t *testing.T) {
	dax, err := New(WithMarkers(false)).Build(noTreatAs,
		[]model.Column{testutil.Country, testutil.TotalSales},
		[]filter.Predicate{filter.New(testutil.TotalSales, filter.LessThan, "5", "")},
		[]model.OrderItem{{Column: testutil.TotalSales, Direction: model.Descending}})
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(dax, ", [TotalSales]"), "measure evaluated once:\n%s", dax)
	assert.Contains(t, dax, "        [__m0] < 5\n")
	assert.Contains(t, dax, "    \"TotalSales\", [__m0]\n")
	assert.Contains(t, dax, "ORDER BY\n    [TotalSales] DESC\n")
}

func TestBuild_MarkersOff(t *testing.T) {
	dax, err := New(WithMarkers(false)).Build(noTreatAs, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "EVALUATE\n{ BLANK() }\n", dax)
}

func TestBuild_QuotesIdentifiers(t *testing.T) {
	odd := model.NewColumn("Dealer's Table", "Size [cm]", model.DataTypeString)
	dax, err := New(WithMarkers(false)).Build(noTreatAs,
		[]model.Column{odd},
		[]filter.Predicate{filter.New(odd, filter.Is, `say "hi"`, "")},
		nil)
	require.NoError(t, err)
	assert.Contains(t, dax, "'Dealer''s Table'[Size [cm]]]")
	assert.Contains(t, dax, `= "say ""hi"""`)
}

func countLines(s, line string) int {
	n := 0
	for _, l := range strings.Split(s, "\n") {
		if l == line {
			n++
		}
	}
	return n
}
