// Package testutil provides a sample model and deterministic helpers for tests.
package testutil

import (
	"github.com/roach88/qbuilder/internal/catalog"
	"github.com/roach88/qbuilder/internal/model"
)

// Sample columns of the Sales model.
var (
	Country   = model.NewColumn("Customer", "Country", model.DataTypeString)
	City      = model.NewColumn("Customer", "City", model.DataTypeString)
	Category  = model.NewColumn("Product", "Category", model.DataTypeString)
	Amount    = model.NewColumn("Sales", "Amount", model.DataTypeDouble)
	Quantity  = model.NewColumn("Sales", "Quantity", model.DataTypeInt64)
	OrderDate = model.NewColumn("Sales", "OrderDate", model.DataTypeDateTime)
	Returned  = model.NewColumn("Sales", "Returned", model.DataTypeBoolean)

	TotalSales = model.NewMeasure("Sales", "TotalSales", model.DataTypeCurrency)
	OrderCount = model.NewMeasure("Sales", "Order Count", model.DataTypeInt64)
)

// Catalog returns the Sales model. treatAs sets the TREATAS capability.
func Catalog(treatAs bool) *catalog.Model {
	return catalog.MustModel(model.Capabilities{Model: "Sales", TreatAs: treatAs},
		catalog.Table{Name: "Customer", Columns: []model.Column{Country, City}},
		catalog.Table{Name: "Product", Columns: []model.Column{Category}},
		catalog.Table{Name: "Sales", Columns: []model.Column{
			Amount, Quantity, OrderDate, Returned, TotalSales, OrderCount,
		}},
	)
}
