// Package catalog resolves tables, columns and measures of a tabular model.
//
// The builder core only sees the Catalog interface. Model is the in-memory
// implementation, usually compiled from CUE definitions:
//
//	model: Sales: {
//		capabilities: treatas: true
//		table: Customer: {
//			column: Country: type: "string"
//			measure: "Customer Count": type: "int64"
//		}
//	}
package catalog
