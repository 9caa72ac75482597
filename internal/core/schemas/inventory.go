// Package schemas registers the built-in import schemas.
//
// Import it for side effects from the binary entry point:
//
//	import _ "github.com/arvo-app/importer/internal/core/schemas"
package schemas

import "github.com/arvo-app/importer/internal/core"

// Inventory is the canonical ARVO import: product stock lists exported
// from supplier systems. Reason strings are part of the UI contract and
// must not be reworded.
func init() {
	core.RegisterSchema(core.ImportSchema{
		Key:   "inventory",
		Label: "Inventory",
		Fields: []core.FieldSpec{
			{
				Field:    "sku",
				Label:    "SKU",
				Required: true,
				Aliases:  []string{"sku", "part", "item number", "item no", "product code", "code"},
			},
			{
				Field:    "name",
				Label:    "Product Name",
				Required: true,
				Aliases:  []string{"name", "description", "product", "title"},
			},
			{
				Field:    "quantity",
				Label:    "Quantity",
				Required: true,
				Numeric:  true,
				Aliases:  []string{"qty", "on hand", "stock", "quantity"},
			},
			{
				Field:   "cost",
				Label:   "Cost",
				Numeric: true,
				Aliases: []string{"cost", "price", "unit cost"},
			},
		},
		Rules: []core.RowRule{
			core.RequireFields("Missing SKU or Product Name", "sku", "name"),
			core.NumericField("Quantity must be a number", "quantity"),
		},
	})
}
