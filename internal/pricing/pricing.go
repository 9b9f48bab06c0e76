// Package pricing derives ingredient costs and product sale prices. All
// functions are pure; rounding happens only at render time.
package pricing

import "github.com/dulcelimon/pasteleria/internal/catalog"

// Lookup resolves an ingredient by id. *catalog.Catalog satisfies it.
type Lookup interface {
	FindIngredient(id string) (catalog.Ingredient, bool)
}

// Result groups the derived values for a product.
type Result struct {
	TotalCost float64
	SalePrice float64
}

// CostOf returns the cost of using quantity of ing, with quantity expressed
// in the ingredient's unit.
//
// For kg, g, litro and ml the quantity is treated as already being in the
// small unit (grams or milliliters) and divided by 1000 regardless of which
// label is set. Prices users have saved depend on that divisor applying to
// all four labels, so it must not be "corrected" per unit.
func CostOf(ing catalog.Ingredient, quantity float64) float64 {
	if ing.Unit == catalog.Piece {
		return quantity * ing.PricePerKg
	}
	return quantity / 1000 * ing.PricePerKg
}

// CostOfProduct sums the cost of every line item in insertion order and
// applies the product margin. A line whose ingredient no longer exists
// contributes zero. A product with no items prices at zero; requiring at
// least one item is the catalog's commit-time rule, not a pricing concern.
func CostOfProduct(p catalog.Product, ingredients Lookup) Result {
	total := 0.0
	for _, it := range p.Items {
		ing, ok := ingredients.FindIngredient(it.IngredientID)
		if !ok {
			continue
		}
		total += CostOf(ing, it.Quantity)
	}

	return Result{
		TotalCost: total,
		SalePrice: total * (1 + p.MarginPercent/100),
	}
}
