// Package quote builds customer quotes from catalog products and renders
// them as shareable plain text.
package quote

import (
	"github.com/dulcelimon/pasteleria/internal/catalog"
	"github.com/dulcelimon/pasteleria/internal/pricing"
)

// Catalog is the read surface the quote needs. *catalog.Catalog satisfies it.
type Catalog interface {
	FindProduct(id string) (catalog.Product, bool)
	FindIngredient(id string) (catalog.Ingredient, bool)
}

// Line is one ordered product with its quantity.
type Line struct {
	ProductID string
	Quantity  int
}

// Quote is a transient draft for one client. It stays editable after being
// rendered; nothing here is persisted.
type Quote struct {
	Client       string
	DeliveryDate string
	Lines        []Line
}

// AddLine appends a product to the quote. Repeat orders of a product already
// in the quote merge into its existing line by summing quantities.
func (q *Quote) AddLine(productID string, quantity int) error {
	if quantity <= 0 {
		return &catalog.ValidationError{Field: "cantidad", Reason: "debe ser mayor a 0"}
	}

	for i := range q.Lines {
		if q.Lines[i].ProductID == productID {
			q.Lines[i].Quantity += quantity
			return nil
		}
	}
	q.Lines = append(q.Lines, Line{ProductID: productID, Quantity: quantity})
	return nil
}

// RemoveLine drops the line for productID if present; no-op otherwise.
func (q *Quote) RemoveLine(productID string) {
	kept := q.Lines[:0]
	for _, l := range q.Lines {
		if l.ProductID != productID {
			kept = append(kept, l)
		}
	}
	q.Lines = kept
}

// Total sums sale price times quantity over the lines. A line whose product
// no longer exists in the catalog is skipped silently; a stale quote still
// totals what it can resolve.
func (q *Quote) Total(cat Catalog) float64 {
	total := 0.0
	for _, l := range q.Lines {
		p, ok := cat.FindProduct(l.ProductID)
		if !ok {
			continue
		}
		total += pricing.CostOfProduct(p, cat).SalePrice * float64(l.Quantity)
	}
	return total
}
