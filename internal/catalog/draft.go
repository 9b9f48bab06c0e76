package catalog

import "math"

// ProductDraft accumulates line items for a product before it is committed
// to the catalog. The draft is caller-owned and transient; nothing is
// visible in the catalog until Commit.
type ProductDraft struct {
	id            string
	name          string
	marginPercent float64
	items         []LineItem
}

// NewProductDraft starts an empty draft. Name and margin are validated the
// same way as a committed product.
func NewProductDraft(name string, marginPercent float64) (*ProductDraft, error) {
	if err := validProduct(name, marginPercent); err != nil {
		return nil, err
	}
	return &ProductDraft{name: name, marginPercent: marginPercent}, nil
}

// EditProduct starts a draft from an existing product so that Commit
// replaces it under the same id.
func EditProduct(p Product) *ProductDraft {
	items := make([]LineItem, len(p.Items))
	copy(items, p.Items)
	return &ProductDraft{id: p.ID, name: p.Name, marginPercent: p.MarginPercent, items: items}
}

// AddItem appends a line item. An ingredient may appear at most once per
// product; a duplicate is rejected, not merged.
func (d *ProductDraft) AddItem(ingredientID string, quantity float64) error {
	for _, it := range d.items {
		if it.IngredientID == ingredientID {
			return &ValidationError{Field: "ingrediente", Reason: "ya está agregado al producto"}
		}
	}
	if math.IsNaN(quantity) || math.IsInf(quantity, 0) || quantity <= 0 {
		return errPositive("cantidad")
	}

	d.items = append(d.items, LineItem{IngredientID: ingredientID, Quantity: quantity})
	return nil
}

// RemoveItem drops the line item for ingredientID if present.
func (d *ProductDraft) RemoveItem(ingredientID string) {
	kept := d.items[:0]
	for _, it := range d.items {
		if it.IngredientID != ingredientID {
			kept = append(kept, it)
		}
	}
	d.items = kept
}

// Items returns the accumulated line items in insertion order.
func (d *ProductDraft) Items() []LineItem {
	out := make([]LineItem, len(d.items))
	copy(out, d.items)
	return out
}

// Commit validates the draft and saves it into the catalog, creating a new
// product or replacing the one the draft was started from. A product needs
// at least one line item to be persisted.
func (d *ProductDraft) Commit(c *Catalog) (Product, error) {
	if len(d.items) == 0 {
		return Product{}, &ValidationError{Field: "ingredientes", Reason: "el producto necesita al menos un ingrediente"}
	}

	items := make([]LineItem, len(d.items))
	copy(items, d.items)

	if d.id != "" {
		if err := c.UpdateProduct(d.id, d.name, d.marginPercent, items); err != nil {
			return Product{}, err
		}
		p, _ := c.FindProduct(d.id)
		return p, nil
	}

	p, err := c.AddProduct(d.name, d.marginPercent)
	if err != nil {
		return Product{}, err
	}
	if err := c.UpdateProduct(p.ID, d.name, d.marginPercent, items); err != nil {
		return Product{}, err
	}
	p, _ = c.FindProduct(p.ID)
	return p, nil
}
