// Package catalog holds the in-memory ingredient and product collections.
// Persistence is a collaborator invoked by the caller around these
// operations; the catalog itself never touches storage.
package catalog

import (
	"math"

	"github.com/google/uuid"
)

// Unit is the measure in which product quantities of an ingredient are
// expressed. Values match the labels the business uses.
type Unit string

const (
	Kilogram   Unit = "kg"
	Gram       Unit = "g"
	Liter      Unit = "litro"
	Milliliter Unit = "ml"
	Piece      Unit = "unidad"
)

// ValidUnit reports whether u is one of the supported units.
func ValidUnit(u Unit) bool {
	switch u {
	case Kilogram, Gram, Liter, Milliliter, Piece:
		return true
	}
	return false
}

// Ingredient is a purchasable input with a price per kilogram. The per-kg
// basis applies even when quantities are specified in liters or pieces.
type Ingredient struct {
	ID         string
	Name       string
	PricePerKg float64
	Unit       Unit
}

// LineItem references an ingredient and the quantity of it a product uses,
// expressed in the ingredient's unit.
type LineItem struct {
	IngredientID string
	Quantity     float64
}

// Product is a recipe: a margin percentage over the summed ingredient cost
// plus an ordered list of line items. Cost and sale price are always derived,
// never stored here.
type Product struct {
	ID            string
	Name          string
	MarginPercent float64
	Items         []LineItem
}

// Catalog owns the ingredient and product collections. It is not safe for
// concurrent use; callers sharing one instance must serialize access.
type Catalog struct {
	ingredients []Ingredient
	products    []Product
}

// New returns a catalog preloaded with previously persisted records.
// Both slices may be nil for an empty catalog.
func New(ingredients []Ingredient, products []Product) *Catalog {
	c := &Catalog{}
	c.ingredients = append(c.ingredients, ingredients...)
	c.products = append(c.products, products...)
	return c
}

func validIngredient(name string, pricePerKg float64, unit Unit) error {
	if name == "" {
		return errRequired("nombre")
	}
	if math.IsNaN(pricePerKg) || math.IsInf(pricePerKg, 0) || pricePerKg <= 0 {
		return errPositive("precio_kg")
	}
	if !ValidUnit(unit) {
		return &ValidationError{Field: "unidad", Reason: "no es una unidad válida"}
	}
	return nil
}

// AddIngredient validates and appends a new ingredient, assigning it a fresh
// id that is never reused.
func (c *Catalog) AddIngredient(name string, pricePerKg float64, unit Unit) (Ingredient, error) {
	if err := validIngredient(name, pricePerKg, unit); err != nil {
		return Ingredient{}, err
	}

	ing := Ingredient{
		ID:         uuid.NewString(),
		Name:       name,
		PricePerKg: pricePerKg,
		Unit:       unit,
	}
	c.ingredients = append(c.ingredients, ing)
	return ing, nil
}

// UpdateIngredient replaces the full record for id, keeping its position.
func (c *Catalog) UpdateIngredient(id, name string, pricePerKg float64, unit Unit) error {
	if err := validIngredient(name, pricePerKg, unit); err != nil {
		return err
	}

	for i := range c.ingredients {
		if c.ingredients[i].ID == id {
			c.ingredients[i] = Ingredient{ID: id, Name: name, PricePerKg: pricePerKg, Unit: unit}
			return nil
		}
	}
	return &NotFoundError{Kind: "ingrediente", ID: id}
}

// RemoveIngredient deletes the ingredient if present. Removing an absent id
// is a no-op; products referencing the removed ingredient keep their line
// items and resolve its cost as zero.
func (c *Catalog) RemoveIngredient(id string) {
	kept := c.ingredients[:0]
	for _, ing := range c.ingredients {
		if ing.ID != id {
			kept = append(kept, ing)
		}
	}
	c.ingredients = kept
}

// FindIngredient looks an ingredient up by id.
func (c *Catalog) FindIngredient(id string) (Ingredient, bool) {
	for _, ing := range c.ingredients {
		if ing.ID == id {
			return ing, true
		}
	}
	return Ingredient{}, false
}

// Ingredients returns the collection in insertion order.
func (c *Catalog) Ingredients() []Ingredient {
	out := make([]Ingredient, len(c.ingredients))
	copy(out, c.ingredients)
	return out
}

func validProduct(name string, marginPercent float64) error {
	if name == "" {
		return errRequired("nombre")
	}
	if math.IsNaN(marginPercent) || math.IsInf(marginPercent, 0) || marginPercent < 0 {
		return errNonNegative("margen")
	}
	return nil
}

// AddProduct validates and appends a product with no line items yet. Line
// items are accumulated through a ProductDraft and land here on commit.
func (c *Catalog) AddProduct(name string, marginPercent float64) (Product, error) {
	if err := validProduct(name, marginPercent); err != nil {
		return Product{}, err
	}

	p := Product{ID: uuid.NewString(), Name: name, MarginPercent: marginPercent}
	c.products = append(c.products, p)
	return p, nil
}

// UpdateProduct replaces the full record for id, keeping its position.
// Items are validated like a draft commit: no duplicates, positive quantities.
func (c *Catalog) UpdateProduct(id, name string, marginPercent float64, items []LineItem) error {
	if err := validProduct(name, marginPercent); err != nil {
		return err
	}
	if err := validItems(items); err != nil {
		return err
	}

	for i := range c.products {
		if c.products[i].ID == id {
			c.products[i] = Product{ID: id, Name: name, MarginPercent: marginPercent, Items: items}
			return nil
		}
	}
	return &NotFoundError{Kind: "producto", ID: id}
}

// RemoveProduct deletes the product if present; no-op otherwise.
func (c *Catalog) RemoveProduct(id string) {
	kept := c.products[:0]
	for _, p := range c.products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	c.products = kept
}

// FindProduct looks a product up by id.
func (c *Catalog) FindProduct(id string) (Product, bool) {
	for _, p := range c.products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// Products returns the collection in insertion order.
func (c *Catalog) Products() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

func validItems(items []LineItem) error {
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if seen[it.IngredientID] {
			return &ValidationError{Field: "ingrediente", Reason: "ya está agregado al producto"}
		}
		seen[it.IngredientID] = true
		if math.IsNaN(it.Quantity) || math.IsInf(it.Quantity, 0) || it.Quantity <= 0 {
			return errPositive("cantidad")
		}
	}
	return nil
}
