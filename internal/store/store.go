// Package store persists the catalog collections and the business profile
// in SQLite. It is a collaborator around the catalog: the caller loads the
// collections at startup and writes them back whole after every mutation.
package store

import (
	"database/sql"
	"fmt"

	"github.com/dulcelimon/pasteleria/internal/catalog"
	"github.com/dulcelimon/pasteleria/internal/quote"
)

// Store wraps the database handle.
type Store struct {
	db *sql.DB
}

// New returns a store over an open database.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// LoadIngredients reads the ingredient collection in its saved order.
func (s *Store) LoadIngredients() ([]catalog.Ingredient, error) {
	rows, err := s.db.Query(`
		SELECT id, name, price_per_kg, unit
		FROM ingredients
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("query ingredients: %w", err)
	}
	defer rows.Close()

	ingredients := make([]catalog.Ingredient, 0)
	for rows.Next() {
		var ing catalog.Ingredient
		var unit string
		if err := rows.Scan(&ing.ID, &ing.Name, &ing.PricePerKg, &unit); err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		ing.Unit = catalog.Unit(unit)
		ingredients = append(ingredients, ing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ingredients: %w", err)
	}

	return ingredients, nil
}

// LoadProducts reads the product collection with line items in saved order.
func (s *Store) LoadProducts() ([]catalog.Product, error) {
	rows, err := s.db.Query(`
		SELECT id, name, margin_percent
		FROM products
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := make([]catalog.Product, 0)
	for rows.Next() {
		var p catalog.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.MarginPercent); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	for i := range products {
		items, err := s.loadItems(products[i].ID)
		if err != nil {
			return nil, err
		}
		products[i].Items = items
	}

	return products, nil
}

func (s *Store) loadItems(productID string) ([]catalog.LineItem, error) {
	rows, err := s.db.Query(`
		SELECT ingredient_id, quantity
		FROM product_items
		WHERE product_id = ?
		ORDER BY position
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("query product items: %w", err)
	}
	defer rows.Close()

	items := make([]catalog.LineItem, 0)
	for rows.Next() {
		var it catalog.LineItem
		if err := rows.Scan(&it.IngredientID, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan product item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product items: %w", err)
	}

	return items, nil
}

// SaveIngredients replaces the stored ingredient collection in one
// transaction, preserving the given order.
func (s *Store) SaveIngredients(ingredients []catalog.Ingredient) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save ingredients: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM ingredients`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear ingredients: %w", err)
	}
	for i, ing := range ingredients {
		if _, err := tx.Exec(`
			INSERT INTO ingredients (id, name, price_per_kg, unit, position)
			VALUES (?, ?, ?, ?, ?)
		`, ing.ID, ing.Name, ing.PricePerKg, string(ing.Unit), i); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert ingredient: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save ingredients: %w", err)
	}
	return nil
}

// SaveProducts replaces the stored product collection in one transaction,
// preserving product and line-item order.
func (s *Store) SaveProducts(products []catalog.Product) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save products: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM product_items`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear product items: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM products`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear products: %w", err)
	}

	for i, p := range products {
		if _, err := tx.Exec(`
			INSERT INTO products (id, name, margin_percent, position)
			VALUES (?, ?, ?, ?)
		`, p.ID, p.Name, p.MarginPercent, i); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert product: %w", err)
		}
		for j, it := range p.Items {
			if _, err := tx.Exec(`
				INSERT INTO product_items (product_id, ingredient_id, quantity, position)
				VALUES (?, ?, ?, ?)
			`, p.ID, it.IngredientID, it.Quantity, j); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("insert product item: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save products: %w", err)
	}
	return nil
}

// Profile reads the business profile singleton.
func (s *Store) Profile() (quote.BusinessProfile, error) {
	var p quote.BusinessProfile
	err := s.db.QueryRow(`
		SELECT name, phone
		FROM business_profile
		WHERE id = 1
	`).Scan(&p.Name, &p.Phone)
	if err != nil {
		return quote.BusinessProfile{}, fmt.Errorf("query business profile: %w", err)
	}
	return p, nil
}

// SaveProfile updates the business profile singleton.
func (s *Store) SaveProfile(p quote.BusinessProfile) error {
	_, err := s.db.Exec(`
		UPDATE business_profile
		SET name = ?, phone = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = 1
	`, p.Name, p.Phone)
	if err != nil {
		return fmt.Errorf("update business profile: %w", err)
	}
	return nil
}
