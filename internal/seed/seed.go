package seed

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

const (
	defaultBusinessName  = "Dulce Limón"
	defaultBusinessPhone = "260-4600069"
)

// demoIngredients is the starter catalog inserted into an empty database.
var demoIngredients = []struct {
	name       string
	pricePerKg float64
	unit       string
}{
	{"Harina 0000", 1200, "kg"},
	{"Azúcar", 1100, "kg"},
	{"Leche entera", 1500, "litro"},
	{"Huevo", 250, "unidad"},
}

// Config contains the values required by startup seed.
type Config struct {
	BusinessName  string
	BusinessPhone string
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

// Run executes the startup seed in an idempotent way: it ensures the
// business profile singleton exists and, on a fresh database, inserts a
// small starter ingredient catalog.
func Run(db *sql.DB, cfg Config) (Stats, error) {
	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := ensureProfile(tx, cfg, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureStarterIngredients(tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensureProfile(tx *sql.Tx, cfg Config, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM business_profile WHERE id = 1)`).Scan(&exists); err != nil {
		return fmt.Errorf("check business profile existence: %w", err)
	}
	if exists {
		return nil
	}

	name := cfg.BusinessName
	if name == "" {
		name = defaultBusinessName
	}
	phone := cfg.BusinessPhone
	if phone == "" {
		phone = defaultBusinessPhone
	}

	if _, err := tx.Exec(`
		INSERT INTO business_profile (id, name, phone)
		VALUES (1, ?, ?)
	`, name, phone); err != nil {
		return fmt.Errorf("insert business profile singleton: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureStarterIngredients(tx *sql.Tx, stats *Stats) error {
	var count int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM ingredients`).Scan(&count); err != nil {
		return fmt.Errorf("count ingredients: %w", err)
	}
	if count > 0 {
		return nil
	}

	for i, ing := range demoIngredients {
		if _, err := tx.Exec(`
			INSERT INTO ingredients (id, name, price_per_kg, unit, position)
			VALUES (?, ?, ?, ?, ?)
		`, uuid.NewString(), ing.name, ing.pricePerKg, ing.unit, i); err != nil {
			return fmt.Errorf("insert starter ingredient: %w", err)
		}
		stats.Inserts++
	}
	return nil
}
