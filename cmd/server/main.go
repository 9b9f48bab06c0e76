package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/dulcelimon/pasteleria/internal/catalog"
	"github.com/dulcelimon/pasteleria/internal/config"
	"github.com/dulcelimon/pasteleria/internal/db"
	"github.com/dulcelimon/pasteleria/internal/migrations"
	"github.com/dulcelimon/pasteleria/internal/money"
	"github.com/dulcelimon/pasteleria/internal/pricing"
	"github.com/dulcelimon/pasteleria/internal/quote"
	"github.com/dulcelimon/pasteleria/internal/seed"
	"github.com/dulcelimon/pasteleria/internal/store"
)

// server wires the in-memory catalog to its collaborators. The catalog has
// no locking of its own, so every handler takes mu for the duration of the
// request.
type server struct {
	mu      sync.Mutex
	catalog *catalog.Catalog
	store   *store.Store
	profile quote.BusinessProfile
	money   money.Formatter
}

type ingredientView struct {
	ID         string  `json:"id"`
	Name       string  `json:"nombre"`
	PricePerKg float64 `json:"precio_kg"`
	Unit       string  `json:"unidad"`
}

type productItemView struct {
	IngredientID string  `json:"ingrediente_id"`
	Ingredient   string  `json:"ingrediente"`
	Quantity     float64 `json:"cantidad"`
}

type productView struct {
	ID            string            `json:"id"`
	Name          string            `json:"nombre"`
	MarginPercent float64           `json:"margen"`
	Items         []productItemView `json:"ingredientes"`
	TotalCost     float64           `json:"costo_total"`
	SalePrice     float64           `json:"precio_final"`
}

func main() {
	cfg := config.Load()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	if cfg.IsDev() {
		if err := migrations.Up(database, "migrations"); err != nil {
			log.Fatalf("failed to run database migrations: %v", err)
		}
	}

	if _, err := seed.Run(database, seed.Config{
		BusinessName:  cfg.BusinessName,
		BusinessPhone: cfg.BusinessPhone,
	}); err != nil {
		log.Fatalf("failed to seed database: %v", err)
	}

	st := store.New(database)
	ingredients, err := st.LoadIngredients()
	if err != nil {
		log.Fatalf("failed to load ingredients: %v", err)
	}
	products, err := st.LoadProducts()
	if err != nil {
		log.Fatalf("failed to load products: %v", err)
	}
	profile, err := st.Profile()
	if err != nil {
		log.Fatalf("failed to load business profile: %v", err)
	}

	srv := &server{
		catalog: catalog.New(ingredients, products),
		store:   st,
		profile: profile,
		money:   money.ARS(),
	}

	r := chi.NewRouter()
	r.Get("/ingredientes", srv.handleIngredientsList)
	r.Post("/ingredientes", srv.handleIngredientsCreate)
	r.Post("/ingredientes/{id}", srv.handleIngredientsUpdate)
	r.Post("/ingredientes/{id}/eliminar", srv.handleIngredientsDelete)
	r.Get("/productos", srv.handleProductsList)
	r.Post("/productos", srv.handleProductsCreate)
	r.Post("/productos/{id}", srv.handleProductsUpdate)
	r.Post("/productos/{id}/eliminar", srv.handleProductsDelete)
	r.Post("/presupuestos/texto", srv.handleQuoteText)
	r.Get("/negocio", srv.handleProfileGet)
	r.Post("/negocio", srv.handleProfileUpdate)

	addr := ":" + cfg.Port
	log.Printf("listening on %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func (s *server) handleIngredientsList(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ingredients := s.catalog.Ingredients()
	views := make([]ingredientView, 0, len(ingredients))
	for _, ing := range ingredients {
		views = append(views, ingredientView{
			ID:         ing.ID,
			Name:       ing.Name,
			PricePerKg: ing.PricePerKg,
			Unit:       string(ing.Unit),
		})
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *server) handleIngredientsCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(r.FormValue("nombre"))
	pricePerKg, err := parsePositiveFloat(r.FormValue("precio_kg"), "precio_kg")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ing, err := s.catalog.AddIngredient(name, pricePerKg, catalog.Unit(r.FormValue("unidad")))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !s.persistIngredients(w) {
		return
	}

	writeJSON(w, http.StatusCreated, ingredientView{
		ID:         ing.ID,
		Name:       ing.Name,
		PricePerKg: ing.PricePerKg,
		Unit:       string(ing.Unit),
	})
}

func (s *server) handleIngredientsUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(r.FormValue("nombre"))
	pricePerKg, err := parsePositiveFloat(r.FormValue("precio_kg"), "precio_kg")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.catalog.UpdateIngredient(id, name, pricePerKg, catalog.Unit(r.FormValue("unidad"))); err != nil {
		writeDomainError(w, err)
		return
	}
	if !s.persistIngredients(w) {
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleIngredientsDelete(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Idempotent: deleting an id that is already gone succeeds. Products
	// referencing it keep their line items and price them at zero.
	s.catalog.RemoveIngredient(chi.URLParam(r, "id"))
	if !s.persistIngredients(w) {
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleProductsList(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := s.catalog.Products()
	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, s.productView(p))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *server) productView(p catalog.Product) productView {
	items := make([]productItemView, 0, len(p.Items))
	for _, it := range p.Items {
		name := "Desconocido"
		if ing, ok := s.catalog.FindIngredient(it.IngredientID); ok {
			name = ing.Name
		}
		items = append(items, productItemView{
			IngredientID: it.IngredientID,
			Ingredient:   name,
			Quantity:     it.Quantity,
		})
	}

	result := pricing.CostOfProduct(p, s.catalog)
	return productView{
		ID:            p.ID,
		Name:          p.Name,
		MarginPercent: p.MarginPercent,
		Items:         items,
		TotalCost:     result.TotalCost,
		SalePrice:     result.SalePrice,
	}
}

func (s *server) handleProductsCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(r.FormValue("nombre"))
	margin, err := parseNonNegativeFloat(r.FormValue("margen"), "margen")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	draft, err := catalog.NewProductDraft(name, margin)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := addDraftItems(draft, r); err != nil {
		writeDomainError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := draft.Commit(s.catalog)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !s.persistProducts(w) {
		return
	}

	writeJSON(w, http.StatusCreated, s.productView(p))
}

func (s *server) handleProductsUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(r.FormValue("nombre"))
	margin, err := parseNonNegativeFloat(r.FormValue("margen"), "margen")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	items, err := parseLineItems(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.catalog.UpdateProduct(id, name, margin, items); err != nil {
		writeDomainError(w, err)
		return
	}
	if !s.persistProducts(w) {
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleProductsDelete(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.catalog.RemoveProduct(chi.URLParam(r, "id"))
	if !s.persistProducts(w) {
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// addDraftItems feeds the repeated ingrediente_id/cantidad form pairs into
// the draft, which enforces the no-duplicate rule.
func addDraftItems(draft *catalog.ProductDraft, r *http.Request) error {
	items, err := parseLineItems(r)
	if err != nil {
		return err
	}
	for _, it := range items {
		if err := draft.AddItem(it.IngredientID, it.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func parseLineItems(r *http.Request) ([]catalog.LineItem, error) {
	ids := r.Form["ingrediente_id"]
	quantities := r.Form["cantidad"]
	if len(ids) != len(quantities) {
		return nil, &catalog.ValidationError{Field: "ingredientes", Reason: "no coinciden ids y cantidades"}
	}

	items := make([]catalog.LineItem, 0, len(ids))
	for i := range ids {
		qty, err := parsePositiveFloat(quantities[i], "cantidad")
		if err != nil {
			return nil, &catalog.ValidationError{Field: "cantidad", Reason: "debe ser un número mayor a 0"}
		}
		items = append(items, catalog.LineItem{IngredientID: ids[i], Quantity: qty})
	}
	return items, nil
}

func (s *server) persistIngredients(w http.ResponseWriter) bool {
	if err := s.store.SaveIngredients(s.catalog.Ingredients()); err != nil {
		log.Printf("save ingredients: %v", err)
		http.Error(w, "failed to save ingredients", http.StatusInternalServerError)
		return false
	}
	return true
}

func (s *server) persistProducts(w http.ResponseWriter) bool {
	if err := s.store.SaveProducts(s.catalog.Products()); err != nil {
		log.Printf("save products: %v", err)
		http.Error(w, "failed to save products", http.StatusInternalServerError)
		return false
	}
	return true
}

func parsePositiveFloat(raw, field string) (float64, error) {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s debe ser numérico", field)
	}
	if value <= 0 {
		return 0, fmt.Errorf("%s debe ser mayor a 0", field)
	}
	return value, nil
}

func parseNonNegativeFloat(raw, field string) (float64, error) {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s debe ser numérico", field)
	}
	if value < 0 {
		return 0, fmt.Errorf("%s debe ser mayor o igual a 0", field)
	}
	return value, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	var validation *catalog.ValidationError
	var notFound *catalog.NotFoundError
	switch {
	case errors.As(err, &validation):
		http.Error(w, validation.Error(), http.StatusBadRequest)
	case errors.As(err, &notFound):
		http.Error(w, notFound.Error(), http.StatusNotFound)
	default:
		http.Error(w, "error interno", http.StatusInternalServerError)
	}
}
