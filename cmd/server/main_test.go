package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	_ "modernc.org/sqlite"

	"github.com/dulcelimon/pasteleria/internal/catalog"
	"github.com/dulcelimon/pasteleria/internal/money"
	"github.com/dulcelimon/pasteleria/internal/store"
)

func newCatalogTestServer(t *testing.T) *server {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
		CREATE TABLE ingredients (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			price_per_kg NUMERIC NOT NULL,
			unit TEXT NOT NULL,
			position INTEGER NOT NULL
		);
		CREATE TABLE products (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			margin_percent NUMERIC NOT NULL,
			position INTEGER NOT NULL
		);
		CREATE TABLE product_items (
			product_id TEXT NOT NULL,
			ingredient_id TEXT NOT NULL,
			quantity NUMERIC NOT NULL,
			position INTEGER NOT NULL,
			PRIMARY KEY (product_id, ingredient_id)
		);
	`)
	if err != nil {
		t.Fatalf("failed creating schema: %v", err)
	}

	return &server{
		catalog: catalog.New(nil, nil),
		store:   store.New(db),
		money:   money.ARS(),
	}
}

func postForm(t *testing.T, srv *server, handler http.HandlerFunc, target string, form url.Values, params map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func TestHandleIngredientsCreatePersistsAndReturnsRecord(t *testing.T) {
	srv := newCatalogTestServer(t)

	form := url.Values{}
	form.Set("nombre", "Harina")
	form.Set("precio_kg", "1200")
	form.Set("unidad", "kg")

	rr := postForm(t, srv, srv.handleIngredientsCreate, "/ingredientes", form, nil)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var view ingredientView
	if err := json.Unmarshal(rr.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if view.ID == "" || view.Name != "Harina" || view.PricePerKg != 1200 || view.Unit != "kg" {
		t.Fatalf("unexpected view: %+v", view)
	}

	loaded, err := srv.store.LoadIngredients()
	if err != nil {
		t.Fatalf("LoadIngredients: %v", err)
	}
	if len(loaded) != 1 || loaded[0].ID != view.ID {
		t.Fatalf("ingredient not persisted: %+v", loaded)
	}
}

func TestHandleIngredientsCreateRejectsBadPrice(t *testing.T) {
	srv := newCatalogTestServer(t)

	form := url.Values{}
	form.Set("nombre", "Harina")
	form.Set("precio_kg", "gratis")
	form.Set("unidad", "kg")

	rr := postForm(t, srv, srv.handleIngredientsCreate, "/ingredientes", form, nil)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "precio_kg") {
		t.Fatalf("expected field name in error, got %q", rr.Body.String())
	}
}

func TestHandleIngredientsUpdateMissingIDReturns404(t *testing.T) {
	srv := newCatalogTestServer(t)

	form := url.Values{}
	form.Set("nombre", "Harina")
	form.Set("precio_kg", "1200")
	form.Set("unidad", "kg")

	rr := postForm(t, srv, srv.handleIngredientsUpdate, "/ingredientes/nope", form, map[string]string{"id": "nope"})

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestHandleIngredientsDeleteIsIdempotent(t *testing.T) {
	srv := newCatalogTestServer(t)

	for i := 0; i < 2; i++ {
		rr := postForm(t, srv, srv.handleIngredientsDelete, "/ingredientes/nope/eliminar", url.Values{}, map[string]string{"id": "nope"})
		if rr.Code != http.StatusNoContent {
			t.Fatalf("expected status 204 on attempt %d, got %d", i, rr.Code)
		}
	}
}

func TestHandleProductsCreateCommitsDraftWithItems(t *testing.T) {
	srv := newCatalogTestServer(t)

	ing, err := srv.catalog.AddIngredient("Harina", 1000, catalog.Gram)
	if err != nil {
		t.Fatalf("AddIngredient: %v", err)
	}

	form := url.Values{}
	form.Set("nombre", "Torta")
	form.Set("margen", "50")
	form.Add("ingrediente_id", ing.ID)
	form.Add("cantidad", "500")

	rr := postForm(t, srv, srv.handleProductsCreate, "/productos", form, nil)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var view productView
	if err := json.Unmarshal(rr.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if view.TotalCost != 500 || view.SalePrice != 750 {
		t.Fatalf("unexpected derived prices: %+v", view)
	}
	if len(view.Items) != 1 || view.Items[0].Ingredient != "Harina" {
		t.Fatalf("unexpected items: %+v", view.Items)
	}

	loaded, err := srv.store.LoadProducts()
	if err != nil {
		t.Fatalf("LoadProducts: %v", err)
	}
	if len(loaded) != 1 || len(loaded[0].Items) != 1 {
		t.Fatalf("product not persisted with items: %+v", loaded)
	}
}

func TestHandleProductsCreateRejectsEmptyDraft(t *testing.T) {
	srv := newCatalogTestServer(t)

	form := url.Values{}
	form.Set("nombre", "Torta")
	form.Set("margen", "50")

	rr := postForm(t, srv, srv.handleProductsCreate, "/productos", form, nil)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestHandleProductsCreateRejectsDuplicateIngredient(t *testing.T) {
	srv := newCatalogTestServer(t)

	ing, err := srv.catalog.AddIngredient("Harina", 1000, catalog.Gram)
	if err != nil {
		t.Fatalf("AddIngredient: %v", err)
	}

	form := url.Values{}
	form.Set("nombre", "Torta")
	form.Set("margen", "50")
	form.Add("ingrediente_id", ing.ID)
	form.Add("cantidad", "500")
	form.Add("ingrediente_id", ing.ID)
	form.Add("cantidad", "300")

	rr := postForm(t, srv, srv.handleProductsCreate, "/productos", form, nil)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "ingrediente") {
		t.Fatalf("expected duplicate-ingredient error, got %q", rr.Body.String())
	}
}

func TestProductViewMarksDanglingIngredientAsUnknown(t *testing.T) {
	srv := newCatalogTestServer(t)

	ing, err := srv.catalog.AddIngredient("Harina", 1000, catalog.Gram)
	if err != nil {
		t.Fatalf("AddIngredient: %v", err)
	}
	draft, err := catalog.NewProductDraft("Torta", 50)
	if err != nil {
		t.Fatalf("NewProductDraft: %v", err)
	}
	if err := draft.AddItem(ing.ID, 500); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	p, err := draft.Commit(srv.catalog)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	srv.catalog.RemoveIngredient(ing.ID)

	p, _ = srv.catalog.FindProduct(p.ID)
	view := srv.productView(p)

	if view.Items[0].Ingredient != "Desconocido" {
		t.Fatalf("expected dangling ingredient displayed as Desconocido, got %+v", view.Items[0])
	}
	if view.TotalCost != 0 || view.SalePrice != 0 {
		t.Fatalf("dangling line must price at zero: %+v", view)
	}
}
