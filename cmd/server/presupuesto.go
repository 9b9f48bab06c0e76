package main

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dulcelimon/pasteleria/internal/catalog"
	"github.com/dulcelimon/pasteleria/internal/quote"
)

type profileView struct {
	Name  string `json:"nombre"`
	Phone string `json:"telefono"`
}

// handleQuoteText assembles a quote from the submitted lines and returns the
// shareable plain-text message. The quote itself is transient: nothing is
// stored, and the same form can be submitted again after edits.
func (s *server) handleQuoteText(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	q, err := parseQuoteForm(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	text, err := q.Render(s.catalog, s.profile, s.money)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(text))
}

// parseQuoteForm reads the client, delivery date and the repeated
// producto_id/cantidad pairs. Lines for the same product merge by summing.
func parseQuoteForm(r *http.Request) (*quote.Quote, error) {
	q := &quote.Quote{
		Client:       strings.TrimSpace(r.FormValue("cliente")),
		DeliveryDate: strings.TrimSpace(r.FormValue("fecha_entrega")),
	}

	ids := r.Form["producto_id"]
	quantities := r.Form["cantidad"]
	if len(ids) != len(quantities) {
		return nil, &catalog.ValidationError{Field: "productos", Reason: "no coinciden ids y cantidades"}
	}

	for i := range ids {
		qty, err := strconv.Atoi(quantities[i])
		if err != nil {
			return nil, &catalog.ValidationError{Field: "cantidad", Reason: "debe ser un número entero"}
		}
		if err := q.AddLine(ids[i], qty); err != nil {
			return nil, err
		}
	}
	return q, nil
}

func (s *server) handleProfileGet(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	writeJSON(w, http.StatusOK, profileView{Name: s.profile.Name, Phone: s.profile.Phone})
}

func (s *server) handleProfileUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(r.FormValue("nombre"))
	if name == "" {
		http.Error(w, "nombre es requerido", http.StatusBadRequest)
		return
	}

	profile := quote.BusinessProfile{
		Name:  name,
		Phone: strings.TrimSpace(r.FormValue("telefono")),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.SaveProfile(profile); err != nil {
		http.Error(w, "failed to save business profile", http.StatusInternalServerError)
		return
	}
	s.profile = profile

	writeJSON(w, http.StatusOK, profileView{Name: profile.Name, Phone: profile.Phone})
}
