package catalog

import "fmt"

// ValidationError signals malformed or out-of-range input at a mutation
// boundary. Field names and reasons are user-facing and surfaced verbatim.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// NotFoundError signals an update targeting an id that is not in the catalog.
// Removal of an absent id is deliberately not an error.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s no existe", e.Kind, e.ID)
}

func errRequired(field string) error {
	return &ValidationError{Field: field, Reason: "es requerido"}
}

func errPositive(field string) error {
	return &ValidationError{Field: field, Reason: "debe ser mayor a 0"}
}

func errNonNegative(field string) error {
	return &ValidationError{Field: field, Reason: "debe ser mayor o igual a 0"}
}
