package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"
)

// SubtypeHandler owns the type specific part of a product: the one-to-one
// subtype row and anything hanging off it (tour dates).
type SubtypeHandler interface {
	// Validate decodes and checks the subtype fields of a create payload.
	// It runs before any write.
	Validate(raw json.RawMessage, now time.Time) (any, error)
	// Insert writes the validated details for productID inside tx.
	Insert(ctx context.Context, tx *sql.Tx, productID string, details any) error
	// Load reads the subtype payload of a stored product.
	Load(ctx context.Context, productID string) (any, error)
}

// Registry maps product type names (case-insensitive) to handlers.
type Registry struct {
	handlers map[string]SubtypeHandler
}

func NewRegistry() *Registry {
	return &Registry{handlers: map[string]SubtypeHandler{}}
}

// Register binds h to every given type name.
func (r *Registry) Register(h SubtypeHandler, names ...string) {
	for _, n := range names {
		r.handlers[strings.ToLower(strings.TrimSpace(n))] = h
	}
}

// Lookup returns the handler for typeName or an *UnsupportedTypeError.
func (r *Registry) Lookup(typeName string) (SubtypeHandler, error) {
	h, ok := r.handlers[strings.ToLower(strings.TrimSpace(typeName))]
	if !ok {
		return nil, &UnsupportedTypeError{Type: typeName}
	}
	return h, nil
}

// DefaultRegistry registers the tour and rental handlers.
func DefaultRegistry(tours TourStore, rentals RentalStore) *Registry {
	r := NewRegistry()
	r.Register(NewTourHandler(tours), "tours", "tour")
	r.Register(NewRentalHandler(rentals), "rental", "rentals")
	return r
}
