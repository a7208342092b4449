// Package monolith composes the HTTP side of a ddsclog process from
// independent modules.
package monolith

import (
	"context"

	"github.com/go-chi/chi/v5"
)

type Monolith interface {
	Mux() chi.Router
}

type Module interface {
	Start(ctx context.Context, mono Monolith) error
}
