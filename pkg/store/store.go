// Package store persists layout runs for the API service.
//
// Two backends are provided: an in-memory store for development and tests,
// and a MongoDB store for deployments where run history must survive
// restarts and be shared between instances.
package store

import (
	"context"
	"time"

	"github.com/matzehuels/sheetpress/pkg/sheet"
)

// Run is one recorded layout run.
type Run struct {
	ID        string       `json:"id" bson:"_id"`
	SheetHash string       `json:"sheet_hash" bson:"sheet_hash"`
	Layout    sheet.Layout `json:"layout" bson:"layout"`
	CreatedAt time.Time    `json:"created_at" bson:"created_at"`
}

// RunStore stores and retrieves layout runs.
type RunStore interface {
	// Put stores a run, replacing any run with the same ID.
	Put(ctx context.Context, run Run) error

	// Get retrieves a run by ID. Missing runs return a RUN_NOT_FOUND error.
	Get(ctx context.Context, id string) (Run, error)

	// List returns up to limit runs, newest first.
	List(ctx context.Context, limit int) ([]Run, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}
