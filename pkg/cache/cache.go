// Package cache provides the byte cache used by the layout pipeline.
//
// Optimization runs are expensive while their inputs hash cheaply, and the
// measurer is deterministic, so finished layouts can be cached by content
// hash and options. Backends cover the CLI (file), services (Redis) and
// tests (null).
package cache

import (
	"context"
	"time"
)

// Cache TTLs per artifact kind. Measurements depend only on their inputs
// and could live forever; layouts get a shorter window so scoring changes
// roll out within a day.
const (
	TTLMeasure = 7 * 24 * time.Hour
	TTLLayout  = 24 * time.Hour
)

// Cache is the storage interface for cached bytes.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// found; misses are not errors.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// LayoutKeyOpts are the inputs, besides the sheet content itself, that change
// a layout result. Anything influencing the optimization must be included or
// stale layouts will be served.
type LayoutKeyOpts struct {
	Columns int `json:"columns"`
	Config  any `json:"config"`
}

// Keyer generates cache keys for the two cacheable artifacts of the domain.
type Keyer interface {
	// MeasureKey identifies one text measurement.
	MeasureKey(text string, metrics any, width int) string

	// LayoutKey identifies a finished layout for a sheet content hash and
	// layout options.
	LayoutKey(sheetHash string, opts LayoutKeyOpts) string
}

// DefaultKeyer hashes all key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// MeasureKey generates a key for a text measurement.
func (k *DefaultKeyer) MeasureKey(text string, metrics any, width int) string {
	return hashKey("measure", text, metrics, width)
}

// LayoutKey generates a key for a layout result.
func (k *DefaultKeyer) LayoutKey(sheetHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", sheetHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
