// Package pipeline provides the core layout pipeline for Sheetpress.
//
// This package implements the complete measure → optimize → place pipeline
// that can be used by CLI, API, and worker components. By centralizing this
// logic, we ensure consistent behavior across all entry points and avoid
// code duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Measure: validate the sheet, set up the deterministic text measurer
//     and hash the content for cache keys
//  2. Optimize: run the two-stage parameter search against the placement
//     quality model
//  3. Place: build the final layout artifact from the winning parameters,
//     falling back to the even-split default when the search fails
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Sheet:   doc,
//	    Columns: 3,
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Layout.Score)
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sheetpress/pkg/cache"
	"github.com/matzehuels/sheetpress/pkg/config"
	"github.com/matzehuels/sheetpress/pkg/sheet"
)

// DefaultColumns is the column count used when options leave it unset. It is
// clamped to the number of blocks for small sheets.
const DefaultColumns = 3

// Options control one pipeline execution.
type Options struct {
	// Sheet is the document to lay out.
	Sheet sheet.Sheet

	// Columns is the number of columns; 0 means DefaultColumns, clamped to
	// the block count.
	Columns int

	// Config carries weights, penalties, minimizer settings and metrics.
	// The zero value means config.Default().
	Config config.Config

	// Refresh bypasses the layout cache read (the result is still written).
	Refresh bool

	// Logger overrides the runner's logger for this execution.
	Logger *log.Logger
}

// ValidateAndSetDefaults fills unset options and validates the result.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Config == (config.Config{}) {
		o.Config = config.Default()
	}
	if o.Columns == 0 {
		o.Columns = min(DefaultColumns, len(o.Sheet.Blocks))
	}
	if err := o.Config.Validate(); err != nil {
		return err
	}
	return o.Sheet.Validate()
}

// LayoutKeyOpts returns the cache key options for these settings.
func (o Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{Columns: o.Columns, Config: o.Config}
}

// Stats holds per-stage timing and search effort for one execution.
type Stats struct {
	Blocks       int           `json:"blocks"`
	Columns      int           `json:"columns"`
	Trials       int           `json:"trials"`
	MeasureTime  time.Duration `json:"measure_time"`
	OptimizeTime time.Duration `json:"optimize_time"`
	PlaceTime    time.Duration `json:"place_time"`
}

// CacheInfo reports which stages were served from cache.
type CacheInfo struct {
	LayoutHit bool `json:"layout_hit"`
}

// Result is the outcome of one pipeline execution.
type Result struct {
	RunID     string       `json:"run_id"`
	SheetHash string       `json:"sheet_hash"`
	Layout    sheet.Layout `json:"layout"`
	Stats     Stats        `json:"stats"`
	CacheInfo CacheInfo    `json:"cache_info"`
}
