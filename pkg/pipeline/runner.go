package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/sheetpress/pkg/cache"
	"github.com/matzehuels/sheetpress/pkg/errors"
	"github.com/matzehuels/sheetpress/pkg/measure"
	"github.com/matzehuels/sheetpress/pkg/observability"
	"github.com/matzehuels/sheetpress/pkg/opt"
	"github.com/matzehuels/sheetpress/pkg/placed"
	"github.com/matzehuels/sheetpress/pkg/sheet"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete measure → optimize → place pipeline with
// caching. A failed optimization is not an error: the result carries the
// fallback layout, marked as such.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	_, result, err := r.run(ctx, opts)
	return result, err
}

// Inspect runs the pipeline bypassing the cache read and returns the
// placement tree alongside the result, for debug visualization.
func (r *Runner) Inspect(ctx context.Context, opts Options) (*placed.Node, *Result, error) {
	opts.Refresh = true
	return r.run(ctx, opts)
}

func (r *Runner) run(ctx context.Context, opts Options) (*placed.Node, *Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, nil, err
	}
	logger := r.logger(opts)
	hooks := observability.Layout()

	runID := uuid.NewString()
	result := &Result{RunID: runID}
	result.Stats.Blocks = len(opts.Sheet.Blocks)
	result.Stats.Columns = opts.Columns

	// Stage 1: Measure
	measureStart := time.Now()
	hooks.OnMeasureStart(ctx, runID, len(opts.Sheet.Blocks))

	sheetData, err := opts.Sheet.Marshal()
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInternal, err, "serialize sheet")
	}
	result.SheetHash = cache.Hash(sheetData)

	measurer := measure.New(opts.Config.Metrics)
	measurer.Penalty = opts.Config.Penalties.Unplaceable
	problem, err := sheet.NewColumnsProblem(opts.Sheet, measurer, opts.Config, opts.Columns)
	if err != nil {
		hooks.OnMeasureComplete(ctx, runID, time.Since(measureStart), err)
		return nil, nil, err
	}

	result.Stats.MeasureTime = time.Since(measureStart)
	hooks.OnMeasureComplete(ctx, runID, result.Stats.MeasureTime, nil)

	logger.Info("measured sheet",
		"blocks", result.Stats.Blocks,
		"columns", opts.Columns,
		"hash", result.SheetHash[:12])

	// Cache lookup before the expensive search.
	cacheKey := r.Keyer.LayoutKey(result.SheetHash, opts.LayoutKeyOpts())
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if cached, err := sheet.UnmarshalLayout(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				cached.RunID = runID
				result.Layout = cached
				result.CacheInfo.LayoutHit = true
				logger.Info("layout served from cache", "score", cached.Score)
				return nil, result, nil
			}
			// Invalid cached layout, recompute.
			_ = r.Cache.Delete(ctx, cacheKey)
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	// Stage 2: Optimize
	optimizeStart := time.Now()
	hooks.OnOptimizeStart(ctx, runID, result.Stats.Blocks, opts.Columns)

	optimizer := opt.New(problem)
	optimizer.PenaltyScale = opts.Config.Penalties.Validity
	optimizer.Minimize = opts.Config.MinimizeOptions()
	optimizer.Logger = logger
	optimizer.Observer = opt.TrialFunc(func(stage string, values []int, score float64) {
		result.Stats.Trials++
		hooks.OnTrial(ctx, runID, stage, score)
	})

	res, optErr := optimizer.Run(problem.InitialParams())
	result.Stats.OptimizeTime = time.Since(optimizeStart)

	if optErr != nil && !errors.Is(optErr, errors.ErrCodeOptimizationFailed) {
		hooks.OnOptimizeComplete(ctx, runID, 0, result.Stats.Trials, result.Stats.OptimizeTime, optErr)
		return nil, nil, optErr
	}
	if res != nil {
		hooks.OnOptimizeComplete(ctx, runID, res.Score, result.Stats.Trials, result.Stats.OptimizeTime, nil)
		logger.Info("optimization finished",
			"score", res.Score,
			"trials", result.Stats.Trials,
			"duration", result.Stats.OptimizeTime)
	} else {
		hooks.OnOptimizeComplete(ctx, runID, 0, result.Stats.Trials, result.Stats.OptimizeTime, optErr)
	}

	// Stage 3: Place
	placeStart := time.Now()
	var root *placed.Node
	var layout sheet.Layout

	switch {
	case optErr != nil:
		logger.Warn("optimization failed, using the default layout", "err", optErr)
		root, layout = problem.DefaultLayout()
	case res.Stage2.Values == nil:
		logger.Warn("no feasible column widths found, using the default layout", "score", res.Score)
		root, layout = problem.DefaultLayout()
	default:
		root, layout = problem.Place(res.Stage1.Values, res.Stage2.Values)
	}

	layout.RunID = runID
	result.Layout = layout
	result.Stats.PlaceTime = time.Since(placeStart)
	hooks.OnPlaceComplete(ctx, runID, len(layout.Boxes), layout.Fallback)

	logger.Info("placed layout",
		"boxes", len(layout.Boxes),
		"score", layout.Score,
		"fallback", layout.Fallback)

	// Fallback layouts are not cached: the sheet or settings are the
	// problem, and a fix should recompute immediately.
	if !layout.Fallback {
		if data, err := layout.Marshal(); err == nil {
			if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout); err == nil {
				observability.Cache().OnCacheSet(ctx, "layout", len(data))
			}
		}
	}

	return root, result, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}
