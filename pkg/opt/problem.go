package opt

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sheetpress/pkg/errors"
)

// Problem defines a concrete layout optimization. A problem is a plain
// value implementing three pure functions; no further state is required.
//
// Score and ValidityError must be deterministic: repeated calls with
// identical parameters must return identical values. The stage-1 result
// cache and the reproducibility of whole runs both depend on it.
type Problem interface {
	// Score rates a fully specified candidate layout. Lower is better.
	// It is only called for parameter combinations that passed the
	// validity gate.
	Score(stage1, stage2 []int) float64

	// Stage2Params derives the initial fine-parameter guess for a coarse
	// trial, including the fine bounds.
	Stage2Params(stage1 []int) Params

	// ValidityError measures how far params are from being structurally
	// legal. Zero means fully valid; larger values mean further from
	// feasibility.
	ValidityError(params Params) float64
}

// Stage names reported to trial observers.
const (
	StageCoarse = "stage1"
	StageFine   = "stage2"
)

// TrialObserver receives every objective evaluation during a run. Used by
// the CLI progress view and observability hooks; implementations must be
// fast and must not block.
type TrialObserver interface {
	OnTrial(stage string, values []int, score float64)
}

// TrialFunc adapts a function to the TrialObserver interface.
type TrialFunc func(stage string, values []int, score float64)

// OnTrial implements TrialObserver.
func (f TrialFunc) OnTrial(stage string, values []int, score float64) { f(stage, values, score) }

// DefaultPenaltyScale is the base of the validity-gate penalty. The scale
// must dominate realistic layout scores while staying well below the
// unplaceable-content scale; pkg/config validates that ordering.
const DefaultPenaltyScale = 1e6

// stage2FailureScore multiplies the penalty scale when the stage-2 search
// itself fails to converge for one coarse trial. Large but finite: stage 1
// keeps searching past the failed trial.
const stage2FailureScore = 4

// Result is the outcome of a successful run. Stage2.Values is nil when no
// feasible fine layout exists for the winning coarse tuple; callers must
// fall back to a default layout in that case.
type Result struct {
	Score  float64
	Stage1 Params
	Stage2 Params
}

// Optimizer drives the two-stage search for one Problem. The zero value is
// not usable; create with New.
type Optimizer struct {
	Problem Problem

	// PenaltyScale is the validity-gate penalty base.
	PenaltyScale float64

	// Minimize configures the underlying bounded minimizer.
	Minimize MinimizeOptions

	// Logger receives progress logging. Defaults to log.Default().
	Logger *log.Logger

	// Observer, when set, receives every trial evaluation.
	Observer TrialObserver
}

// New creates an optimizer with default penalty scale and minimizer
// settings.
func New(p Problem) *Optimizer {
	return &Optimizer{
		Problem:      p,
		PenaltyScale: DefaultPenaltyScale,
		Logger:       log.Default(),
	}
}

// stage2Outcome is a cached stage-2 search result for one coarse tuple.
type stage2Outcome struct {
	score  float64
	stage2 *Params
}

// Run searches for the best coarse and fine parameter combination starting
// from the given coarse guess.
//
// Stage 1 minimizes over the coarse tuple's normalized space; the objective
// for each coarse trial is the best score a full stage-2 search can reach
// for it. Outcomes are cached by exact coarse tuple, so recovering the
// winner costs no extra stage-2 run. A stage-2 failure for one trial is
// absorbed as a large finite score; failure of the stage-1 search itself
// returns an OPTIMIZATION_FAILED error and the caller must fall back to a
// default layout.
func (o *Optimizer) Run(initial Params) (*Result, error) {
	logger := o.logger()
	logger.Info("starting layout optimization",
		"stage1", initial.Values, "low", initial.Low, "high", initial.High)

	x0, err := initial.Fractions()
	if err != nil {
		return nil, err
	}

	best := make(map[string]stage2Outcome)

	objective := func(x []float64) float64 {
		values, derr := decodeFractions(x, initial.Low, initial.High)
		if derr != nil {
			// Bounds were validated converting x0; unreachable.
			return o.penaltyScale() * stage2FailureScore
		}
		key := keyOf(values)
		if out, ok := best[key]; ok {
			return out.score
		}
		score, stage2 := o.stage2Optimize(values)
		best[key] = stage2Outcome{score: score, stage2: stage2}
		o.observe(StageCoarse, values, score)
		return score
	}

	score, x, ok := Minimize(objective, x0, o.Minimize)
	if !ok {
		logger.Error("optimization completely failed", "evals", len(best))
		return nil, errors.New(errors.ErrCodeOptimizationFailed, "stage 1 search did not converge")
	}

	stage1, err := initial.WithFractions(x)
	if err != nil {
		return nil, err
	}

	out := best[keyOf(stage1.Values)]
	result := &Result{Score: score, Stage1: stage1}
	if out.stage2 != nil {
		result.Stage2 = *out.stage2
	}

	logger.Info("optimization converged",
		"score", score, "stage1", result.Stage1.Values, "stage2", result.Stage2.Values,
		"trials", len(best))
	return result, nil
}

// stage2Optimize runs the fine search for one coarse trial. It returns the
// best fine score and parameters, or a finite penalty score and nil
// parameters when the trial is infeasible or the search fails.
func (o *Optimizer) stage2Optimize(stage1 []int) (float64, *Params) {
	init := o.Problem.Stage2Params(stage1)

	if verr := o.Problem.ValidityError(init); verr > 0 {
		// Known infeasible: no rendering attempted for this coarse trial.
		o.logger().Debug("stage 2 skipped, infeasible initial guess",
			"stage1", stage1, "err", verr)
		return o.penalty(verr), nil
	}

	x0, err := init.Fractions()
	if err != nil {
		o.logger().Error("stage 2 bounds invalid", "stage1", stage1, "err", err)
		return o.penaltyScale() * stage2FailureScore, nil
	}

	objective := func(x []float64) float64 {
		values, derr := decodeFractions(x, init.Low, init.High)
		if derr != nil {
			return o.penaltyScale() * stage2FailureScore
		}
		if verr := o.Problem.ValidityError(NewParams(values, init.Low, init.High)); verr > 0 {
			return o.penalty(verr)
		}
		score := o.Problem.Score(stage1, values)
		o.observe(StageFine, values, score)
		return score
	}

	score, x, ok := Minimize(objective, x0, o.Minimize)
	if !ok {
		o.logger().Debug("stage 2 search did not converge", "stage1", stage1)
		return o.penaltyScale() * stage2FailureScore, nil
	}

	stage2, err := init.WithFractions(x)
	if err != nil {
		return o.penaltyScale() * stage2FailureScore, nil
	}
	return score, &stage2
}

// penalty converts a validity error into the smooth out-of-bounds score:
// strictly increasing in err, so the minimizer is steered back toward
// feasibility instead of hitting a flat wall.
func (o *Optimizer) penalty(err float64) float64 {
	return o.penaltyScale() * (1 + err*err)
}

func (o *Optimizer) penaltyScale() float64 {
	if o.PenaltyScale > 0 {
		return o.PenaltyScale
	}
	return DefaultPenaltyScale
}

func (o *Optimizer) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.Default()
}

func (o *Optimizer) observe(stage string, values []int, score float64) {
	if o.Observer != nil {
		o.Observer.OnTrial(stage, values, score)
	}
}

// keyOf builds the exact-equality cache key for an integer tuple.
func keyOf(values []int) string {
	var b strings.Builder
	for i, v := range values {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(v))
	}
	return b.String()
}
