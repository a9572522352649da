// Package config holds the tunable layout parameters: scoring weights,
// penalty scales, minimizer settings and font metrics. Values load from a
// TOML file and are validated before use.
package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/sheetpress/pkg/errors"
	"github.com/matzehuels/sheetpress/pkg/measure"
	"github.com/matzehuels/sheetpress/pkg/opt"
)

// Weights scale the placement error contributions. All are multiplied with
// integer pixel quantities, so their relative magnitudes set the trade-offs
// between breaks, wasted width and ragged columns.
type Weights struct {
	BadBreak  float64 `toml:"bad_break"`
	GoodBreak float64 `toml:"good_break"`
	Overflow  float64 `toml:"overflow"`
	Slack     float64 `toml:"slack"`
	Variance  float64 `toml:"variance"`
}

// Penalties are the two sentinel scales of the quality model. Validity is the
// base of the out-of-bounds gate penalty; Unplaceable is the score floor for
// content that cannot be placed at all. Unplaceable must strictly dominate
// any gated score, which Validate enforces.
type Penalties struct {
	Validity    float64 `toml:"validity"`
	Unplaceable float64 `toml:"unplaceable"`
}

// Minimizer mirrors the bounded-search settings of pkg/opt.
type Minimizer struct {
	Grid      int     `toml:"grid"`
	Tol       float64 `toml:"tol"`
	MaxSweeps int     `toml:"max_sweeps"`
}

// Config is the full layout configuration.
type Config struct {
	Weights   Weights         `toml:"weights"`
	Penalties Penalties       `toml:"penalties"`
	Minimizer Minimizer       `toml:"minimizer"`
	Metrics   measure.Metrics `toml:"metrics"`
}

// Default returns the built-in configuration. Bad breaks cost an order of
// magnitude more than good ones; overflow costs more than slack.
func Default() Config {
	return Config{
		Weights: Weights{
			BadBreak:  100,
			GoodBreak: 10,
			Overflow:  50,
			Slack:     1,
			Variance:  2,
		},
		Penalties: Penalties{
			Validity:    opt.DefaultPenaltyScale,
			Unplaceable: 1e9,
		},
		Minimizer: Minimizer{
			Grid:      opt.DefaultGrid,
			Tol:       opt.DefaultTol,
			MaxSweeps: opt.DefaultMaxSweeps,
		},
		Metrics: measure.DefaultMetrics,
	}
}

// Load reads a TOML configuration file on top of the defaults and validates
// the result. A missing path returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration invariants, most importantly the penalty
// ordering unplaceable > validity > weights. Breaking that ordering would let
// infeasible layouts outscore feasible ones.
func (c Config) Validate() error {
	for name, w := range map[string]float64{
		"bad_break":  c.Weights.BadBreak,
		"good_break": c.Weights.GoodBreak,
		"overflow":   c.Weights.Overflow,
		"slack":      c.Weights.Slack,
		"variance":   c.Weights.Variance,
	} {
		if w < 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "weight %s must not be negative", name)
		}
		if w >= c.Penalties.Validity {
			return errors.New(errors.ErrCodeInvalidConfig,
				"weight %s (%g) must stay below the validity penalty (%g)", name, w, c.Penalties.Validity)
		}
	}

	if c.Penalties.Validity <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "validity penalty must be positive")
	}
	if c.Penalties.Unplaceable <= c.Penalties.Validity {
		return errors.New(errors.ErrCodeInvalidConfig,
			"unplaceable penalty (%g) must exceed the validity penalty (%g)",
			c.Penalties.Unplaceable, c.Penalties.Validity)
	}

	if c.Minimizer.Grid < 2 {
		return errors.New(errors.ErrCodeInvalidConfig, "minimizer grid must be at least 2")
	}
	if c.Minimizer.Tol <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "minimizer tolerance must be positive")
	}
	if c.Minimizer.MaxSweeps < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "minimizer max sweeps must be at least 1")
	}

	if c.Metrics.CharWidth <= 0 || c.Metrics.SpaceWidth <= 0 || c.Metrics.LineHeight <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "font metrics must be positive")
	}

	return nil
}

// MinimizeOptions converts the minimizer section for pkg/opt.
func (c Config) MinimizeOptions() opt.MinimizeOptions {
	return opt.MinimizeOptions{
		Grid:      c.Minimizer.Grid,
		Tol:       c.Minimizer.Tol,
		MaxSweeps: c.Minimizer.MaxSweeps,
	}
}
