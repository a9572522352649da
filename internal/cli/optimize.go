package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sheetpress/pkg/config"
	"github.com/matzehuels/sheetpress/pkg/pipeline"
	"github.com/matzehuels/sheetpress/pkg/sheet"
)

// optimizeCommand creates the optimize command for computing sheet layouts.
func (c *CLI) optimizeCommand() *cobra.Command {
	var (
		output     string
		configPath string
		columns    int
		noCache    bool
		refresh    bool
	)

	cmd := &cobra.Command{
		Use:   "optimize [sheet.json]",
		Short: "Compute a column layout for a sheet document",
		Long: `Compute a column layout for a sheet document.

The optimize command takes a sheet.json file, measures every block, and runs
the two-stage search over column assignments and column widths. The output is
a layout.json file with the winning box positions and the placement score.

When no feasible layout exists for the page, the even-split fallback layout
is written instead and marked as such.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runOptimize(cmd.Context(), args[0], output, configPath, columns, noCache, refresh)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().StringVar(&configPath, "config", "", "TOML config file with weights, penalties and metrics")
	cmd.Flags().IntVarP(&columns, "columns", "c", 0, "number of columns (default: derived from the block count)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even when a cached layout exists")

	return cmd
}

// runOptimize loads the sheet, runs the pipeline, and writes the layout.
func (c *CLI) runOptimize(ctx context.Context, input, output, configPath string, columns int, noCache, refresh bool) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	doc, err := sheet.ReadSheetFile(input)
	if err != nil {
		return fmt.Errorf("load sheet %s: %w", input, err)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := pipeline.Options{
		Sheet:   doc,
		Columns: columns,
		Config:  cfg,
		Refresh: refresh,
		Logger:  c.Logger,
	}

	spinner := newSpinnerWithContext(ctx, "Optimizing layout...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Optimization failed")
		return fmt.Errorf("optimize: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".layout.json"
	}

	if err := result.Layout.WriteFile(outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}
	prog.done(fmt.Sprintf("Placed %d blocks over %d trials", result.Stats.Blocks, result.Stats.Trials))

	if result.Layout.Fallback {
		printWarning("No feasible layout found, wrote the even-split fallback")
	} else {
		printSuccess("Layout complete")
	}
	printFile(outputPath)
	printStats(result.Stats.Blocks, result.Stats.Columns, result.Layout.Score, result.CacheInfo.LayoutHit)
	printNewline()
	printNextStep("Inspect", "sheetpress inspect "+input)

	return nil
}
