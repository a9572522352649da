package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sheetpress/pkg/config"
	"github.com/matzehuels/sheetpress/pkg/errors"
	"github.com/matzehuels/sheetpress/pkg/pipeline"
	"github.com/matzehuels/sheetpress/pkg/render/treeviz"
	"github.com/matzehuels/sheetpress/pkg/sheet"
)

// inspectCommand creates the inspect command for visualizing placement trees.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		output     string
		configPath string
		format     string
		columns    int
		detailed   bool
	)

	cmd := &cobra.Command{
		Use:   "inspect [sheet.json]",
		Short: "Render the placement tree of a sheet for debugging",
		Long: `Render the placement tree of a sheet for debugging.

The inspect command recomputes the layout (bypassing the cache) and renders
the winning placement tree. Every node shows its requested and actual box,
so a bad score can be traced to the block that caused it.

Formats: dot (default, printed to stdout), svg, png.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), args[0], output, configPath, format, columns, detailed)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout for dot, <input>.tree.<ext> otherwise)")
	cmd.Flags().StringVar(&configPath, "config", "", "TOML config file with weights, penalties and metrics")
	cmd.Flags().StringVarP(&format, "format", "f", "dot", "output format: dot, svg, png")
	cmd.Flags().IntVarP(&columns, "columns", "c", 0, "number of columns (default: derived from the block count)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include rectangles and break counts in node labels")

	return cmd
}

// runInspect runs the pipeline and renders the placement tree.
func (c *CLI) runInspect(ctx context.Context, input, output, configPath, format string, columns int, detailed bool) error {
	doc, err := sheet.ReadSheetFile(input)
	if err != nil {
		return fmt.Errorf("load sheet %s: %w", input, err)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := pipeline.Options{
		Sheet:   doc,
		Columns: columns,
		Config:  cfg,
		Logger:  c.Logger,
	}

	spinner := newSpinnerWithContext(ctx, "Computing placement...")
	spinner.Start()

	root, result, err := runner.Inspect(ctx, opts)
	if err != nil {
		spinner.StopWithError("Inspection failed")
		return fmt.Errorf("inspect: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	dot := treeviz.ToDOT(root, treeviz.Options{Detailed: detailed})

	var data []byte
	switch format {
	case "dot":
		if output == "" {
			fmt.Print(dot)
			printStats(result.Stats.Blocks, result.Stats.Columns, result.Layout.Score, false)
			return nil
		}
		data = []byte(dot)
	case "svg":
		if data, err = treeviz.RenderSVG(dot); err != nil {
			return fmt.Errorf("render svg: %w", err)
		}
	case "png":
		if data, err = treeviz.RenderPNG(dot); err != nil {
			return fmt.Errorf("render png: %w", err)
		}
	default:
		return errors.New(errors.ErrCodeUnsupported, "unknown format %q (expected dot, svg, or png)", format)
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".tree." + format
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Placement tree rendered")
	printFile(outputPath)
	printStats(result.Stats.Blocks, result.Stats.Columns, result.Layout.Score, false)

	return nil
}
