package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sheetpress/pkg/config"
	"github.com/matzehuels/sheetpress/pkg/pipeline"
	"github.com/matzehuels/sheetpress/pkg/sheet"
)

// Watch styles
var (
	watchNormalStyle = lipgloss.NewStyle().Foreground(colorWhite)
	watchDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	watchBadStyle    = lipgloss.NewStyle().Foreground(colorRed)
)

// watchCommand creates the watch command for live layout feedback.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		configPath string
		columns    int
		interval   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch [sheet.json]",
		Short: "Re-run the layout whenever the sheet file changes",
		Long: `Re-run the layout whenever the sheet file changes.

The watch command polls the sheet file and recomputes the layout on every
change, showing the resulting box positions and break counts in a live
table. Useful while editing a sheet to see how the layout reacts.

Press r to force a recompute and q to quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(false)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			m := newWatchModel(args[0], columns, cfg, runner, interval)
			p := tea.NewProgram(m, tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "TOML config file with weights, penalties and metrics")
	cmd.Flags().IntVarP(&columns, "columns", "c", 0, "number of columns (default: derived from the block count)")
	cmd.Flags().DurationVar(&interval, "interval", 500*time.Millisecond, "file poll interval")

	return cmd
}

// =============================================================================
// watchModel - Live layout preview
// =============================================================================

// tickMsg triggers a file modification check.
type tickMsg time.Time

// layoutMsg carries the outcome of one pipeline execution.
type layoutMsg struct {
	result *pipeline.Result
	err    error
}

// watchModel is the bubbletea model for the watch command.
type watchModel struct {
	path     string
	columns  int
	cfg      config.Config
	runner   *pipeline.Runner
	interval time.Duration

	modTime time.Time
	result  *pipeline.Result
	err     error
	runs    int
	running bool
}

// newWatchModel creates a watch model for the given sheet file.
func newWatchModel(path string, columns int, cfg config.Config, runner *pipeline.Runner, interval time.Duration) watchModel {
	m := watchModel{
		path:     path,
		columns:  columns,
		cfg:      cfg,
		runner:   runner,
		interval: interval,
		running:  true,
	}
	if info, err := os.Stat(path); err == nil {
		m.modTime = info.ModTime()
	}
	return m
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(m.compute(false), m.tick())
}

// compute runs the pipeline off the event loop and reports a layoutMsg.
func (m watchModel) compute(refresh bool) tea.Cmd {
	return func() tea.Msg {
		doc, err := sheet.ReadSheetFile(m.path)
		if err != nil {
			return layoutMsg{err: err}
		}
		result, err := m.runner.Execute(context.Background(), pipeline.Options{
			Sheet:   doc,
			Columns: m.columns,
			Config:  m.cfg,
			Refresh: refresh,
		})
		return layoutMsg{result: result, err: err}
	}
}

func (m watchModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			if !m.running {
				m.running = true
				return m, m.compute(true)
			}
		}

	case tickMsg:
		cmds := []tea.Cmd{m.tick()}
		if info, err := os.Stat(m.path); err == nil {
			if info.ModTime().After(m.modTime) && !m.running {
				m.modTime = info.ModTime()
				m.running = true
				cmds = append(cmds, m.compute(false))
			}
		}
		return m, tea.Batch(cmds...)

	case layoutMsg:
		m.running = false
		m.runs++
		m.err = msg.err
		if msg.result != nil {
			m.result = msg.result
		}
	}
	return m, nil
}

func (m watchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Sheetpress watch"))
	b.WriteString("  ")
	b.WriteString(watchDimStyle.Render(m.path))
	b.WriteString("\n")
	b.WriteString(watchDimStyle.Render("r rerun  q quit"))
	b.WriteString("\n\n")

	switch {
	case m.running:
		b.WriteString(StyleDim.Render("computing layout..."))
		b.WriteString("\n")
	case m.err != nil:
		b.WriteString(watchBadStyle.Render(iconError + " " + m.err.Error()))
		b.WriteString("\n")
	case m.result != nil:
		b.WriteString(m.viewResult())
	}

	b.WriteString("\n")
	b.WriteString(watchDimStyle.Render(fmt.Sprintf("  [%d runs]", m.runs)))

	return b.String()
}

// viewResult renders the layout summary and the per-box table.
func (m watchModel) viewResult() string {
	var b strings.Builder
	layout := m.result.Layout

	status := fmt.Sprintf("score %.2f · %d columns", layout.Score, layout.Columns())
	if m.result.CacheInfo.LayoutHit {
		status += " · " + styleCached.Render(iconCached)
	}
	if layout.Fallback {
		b.WriteString(StyleWarning.Render(iconWarning + " fallback layout (no feasible widths)"))
		b.WriteString("\n")
	}
	b.WriteString(StyleValue.Render(status))
	b.WriteString("\n\n")

	boxes := layout.Boxes
	rows := make([][]string, len(boxes))
	for i, box := range boxes {
		breaks := fmt.Sprintf("%dg %db", box.GoodBreaks, box.BadBreaks)
		if box.Unplaceable {
			breaks = iconError
		}
		rows[i] = []string{
			box.BlockID,
			fmt.Sprintf("%d", box.Column),
			fmt.Sprintf("%d,%d", box.Rect.Left, box.Rect.Top),
			fmt.Sprintf("%dx%d", box.Rect.Width(), box.Rect.Height()),
			breaks,
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Block", "Col", "Pos", "Size", "Breaks").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row >= 0 && row < len(boxes) && boxes[row].Unplaceable {
				return watchBadStyle
			}
			return watchNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	return b.String()
}
