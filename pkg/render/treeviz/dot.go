// Package treeviz renders placement trees as diagrams for debugging layout
// quality: every node shows its requested and actual rectangles, break
// counts and slack, so a bad score can be traced to the box that caused it.
package treeviz

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/sheetpress/pkg/placed"
)

// Options configures placement tree rendering.
type Options struct {
	// Detailed includes rectangles and break counts in node labels.
	// When false, only the node kind and size are shown.
	Detailed bool
}

// ToDOT converts a placement tree to Graphviz DOT format. The resulting DOT
// string can be rendered with [RenderSVG] or [RenderPNG].
//
// Unplaceable nodes are drawn filled red; groups are drawn grey. Edge order
// follows child order, which is reading order for column layouts.
func ToDOT(root *placed.Node, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph placement {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	if root != nil {
		writeNode(&buf, root, "n", opts)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeNode(buf *bytes.Buffer, n *placed.Node, id string, opts Options) {
	fmt.Fprintf(buf, "  %q [%s];\n", id, strings.Join(fmtAttrs(n, opts), ", "))
	for i, c := range n.Children {
		childID := fmt.Sprintf("%s_%d", id, i)
		writeNode(buf, c, childID, opts)
		fmt.Fprintf(buf, "  %q -> %q;\n", id, childID)
	}
}

func fmtLabel(n *placed.Node, detailed bool) string {
	if !detailed {
		return n.String()
	}

	parts := []string{
		n.String(),
		fmt.Sprintf("requested: %dx%d@(%d,%d)", n.Requested.Width(), n.Requested.Height(), n.Requested.Left, n.Requested.Top),
		fmt.Sprintf("actual: %dx%d@(%d,%d)", n.Actual.Width(), n.Actual.Height(), n.Actual.Left, n.Actual.Top),
		fmt.Sprintf("breaks: %d good, %d bad", n.GoodBreaks, n.BadBreaks),
		fmt.Sprintf("unused: %d", n.UnusedWidth),
	}
	if n.InternalVariance != 0 {
		parts = append(parts, fmt.Sprintf("variance: %d", n.InternalVariance))
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(n *placed.Node, opts Options) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed))}
	switch {
	case n.Unplaceable():
		attrs = append(attrs, "fillcolor=lightcoral")
	case n.IsGroup():
		attrs = append(attrs, "fillcolor=lightgrey")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	return render(dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	return render(dot, graphviz.PNG)
}

func render(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
