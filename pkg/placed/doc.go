// Package placed models content that has been laid out into rectangles and
// scores how well it fits.
//
// # Overview
//
// A renderer (see pkg/measure for the text measurer) produces a tree of
// [Node] values: leaves for individual pieces of content and groups for
// columns, boxes and whole pages. Each node records the rectangle it was
// offered (Requested), the rectangle it consumed (Actual), and fit
// measurements: counts of good and bad line breaks, signed unused width
// (positive slack, negative overflow) and the internal variance of unused
// space across siblings.
//
// The layout optimizer never inspects rendered output directly. It reads a
// trial layout's quality through the three weighted error contributions:
//
//	e := n.ErrorFromBreaks(badBreak, goodBreak) +
//	     n.ErrorFromSize(overflow, slack) +
//	     n.ErrorFromVariance(variance)
//
// Content that cannot be placed at all is represented by an unplaceable
// sentinel node whose size error dominates every realistic combination of
// break, slack and variance penalties.
//
// # Ownership
//
// Nodes form an owned tree: a group exclusively owns its children and a
// node is never shared between trees. Trees are built once per trial
// render and are read-only afterwards, except for [Node.Move], which a
// parent uses to reposition a finished subtree.
package placed
