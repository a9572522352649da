// Package pkg provides the core libraries for Sheetpress page layout.
//
// # Overview
//
// Sheetpress lays out rich-text sheet documents onto fixed pages by searching
// column assignments and column widths for the placement with the fewest bad
// breaks and the least wasted space. The pkg directory is organized into four
// main areas:
//
//  1. Layout model - [geom], [placed], [measure]: rectangles, placement trees
//     and deterministic text measurement
//  2. Search - [opt], [sheet]: the two-stage bounded optimizer and the
//     concrete column layout problem
//  3. Infrastructure - [cache], [store], [config], [errors], [observability]:
//     caching, run persistence and shared plumbing
//  4. Orchestration - [pipeline], [render/treeviz]: the measure → optimize →
//     place pipeline and debug rendering
//
// # Architecture
//
// The typical data flow through Sheetpress:
//
//	Sheet document (JSON)
//	         ↓
//	measure: per-block text measurement into placed.Node leaves
//	         ↓
//	opt: two-stage search over column counts and widths
//	         ↓
//	sheet: placement of the winning parameters into a Layout
//	         ↓
//	Layout artifact (JSON) / placement tree (DOT, SVG, PNG)
//
// Each stage is usable on its own: [measure] for text metrics, [opt] for any
// two-stage integer search problem, and [sheet] for building layouts from
// known parameters.
package pkg
