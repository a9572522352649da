// Package opt implements the two-stage bounded layout optimizer.
//
// # Overview
//
// Layout decisions in sheetpress are integer parameters: how many blocks go
// in each column, how wide each column is. A concrete layout problem
// implements the [Problem] interface: a score function over a coarse and a
// fine parameter tuple, a derivation of the initial fine guess from a
// coarse trial, and a validity measure. [Optimizer.Run] searches both
// parameter sets in sequence for the best-scoring combination.
//
// The search space is normalized: every integer axis maps onto [0, 1]
// through its shared [low, high] bounds (see [ToFraction] and
// [FromFraction]), and a deterministic derivative-free coordinate-descent
// minimizer works in the unit box. The objective depends on integer
// text-wrap outcomes and is therefore discontinuous and full of plateaus;
// gradient methods are unsuitable, so the minimizer combines a coarse
// per-axis grid scan with golden-section refinement and tolerates ties.
//
// Structurally invalid trials never reach the renderer: the validity gate
// converts the degree of invalidity into a smooth penalty that dominates
// any real score while still steering the search back toward feasibility.
//
// Every run is self-contained and reentrant: the stage-1 result cache is
// local to the call, and identical inputs produce identical results.
package opt
