// Package plonkish implements a PLONK-style constraint system: fixed and
// advice (witness) columns, per-row selectors, polynomial gates and shuffle
// arguments, together with the region-scoped synthesis engine that fills a
// table and an exact satisfaction checker.
//
// A circuit is described in two phases. Configuration allocates column and
// selector handles on a [ConstraintSystem] and registers constraints against
// them; the resulting layout is immutable and shared by every synthesis run
// of the same shape. Synthesis fills an [Assignment] through a [Layouter]:
// cell writes are staged inside a [Region] and only reach the table when the
// region commits, so an abandoned region never leaves partial writes behind.
//
// The satisfaction checker is exact rather than probabilistic: gates must
// vanish on every row, copy constraints must hold value equality, and each
// shuffle argument's two tuple streams must be equal as multisets over the
// whole table. The folding engine layers its transcript-derived product
// checks on top of this.
package plonkish
