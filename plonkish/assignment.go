package plonkish

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"

	"github.com/halofold/halofold/field"
)

// Assignment is one filled table: the advice and fixed column values, the
// enabled selector rows, and the copy constraints recorded during synthesis.
// It implements [Trace].
type Assignment[E comparable] struct {
	cs   *ConstraintSystem[E]
	rows int

	advice [][]E
	fixed  [][]E

	selectors []*bitset.BitSet
	adviceSet []*bitset.BitSet
	fixedSet  []*bitset.BitSet

	copies [][2]CellRef

	floor int // next free row for region placement
}

// NewAssignment allocates an empty table of 2^logRows rows for the given
// system and freezes the system's layout.
func NewAssignment[E comparable](cs *ConstraintSystem[E], logRows uint32) *Assignment[E] {
	cs.freeze()
	rows := 1 << logRows

	a := &Assignment[E]{
		cs:        cs,
		rows:      rows,
		advice:    make([][]E, cs.nbAdvice),
		fixed:     make([][]E, cs.nbFixed),
		selectors: make([]*bitset.BitSet, cs.nbSelectors),
		adviceSet: make([]*bitset.BitSet, cs.nbAdvice),
		fixedSet:  make([]*bitset.BitSet, cs.nbFixed),
	}
	for i := range a.advice {
		a.advice[i] = make([]E, rows)
		a.adviceSet[i] = bitset.New(uint(rows))
	}
	for i := range a.fixed {
		a.fixed[i] = make([]E, rows)
		a.fixedSet[i] = bitset.New(uint(rows))
	}
	for i := range a.selectors {
		a.selectors[i] = bitset.New(uint(rows))
	}
	return a
}

// System returns the layout this assignment was built for.
func (a *Assignment[E]) System() *ConstraintSystem[E] { return a.cs }

// Arith returns the field of the assignment.
func (a *Assignment[E]) Arith() field.Arith[E] { return a.cs.fd }

// Rows returns the table height.
func (a *Assignment[E]) Rows() int { return a.rows }

// RowsUsed returns the floor after the last committed region, the height of
// the table prefix synthesis actually wrote.
func (a *Assignment[E]) RowsUsed() int { return a.floor }

// Advice returns the value of an advice cell; unassigned cells read as zero.
func (a *Assignment[E]) Advice(col, row int) E { return a.advice[col][row] }

// Fixed returns the value of a fixed cell; unassigned cells read as zero.
func (a *Assignment[E]) Fixed(col, row int) E { return a.fixed[col][row] }

// SelectorAt reports whether a selector is enabled at a row.
func (a *Assignment[E]) SelectorAt(sel, row int) bool {
	return a.selectors[sel].Test(uint(row))
}

// Assigned reports whether the cell was written during synthesis.
func (a *Assignment[E]) Assigned(ref CellRef) bool {
	switch ref.Col.Kind {
	case KindAdvice:
		return a.adviceSet[ref.Col.Index].Test(uint(ref.Row))
	case KindFixed:
		return a.fixedSet[ref.Col.Index].Test(uint(ref.Row))
	default:
		return false
	}
}

// Copies returns the recorded copy constraints.
func (a *Assignment[E]) Copies() [][2]CellRef { return a.copies }

// AdviceColumn returns the backing slice of one advice column. The caller
// must not mutate it.
func (a *Assignment[E]) AdviceColumn(col int) []E { return a.advice[col] }

// FixedColumn returns the backing slice of one fixed column. The caller must
// not mutate it.
func (a *Assignment[E]) FixedColumn(col int) []E { return a.fixed[col] }

// SelectorColumn returns the bitset of one selector. The caller must not
// mutate it.
func (a *Assignment[E]) SelectorColumn(sel int) *bitset.BitSet { return a.selectors[sel] }

func (a *Assignment[E]) setAdvice(col, row int, v E, known bool) error {
	if a.adviceSet[col].Test(uint(row)) {
		return fmt.Errorf("%w: %s", ErrCellOverwritten, CellRef{Col: Column{Index: col, Kind: KindAdvice}, Row: row})
	}
	a.adviceSet[col].Set(uint(row))
	if known {
		a.advice[col][row] = v
	}
	return nil
}

func (a *Assignment[E]) setFixed(col, row int, v E) error {
	if a.fixedSet[col].Test(uint(row)) {
		return fmt.Errorf("%w: %s", ErrCellOverwritten, CellRef{Col: Column{Index: col, Kind: KindFixed}, Row: row})
	}
	a.fixedSet[col].Set(uint(row))
	a.fixed[col][row] = v
	return nil
}

func (a *Assignment[E]) enableSelector(sel, row int) {
	a.selectors[sel].Set(uint(row))
}

func (a *Assignment[E]) addCopy(from, to CellRef) {
	a.copies = append(a.copies, [2]CellRef{from, to})
}
