package plonkish

import (
	"fmt"

	"github.com/halofold/halofold/field"
)

type gate[E comparable] struct {
	name  string
	polys []Expression[E]
}

type shuffleArg[E comparable] struct {
	name  string
	pairs [][2]Expression[E]
}

// ConstraintSystem accumulates a circuit's layout: columns, selectors, gates
// and shuffle arguments. It is mutable during configuration and frozen by the
// first assignment built from it; the frozen system is the Layout shared by
// every synthesis run of the same shape.
type ConstraintSystem[E comparable] struct {
	fd field.Arith[E]

	nbAdvice    int
	nbFixed     int
	nbSelectors int

	equality map[int]bool // advice column index -> copies allowed

	gates    []gate[E]
	shuffles []shuffleArg[E]

	frozen bool
}

// NewConstraintSystem returns an empty system over the given field.
func NewConstraintSystem[E comparable](fd field.Arith[E]) *ConstraintSystem[E] {
	return &ConstraintSystem[E]{
		fd:       fd,
		equality: make(map[int]bool),
	}
}

func (cs *ConstraintSystem[E]) mutable(op string) {
	if cs.frozen {
		panic(op + " on frozen constraint system")
	}
}

// AdviceColumn allocates a prover-supplied witness column.
func (cs *ConstraintSystem[E]) AdviceColumn() Column {
	cs.mutable("AdviceColumn")
	col := Column{Index: cs.nbAdvice, Kind: KindAdvice}
	cs.nbAdvice++
	return col
}

// FixedColumn allocates a column baked into the circuit shape.
func (cs *ConstraintSystem[E]) FixedColumn() Column {
	cs.mutable("FixedColumn")
	col := Column{Index: cs.nbFixed, Kind: KindFixed}
	cs.nbFixed++
	return col
}

// Selector allocates a per-row enable flag.
func (cs *ConstraintSystem[E]) Selector() Selector {
	cs.mutable("Selector")
	s := Selector{Index: cs.nbSelectors}
	cs.nbSelectors++
	return s
}

// EnableEquality marks an advice column as a copy target, allowing cells of
// other columns to be copied into it with enforced value equality.
func (cs *ConstraintSystem[E]) EnableEquality(col Column) {
	cs.mutable("EnableEquality")
	if col.Kind != KindAdvice {
		panic(fmt.Sprintf("EnableEquality on %s", col))
	}
	cs.checkColumn(col)
	cs.equality[col.Index] = true
}

// CreateGate registers a named set of polynomial constraints. Every returned
// expression must evaluate to zero on every row of a satisfying trace;
// selector queries scope a constraint to the rows where its selector is
// enabled.
func (cs *ConstraintSystem[E]) CreateGate(name string, build func(*VirtualCells[E]) []Expression[E]) {
	cs.mutable("CreateGate")
	polys := build(&VirtualCells[E]{cs: cs})
	if len(polys) == 0 {
		panic(fmt.Sprintf("gate %q has no constraints", name))
	}
	cs.gates = append(cs.gates, gate[E]{name: name, polys: polys})
}

// Shuffle registers a multiset-equality argument between two paired value
// streams. Each returned pair (input, table) contributes one coordinate to
// the row tuples; a satisfying trace has the multiset of input tuples over
// all rows equal to the multiset of table tuples. Rows where the scoping
// selectors are disabled contribute all-zero tuples to both sides.
func (cs *ConstraintSystem[E]) Shuffle(name string, build func(*VirtualCells[E]) [][2]Expression[E]) {
	cs.mutable("Shuffle")
	pairs := build(&VirtualCells[E]{cs: cs})
	if len(pairs) == 0 {
		panic(fmt.Sprintf("shuffle %q has no pairs", name))
	}
	cs.shuffles = append(cs.shuffles, shuffleArg[E]{name: name, pairs: pairs})
}

// Arith returns the field the system is defined over.
func (cs *ConstraintSystem[E]) Arith() field.Arith[E] { return cs.fd }

// NbAdvice returns the number of advice columns.
func (cs *ConstraintSystem[E]) NbAdvice() int { return cs.nbAdvice }

// NbFixed returns the number of fixed columns.
func (cs *ConstraintSystem[E]) NbFixed() int { return cs.nbFixed }

// NbSelectors returns the number of selectors.
func (cs *ConstraintSystem[E]) NbSelectors() int { return cs.nbSelectors }

// NbShuffles returns the number of registered shuffle arguments.
func (cs *ConstraintSystem[E]) NbShuffles() int { return len(cs.shuffles) }

// EqualityEnabled reports whether col accepts equality copies.
func (cs *ConstraintSystem[E]) EqualityEnabled(col Column) bool {
	return col.Kind == KindAdvice && cs.equality[col.Index]
}

func (cs *ConstraintSystem[E]) freeze() { cs.frozen = true }

func (cs *ConstraintSystem[E]) checkColumn(col Column) {
	var n int
	switch col.Kind {
	case KindAdvice:
		n = cs.nbAdvice
	case KindFixed:
		n = cs.nbFixed
	default:
		panic(fmt.Sprintf("unknown column kind %v", col.Kind))
	}
	if col.Index < 0 || col.Index >= n {
		panic(fmt.Sprintf("column %s not allocated by this system", col))
	}
}

func (cs *ConstraintSystem[E]) checkSelector(s Selector) {
	if s.Index < 0 || s.Index >= cs.nbSelectors {
		panic(fmt.Sprintf("selector %d not allocated by this system", s.Index))
	}
}
