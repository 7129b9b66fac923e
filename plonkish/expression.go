package plonkish

import (
	"fmt"

	"github.com/halofold/halofold/field"
)

// Trace is the read view of a filled table that expressions evaluate against.
type Trace[E comparable] interface {
	Arith() field.Arith[E]
	Rows() int
	Advice(col, row int) E
	Fixed(col, row int) E
	SelectorAt(sel, row int) bool
}

// Expression is a polynomial over column queries, selectors and constants,
// evaluated row by row against a trace.
type Expression[E comparable] interface {
	Eval(tr Trace[E], row int) E
}

// wrapRow resolves a rotated query to an absolute row, wrapping at the table
// edges.
func wrapRow(row int, rot Rotation, n int) int {
	r := (row + int(rot)) % n
	if r < 0 {
		r += n
	}
	return r
}

type constExpr[E comparable] struct{ v E }

func (e constExpr[E]) Eval(tr Trace[E], row int) E { return e.v }

type adviceQuery[E comparable] struct {
	col int
	rot Rotation
}

func (e adviceQuery[E]) Eval(tr Trace[E], row int) E {
	return tr.Advice(e.col, wrapRow(row, e.rot, tr.Rows()))
}

type fixedQuery[E comparable] struct {
	col int
	rot Rotation
}

func (e fixedQuery[E]) Eval(tr Trace[E], row int) E {
	return tr.Fixed(e.col, wrapRow(row, e.rot, tr.Rows()))
}

type selectorQuery[E comparable] struct{ sel int }

func (e selectorQuery[E]) Eval(tr Trace[E], row int) E {
	fd := tr.Arith()
	if tr.SelectorAt(e.sel, row) {
		return fd.One()
	}
	return fd.Zero()
}

type sumExpr[E comparable] struct{ a, b Expression[E] }

func (e sumExpr[E]) Eval(tr Trace[E], row int) E {
	return tr.Arith().Add(e.a.Eval(tr, row), e.b.Eval(tr, row))
}

type prodExpr[E comparable] struct{ a, b Expression[E] }

func (e prodExpr[E]) Eval(tr Trace[E], row int) E {
	return tr.Arith().Mul(e.a.Eval(tr, row), e.b.Eval(tr, row))
}

type negExpr[E comparable] struct{ a Expression[E] }

func (e negExpr[E]) Eval(tr Trace[E], row int) E {
	return tr.Arith().Neg(e.a.Eval(tr, row))
}

// Sum returns a + b.
func Sum[E comparable](a, b Expression[E]) Expression[E] {
	return sumExpr[E]{a: a, b: b}
}

// Product returns a * b.
func Product[E comparable](a, b Expression[E]) Expression[E] {
	return prodExpr[E]{a: a, b: b}
}

// Neg returns -a.
func Neg[E comparable](a Expression[E]) Expression[E] {
	return negExpr[E]{a: a}
}

// VirtualCells builds column and selector queries for a gate or shuffle
// declaration. It is handed to the declaration callback by the constraint
// system.
type VirtualCells[E comparable] struct {
	cs *ConstraintSystem[E]
}

// QueryAdvice returns the value of an advice column at the given rotation.
func (v *VirtualCells[E]) QueryAdvice(col Column, rot Rotation) Expression[E] {
	if col.Kind != KindAdvice {
		panic(fmt.Sprintf("QueryAdvice on %s", col))
	}
	v.cs.checkColumn(col)
	return adviceQuery[E]{col: col.Index, rot: rot}
}

// QueryFixed returns the value of a fixed column at the given rotation.
func (v *VirtualCells[E]) QueryFixed(col Column, rot Rotation) Expression[E] {
	if col.Kind != KindFixed {
		panic(fmt.Sprintf("QueryFixed on %s", col))
	}
	v.cs.checkColumn(col)
	return fixedQuery[E]{col: col.Index, rot: rot}
}

// QuerySelector returns 1 at rows where the selector is enabled, 0 elsewhere.
func (v *VirtualCells[E]) QuerySelector(s Selector) Expression[E] {
	v.cs.checkSelector(s)
	return selectorQuery[E]{sel: s.Index}
}

// Constant returns a constant expression.
func (v *VirtualCells[E]) Constant(c E) Expression[E] {
	return constExpr[E]{v: c}
}
