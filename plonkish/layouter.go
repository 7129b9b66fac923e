package plonkish

import (
	"fmt"

	"github.com/halofold/halofold/debug"
)

// AssignedCell is the handle returned by a region write: the absolute cell it
// targets and the value staged into it. Cells are only backed by the table
// once their region commits.
type AssignedCell[E comparable] struct {
	ref CellRef
	val Value[E]
}

// Cell returns the absolute table position of the cell.
func (c AssignedCell[E]) Cell() CellRef { return c.ref }

// Value returns the staged value.
func (c AssignedCell[E]) Value() Value[E] { return c.val }

// Layouter places regions into an assignment. Regions are opened one at a
// time and stack vertically: each committed region advances the floor past
// the rows it used.
type Layouter[E comparable] struct {
	asg    *Assignment[E]
	active *Region[E]
}

// NewLayouter returns a layouter filling asg from row zero.
func NewLayouter[E comparable](asg *Assignment[E]) *Layouter[E] {
	return &Layouter[E]{asg: asg}
}

// Assignment returns the table being filled.
func (l *Layouter[E]) Assignment() *Assignment[E] { return l.asg }

// Region opens a named region at the current floor. The previous region must
// have been committed or discarded first.
func (l *Layouter[E]) Region(name string) *Region[E] {
	if l.active != nil && !l.active.done {
		panic(fmt.Sprintf("region %q not finalized before opening %q", l.active.name, name))
	}
	r := &Region[E]{name: name, l: l, offset: l.asg.floor}
	l.active = r
	return r
}

type stagedKind uint8

const (
	stageAdvice stagedKind = iota + 1
	stageFixed
	stageSelector
	stageCopy
)

type stagedOp[E comparable] struct {
	kind stagedKind
	col  Column
	sel  Selector
	row  int // region-relative
	val  Value[E]
	from CellRef // copy source, absolute
}

// Region is a scoped batch of cell assignments. Writes are staged and reach
// the assignment only through Commit; Discard drops them. Every region must
// be finalized on every exit path, typically with
//
//	r := layouter.Region("load inputs")
//	defer r.Discard()
//	...
//	return r.Commit()
//
// where the deferred Discard is a no-op after a Commit.
type Region[E comparable] struct {
	name     string
	l        *Layouter[E]
	offset   int
	rowsUsed int
	staged   []stagedOp[E]
	done     bool
}

func (r *Region[E]) ensureOpen(op string) {
	if r.done {
		panic(fmt.Sprintf("%s on finalized region %q", op, r.name))
	}
}

func (r *Region[E]) touch(row int) {
	if row < 0 {
		panic(fmt.Sprintf("negative row %d in region %q", row, r.name))
	}
	if row+1 > r.rowsUsed {
		r.rowsUsed = row + 1
	}
}

// AssignAdvice stages a witness value into an advice cell at a
// region-relative row and returns its handle.
func (r *Region[E]) AssignAdvice(col Column, row int, v Value[E]) AssignedCell[E] {
	r.ensureOpen("AssignAdvice")
	if col.Kind != KindAdvice {
		panic(fmt.Sprintf("AssignAdvice on %s", col))
	}
	r.l.asg.cs.checkColumn(col)
	r.touch(row)
	r.staged = append(r.staged, stagedOp[E]{kind: stageAdvice, col: col, row: row, val: v})
	return AssignedCell[E]{ref: CellRef{Col: col, Row: r.offset + row}, val: v}
}

// AssignFixed stages a constant into a fixed cell at a region-relative row.
func (r *Region[E]) AssignFixed(col Column, row int, v E) {
	r.ensureOpen("AssignFixed")
	if col.Kind != KindFixed {
		panic(fmt.Sprintf("AssignFixed on %s", col))
	}
	r.l.asg.cs.checkColumn(col)
	r.touch(row)
	r.staged = append(r.staged, stagedOp[E]{kind: stageFixed, col: col, row: row, val: Known(v)})
}

// EnableSelector stages a selector enable at a region-relative row.
func (r *Region[E]) EnableSelector(s Selector, row int) {
	r.ensureOpen("EnableSelector")
	r.l.asg.cs.checkSelector(s)
	r.touch(row)
	r.staged = append(r.staged, stagedOp[E]{kind: stageSelector, sel: s, row: row})
}

// CopyAdvice stages an equality-preserving copy of cell into an advice column
// at a region-relative row: the target cell receives the source value and a
// copy constraint ties the two cells. Both columns must have equality
// enabled.
func (r *Region[E]) CopyAdvice(cell AssignedCell[E], col Column, row int) AssignedCell[E] {
	r.ensureOpen("CopyAdvice")
	if col.Kind != KindAdvice {
		panic(fmt.Sprintf("CopyAdvice on %s", col))
	}
	r.l.asg.cs.checkColumn(col)
	r.touch(row)
	r.staged = append(r.staged, stagedOp[E]{kind: stageCopy, col: col, row: row, val: cell.val, from: cell.ref})
	return AssignedCell[E]{ref: CellRef{Col: col, Row: r.offset + row}, val: cell.val}
}

// Commit validates the staged writes and applies them to the assignment. The
// region is finalized whether or not Commit succeeds; on failure no staged
// write reaches the table.
func (r *Region[E]) Commit() error {
	if r.done {
		return fmt.Errorf("region %q: %w", r.name, ErrRegionFinalized)
	}
	r.done = true
	r.l.active = nil
	staged := r.staged
	r.staged = nil

	if err := r.validate(staged); err != nil {
		if debug.Debug {
			err = fmt.Errorf("%w\n%s", err, debug.Stack())
		}
		return err
	}

	asg := r.l.asg
	for _, op := range staged {
		row := r.offset + op.row
		switch op.kind {
		case stageAdvice:
			v, known := op.val.Get()
			_ = asg.setAdvice(op.col.Index, row, v, known)
		case stageFixed:
			v, _ := op.val.Get()
			_ = asg.setFixed(op.col.Index, row, v)
		case stageSelector:
			asg.enableSelector(op.sel.Index, row)
		case stageCopy:
			v, known := op.val.Get()
			_ = asg.setAdvice(op.col.Index, row, v, known)
			asg.addCopy(op.from, CellRef{Col: op.col, Row: row})
		}
	}
	asg.floor = r.offset + r.rowsUsed
	return nil
}

// validate checks bounds, duplicate writes and copy equality capabilities
// before any staged op touches the table.
func (r *Region[E]) validate(staged []stagedOp[E]) error {
	asg := r.l.asg
	if end := r.offset + r.rowsUsed; end > asg.rows {
		return fmt.Errorf("region %q rows [%d, %d): %w (table has %d rows)",
			r.name, r.offset, end, ErrNotEnoughRows, asg.rows)
	}
	seen := make(map[CellRef]struct{}, len(staged))
	for _, op := range staged {
		ref := CellRef{Col: op.col, Row: r.offset + op.row}
		switch op.kind {
		case stageAdvice, stageFixed, stageCopy:
			if _, dup := seen[ref]; dup || asg.Assigned(ref) {
				return fmt.Errorf("region %q: %w: %s", r.name, ErrCellOverwritten, ref)
			}
			seen[ref] = struct{}{}
		}
		if op.kind == stageCopy {
			if !asg.cs.EqualityEnabled(op.col) {
				return fmt.Errorf("region %q: copy into %s: %w", r.name, op.col, ErrEqualityNotEnabled)
			}
			if !asg.cs.EqualityEnabled(op.from.Col) {
				return fmt.Errorf("region %q: copy from %s: %w", r.name, op.from, ErrEqualityNotEnabled)
			}
		}
	}
	return nil
}

// Discard drops the staged writes. Discard after Commit is a no-op.
func (r *Region[E]) Discard() {
	if r.done {
		return
	}
	r.done = true
	r.l.active = nil
	r.staged = nil
}
