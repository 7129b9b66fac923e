package plonkish_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/halofold/halofold/curve/bn254"
	"github.com/halofold/halofold/plonkish"
)

func u64(v uint64) plonkish.Value[bn254.Scalar] {
	return plonkish.Known(bn254.Arith{}.FromUint64(v))
}

func TestRegionCommitAppliesWrites(t *testing.T) {
	assert := require.New(t)
	fd := bn254.Arith{}

	cs := plonkish.NewConstraintSystem[bn254.Scalar](fd)
	colA := cs.AdviceColumn()
	colF := cs.FixedColumn()
	sel := cs.Selector()

	asg := plonkish.NewAssignment(cs, 3)
	l := plonkish.NewLayouter(asg)

	r := l.Region("load")
	defer r.Discard()
	cell := r.AssignAdvice(colA, 0, u64(7))
	r.AssignFixed(colF, 1, fd.FromUint64(11))
	r.EnableSelector(sel, 0)
	assert.NoError(r.Commit())

	assert.Equal(fd.FromUint64(7), asg.Advice(colA.Index, 0))
	assert.Equal(fd.FromUint64(11), asg.Fixed(colF.Index, 1))
	assert.True(asg.SelectorAt(sel.Index, 0))
	assert.True(asg.Assigned(cell.Cell()))

	v, known := cell.Value().Get()
	assert.True(known)
	assert.Equal(fd.FromUint64(7), v)
}

func TestRegionDiscardDropsWrites(t *testing.T) {
	assert := require.New(t)
	fd := bn254.Arith{}

	cs := plonkish.NewConstraintSystem[bn254.Scalar](fd)
	colA := cs.AdviceColumn()

	asg := plonkish.NewAssignment(cs, 3)
	l := plonkish.NewLayouter(asg)

	r := l.Region("abandoned")
	cell := r.AssignAdvice(colA, 0, u64(42))
	r.Discard()

	assert.False(asg.Assigned(cell.Cell()))
	assert.Equal(fd.Zero(), asg.Advice(colA.Index, 0))

	// the floor did not advance, the next region starts at row 0
	r2 := l.Region("retry")
	defer r2.Discard()
	cell2 := r2.AssignAdvice(colA, 0, u64(43))
	assert.NoError(r2.Commit())
	assert.Equal(0, cell2.Cell().Row)
}

func TestRegionsStackVertically(t *testing.T) {
	assert := require.New(t)
	fd := bn254.Arith{}

	cs := plonkish.NewConstraintSystem[bn254.Scalar](fd)
	colA := cs.AdviceColumn()

	asg := plonkish.NewAssignment(cs, 3)
	l := plonkish.NewLayouter(asg)

	r1 := l.Region("first")
	r1.AssignAdvice(colA, 0, u64(1))
	r1.AssignAdvice(colA, 1, u64(2))
	assert.NoError(r1.Commit())

	r2 := l.Region("second")
	cell := r2.AssignAdvice(colA, 0, u64(3))
	assert.NoError(r2.Commit())

	assert.Equal(2, cell.Cell().Row)
	assert.Equal(fd.FromUint64(3), asg.Advice(colA.Index, 2))
}

func TestRegionOverflowFails(t *testing.T) {
	assert := require.New(t)
	fd := bn254.Arith{}

	cs := plonkish.NewConstraintSystem[bn254.Scalar](fd)
	colA := cs.AdviceColumn()

	asg := plonkish.NewAssignment(cs, 2) // 4 rows
	l := plonkish.NewLayouter(asg)

	r := l.Region("too big")
	defer r.Discard()
	for i := 0; i < 5; i++ {
		r.AssignAdvice(colA, i, u64(uint64(i)))
	}
	err := r.Commit()
	assert.ErrorIs(err, plonkish.ErrNotEnoughRows)

	// nothing reached the table
	for i := 0; i < 4; i++ {
		assert.False(asg.Assigned(plonkish.CellRef{Col: colA, Row: i}))
	}
}

func TestRegionDoubleAssignFails(t *testing.T) {
	assert := require.New(t)
	fd := bn254.Arith{}

	cs := plonkish.NewConstraintSystem[bn254.Scalar](fd)
	colA := cs.AdviceColumn()

	asg := plonkish.NewAssignment(cs, 3)
	l := plonkish.NewLayouter(asg)

	r := l.Region("dup")
	r.AssignAdvice(colA, 0, u64(1))
	r.AssignAdvice(colA, 0, u64(2))
	assert.ErrorIs(r.Commit(), plonkish.ErrCellOverwritten)
}

func TestRegionCommitTwiceFails(t *testing.T) {
	assert := require.New(t)
	fd := bn254.Arith{}

	cs := plonkish.NewConstraintSystem[bn254.Scalar](fd)
	cs.AdviceColumn()

	asg := plonkish.NewAssignment(cs, 3)
	l := plonkish.NewLayouter(asg)

	r := l.Region("once")
	assert.NoError(r.Commit())
	assert.ErrorIs(r.Commit(), plonkish.ErrRegionFinalized)
}

func TestCopyAdviceRequiresEquality(t *testing.T) {
	assert := require.New(t)
	fd := bn254.Arith{}

	cs := plonkish.NewConstraintSystem[bn254.Scalar](fd)
	src := cs.AdviceColumn()
	dst := cs.AdviceColumn()
	cs.EnableEquality(src)
	// dst deliberately left without equality

	asg := plonkish.NewAssignment(cs, 3)
	l := plonkish.NewLayouter(asg)

	r := l.Region("io")
	cell := r.AssignAdvice(src, 0, u64(5))
	assert.NoError(r.Commit())

	r2 := l.Region("copy")
	r2.CopyAdvice(cell, dst, 0)
	assert.ErrorIs(r2.Commit(), plonkish.ErrEqualityNotEnabled)
}

func TestCopyAdviceRecordsConstraint(t *testing.T) {
	assert := require.New(t)
	fd := bn254.Arith{}

	cs := plonkish.NewConstraintSystem[bn254.Scalar](fd)
	src := cs.AdviceColumn()
	dst := cs.AdviceColumn()
	cs.EnableEquality(src)
	cs.EnableEquality(dst)

	asg := plonkish.NewAssignment(cs, 3)
	l := plonkish.NewLayouter(asg)

	r := l.Region("io")
	cell := r.AssignAdvice(src, 0, u64(5))
	assert.NoError(r.Commit())

	r2 := l.Region("copy")
	copied := r2.CopyAdvice(cell, dst, 1)
	assert.NoError(r2.Commit())

	assert.Equal(fd.FromUint64(5), asg.Advice(dst.Index, copied.Cell().Row))
	copies := asg.Copies()
	assert.Len(copies, 1)
	assert.Equal(cell.Cell(), copies[0][0])
	assert.Equal(copied.Cell(), copies[0][1])
	assert.NoError(asg.CheckSatisfied())
}

func TestUnknownValuesAssignStructurally(t *testing.T) {
	assert := require.New(t)
	fd := bn254.Arith{}

	cs := plonkish.NewConstraintSystem[bn254.Scalar](fd)
	colA := cs.AdviceColumn()

	asg := plonkish.NewAssignment(cs, 3)
	l := plonkish.NewLayouter(asg)

	r := l.Region("shape")
	cell := r.AssignAdvice(colA, 0, plonkish.Unknown[bn254.Scalar]())
	assert.NoError(r.Commit())

	assert.True(asg.Assigned(cell.Cell()))
	assert.False(cell.Value().IsKnown())
	assert.Equal(fd.Zero(), asg.Advice(colA.Index, 0))
}
