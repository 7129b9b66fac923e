package plonkish_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/halofold/halofold/curve/bn254"
	"github.com/halofold/halofold/plonkish"
)

// mulSystem is a toy circuit with one multiplication gate s*(a*b - c).
func mulSystem() (*plonkish.ConstraintSystem[bn254.Scalar], [3]plonkish.Column, plonkish.Selector) {
	cs := plonkish.NewConstraintSystem[bn254.Scalar](bn254.Arith{})
	a := cs.AdviceColumn()
	b := cs.AdviceColumn()
	c := cs.AdviceColumn()
	s := cs.Selector()
	cs.CreateGate("mul", func(v *plonkish.VirtualCells[bn254.Scalar]) []plonkish.Expression[bn254.Scalar] {
		sa := v.QuerySelector(s)
		qa := v.QueryAdvice(a, 0)
		qb := v.QueryAdvice(b, 0)
		qc := v.QueryAdvice(c, 0)
		return []plonkish.Expression[bn254.Scalar]{
			plonkish.Product(sa, plonkish.Sum(plonkish.Product(qa, qb), plonkish.Neg(qc))),
		}
	})
	return cs, [3]plonkish.Column{a, b, c}, s
}

func synthesizeMul(t *testing.T, cs *plonkish.ConstraintSystem[bn254.Scalar], cols [3]plonkish.Column, s plonkish.Selector, a, b, c uint64) *plonkish.Assignment[bn254.Scalar] {
	t.Helper()
	asg := plonkish.NewAssignment(cs, 3)
	l := plonkish.NewLayouter(asg)

	r := l.Region("mul row")
	defer r.Discard()
	r.AssignAdvice(cols[0], 0, u64(a))
	r.AssignAdvice(cols[1], 0, u64(b))
	r.AssignAdvice(cols[2], 0, u64(c))
	r.EnableSelector(s, 0)
	require.NoError(t, r.Commit())
	return asg
}

func TestGateSatisfied(t *testing.T) {
	cs, cols, s := mulSystem()
	asg := synthesizeMul(t, cs, cols, s, 3, 5, 15)
	require.NoError(t, asg.CheckSatisfied())
}

func TestGateUnsatisfied(t *testing.T) {
	cs, cols, s := mulSystem()
	asg := synthesizeMul(t, cs, cols, s, 3, 5, 16)
	require.ErrorIs(t, asg.CheckSatisfied(), plonkish.ErrGateUnsatisfied)
}

func TestGateDisabledRowsUnconstrained(t *testing.T) {
	assert := require.New(t)
	cs, cols, _ := mulSystem()

	// values violate a*b = c but the selector stays off
	asg := plonkish.NewAssignment(cs, 3)
	l := plonkish.NewLayouter(asg)
	r := l.Region("mul row")
	defer r.Discard()
	r.AssignAdvice(cols[0], 0, u64(3))
	r.AssignAdvice(cols[1], 0, u64(5))
	r.AssignAdvice(cols[2], 0, u64(16))
	assert.NoError(r.Commit())

	assert.NoError(asg.CheckSatisfied())
}

// shuffleSystem declares one unmasked single-coordinate shuffle between two
// advice columns.
func shuffleSystem() (*plonkish.ConstraintSystem[bn254.Scalar], plonkish.Column, plonkish.Column) {
	cs := plonkish.NewConstraintSystem[bn254.Scalar](bn254.Arith{})
	l := cs.AdviceColumn()
	r := cs.AdviceColumn()
	cs.Shuffle("columns", func(v *plonkish.VirtualCells[bn254.Scalar]) [][2]plonkish.Expression[bn254.Scalar] {
		return [][2]plonkish.Expression[bn254.Scalar]{
			{v.QueryAdvice(l, 0), v.QueryAdvice(r, 0)},
		}
	})
	return cs, l, r
}

func fillColumns(t *testing.T, cs *plonkish.ConstraintSystem[bn254.Scalar], colL, colR plonkish.Column, left, right []uint64) *plonkish.Assignment[bn254.Scalar] {
	t.Helper()
	asg := plonkish.NewAssignment(cs, 2) // 4 rows
	ly := plonkish.NewLayouter(asg)
	r := ly.Region("fill")
	defer r.Discard()
	for i, v := range left {
		r.AssignAdvice(colL, i, u64(v))
	}
	for i, v := range right {
		r.AssignAdvice(colR, i, u64(v))
	}
	require.NoError(t, r.Commit())
	return asg
}

func TestShuffleMultisetEqual(t *testing.T) {
	cs, l, r := shuffleSystem()
	asg := fillColumns(t, cs, l, r, []uint64{1, 2, 3, 0}, []uint64{3, 1, 2, 0})
	require.NoError(t, asg.CheckSatisfied())
}

func TestShuffleMultisetMismatch(t *testing.T) {
	cs, l, r := shuffleSystem()
	// 2 appears once on the left, never on the right
	asg := fillColumns(t, cs, l, r, []uint64{1, 2, 3, 0}, []uint64{3, 1, 1, 0})
	require.ErrorIs(t, asg.CheckSatisfied(), plonkish.ErrShuffleUnsatisfied)
}

func TestShuffleMultiplicityMatters(t *testing.T) {
	cs, l, r := shuffleSystem()
	// same value set but different multiplicities
	asg := fillColumns(t, cs, l, r, []uint64{1, 1, 2, 0}, []uint64{1, 2, 2, 0})
	require.ErrorIs(t, asg.CheckSatisfied(), plonkish.ErrShuffleUnsatisfied)
}

func TestCopyConstraintViolation(t *testing.T) {
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
	copied := r2.CopyAdvice(cell, dst, 0)
	assert.NoError(r2.Commit())
	assert.NoError(asg.CheckSatisfied())

	// tamper with the copy target after synthesis
	asg.AdviceColumn(dst.Index)[copied.Cell().Row] = fd.FromUint64(6)
	assert.ErrorIs(asg.CheckSatisfied(), plonkish.ErrCopyUnsatisfied)
}

func TestShuffleProductsAgree(t *testing.T) {
	assert := require.New(t)
	cs, l, r := shuffleSystem()
	asg := fillColumns(t, cs, l, r, []uint64{1, 2, 3, 0}, []uint64{3, 1, 2, 0})

	fd := bn254.Arith{}
	theta, err := fd.Rand()
	assert.NoError(err)
	gamma, err := fd.Rand()
	assert.NoError(err)

	prods := asg.ShuffleProducts(theta, gamma)
	assert.Len(prods, 1)
	assert.Equal(prods[0][0], prods[0][1])
}

func TestShuffleProductsDetectMismatch(t *testing.T) {
	assert := require.New(t)
	cs, l, r := shuffleSystem()
	asg := fillColumns(t, cs, l, r, []uint64{1, 2, 3, 0}, []uint64{3, 1, 1, 0})

	fd := bn254.Arith{}
	theta, err := fd.Rand()
	assert.NoError(err)
	gamma, err := fd.Rand()
	assert.NoError(err)

	prods := asg.ShuffleProducts(theta, gamma)
	assert.Len(prods, 1)
	assert.NotEqual(prods[0][0], prods[0][1])
}
