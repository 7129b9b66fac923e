package bn254_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/halofold/halofold/curve/bn254"
)

var fd = bn254.Arith{}

func randScalars(t *testing.T, n int) []bn254.Scalar {
	t.Helper()
	out := make([]bn254.Scalar, n)
	for i := range out {
		v, err := fd.Rand()
		require.NoError(t, err)
		out[i] = v
	}
	return out
}

func TestCommitHomomorphism(t *testing.T) {
	ops := bn254.Ops{}
	basis, err := ops.Basis(16)
	require.NoError(t, err)

	a := randScalars(t, 16)
	b := randScalars(t, 16)
	r, err := fd.Rand()
	require.NoError(t, err)

	ca, err := ops.Commit(basis, a)
	require.NoError(t, err)
	cb, err := ops.Commit(basis, b)
	require.NoError(t, err)

	// Commit(a + r·b) must equal Commit(a) + r·Commit(b)
	sum := make([]bn254.Scalar, len(a))
	for i := range sum {
		sum[i] = fd.Add(a[i], fd.Mul(r, b[i]))
	}
	cSum, err := ops.Commit(basis, sum)
	require.NoError(t, err)
	require.True(t, ops.Equal(cSum, ops.Fold(ca, cb, r)))
}

func TestCommitPrefix(t *testing.T) {
	ops := bn254.Ops{}
	basis, err := ops.Basis(8)
	require.NoError(t, err)

	_, err = ops.Commit(basis[:4], randScalars(t, 4))
	require.NoError(t, err)
}

func TestPointsRoundTrip(t *testing.T) {
	ops := bn254.Ops{}
	basis, err := ops.Basis(8)
	require.NoError(t, err)

	for _, raw := range []bool{false, true} {
		var buf bytes.Buffer
		_, err := ops.EncodePoints(&buf, basis, raw)
		require.NoError(t, err)

		got, _, err := ops.DecodePoints(&buf, len(basis), false)
		require.NoError(t, err)
		require.Equal(t, basis, got)
	}
}

func TestArithCanonical(t *testing.T) {
	// elements reached through different operation orders must compare
	// equal with ==
	a := fd.Add(fd.FromUint64(2), fd.FromUint64(3))
	b := fd.FromUint64(5)
	require.True(t, a == b)
	require.True(t, fd.IsZero(fd.Sub(a, b)))

	v, err := fd.Rand()
	require.NoError(t, err)
	require.True(t, v == fd.FromBytes(fd.Bytes(v)))
}
