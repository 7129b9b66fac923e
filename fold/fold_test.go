package fold_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/halofold/halofold/curve/bn254"
	"github.com/halofold/halofold/curve/grumpkin"
	"github.com/halofold/halofold/fold"
	"github.com/halofold/halofold/ivc"
	"github.com/halofold/halofold/std/shuffle"
)

var (
	frArith = bn254.Arith{}
	fqArith = grumpkin.Arith{}
)

func testConfig(t *testing.T) fold.Config {
	t.Helper()
	return fold.Config{
		Steps:               3,
		PrimaryTableSize:    5,
		SecondaryTableSize:  5,
		PrimaryKeyLogSize:   5,
		SecondaryKeyLogSize: 5,
		CacheDir:            t.TempDir(),
		SelfCheck:           true,
	}
}

func TestRunTrivial(t *testing.T) {
	d := fold.NewDriver(testConfig(t))
	err := d.Run(
		ivc.NewTrivialCircuit[bn254.Scalar](1), []bn254.Scalar{frArith.FromUint64(7)},
		ivc.NewTrivialCircuit[grumpkin.Scalar](1), []grumpkin.Scalar{fqArith.Zero()},
	)
	require.NoError(t, err)
	require.Equal(t, fold.StageVerified, d.Stage())
	require.Equal(t, uint64(3), d.Instance().Steps())
}

func TestRunShuffle(t *testing.T) {
	cfg := testConfig(t)
	cfg.Steps = 5

	pair := func(a, b uint64) [2]bn254.Scalar {
		return [2]bn254.Scalar{frArith.FromUint64(a), frArith.FromUint64(b)}
	}
	left := [][2]bn254.Scalar{pair(1, 10), pair(2, 20), pair(4, 40), pair(1, 10)}
	right := [][2]bn254.Scalar{pair(4, 40), pair(1, 10), pair(1, 10), pair(2, 20)}

	// the second run loads the keys the first one cached
	for run := 0; run < 2; run++ {
		d := fold.NewDriver(cfg)
		err := d.Run(
			shuffle.NewStepCircuit(1, left, right), []bn254.Scalar{frArith.Zero()},
			ivc.NewTrivialCircuit[grumpkin.Scalar](1), []grumpkin.Scalar{fqArith.Zero()},
		)
		require.NoError(t, err, "run %d", run)
		require.Equal(t, fold.StageVerified, d.Stage())
	}
}

func TestRunArityMismatch(t *testing.T) {
	d := fold.NewDriver(testConfig(t))
	err := d.Run(
		ivc.NewTrivialCircuit[bn254.Scalar](1), []bn254.Scalar{frArith.Zero(), frArith.One()},
		ivc.NewTrivialCircuit[grumpkin.Scalar](1), []grumpkin.Scalar{fqArith.Zero()},
	)
	require.ErrorIs(t, err, ivc.ErrArityMismatch)
	require.ErrorContains(t, err, "create folding instance")
	require.Equal(t, fold.StageFailed, d.Stage())
}

func TestRunOnlyOnce(t *testing.T) {
	d := fold.NewDriver(testConfig(t))
	primary := ivc.NewTrivialCircuit[bn254.Scalar](1)
	secondary := ivc.NewTrivialCircuit[grumpkin.Scalar](1)
	z1 := []bn254.Scalar{frArith.Zero()}
	z2 := []grumpkin.Scalar{fqArith.Zero()}

	require.NoError(t, d.Run(primary, z1, secondary, z2))
	require.Error(t, d.Run(primary, z1, secondary, z2))
}

func TestRunZeroSteps(t *testing.T) {
	cfg := testConfig(t)
	cfg.Steps = 0
	d := fold.NewDriver(cfg)
	err := d.Run(
		ivc.NewTrivialCircuit[bn254.Scalar](1), []bn254.Scalar{frArith.Zero()},
		ivc.NewTrivialCircuit[grumpkin.Scalar](1), []grumpkin.Scalar{fqArith.Zero()},
	)
	require.Error(t, err)
	require.Equal(t, fold.StageFailed, d.Stage())
}
