// Package grumpkin binds the synthesis and folding engines to the grumpkin
// curve, the secondary side of the halofold cycle.
//
// grumpkin's scalar field is the bn254 base field, which is what lets the two
// sides of the cycle commit to each other's traces.
package grumpkin

import (
	"fmt"
	"io"
	"math/big"
	"runtime"

	"github.com/consensys/gnark-crypto/ecc"
	curve "github.com/consensys/gnark-crypto/ecc/grumpkin"
	"github.com/consensys/gnark-crypto/ecc/grumpkin/fr"
	"golang.org/x/sync/errgroup"

	"github.com/halofold/halofold/commitment"
	"github.com/halofold/halofold/field"
)

// Scalar is a grumpkin scalar field element.
type Scalar = fr.Element

// Point is a grumpkin G1 point in affine coordinates.
type Point = curve.G1Affine

// Arith implements field.Arith over the grumpkin scalar field.
type Arith struct{}

var _ field.Arith[Scalar] = Arith{}

func (Arith) Zero() Scalar { return Scalar{} }

func (Arith) One() Scalar { return fr.One() }

func (Arith) FromUint64(v uint64) Scalar {
	var e Scalar
	e.SetUint64(v)
	return e
}

func (Arith) FromBytes(b []byte) Scalar {
	var e Scalar
	e.SetBytes(b)
	return e
}

func (Arith) Add(a, b Scalar) Scalar {
	var r Scalar
	r.Add(&a, &b)
	return r
}

func (Arith) Sub(a, b Scalar) Scalar {
	var r Scalar
	r.Sub(&a, &b)
	return r
}

func (Arith) Mul(a, b Scalar) Scalar {
	var r Scalar
	r.Mul(&a, &b)
	return r
}

func (Arith) Neg(a Scalar) Scalar {
	var r Scalar
	r.Neg(&a)
	return r
}

func (Arith) IsZero(a Scalar) bool { return a.IsZero() }

func (Arith) Bytes(a Scalar) []byte {
	b := a.Bytes()
	return b[:]
}

func (Arith) Rand() (Scalar, error) {
	var e Scalar
	if _, err := e.SetRandom(); err != nil {
		return Scalar{}, err
	}
	return e, nil
}

func (Arith) String(a Scalar) string { return a.String() }

// Ops implements commitment.Ops over grumpkin G1.
type Ops struct{}

var _ commitment.Ops[Scalar, Point] = Ops{}

func (Ops) Name() string { return "grumpkin" }

// Basis derives a powers-of-tau basis of the given size. The trapdoor is
// sampled from crypto/rand and discarded; for production use, a basis from an
// MPC ceremony should be loaded instead.
func (Ops) Basis(size int) ([]Point, error) {
	var tau fr.Element
	if _, err := tau.SetRandom(); err != nil {
		return nil, err
	}
	powers := make([]fr.Element, size)
	powers[0] = fr.One()
	for i := 1; i < size; i++ {
		powers[i].Mul(&powers[i-1], &tau)
	}

	_, g1Aff := curve.Generators()
	basis := make([]Point, size)
	chunk := (size + runtime.NumCPU() - 1) / runtime.NumCPU()
	var g errgroup.Group
	for start := 0; start < size; start += chunk {
		start, end := start, min(start+chunk, size)
		g.Go(func() error {
			copy(basis[start:end], curve.BatchScalarMultiplicationG1(&g1Aff, powers[start:end]))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return basis, nil
}

func (Ops) Commit(basis []Point, scalars []Scalar) (Point, error) {
	var p curve.G1Jac
	if _, err := p.MultiExp(basis, scalars, ecc.MultiExpConfig{}); err != nil {
		return Point{}, err
	}
	var aff Point
	aff.FromJacobian(&p)
	return aff, nil
}

func (Ops) Fold(acc, x Point, r Scalar) Point {
	var rb big.Int
	r.BigInt(&rb)
	var xj, aj curve.G1Jac
	xj.FromAffine(&x)
	xj.ScalarMultiplication(&xj, &rb)
	aj.FromAffine(&acc)
	aj.AddAssign(&xj)
	var res Point
	res.FromJacobian(&aj)
	return res
}

func (Ops) Zero() Point { return Point{} }

func (Ops) Equal(a, b Point) bool { return a.Equal(&b) }

func (Ops) Marshal(p Point) []byte { return p.Marshal() }

func (Ops) EncodePoints(w io.Writer, pts []Point, raw bool) (int64, error) {
	var enc *curve.Encoder
	if raw {
		enc = curve.NewEncoder(w, curve.RawEncoding())
	} else {
		enc = curve.NewEncoder(w)
	}
	err := enc.Encode(pts)
	return enc.BytesWritten(), err
}

func (Ops) DecodePoints(r io.Reader, n int, trusted bool) ([]Point, int64, error) {
	var dec *curve.Decoder
	if trusted {
		dec = curve.NewDecoder(r, curve.NoSubgroupChecks())
	} else {
		dec = curve.NewDecoder(r)
	}
	var pts []Point
	if err := dec.Decode(&pts); err != nil {
		return nil, dec.BytesRead(), err
	}
	if len(pts) != n {
		return nil, dec.BytesRead(), fmt.Errorf("decoded %d basis points, expected %d", len(pts), n)
	}
	return pts, dec.BytesRead(), nil
}

// NewKey returns an empty grumpkin commitment key, ready for ReadFrom.
func NewKey() *commitment.Key[Scalar, Point] {
	return commitment.NewKey[Scalar, Point](Ops{})
}

// Setup derives a fresh grumpkin commitment key of the given size.
func Setup(size int) (*commitment.Key[Scalar, Point], error) {
	return commitment.Setup[Scalar, Point](Ops{}, size)
}

// LoadOrSetup returns the cached grumpkin commitment key for 2^logSize,
// generating and caching it on a miss.
func LoadOrSetup(dir string, logSize uint64, opts ...commitment.CacheOption) (*commitment.Key[Scalar, Point], error) {
	return commitment.LoadOrSetup[Scalar, Point](Ops{}, dir, logSize, opts...)
}
