// Package commitment implements Pedersen-style vector commitments over a
// fixed basis of group elements, together with a validated on-disk key cache.
//
// Keys are generic over the scalar type E and the point type P; the group
// operations for a concrete curve are provided through an [Ops]
// implementation (see curve/bn254 and curve/grumpkin). The commitment to a
// vector w is the multi-scalar multiplication Σ w_i·G_i, which is additively
// homomorphic: Commit(a + r·b) = Commit(a) + r·Commit(b). The folding
// accumulator relies on that homomorphism.
package commitment

import (
	"errors"
	"fmt"
	"io"
)

var (
	// ErrShortBasis is returned when a vector longer than the basis is committed.
	ErrShortBasis = errors.New("commitment basis shorter than committed vector")

	// ErrKeyMismatch is returned when a cached key header does not carry the
	// requested curve tag and size.
	ErrKeyMismatch = errors.New("cached commitment key does not match requested curve or size")

	// ErrCorruptKey is returned when a cached key fails its integrity check.
	ErrCorruptKey = errors.New("cached commitment key failed integrity check")

	// ErrVersionIncompat is returned when a cached key was written by an
	// incompatible library version.
	ErrVersionIncompat = errors.New("cached commitment key written by incompatible version")
)

// Ops provides the group operations the commitment scheme needs for a given
// curve. Implementations live in the curve subpackages.
type Ops[E comparable, P any] interface {
	// Name returns the lowercase curve tag stored in cache headers.
	Name() string

	// Basis derives a fresh commitment basis of the given size.
	Basis(size int) ([]P, error)

	// Commit returns the multi-scalar multiplication Σ scalars_i·basis_i.
	// len(scalars) must not exceed len(basis).
	Commit(basis []P, scalars []E) (P, error)

	// Fold returns acc + r·x.
	Fold(acc, x P, r E) P

	// Zero returns the group identity.
	Zero() P

	Equal(a, b P) bool

	// Marshal returns the canonical compressed encoding of p.
	Marshal(p P) []byte

	// EncodePoints writes pts to w, uncompressed when raw is set.
	EncodePoints(w io.Writer, pts []P, raw bool) (int64, error)

	// DecodePoints reads n points from r. The point encoding is
	// self-describing, so both raw and compressed streams decode. When
	// trusted is set, subgroup membership checks are skipped.
	DecodePoints(r io.Reader, n int, trusted bool) ([]P, int64, error)
}

// Key is a commitment key: a basis of group elements sized to the largest
// vector it can commit to.
type Key[E comparable, P any] struct {
	ops   Ops[E, P]
	basis []P
}

// NewKey returns an empty key bound to ops, ready for ReadFrom.
func NewKey[E comparable, P any](ops Ops[E, P]) *Key[E, P] {
	return &Key[E, P]{ops: ops}
}

// Setup derives a fresh commitment key of the given size.
//
// The basis is a powers-of-tau sequence with the trapdoor sampled from
// crypto/rand and discarded. For production use, a basis produced by an MPC
// ceremony should be loaded instead.
func Setup[E comparable, P any](ops Ops[E, P], size int) (*Key[E, P], error) {
	if size <= 0 {
		return nil, fmt.Errorf("commitment key size must be positive, got %d", size)
	}
	basis, err := ops.Basis(size)
	if err != nil {
		return nil, fmt.Errorf("derive commitment basis: %w", err)
	}
	return &Key[E, P]{ops: ops, basis: basis}, nil
}

// Size returns the number of basis points, the largest vector length the key
// can commit to.
func (k *Key[E, P]) Size() int {
	return len(k.basis)
}

// Ops returns the group operations the key is bound to.
func (k *Key[E, P]) Ops() Ops[E, P] {
	return k.ops
}

// CurveName returns the curve tag of the key's group.
func (k *Key[E, P]) CurveName() string {
	return k.ops.Name()
}

// BasisPoints returns the underlying basis. The caller must not mutate it.
func (k *Key[E, P]) BasisPoints() []P {
	return k.basis
}

// Commit commits to scalars using the first len(scalars) basis points.
func (k *Key[E, P]) Commit(scalars []E) (P, error) {
	if len(scalars) > len(k.basis) {
		return k.ops.Zero(), fmt.Errorf("%w: basis %d, vector %d", ErrShortBasis, len(k.basis), len(scalars))
	}
	return k.ops.Commit(k.basis[:len(scalars)], scalars)
}
