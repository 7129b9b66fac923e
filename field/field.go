// Package field defines the scalar arithmetic capability the synthesis and
// folding engines are generic over.
//
// The engines never manipulate curve-specific element types directly; they
// carry an opaque type parameter E and perform all arithmetic through an
// [Arith] implementation. Implementations for the supported curve cycle live
// in curve/bn254 and curve/grumpkin.
package field

// Arith performs prime-field arithmetic with value semantics on E.
//
// E must be comparable, and == on two values of type E must coincide with
// field equality; implementations guarantee this by keeping elements in
// canonical form.
type Arith[E comparable] interface {
	Zero() E
	One() E
	FromUint64(v uint64) E

	// FromBytes interprets b as a big-endian integer and reduces it modulo
	// the field order. Used to map transcript challenges into the field.
	FromBytes(b []byte) E

	Add(a, b E) E
	Sub(a, b E) E
	Mul(a, b E) E
	Neg(a E) E

	IsZero(a E) bool

	// Bytes returns the canonical fixed-width big-endian encoding of a.
	Bytes(a E) []byte

	// Rand samples a uniform field element from crypto/rand.
	Rand() (E, error)

	String(a E) string
}
