package ivc

import "errors"

var (
	// ErrKeyTooSmall is returned at parameter construction when a commitment
	// key cannot cover the table it backs.
	ErrKeyTooSmall = errors.New("commitment key smaller than the table it backs")

	// ErrCircuitArity is returned when a step circuit's synthesized output
	// length differs from its declared arity.
	ErrCircuitArity = errors.New("step circuit output length differs from declared arity")

	// ErrArityMismatch is returned at instance creation when an initial
	// output vector length differs from its circuit's arity.
	ErrArityMismatch = errors.New("initial output vector length differs from circuit arity")

	// ErrUnknownOutput is returned when a step output cell carries no known
	// value outside shape analysis.
	ErrUnknownOutput = errors.New("step output cell has no known value")

	// ErrFixedDiverged is returned when a step's fixed assignments differ
	// from the preprocessed shape.
	ErrFixedDiverged = errors.New("fixed assignment diverges from preprocessed shape")

	// ErrSelectorDiverged is returned when a step's selector pattern differs
	// from the preprocessed shape.
	ErrSelectorDiverged = errors.New("selector assignment diverges from preprocessed shape")

	// ErrProductMismatch is returned when a shuffle argument's grand products
	// disagree under the transcript challenges.
	ErrProductMismatch = errors.New("shuffle product check failed")

	// ErrCommitMismatch is returned by Verify when a folded commitment does
	// not open to the folded witness column.
	ErrCommitMismatch = errors.New("folded commitment does not open to folded witness")

	// ErrDigestMismatch is returned by Verify when the public parameters do
	// not carry the shape digests the instance was created against.
	ErrDigestMismatch = errors.New("public parameter shape digest mismatch")
)
