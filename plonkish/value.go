package plonkish

// Value is a witness value that is either known (a concrete field element) or
// unknown (a placeholder used during shape analysis). Unknown values flow
// through synthesis so that the same circuit code can both fill a real trace
// and derive the circuit shape.
type Value[E comparable] struct {
	v     E
	known bool
}

// Known wraps a concrete value.
func Known[E comparable](v E) Value[E] {
	return Value[E]{v: v, known: true}
}

// Unknown returns the shape-analysis placeholder.
func Unknown[E comparable]() Value[E] {
	return Value[E]{}
}

// Get returns the underlying value and whether it is known.
func (v Value[E]) Get() (E, bool) {
	return v.v, v.known
}

// IsKnown reports whether the value is concrete.
func (v Value[E]) IsKnown() bool {
	return v.known
}
