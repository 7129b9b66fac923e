package ivc

import (
	"fmt"

	"github.com/halofold/halofold/plonkish"
)

// StepCircuit is the unit the accumulator folds once per step.
//
// Configure runs once per circuit shape and allocates the circuit's columns,
// selectors and arguments; the engine appends its own input/output column
// afterwards, so a circuit must not assume it owns the whole system.
// SynthesizeStep fills one step's trace through the layouter: zIn holds the
// previous step's output cells, already placed in the table by the engine,
// and the returned cells become the next step's input. Both slices have
// length Arity.
type StepCircuit[E comparable] interface {
	Arity() int
	Configure(cs *plonkish.ConstraintSystem[E]) error
	SynthesizeStep(l *plonkish.Layouter[E], zIn []plonkish.AssignedCell[E]) ([]plonkish.AssignedCell[E], error)
}

// TrivialCircuit is the pass-through step circuit: it declares no columns and
// echoes its input cells. It serves as the companion on the cycle side that
// carries no application logic.
type TrivialCircuit[E comparable] struct {
	arity int
}

// NewTrivialCircuit returns a pass-through circuit of the given arity.
func NewTrivialCircuit[E comparable](arity int) *TrivialCircuit[E] {
	return &TrivialCircuit[E]{arity: arity}
}

func (c *TrivialCircuit[E]) Arity() int { return c.arity }

func (c *TrivialCircuit[E]) Configure(cs *plonkish.ConstraintSystem[E]) error { return nil }

func (c *TrivialCircuit[E]) SynthesizeStep(l *plonkish.Layouter[E], zIn []plonkish.AssignedCell[E]) ([]plonkish.AssignedCell[E], error) {
	if len(zIn) != c.arity {
		return nil, fmt.Errorf("%w: got %d inputs, arity %d", ErrCircuitArity, len(zIn), c.arity)
	}
	return zIn, nil
}
