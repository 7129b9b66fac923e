package shuffle

import (
	"fmt"

	"github.com/halofold/halofold/ivc"
	"github.com/halofold/halofold/plonkish"
)

// StepCircuit proves one multiset equality per step. The left pairs and the
// claimed reordering are circuit data, assigned identically on every step;
// the step inputs pass through unchanged, so successive folds repeat the same
// check on fresh witness columns.
type StepCircuit[E comparable] struct {
	arity int
	left  [][2]E
	right [][2]E

	chip Chip[E]
}

var _ ivc.StepCircuit[uint64] = (*StepCircuit[uint64])(nil)

// NewStepCircuit returns an unchained shuffle step. The right pairs must be a
// reordering of the left pairs for the step to be satisfiable.
func NewStepCircuit[E comparable](arity int, left, right [][2]E) *StepCircuit[E] {
	return &StepCircuit[E]{arity: arity, left: left, right: right}
}

func (c *StepCircuit[E]) Arity() int { return c.arity }

func (c *StepCircuit[E]) Configure(cs *plonkish.ConstraintSystem[E]) error {
	c.chip = NewChip[E](Configure(cs))
	return nil
}

func (c *StepCircuit[E]) SynthesizeStep(l *plonkish.Layouter[E], zIn []plonkish.AssignedCell[E]) ([]plonkish.AssignedCell[E], error) {
	if len(c.left) != len(c.right) {
		return nil, fmt.Errorf("shuffle step: %d left pairs, %d right pairs", len(c.left), len(c.right))
	}
	if err := c.chip.LoadInputs(l, c.left); err != nil {
		return nil, err
	}
	if _, err := c.chip.LoadShuffles(l, c.right); err != nil {
		return nil, err
	}

	// the table content does not feed forward in this variant; the step
	// inputs are the step outputs
	return zIn, nil
}

// ChainedStepCircuit threads the shuffle through the fold. The step inputs
// are copied into Input0 and paired with baked constants; the claimed
// reordering's first coordinates become the step outputs, so step i+1 checks
// the multiset step i produced.
type ChainedStepCircuit[E comparable] struct {
	constants []E
	right     [][2]E

	chip Chip[E]
}

var _ ivc.StepCircuit[uint64] = (*ChainedStepCircuit[uint64])(nil)

// NewChainedStepCircuit returns a chained shuffle step. The arity is
// len(constants); right carries the claimed reordering of the pairs
// (input i, constants[i]) and must have the same length.
func NewChainedStepCircuit[E comparable](constants []E, right [][2]E) *ChainedStepCircuit[E] {
	return &ChainedStepCircuit[E]{constants: constants, right: right}
}

func (c *ChainedStepCircuit[E]) Arity() int { return len(c.constants) }

func (c *ChainedStepCircuit[E]) Configure(cs *plonkish.ConstraintSystem[E]) error {
	c.chip = NewChip[E](Configure(cs))
	return nil
}

func (c *ChainedStepCircuit[E]) SynthesizeStep(l *plonkish.Layouter[E], zIn []plonkish.AssignedCell[E]) ([]plonkish.AssignedCell[E], error) {
	if len(zIn) != len(c.constants) {
		return nil, fmt.Errorf("chained shuffle step: %d inputs, %d constants", len(zIn), len(c.constants))
	}
	if len(c.right) != len(c.constants) {
		return nil, fmt.Errorf("chained shuffle step: %d right pairs, %d constants", len(c.right), len(c.constants))
	}
	if err := c.chip.CopyInputs(l, zIn, c.constants); err != nil {
		return nil, err
	}
	return c.chip.LoadShuffles(l, c.right)
}
