// Package shuffle provides a gate asserting multiset equality between two
// paired value streams, and step circuits that drive it under folding.
package shuffle

import (
	"github.com/halofold/halofold/plonkish"
)

// Config is the column and selector layout of the shuffle gate.
type Config struct {
	Input0   plonkish.Column // advice, equality enabled
	Input1   plonkish.Column // fixed
	Shuffle0 plonkish.Column // advice
	Shuffle1 plonkish.Column // advice
	SInput   plonkish.Selector
	SShuffle plonkish.Selector
}

// Configure allocates the gate's columns and selectors and registers its
// multiset argument: rows enabled by SInput contribute the pair
// (Input0, Input1), rows enabled by SShuffle contribute (Shuffle0, Shuffle1),
// and the two pair multisets must be equal regardless of row order.
func Configure[E comparable](cs *plonkish.ConstraintSystem[E]) Config {
	cfg := Config{
		Input0:   cs.AdviceColumn(),
		Input1:   cs.FixedColumn(),
		Shuffle0: cs.AdviceColumn(),
		Shuffle1: cs.AdviceColumn(),
		SInput:   cs.Selector(),
		SShuffle: cs.Selector(),
	}
	cs.EnableEquality(cfg.Input0)

	cs.Shuffle("pairs", func(v *plonkish.VirtualCells[E]) [][2]plonkish.Expression[E] {
		sInput := v.QuerySelector(cfg.SInput)
		sShuffle := v.QuerySelector(cfg.SShuffle)
		return [][2]plonkish.Expression[E]{
			{
				plonkish.Product(sInput, v.QueryAdvice(cfg.Input0, 0)),
				plonkish.Product(sShuffle, v.QueryAdvice(cfg.Shuffle0, 0)),
			},
			{
				plonkish.Product(sInput, v.QueryFixed(cfg.Input1, 0)),
				plonkish.Product(sShuffle, v.QueryAdvice(cfg.Shuffle1, 0)),
			},
		}
	})
	return cfg
}

// Chip binds a configured layout to a field and fills the gate's regions.
type Chip[E comparable] struct {
	cfg Config
}

// NewChip wraps an already configured layout.
func NewChip[E comparable](cfg Config) Chip[E] {
	return Chip[E]{cfg: cfg}
}

// Config returns the wrapped layout.
func (c Chip[E]) Config() Config { return c.cfg }

// LoadInputs fills the left stream: one (Input0, Input1) pair per row with
// SInput enabled. The first coordinate is witnessed, the second is fixed.
func (c Chip[E]) LoadInputs(l *plonkish.Layouter[E], left [][2]E) error {
	r := l.Region("load inputs")
	defer r.Discard()
	for i, p := range left {
		r.AssignAdvice(c.cfg.Input0, i, plonkish.Known(p[0]))
		r.AssignFixed(c.cfg.Input1, i, p[1])
		r.EnableSelector(c.cfg.SInput, i)
	}
	return r.Commit()
}

// CopyInputs fills the left stream from existing cells: zIn[i] is copied into
// Input0 with a copy constraint, paired with constants[i]. Both slices must
// have the same length.
func (c Chip[E]) CopyInputs(l *plonkish.Layouter[E], zIn []plonkish.AssignedCell[E], constants []E) error {
	r := l.Region("load inputs")
	defer r.Discard()
	for i, cell := range zIn {
		r.CopyAdvice(cell, c.cfg.Input0, i)
		r.AssignFixed(c.cfg.Input1, i, constants[i])
		r.EnableSelector(c.cfg.SInput, i)
	}
	return r.Commit()
}

// LoadShuffles fills the right stream: one (Shuffle0, Shuffle1) pair per row
// with SShuffle enabled. It returns the Shuffle0 cells in row order.
func (c Chip[E]) LoadShuffles(l *plonkish.Layouter[E], right [][2]E) ([]plonkish.AssignedCell[E], error) {
	r := l.Region("load shuffles")
	defer r.Discard()
	out := make([]plonkish.AssignedCell[E], len(right))
	for i, p := range right {
		out[i] = r.AssignAdvice(c.cfg.Shuffle0, i, plonkish.Known(p[0]))
		r.AssignAdvice(c.cfg.Shuffle1, i, plonkish.Known(p[1]))
		r.EnableSelector(c.cfg.SShuffle, i)
	}
	if err := r.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}
