package ivc

import (
	"fmt"
	"slices"
	"time"

	"github.com/bits-and-blooms/bitset"
	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"

	"github.com/halofold/halofold/commitment"
	"github.com/halofold/halofold/field"
	"github.com/halofold/halofold/logger"
	"github.com/halofold/halofold/plonkish"
)

// sideParams is the preprocessed shape of one side of the cycle: the frozen
// constraint system, the engine's io column, the baked fixed and selector
// columns, the structural copy constraints, and the commitment key sized to
// the table.
type sideParams[E comparable, P any] struct {
	fd  field.Arith[E]
	ops commitment.Ops[E, P]
	key *commitment.Key[E, P]

	cs      *plonkish.ConstraintSystem[E]
	ioCol   plonkish.Column
	logRows uint32
	arity   int

	rowsUsed  int
	fixed     [][]E
	selectors []*bitset.BitSet
	copies    [][2]plonkish.CellRef

	digest [32]byte
}

// PublicParams is the immutable, shape- and key-derived configuration shared
// by every folding step of a run.
type PublicParams[E1 comparable, P1 any, E2 comparable, P2 any] struct {
	primary   *sideParams[E1, P1]
	secondary *sideParams[E2, P2]
}

// NewPublicParams preprocesses both sides of the cycle: it configures each
// step circuit, appends the engine's io column, bakes the fixed and selector
// shape by synthesizing with unknown inputs, and checks each commitment key
// covers its table.
func NewPublicParams[E1 comparable, P1 any, E2 comparable, P2 any](
	primaryLogRows uint32, primaryKey *commitment.Key[E1, P1], primary StepCircuit[E1],
	secondaryLogRows uint32, secondaryKey *commitment.Key[E2, P2], secondary StepCircuit[E2],
	fd1 field.Arith[E1], fd2 field.Arith[E2],
) (*PublicParams[E1, P1, E2, P2], error) {
	start := time.Now()

	p1, err := buildSide(fd1, primaryKey, primary, primaryLogRows)
	if err != nil {
		return nil, fmt.Errorf("primary side: %w", err)
	}
	p2, err := buildSide(fd2, secondaryKey, secondary, secondaryLogRows)
	if err != nil {
		return nil, fmt.Errorf("secondary side: %w", err)
	}

	log := logger.Logger()
	log.Info().
		Str("primary", p1.ops.Name()).
		Str("secondary", p2.ops.Name()).
		Int("primaryRows", p1.rowsUsed).
		Int("secondaryRows", p2.rowsUsed).
		Dur("took", time.Since(start)).
		Msg("public parameters built")

	return &PublicParams[E1, P1, E2, P2]{primary: p1, secondary: p2}, nil
}

// PrimaryArity returns the primary circuit's output vector length.
func (pp *PublicParams[E1, P1, E2, P2]) PrimaryArity() int { return pp.primary.arity }

// SecondaryArity returns the secondary circuit's output vector length.
func (pp *PublicParams[E1, P1, E2, P2]) SecondaryArity() int { return pp.secondary.arity }

func buildSide[E comparable, P any](fd field.Arith[E], key *commitment.Key[E, P], sc StepCircuit[E], logRows uint32) (*sideParams[E, P], error) {
	ops := key.Ops()
	arity := sc.Arity()
	if arity <= 0 {
		return nil, fmt.Errorf("step circuit arity must be positive, got %d", arity)
	}
	rows := 1 << logRows
	if key.Size() < rows {
		return nil, fmt.Errorf("%w: key %d, table %d (curve %s)", ErrKeyTooSmall, key.Size(), rows, ops.Name())
	}

	cs := plonkish.NewConstraintSystem(fd)
	if err := sc.Configure(cs); err != nil {
		return nil, fmt.Errorf("configure step circuit: %w", err)
	}
	ioCol := cs.AdviceColumn()
	cs.EnableEquality(ioCol)

	p := &sideParams[E, P]{
		fd:      fd,
		ops:     ops,
		key:     key,
		cs:      cs,
		ioCol:   ioCol,
		logRows: logRows,
		arity:   arity,
	}

	// bake the shape by synthesizing with unknown inputs
	l := plonkish.NewLayouter(plonkish.NewAssignment(cs, logRows))
	zUnknown := make([]plonkish.Value[E], arity)
	for i := range zUnknown {
		zUnknown[i] = plonkish.Unknown[E]()
	}
	cells, err := assignInputs(l, ioCol, zUnknown)
	if err != nil {
		return nil, fmt.Errorf("assign shape inputs: %w", err)
	}
	zOut, err := sc.SynthesizeStep(l, cells)
	if err != nil {
		return nil, fmt.Errorf("shape synthesis: %w", err)
	}
	if len(zOut) != arity {
		return nil, fmt.Errorf("%w: synthesized %d outputs, declared %d", ErrCircuitArity, len(zOut), arity)
	}

	asg := l.Assignment()
	p.rowsUsed = asg.RowsUsed()
	p.fixed = make([][]E, cs.NbFixed())
	for i := range p.fixed {
		p.fixed[i] = slices.Clone(asg.FixedColumn(i))
	}
	p.selectors = make([]*bitset.BitSet, cs.NbSelectors())
	for i := range p.selectors {
		p.selectors[i] = asg.SelectorColumn(i).Clone()
	}
	p.copies = slices.Clone(asg.Copies())

	if err := p.computeDigest(); err != nil {
		return nil, fmt.Errorf("shape digest: %w", err)
	}
	return p, nil
}

// assignInputs places the step input vector into the io column. The region
// commits before the circuit's own synthesis starts, so the returned cells
// are valid copy sources.
func assignInputs[E comparable](l *plonkish.Layouter[E], ioCol plonkish.Column, z []plonkish.Value[E]) ([]plonkish.AssignedCell[E], error) {
	r := l.Region("step io")
	defer r.Discard()
	cells := make([]plonkish.AssignedCell[E], len(z))
	for i, v := range z {
		cells[i] = r.AssignAdvice(ioCol, i, v)
	}
	if err := r.Commit(); err != nil {
		return nil, err
	}
	return cells, nil
}

// computeDigest hashes everything that defines the side's shape, so that an
// instance can detect being verified against foreign parameters.
func (p *sideParams[E, P]) computeDigest() error {
	h, err := blake2b.New256(nil)
	if err != nil {
		return err
	}
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return err
	}
	hdr, err := em.Marshal(struct {
		Curve       string
		LogRows     uint32
		Arity       int
		NbAdvice    int
		NbFixed     int
		NbSelectors int
		NbShuffles  int
		RowsUsed    int
	}{
		Curve:       p.ops.Name(),
		LogRows:     p.logRows,
		Arity:       p.arity,
		NbAdvice:    p.cs.NbAdvice(),
		NbFixed:     p.cs.NbFixed(),
		NbSelectors: p.cs.NbSelectors(),
		NbShuffles:  p.cs.NbShuffles(),
		RowsUsed:    p.rowsUsed,
	})
	if err != nil {
		return err
	}
	h.Write(hdr)

	for _, col := range p.fixed {
		for _, v := range col[:p.rowsUsed] {
			h.Write(p.fd.Bytes(v))
		}
	}
	for _, sel := range p.selectors {
		b, err := sel.MarshalBinary()
		if err != nil {
			return err
		}
		h.Write(b)
	}
	refs, err := em.Marshal(p.copies)
	if err != nil {
		return err
	}
	h.Write(refs)

	copy(p.digest[:], h.Sum(nil))
	return nil
}
