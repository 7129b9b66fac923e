package ivc

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"slices"
	"time"

	fiatshamir "github.com/consensys/gnark-crypto/fiat-shamir"
	"golang.org/x/sync/errgroup"

	"github.com/halofold/halofold/logger"
	"github.com/halofold/halofold/plonkish"
)

// Challenge identifiers of the folding transcript. Challenges chain: gamma
// depends on theta, r depends on both.
const (
	challengeTheta = "theta"
	challengeGamma = "gamma"
	challengeR     = "r"
)

// Option configures an IVC instance.
type Option func(*ivcConfig)

type ivcConfig struct {
	selfCheck bool
}

// WithSelfCheck recomputes the folded column commitments from the folded
// witness after every step and compares them against the homomorphically
// folded ones. Expensive; meant for tests and debugging runs.
func WithSelfCheck() Option {
	return func(c *ivcConfig) { c.selfCheck = true }
}

// IVC is a running accumulator over a two-curve cycle. New performs the base
// step, each FoldStep synthesizes, checks and folds one more step per side,
// and Verify checks the accumulated witness against its commitments.
//
// An IVC is not safe for concurrent use.
type IVC[E1 comparable, P1 any, E2 comparable, P2 any] struct {
	primary   *sideAcc[E1, P1]
	secondary *sideAcc[E2, P2]

	steps  uint64
	digest [32]byte // running transcript digest, chained across steps

	ppPrimary   [32]byte
	ppSecondary [32]byte

	selfCheck bool
}

// sideAcc is the folded state of one side: the random linear combination of
// all step witness columns, the matching folded commitments, and the step
// output chain.
type sideAcc[E comparable, P any] struct {
	cols  [][]E
	comms []P
	z0    []E
	zi    []E
}

// stepTrace is the outcome of synthesizing one step: the filled table, the
// per-column commitments over the used row prefix, and the extracted outputs.
type stepTrace[E comparable, P any] struct {
	asg   *plonkish.Assignment[E]
	comms []P
	zOut  []E
}

// New runs the base step of both circuits on the initial inputs and seeds the
// accumulator with the resulting witness.
func New[E1 comparable, P1 any, E2 comparable, P2 any](
	pp *PublicParams[E1, P1, E2, P2],
	primary StepCircuit[E1], zPrimary []E1,
	secondary StepCircuit[E2], zSecondary []E2,
	opts ...Option,
) (*IVC[E1, P1, E2, P2], error) {
	var cfg ivcConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := checkArity(pp.primary, primary, len(zPrimary)); err != nil {
		return nil, fmt.Errorf("primary: %w", err)
	}
	if err := checkArity(pp.secondary, secondary, len(zSecondary)); err != nil {
		return nil, fmt.Errorf("secondary: %w", err)
	}

	start := time.Now()
	v := &IVC[E1, P1, E2, P2]{
		ppPrimary:   pp.primary.digest,
		ppSecondary: pp.secondary.digest,
		selfCheck:   cfg.selfCheck,
	}

	// seed the transcript digest with the shapes and the initial inputs
	seed := sha256.New()
	seed.Write(v.ppPrimary[:])
	seed.Write(v.ppSecondary[:])
	for _, z := range zPrimary {
		seed.Write(pp.primary.fd.Bytes(z))
	}
	for _, z := range zSecondary {
		seed.Write(pp.secondary.fd.Bytes(z))
	}
	copy(v.digest[:], seed.Sum(nil))

	tr1, err := synthesizeStep(pp.primary, primary, zPrimary)
	if err != nil {
		return nil, fmt.Errorf("primary base step: %w", err)
	}
	tr2, err := synthesizeStep(pp.secondary, secondary, zSecondary)
	if err != nil {
		return nil, fmt.Errorf("secondary base step: %w", err)
	}

	v.primary = initAcc(pp.primary, tr1, zPrimary)
	v.secondary = initAcc(pp.secondary, tr2, zSecondary)
	v.steps = 1

	for _, c := range tr1.comms {
		absorbDigest(&v.digest, pp.primary.ops.Marshal(c))
	}
	for _, c := range tr2.comms {
		absorbDigest(&v.digest, pp.secondary.ops.Marshal(c))
	}

	logger.Logger().Debug().
		Int("primaryArity", pp.primary.arity).
		Int("secondaryArity", pp.secondary.arity).
		Dur("took", time.Since(start)).
		Msg("ivc instance created")
	return v, nil
}

// FoldStep synthesizes one more step of each circuit on the current outputs,
// checks the step's shuffle arguments, and folds the fresh witness into the
// accumulator with a transcript-derived combination challenge.
func (v *IVC[E1, P1, E2, P2]) FoldStep(
	pp *PublicParams[E1, P1, E2, P2],
	primary StepCircuit[E1], secondary StepCircuit[E2],
) error {
	if err := checkArity(pp.primary, primary, len(v.primary.zi)); err != nil {
		return fmt.Errorf("primary: %w", err)
	}
	if err := checkArity(pp.secondary, secondary, len(v.secondary.zi)); err != nil {
		return fmt.Errorf("secondary: %w", err)
	}

	start := time.Now()
	if err := foldSide(pp.primary, v.primary, primary, &v.digest, v.steps, v.selfCheck); err != nil {
		return fmt.Errorf("primary: %w", err)
	}
	if err := foldSide(pp.secondary, v.secondary, secondary, &v.digest, v.steps, v.selfCheck); err != nil {
		return fmt.Errorf("secondary: %w", err)
	}
	v.steps++

	logger.Logger().Debug().
		Uint64("step", v.steps-1).
		Dur("took", time.Since(start)).
		Msg("folding step finished")
	return nil
}

// Verify checks the accumulator against the given parameters: the parameters
// must be the ones the instance was created with, the folded commitments must
// open to the folded columns, and the copy constraints must hold on the
// folded witness.
func (v *IVC[E1, P1, E2, P2]) Verify(pp *PublicParams[E1, P1, E2, P2]) error {
	if pp.primary.digest != v.ppPrimary || pp.secondary.digest != v.ppSecondary {
		return ErrDigestMismatch
	}

	start := time.Now()
	if err := verifySide(pp.primary, v.primary); err != nil {
		return fmt.Errorf("primary: %w", err)
	}
	if err := verifySide(pp.secondary, v.secondary); err != nil {
		return fmt.Errorf("secondary: %w", err)
	}

	logger.Logger().Debug().
		Uint64("steps", v.steps).
		Dur("took", time.Since(start)).
		Msg("accumulator verified")
	return nil
}

// Steps returns the number of steps folded so far, including the base step.
func (v *IVC[E1, P1, E2, P2]) Steps() uint64 { return v.steps }

// PrimaryOutput returns the primary circuit's output after the last step.
func (v *IVC[E1, P1, E2, P2]) PrimaryOutput() []E1 { return slices.Clone(v.primary.zi) }

// SecondaryOutput returns the secondary circuit's output after the last step.
func (v *IVC[E1, P1, E2, P2]) SecondaryOutput() []E2 { return slices.Clone(v.secondary.zi) }

func checkArity[E comparable, P any](p *sideParams[E, P], sc StepCircuit[E], nbInputs int) error {
	if sc.Arity() != p.arity {
		return fmt.Errorf("%w: circuit declares %d, parameters built for %d", ErrArityMismatch, sc.Arity(), p.arity)
	}
	if nbInputs != p.arity {
		return fmt.Errorf("%w: %d inputs, parameters built for %d", ErrArityMismatch, nbInputs, p.arity)
	}
	return nil
}

// synthesizeStep fills a fresh table for one step, checks it against the
// baked shape and the full constraint set, extracts the outputs and commits
// to the advice columns.
func synthesizeStep[E comparable, P any](p *sideParams[E, P], sc StepCircuit[E], zIn []E) (*stepTrace[E, P], error) {
	l := plonkish.NewLayouter(plonkish.NewAssignment(p.cs, p.logRows))
	values := make([]plonkish.Value[E], len(zIn))
	for i, z := range zIn {
		values[i] = plonkish.Known(z)
	}
	cells, err := assignInputs(l, p.ioCol, values)
	if err != nil {
		return nil, fmt.Errorf("assign inputs: %w", err)
	}
	zCells, err := sc.SynthesizeStep(l, cells)
	if err != nil {
		return nil, fmt.Errorf("synthesize: %w", err)
	}
	if len(zCells) != p.arity {
		return nil, fmt.Errorf("%w: synthesized %d outputs, declared %d", ErrCircuitArity, len(zCells), p.arity)
	}

	asg := l.Assignment()
	if got := asg.RowsUsed(); got != p.rowsUsed {
		return nil, fmt.Errorf("synthesis used %d rows, shape uses %d", got, p.rowsUsed)
	}
	for i := range p.fixed {
		if !slices.Equal(asg.FixedColumn(i), p.fixed[i]) {
			return nil, fmt.Errorf("%w: column %d", ErrFixedDiverged, i)
		}
	}
	for i := range p.selectors {
		if !asg.SelectorColumn(i).Equal(p.selectors[i]) {
			return nil, fmt.Errorf("%w: selector %d", ErrSelectorDiverged, i)
		}
	}
	if !slices.Equal(asg.Copies(), p.copies) {
		return nil, fmt.Errorf("synthesis recorded %d copies, shape has %d", len(asg.Copies()), len(p.copies))
	}
	if err := asg.CheckSatisfied(); err != nil {
		return nil, err
	}

	zOut := make([]E, p.arity)
	for i, c := range zCells {
		z, known := c.Value().Get()
		if !known {
			return nil, fmt.Errorf("%w: output %d at %s", ErrUnknownOutput, i, c.Cell())
		}
		zOut[i] = z
	}

	comms := make([]P, p.cs.NbAdvice())
	var g errgroup.Group
	for i := 0; i < p.cs.NbAdvice(); i++ {
		g.Go(func() error {
			c, err := p.key.Commit(asg.AdviceColumn(i)[:p.rowsUsed])
			if err != nil {
				return fmt.Errorf("commit column %d: %w", i, err)
			}
			comms[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &stepTrace[E, P]{asg: asg, comms: comms, zOut: zOut}, nil
}

func initAcc[E comparable, P any](p *sideParams[E, P], tr *stepTrace[E, P], z0 []E) *sideAcc[E, P] {
	cols := make([][]E, len(tr.comms))
	for i := range cols {
		cols[i] = slices.Clone(tr.asg.AdviceColumn(i)[:p.rowsUsed])
	}
	return &sideAcc[E, P]{
		cols:  cols,
		comms: slices.Clone(tr.comms),
		z0:    slices.Clone(z0),
		zi:    tr.zOut,
	}
}

func foldSide[E comparable, P any](p *sideParams[E, P], acc *sideAcc[E, P], sc StepCircuit[E], digest *[32]byte, step uint64, selfCheck bool) error {
	fd, ops := p.fd, p.ops

	tr, err := synthesizeStep(p, sc, acc.zi)
	if err != nil {
		return fmt.Errorf("step %d: %w", step, err)
	}

	fs := fiatshamir.NewTranscript(sha256.New(), challengeTheta, challengeGamma, challengeR)
	if err := fs.Bind(challengeTheta, digest[:]); err != nil {
		return err
	}
	var stepBytes [8]byte
	binary.BigEndian.PutUint64(stepBytes[:], step)
	if err := fs.Bind(challengeTheta, stepBytes[:]); err != nil {
		return err
	}
	for _, c := range tr.comms {
		if err := fs.Bind(challengeTheta, ops.Marshal(c)); err != nil {
			return err
		}
	}
	thetaBytes, err := fs.ComputeChallenge(challengeTheta)
	if err != nil {
		return err
	}
	gammaBytes, err := fs.ComputeChallenge(challengeGamma)
	if err != nil {
		return err
	}
	theta := fd.FromBytes(thetaBytes)
	gamma := fd.FromBytes(gammaBytes)

	for i, prod := range tr.asg.ShuffleProducts(theta, gamma) {
		if prod[0] != prod[1] {
			return fmt.Errorf("step %d shuffle %d (%s): %w", step, i, ops.Name(), ErrProductMismatch)
		}
	}

	for _, z := range acc.zi {
		if err := fs.Bind(challengeR, fd.Bytes(z)); err != nil {
			return err
		}
	}
	for _, z := range tr.zOut {
		if err := fs.Bind(challengeR, fd.Bytes(z)); err != nil {
			return err
		}
	}
	rBytes, err := fs.ComputeChallenge(challengeR)
	if err != nil {
		return err
	}
	r := fd.FromBytes(rBytes)

	for i := range acc.cols {
		fresh := tr.asg.AdviceColumn(i)
		col := acc.cols[i]
		for j := range col {
			col[j] = fd.Add(col[j], fd.Mul(r, fresh[j]))
		}
		acc.comms[i] = ops.Fold(acc.comms[i], tr.comms[i], r)
	}
	acc.zi = tr.zOut

	parts := make([][]byte, 0, len(tr.comms)+1)
	parts = append(parts, rBytes)
	for _, c := range tr.comms {
		parts = append(parts, ops.Marshal(c))
	}
	absorbDigest(digest, parts...)

	if selfCheck {
		if err := checkCommitments(p, acc); err != nil {
			return fmt.Errorf("step %d self check: %w", step, err)
		}
	}
	return nil
}

func verifySide[E comparable, P any](p *sideParams[E, P], acc *sideAcc[E, P]) error {
	if len(acc.cols) != p.cs.NbAdvice() {
		return fmt.Errorf("accumulator carries %d columns, shape has %d", len(acc.cols), p.cs.NbAdvice())
	}
	if err := checkCommitments(p, acc); err != nil {
		return err
	}

	// copy constraints are linear, so they survive the random linear
	// combination of step witnesses
	for _, pair := range p.copies {
		from, to := pair[0], pair[1]
		if acc.cols[from.Col.Index][from.Row] != acc.cols[to.Col.Index][to.Row] {
			return fmt.Errorf("folded copy %s -> %s: %w", from, to, plonkish.ErrCopyUnsatisfied)
		}
	}
	return nil
}

// checkCommitments recommits every folded column and compares against the
// homomorphically folded commitments.
func checkCommitments[E comparable, P any](p *sideParams[E, P], acc *sideAcc[E, P]) error {
	var g errgroup.Group
	for i := range acc.cols {
		g.Go(func() error {
			c, err := p.key.Commit(acc.cols[i])
			if err != nil {
				return fmt.Errorf("commit column %d: %w", i, err)
			}
			if !p.ops.Equal(c, acc.comms[i]) {
				return fmt.Errorf("column %d (%s): %w", i, p.ops.Name(), ErrCommitMismatch)
			}
			return nil
		})
	}
	return g.Wait()
}

func absorbDigest(digest *[32]byte, parts ...[]byte) {
	h := sha256.New()
	h.Write(digest[:])
	for _, p := range parts {
		h.Write(p)
	}
	copy(digest[:], h.Sum(nil))
}
