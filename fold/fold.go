// Package fold drives a complete folding run: commitment key acquisition,
// public parameter construction, instance creation, the fold loop and the
// final verification, over the bn254/grumpkin cycle.
package fold

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/halofold/halofold/commitment"
	"github.com/halofold/halofold/curve/bn254"
	"github.com/halofold/halofold/curve/grumpkin"
	"github.com/halofold/halofold/ivc"
	"github.com/halofold/halofold/logger"
)

// Config carries the run's constants. A zero Steps is rejected; every other
// field has meaning as given.
type Config struct {
	// Steps is the total number of folded steps, including the base step
	// performed at instance creation.
	Steps uint64

	// PrimaryTableSize and SecondaryTableSize are the log2 row counts of
	// each side's table.
	PrimaryTableSize   uint32
	SecondaryTableSize uint32

	// PrimaryKeyLogSize and SecondaryKeyLogSize are the log2 sizes of the
	// commitment keys to acquire.
	PrimaryKeyLogSize   uint64
	SecondaryKeyLogSize uint64

	// CacheDir is the commitment key cache directory.
	CacheDir string

	// TrustedCache skips subgroup checks when loading cached keys. Only set
	// it for cache directories this host wrote.
	TrustedCache bool

	// SelfCheck makes the instance recommit the folded witness after every
	// step.
	SelfCheck bool
}

// DefaultConfig returns the reference run configuration: five steps over
// 2^17-row tables with 2^20 commitment keys.
func DefaultConfig() Config {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = "."
	}
	return Config{
		Steps:               5,
		PrimaryTableSize:    17,
		SecondaryTableSize:  17,
		PrimaryKeyLogSize:   20,
		SecondaryKeyLogSize: 20,
		CacheDir:            filepath.Join(dir, "halofold"),
		SelfCheck:           true,
	}
}

// Stage identifies how far a driver has advanced.
type Stage uint8

const (
	StageUninitialized Stage = iota
	StageKeysReady
	StageParamsReady
	StageCreated
	StageFolding
	StageVerified
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageUninitialized:
		return "uninitialized"
	case StageKeysReady:
		return "keys ready"
	case StageParamsReady:
		return "params ready"
	case StageCreated:
		return "created"
	case StageFolding:
		return "folding"
	case StageVerified:
		return "verified"
	case StageFailed:
		return "failed"
	default:
		return fmt.Sprintf("stage(%d)", uint8(s))
	}
}

// Driver advances one run through its stages. Stages run in order, at most
// once; any failure is terminal. A Driver is not safe for concurrent use.
type Driver struct {
	cfg   Config
	stage Stage

	primaryKey   *commitment.Key[bn254.Scalar, bn254.Point]
	secondaryKey *commitment.Key[grumpkin.Scalar, grumpkin.Point]
	pp           *ivc.PublicParams[bn254.Scalar, bn254.Point, grumpkin.Scalar, grumpkin.Point]
	v            *ivc.IVC[bn254.Scalar, bn254.Point, grumpkin.Scalar, grumpkin.Point]
}

// NewDriver returns an idle driver for the given configuration.
func NewDriver(cfg Config) *Driver {
	return &Driver{cfg: cfg}
}

// Stage returns the stage the driver last reached.
func (d *Driver) Stage() Stage { return d.stage }

// Instance returns the folding instance, nil before creation. After a
// successful Run its outputs are the final step outputs.
func (d *Driver) Instance() *ivc.IVC[bn254.Scalar, bn254.Point, grumpkin.Scalar, grumpkin.Point] {
	return d.v
}

// Run executes the whole pipeline: acquire keys, build parameters, create the
// instance on the initial outputs, fold Steps-1 times and verify. The first
// failing stage aborts the run and is named in the returned error, with the
// step index for fold failures.
func (d *Driver) Run(
	primary ivc.StepCircuit[bn254.Scalar], zPrimary []bn254.Scalar,
	secondary ivc.StepCircuit[grumpkin.Scalar], zSecondary []grumpkin.Scalar,
) error {
	if d.stage != StageUninitialized {
		return fmt.Errorf("fold driver already ran (stage %s)", d.stage)
	}
	if d.cfg.Steps == 0 {
		return d.fail("configuration", fmt.Errorf("step count must be at least 1"))
	}

	start := time.Now()
	if err := d.setupKeys(); err != nil {
		return d.fail("setup commitment keys", err)
	}
	if err := d.buildParams(primary, secondary); err != nil {
		return d.fail("build public parameters", err)
	}
	if err := d.create(primary, zPrimary, secondary, zSecondary); err != nil {
		return d.fail("create folding instance", err)
	}

	d.stage = StageFolding
	for i := uint64(1); i < d.cfg.Steps; i++ {
		if err := d.v.FoldStep(d.pp, primary, secondary); err != nil {
			return d.fail(fmt.Sprintf("folding step %d", i), err)
		}
		fmt.Printf("folding step %d was successful\n", i)
	}

	if err := d.v.Verify(d.pp); err != nil {
		return d.fail("verification", err)
	}
	d.stage = StageVerified
	fmt.Println("verification successful")
	fmt.Println("success")

	logger.Logger().Info().
		Uint64("steps", d.cfg.Steps).
		Dur("took", time.Since(start)).
		Msg("folding run verified")
	return nil
}

func (d *Driver) fail(stage string, err error) error {
	d.stage = StageFailed
	logger.Logger().Error().Str("stage", stage).Err(err).Msg("folding run failed")
	return fmt.Errorf("%s: %w", stage, err)
}

func (d *Driver) setupKeys() error {
	var opts []commitment.CacheOption
	if d.cfg.TrustedCache {
		opts = append(opts, commitment.WithUnsafeLoad())
	}

	fmt.Println("start setup primary commitment key: bn254")
	k1, err := bn254.LoadOrSetup(d.cfg.CacheDir, d.cfg.PrimaryKeyLogSize, opts...)
	if err != nil {
		return err
	}
	d.primaryKey = k1

	fmt.Println("start setup secondary commitment key: grumpkin")
	k2, err := grumpkin.LoadOrSetup(d.cfg.CacheDir, d.cfg.SecondaryKeyLogSize, opts...)
	if err != nil {
		return err
	}
	d.secondaryKey = k2

	d.stage = StageKeysReady
	return nil
}

func (d *Driver) buildParams(primary ivc.StepCircuit[bn254.Scalar], secondary ivc.StepCircuit[grumpkin.Scalar]) error {
	pp, err := ivc.NewPublicParams(
		d.cfg.SecondaryTableSize, d.primaryKey, primary,
		d.cfg.PrimaryTableSize, d.secondaryKey, secondary,
		bn254.Arith{}, grumpkin.Arith{},
	)
	if err != nil {
		return err
	}
	d.pp = pp
	d.stage = StageParamsReady
	return nil
}

func (d *Driver) create(
	primary ivc.StepCircuit[bn254.Scalar], zPrimary []bn254.Scalar,
	secondary ivc.StepCircuit[grumpkin.Scalar], zSecondary []grumpkin.Scalar,
) error {
	var opts []ivc.Option
	if d.cfg.SelfCheck {
		opts = append(opts, ivc.WithSelfCheck())
	}
	v, err := ivc.New(d.pp, primary, zPrimary, secondary, zSecondary, opts...)
	if err != nil {
		return err
	}
	d.v = v
	d.stage = StageCreated
	fmt.Println("ivc created")
	return nil
}
