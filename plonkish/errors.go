package plonkish

import "errors"

var (
	// ErrNotEnoughRows is returned when a region does not fit below the
	// table's row capacity.
	ErrNotEnoughRows = errors.New("region does not fit in the table")

	// ErrCellOverwritten is returned when a cell is assigned twice.
	ErrCellOverwritten = errors.New("cell assigned twice")

	// ErrCellNotAssigned is returned when a copy constraint references a cell
	// that was never written.
	ErrCellNotAssigned = errors.New("cell used before assignment")

	// ErrRegionFinalized is returned when a committed or discarded region is
	// used again.
	ErrRegionFinalized = errors.New("region already finalized")

	// ErrEqualityNotEnabled is returned when a copy targets a column that was
	// not marked with EnableEquality.
	ErrEqualityNotEnabled = errors.New("column does not allow equality copies")

	// ErrGateUnsatisfied is returned by the satisfaction check when a gate
	// polynomial does not vanish.
	ErrGateUnsatisfied = errors.New("gate constraint unsatisfied")

	// ErrCopyUnsatisfied is returned by the satisfaction check when a copy
	// constraint ties cells with different values.
	ErrCopyUnsatisfied = errors.New("copy constraint unsatisfied")

	// ErrShuffleUnsatisfied is returned by the satisfaction check when a
	// shuffle argument's tuple streams differ as multisets.
	ErrShuffleUnsatisfied = errors.New("shuffle argument unsatisfied")
)
