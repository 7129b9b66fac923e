package plonkish

import "fmt"

// ColumnKind distinguishes prover-supplied advice columns from fixed columns
// baked into the circuit shape.
type ColumnKind uint8

const (
	KindAdvice ColumnKind = iota + 1
	KindFixed
)

func (k ColumnKind) String() string {
	switch k {
	case KindAdvice:
		return "advice"
	case KindFixed:
		return "fixed"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Column is a stable handle to a table column, returned by the constraint
// system at configuration time.
type Column struct {
	Index int
	Kind  ColumnKind
}

func (c Column) String() string {
	return fmt.Sprintf("%s[%d]", c.Kind, c.Index)
}

// Selector is a handle to a boolean per-row flag column. Enabling it at a row
// activates the constraints querying it at that row.
type Selector struct {
	Index int
}

// Rotation selects a row relative to the current one in an expression query,
// wrapping around at the table edges.
type Rotation int

// CellRef addresses one cell of the table by absolute row.
type CellRef struct {
	Col Column
	Row int
}

func (c CellRef) String() string {
	return fmt.Sprintf("%s@%d", c.Col, c.Row)
}
