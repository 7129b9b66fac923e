package plonkish

import (
	"fmt"
)

// CheckSatisfied verifies the assignment against every constraint of its
// system: gate polynomials must vanish on all rows, copy constraints must tie
// equal values, and each shuffle argument's tuple streams must be equal as
// multisets over the whole table.
//
// The check is exact and needs no challenges, which makes it deterministic;
// the folding engine layers its transcript-derived product form on top.
func (a *Assignment[E]) CheckSatisfied() error {
	fd := a.cs.fd

	for _, g := range a.cs.gates {
		for pi, poly := range g.polys {
			for row := 0; row < a.rows; row++ {
				if v := poly.Eval(a, row); !fd.IsZero(v) {
					return fmt.Errorf("gate %q poly %d row %d: %w (got %s)",
						g.name, pi, row, ErrGateUnsatisfied, fd.String(v))
				}
			}
		}
	}

	for _, pair := range a.copies {
		from, to := pair[0], pair[1]
		if !a.Assigned(from) {
			return fmt.Errorf("copy source %s: %w", from, ErrCellNotAssigned)
		}
		if !a.Assigned(to) {
			return fmt.Errorf("copy target %s: %w", to, ErrCellNotAssigned)
		}
		if a.cellValue(from) != a.cellValue(to) {
			return fmt.Errorf("copy %s -> %s: %w", from, to, ErrCopyUnsatisfied)
		}
	}

	for _, arg := range a.cs.shuffles {
		if err := a.checkShuffle(arg); err != nil {
			return err
		}
	}
	return nil
}

func (a *Assignment[E]) cellValue(ref CellRef) E {
	if ref.Col.Kind == KindFixed {
		return a.fixed[ref.Col.Index][ref.Row]
	}
	return a.advice[ref.Col.Index][ref.Row]
}

// checkShuffle compares the two tuple streams of one argument as exact
// multisets. Tuples are keyed by the concatenation of their coordinates'
// canonical byte encodings; rows where the scoping selectors are disabled
// produce all-zero tuples on both sides and cancel out.
func (a *Assignment[E]) checkShuffle(arg shuffleArg[E]) error {
	fd := a.cs.fd
	counts := make(map[string]int, a.rows)

	var key []byte
	for row := 0; row < a.rows; row++ {
		key = key[:0]
		for _, pair := range arg.pairs {
			key = append(key, fd.Bytes(pair[0].Eval(a, row))...)
		}
		counts[string(key)]++

		key = key[:0]
		for _, pair := range arg.pairs {
			key = append(key, fd.Bytes(pair[1].Eval(a, row))...)
		}
		counts[string(key)]--
	}

	var missing, extra int
	for _, c := range counts {
		if c > 0 {
			missing += c
		} else if c < 0 {
			extra -= c
		}
	}
	if missing != 0 || extra != 0 {
		return fmt.Errorf("shuffle %q: %w: %d input tuples missing from table side, %d table tuples unmatched",
			arg.name, ErrShuffleUnsatisfied, missing, extra)
	}
	return nil
}

// ShuffleProducts evaluates every shuffle argument in product form: row
// tuples are compressed with theta (Horner over the coordinates) and shifted
// by gamma, and the result is one grand product per stream. The two products
// of an argument are equal, with overwhelming probability over random
// challenges, exactly when its tuple multisets are equal. The folding engine
// derives theta and gamma from its transcript after binding the trace
// commitments.
func (a *Assignment[E]) ShuffleProducts(theta, gamma E) [][2]E {
	fd := a.cs.fd
	out := make([][2]E, len(a.cs.shuffles))

	for ai, arg := range a.cs.shuffles {
		left, right := fd.One(), fd.One()
		for row := 0; row < a.rows; row++ {
			lc, rc := fd.Zero(), fd.Zero()
			for _, pair := range arg.pairs {
				lc = fd.Add(fd.Mul(lc, theta), pair[0].Eval(a, row))
				rc = fd.Add(fd.Mul(rc, theta), pair[1].Eval(a, row))
			}
			left = fd.Mul(left, fd.Add(lc, gamma))
			right = fd.Mul(right, fd.Add(rc, gamma))
		}
		out[ai] = [2]E{left, right}
	}
	return out
}
