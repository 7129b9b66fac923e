// Package halofold implements a PLONKish shuffle argument folded by an
// incrementally verifiable computation (IVC) accumulator over the
// bn254/grumpkin curve cycle.
//
// halofold is organized as:
//   - plonkish: columns, selectors, gates and shuffle arguments, plus a
//     region-scoped synthesis engine and an exact satisfaction checker
//   - std/shuffle: the shuffle chip and the step circuits built on it
//   - commitment: Pedersen-style commitment keys with a validated on-disk cache
//   - ivc: public parameters, the folding accumulator and its verifier
//   - fold: the sequential fold driver
package halofold

import (
	"github.com/blang/semver/v4"
)

// Version of the library. Serialized artifacts such as cached commitment
// keys embed it and are rejected across major versions.
var Version = semver.MustParse("0.1.0")

// Curves returns the curve cycle halofold folds over.
func Curves() []string {
	return []string{"bn254", "grumpkin"}
}
