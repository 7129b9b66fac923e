// Package ivc folds a sequence of step circuit executions into one constant
// size accumulator over a two-curve cycle.
//
// Each step synthesizes a fresh table per side, commits to its advice
// columns, checks the step's shuffle arguments with transcript-derived
// challenges, and folds the witness into the accumulator under a random
// linear combination. The linear relations survive the combination: the
// folded commitments still open to the folded columns and the copy
// constraints still hold on them, which is what [IVC.Verify] checks at the
// end. The nonlinear gate and shuffle relations do not fold, so the engine
// enforces them on every step before it is absorbed; a run is accepted only
// if all per-step checks and the final accumulator checks passed.
package ivc
