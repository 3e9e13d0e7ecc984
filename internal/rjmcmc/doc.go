// Package rjmcmc implements a reversible-jump Markov chain Monte Carlo sampler
// over configurations of opaque objects.
//
// The package knows nothing about the objects it samples. It works with three
// collaborators supplied by the caller:
//
//   - a Configuration holding the current population and its energy,
//   - a set of kernels proposing diffs (births and deaths) against it,
//   - a count prior over the population size.
//
// # Iteration
//
// Each call to Sampler.Step performs exactly one proposal and one
// accept/reject decision:
//
//  1. The scratch Diff is cleared.
//  2. A uniform draw u selects a leaf kernel from the kernel tuple. The kernel
//     fills the Diff and reports the proposal ratio R (reverse over forward
//     density, weighted by the kernel selection masses).
//  3. R is multiplied by the count prior's GreenRatio for the size change.
//  4. If R <= 0 the move is rejected without evaluating energy.
//  5. Otherwise the energy delta of the Diff is computed and the Acceptance
//     strategy turns (R, delta, temperature) into a probability.
//  6. A second uniform draw v decides; accepted diffs are applied.
//
// # Random Draw Order
//
// The sampler owns a single *rand.Rand. Draws happen in a fixed order so that a
// seed reproduces a trajectory: the selection draw u, then the draws of the
// invoked kernel in the order documented on that kernel, then the acceptance
// draw v (only when R > 0).
//
// # Failure Semantics
//
// Kernels never return errors. A move that cannot be made (death on an empty
// configuration, an invalid modified object, exhausted generator retries)
// reports a zero ratio and is rejected. The only error a step can return comes
// from Configuration.Apply receiving a corrupt Diff, which indicates a kernel bug.
package rjmcmc
