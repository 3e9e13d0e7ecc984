// Package building extracts building footprints from an image by annealed
// RJMCMC over configurations of rectangles and circles.
//
// It supplies the domain policies the generic sampler needs: a Generator
// for births, a Modifier for in-place changes, the validity Region, and
// the energy model. Model assembles them from params.Parameters, and
// Model.Run drives one chain to a Result.
//
// # Random Draws
//
// Every draw comes from the chain's own math/rand/v2 PCG stream, in this
// order per step: the kernel selection, then the kernel's draws listed on
// Generator.Generate and Modifier.Modify, then the acceptance draw. A seed
// therefore reproduces a run exactly.
package building
