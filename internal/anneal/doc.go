// Package anneal drives an rjmcmc.Sampler through a temperature schedule.
//
// # Loop
//
// Optimize calls Visitor.Begin once, then repeats:
//
//  1. Sampler.Step at the schedule's current temperature
//  2. Schedule.Advance
//  3. Visitor.Iterate, stopping early when it returns false
//
// until the iteration budget is spent, and finally calls Visitor.End. The
// loop itself has no cancellation; a Cancel visitor ties it to a context.
//
// # Ensembles
//
// Ensemble runs independent chains in parallel. Each chain must own its
// sampler, configuration and random stream; nothing is shared between chains.
package anneal
