package rjmcmc

// Configuration is the population being sampled.
//
// Implementations must keep DeltaEnergy free of side effects, and must make
// Apply atomic: either every birth is inserted and every death removed, or the
// configuration is left unchanged and an error is returned.
type Configuration[T any] interface {
	// Len returns the number of objects.
	Len() int

	// HandleAt returns the handle of the i-th object, 0 <= i < Len(). The
	// ordering is arbitrary but deterministic for a given history.
	HandleAt(i int) Handle

	// Object returns the object behind h.
	Object(h Handle) T

	// Energy returns the total energy of the configuration.
	Energy() float64

	// DeltaEnergy returns the energy change Apply(d) would cause.
	DeltaEnergy(d *Diff[T]) float64

	// Apply commits d.
	Apply(d *Diff[T]) error
}
