package rjmcmc

import "math/rand/v2"

// Move is a primitive proposal used as one half of a reversible pair.
//
// Forward fills d and returns the density of the proposal it made. Pdf
// returns the density with which this move would propose the reverse of d,
// evaluated against the current (unmodified) configuration c.
type Move[T any] interface {
	Forward(c Configuration[T], d *Diff[T], rng *rand.Rand) float64
	Pdf(c Configuration[T], d *Diff[T]) float64
}

// Generator draws new objects for birth moves.
//
// Generate returns the object and its density relative to the generator's
// reference measure. A generator that cannot produce a valid object returns a
// non-nil error; the birth is then rejected. Pdf evaluates the same density
// at an existing object.
type Generator[T any] interface {
	Generate(rng *rand.Rand) (T, float64, error)
	Pdf(obj T) float64
}

// DeathMove removes one object chosen uniformly at random.
//
// Draws: one IntN(n) for the index.
type DeathMove[T any] struct{}

// Forward stages the removal of a uniformly chosen object and returns 1/n,
// or 0 when the configuration is empty.
func (DeathMove[T]) Forward(c Configuration[T], d *Diff[T], rng *rand.Rand) float64 {
	n := c.Len()
	if n == 0 {
		return 0
	}
	d.InsertDeath(c.HandleAt(rng.IntN(n)))
	return 1 / float64(n)
}

// Pdf returns 1/(n+1) when d is a single birth, which a death from the
// resulting n+1 objects would undo with that probability.
func (DeathMove[T]) Pdf(c Configuration[T], d *Diff[T]) float64 {
	if d.BirthSize() != 1 || d.DeathSize() != 0 {
		return 0
	}
	return 1 / float64(c.Len()+1)
}

// BirthMove inserts one object drawn from a Generator.
//
// Draws: whatever the generator draws, in its documented order.
type BirthMove[T any] struct {
	Generator Generator[T]
}

// NewBirthMove returns a birth move backed by gen.
func NewBirthMove[T any](gen Generator[T]) BirthMove[T] {
	return BirthMove[T]{Generator: gen}
}

// Forward stages a freshly generated object and returns its density.
func (m BirthMove[T]) Forward(c Configuration[T], d *Diff[T], rng *rand.Rand) float64 {
	obj, p, err := m.Generator.Generate(rng)
	if err != nil || p <= 0 {
		return 0
	}
	d.InsertBirth(obj)
	return p
}

// Pdf returns the generator density of the object removed by d when d is a
// single death.
func (m BirthMove[T]) Pdf(c Configuration[T], d *Diff[T]) float64 {
	if d.BirthSize() != 0 || d.DeathSize() != 1 {
		return 0
	}
	return m.Generator.Pdf(c.Object(d.Deaths()[0]))
}
