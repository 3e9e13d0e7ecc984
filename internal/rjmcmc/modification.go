package rjmcmc

import "math/rand/v2"

// Modifier transforms one or two objects into one or two new objects.
//
// in holds the objects removed by the move (one or two, in selection order)
// and must not be retained. The returned ratio is the Green ratio of the
// transformation: reverse over forward proposal density times the Jacobian.
// A ratio <= 0 rejects the move.
type Modifier[T any] interface {
	Modify(in []T, rng *rand.Rand) (out []T, ratio float64)
}

// ModifierFunc adapts a function to Modifier.
type ModifierFunc[T any] func(in []T, rng *rand.Rand) ([]T, float64)

// Modify calls f(in, rng).
func (f ModifierFunc[T]) Modify(in []T, rng *rand.Rand) ([]T, float64) { return f(in, rng) }

// DefaultPairRetries bounds the redraws used to pick a second, distinct
// object for a pairwise modification.
const DefaultPairRetries = 32

// ModificationKernel removes one or two random objects and replaces them with
// the output of a Modifier. It has a single leaf.
//
// Draws, in order: one Float64 for the degree (always drawn), one IntN(n)
// for the first object, up to PairRetries IntN(n) for the second object when
// the degree is two, then the modifier's own draws.
type ModificationKernel[T any] struct {
	modifier    Modifier[T]
	p           float64
	pSingle     float64
	pairRetries int
	in          []T
}

// ModificationOption customises a ModificationKernel.
type ModificationOption func(*modificationConfig)

type modificationConfig struct {
	pSingle     float64
	pairRetries int
}

// WithSingleProbability sets the probability of a degree-one move. Values
// outside [0, 1] panic.
func WithSingleProbability(p float64) ModificationOption {
	if p < 0 || p > 1 {
		panic("rjmcmc: WithSingleProbability outside [0, 1]")
	}
	return func(c *modificationConfig) { c.pSingle = p }
}

// WithPairRetries sets the cap on redraws for the second object. Values
// below one panic.
func WithPairRetries(n int) ModificationOption {
	if n < 1 {
		panic("rjmcmc: WithPairRetries below 1")
	}
	return func(c *modificationConfig) { c.pairRetries = n }
}

// NewModificationKernel returns a modification kernel with selection mass p.
// By default single and pairwise moves are equally likely.
func NewModificationKernel[T any](m Modifier[T], p float64, opts ...ModificationOption) *ModificationKernel[T] {
	cfg := modificationConfig{pSingle: 0.5, pairRetries: DefaultPairRetries}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &ModificationKernel[T]{
		modifier:    m,
		p:           p,
		pSingle:     cfg.pSingle,
		pairRetries: cfg.pairRetries,
	}
}

// Size returns 1.
func (k *ModificationKernel[T]) Size() int { return 1 }

// Probability returns the selection mass.
func (k *ModificationKernel[T]) Probability() float64 { return k.p }

// SetProbability sets the selection mass.
func (k *ModificationKernel[T]) SetProbability(p float64) { k.p = p }

// Propose stages the removal of one object (or two distinct objects) and the
// birth of the modifier's output, returning the modifier's ratio. An empty
// configuration, a failed pair selection or a rejected modification yields 0.
func (k *ModificationKernel[T]) Propose(_ float64, c Configuration[T], d *Diff[T], rng *rand.Rand) (float64, int) {
	n := c.Len()
	if n == 0 {
		return 0, 0
	}
	pair := rng.Float64() >= k.pSingle && n >= 2

	i := rng.IntN(n)
	first := c.HandleAt(i)
	d.InsertDeath(first)
	k.in = append(k.in[:0], c.Object(first))

	if pair {
		j := i
		for try := 0; try < k.pairRetries && j == i; try++ {
			j = rng.IntN(n)
		}
		if j == i {
			return 0, 0
		}
		second := c.HandleAt(j)
		d.InsertDeath(second)
		k.in = append(k.in, c.Object(second))
	}

	out, ratio := k.modifier.Modify(k.in, rng)
	clear(k.in)
	if ratio <= 0 || len(out) == 0 {
		return 0, 0
	}
	for _, obj := range out {
		d.InsertBirth(obj)
	}
	return ratio, 0
}
