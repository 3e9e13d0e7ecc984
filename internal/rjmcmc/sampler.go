package rjmcmc

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

var (
	// ErrNoKernels is returned when a sampler is built without kernels.
	ErrNoKernels = errors.New("no kernels")

	// ErrInvalidProbability is returned for selection masses or rates that
	// cannot define a distribution.
	ErrInvalidProbability = errors.New("invalid probability")
)

// State is the outcome of the most recent Step.
type State int

const (
	Idle State = iota
	Proposed
	Accepted
	Rejected
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Proposed:
		return "proposed"
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Stats describes the most recent Step. Values stay valid until the next
// Step overwrites them.
type Stats struct {
	Temperature float64
	Delta       float64
	GreenRatio  float64
	Acceptance  float64
	Accepted    bool
	KernelID    int
	State       State
}

// Sampler drives one RJMCMC chain. It owns the random stream and the scratch
// diff; the configuration is passed to each Step and must not be touched by
// anything else while Step runs.
type Sampler[T any] struct {
	rng    *rand.Rand
	kernel *Tuple[T]
	prior  CountPrior
	accept Acceptance
	diff   Diff[T]
	stats  Stats
}

// NewSampler returns a sampler selecting among kernels in order. Kernel
// masses are normalised to sum to one; a total that is not finite and
// positive is an error. A nil prior is flat and a nil acceptance is
// Metropolis.
func NewSampler[T any](rng *rand.Rand, prior CountPrior, accept Acceptance, kernels ...Kernel[T]) (*Sampler[T], error) {
	if rng == nil {
		return nil, errors.New("nil random source")
	}
	if len(kernels) == 0 {
		return nil, ErrNoKernels
	}
	for i, k := range kernels {
		p := k.Probability()
		if p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return nil, fmt.Errorf("kernel %d mass %v: %w", i, p, ErrInvalidProbability)
		}
	}
	t := NewTuple(kernels...)
	total := t.Probability()
	if !(total > 0) || math.IsInf(total, 0) {
		return nil, fmt.Errorf("kernel mass total %v: %w", total, ErrInvalidProbability)
	}
	t.SetProbability(1)

	if prior == nil {
		prior = Joint(nil)
	}
	if accept == nil {
		accept = Metropolis{}
	}
	return &Sampler[T]{
		rng:    rng,
		kernel: t,
		prior:  prior,
		accept: accept,
		stats:  Stats{KernelID: NoKernel},
	}, nil
}

// KernelCount returns the number of leaf kernels; kernel ids reported in
// Stats are in [0, KernelCount()) or NoKernel.
func (s *Sampler[T]) KernelCount() int { return s.kernel.Size() }

// Stats returns the statistics of the most recent Step.
func (s *Sampler[T]) Stats() Stats { return s.stats }

// Step performs one proposal and accept/reject decision at the given
// temperature.
//
// Draws: the selection u, the kernel's draws, then the acceptance draw v
// only when the Green ratio is positive. The only error is a failing Apply,
// which leaves c unchanged.
func (s *Sampler[T]) Step(c Configuration[T], temperature float64) error {
	s.diff.Clear()
	s.stats = Stats{Temperature: temperature, State: Proposed}

	u := s.rng.Float64()
	ratio, id := s.kernel.Propose(u, c, &s.diff, s.rng)
	s.stats.KernelID = id
	if ratio > 0 {
		ratio *= s.prior.GreenRatio(c.Len(), s.diff.SizeDelta())
	}
	if math.IsNaN(ratio) {
		ratio = 0
	}
	s.stats.GreenRatio = ratio

	if ratio <= 0 {
		s.stats.State = Rejected
		return nil
	}

	s.stats.Delta = c.DeltaEnergy(&s.diff)
	s.stats.Acceptance = s.accept.Probability(ratio, s.stats.Delta, temperature)

	v := s.rng.Float64()
	if v >= s.stats.Acceptance {
		s.stats.State = Rejected
		return nil
	}
	if err := c.Apply(&s.diff); err != nil {
		s.stats.State = Rejected
		return fmt.Errorf("kernel %d produced an invalid diff: %w", id, err)
	}
	s.stats.Accepted = true
	s.stats.State = Accepted
	return nil
}
