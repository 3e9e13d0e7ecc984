package rjmcmc

import (
	"fmt"
	"math"
)

// CountPrior corrects the acceptance ratio for a change in population size.
// GreenRatio receives the current size n and the signed size change dn.
type CountPrior interface {
	GreenRatio(n, dn int) float64
}

// Poisson is a Poisson(λ) prior on the population size, expressed as the
// ratio of the size probabilities after and before a change:
// λ^(-dn) · (n+dn)! / n!.
type Poisson struct {
	lambda float64
}

// NewPoisson returns a Poisson prior with rate lambda, which must be finite
// and positive.
func NewPoisson(lambda float64) (Poisson, error) {
	if err := checkRate(lambda); err != nil {
		return Poisson{}, err
	}
	return Poisson{lambda: lambda}, nil
}

// Lambda returns the rate.
func (p Poisson) Lambda() float64 { return p.lambda }

// GreenRatio returns λ^(-dn) · (n+dn)! / n!, multiplied out one factor at a
// time: (n+k)/λ per birth, λ/(n-k) per death.
func (p Poisson) GreenRatio(n, dn int) float64 {
	r := 1.0
	for k := 1; k <= dn; k++ {
		r *= float64(n+k) / p.lambda
	}
	for k := 0; k < -dn; k++ {
		r *= p.lambda / float64(n-k)
	}
	return r
}

// PointProcess is the intensity term of a Poisson point process with mean
// count λ: λ^dn. Paired with a birth density relative to the uniform
// reference measure and a uniform death selection of 1/(n+1), it leaves the
// population size Poisson(λ) distributed under a flat energy.
type PointProcess struct {
	lambda float64
}

// NewPointProcess returns a point-process prior with rate lambda, which must
// be finite and positive.
func NewPointProcess(lambda float64) (PointProcess, error) {
	if err := checkRate(lambda); err != nil {
		return PointProcess{}, err
	}
	return PointProcess{lambda: lambda}, nil
}

// Lambda returns the rate.
func (p PointProcess) Lambda() float64 { return p.lambda }

// GreenRatio returns λ^dn, multiplied out one factor at a time.
func (p PointProcess) GreenRatio(n, dn int) float64 {
	r := 1.0
	for ; dn > 0; dn-- {
		r *= p.lambda
	}
	for ; dn < 0; dn++ {
		r /= p.lambda
	}
	return r
}

func checkRate(lambda float64) error {
	if !(lambda > 0) || math.IsInf(lambda, 0) {
		return fmt.Errorf("poisson rate %v: %w", lambda, ErrInvalidProbability)
	}
	return nil
}

// Uniform restricts the population size to [Min, Max].
type Uniform struct {
	Min, Max int
}

// GreenRatio returns 1 when both n and n+dn lie in [Min, Max], else 0.
func (u Uniform) GreenRatio(n, dn int) float64 {
	m := n + dn
	if n < u.Min || n > u.Max || m < u.Min || m > u.Max {
		return 0
	}
	return 1
}

// Joint multiplies several priors. An empty Joint is flat.
type Joint []CountPrior

// GreenRatio returns the product of the member ratios, stopping at the first
// zero.
func (j Joint) GreenRatio(n, dn int) float64 {
	r := 1.0
	for _, p := range j {
		r *= p.GreenRatio(n, dn)
		if r == 0 {
			return 0
		}
	}
	return r
}
