package rjmcmc

import "math"

// Acceptance turns a Green ratio, an energy delta and a temperature into an
// acceptance probability in [0, 1]. It is only called with ratio > 0.
type Acceptance interface {
	Probability(ratio, delta, temperature float64) float64
}

// AcceptanceFunc adapts a function to Acceptance.
type AcceptanceFunc func(ratio, delta, temperature float64) float64

// Probability calls f.
func (f AcceptanceFunc) Probability(ratio, delta, temperature float64) float64 {
	return f(ratio, delta, temperature)
}

// boltzmann returns ratio * exp(-delta/temperature). A zero temperature maps
// to the greedy limit: +Inf for improvements, 0 for deteriorations.
func boltzmann(ratio, delta, temperature float64) float64 {
	if temperature <= 0 {
		switch {
		case delta < 0:
			return math.Inf(1)
		case delta > 0:
			return 0
		}
		return ratio
	}
	return ratio * math.Exp(-delta/temperature)
}

// Metropolis is the Metropolis-Hastings-Green rule min(1, R·exp(-Δ/T)).
type Metropolis struct{}

// Probability implements Acceptance.
func (Metropolis) Probability(ratio, delta, temperature float64) float64 {
	r := boltzmann(ratio, delta, temperature)
	if math.IsNaN(r) {
		return 0
	}
	return math.Min(1, r)
}

// Barker is the Barker rule r/(1+r) with r = R·exp(-Δ/T).
type Barker struct{}

// Probability implements Acceptance.
func (Barker) Probability(ratio, delta, temperature float64) float64 {
	r := boltzmann(ratio, delta, temperature)
	switch {
	case math.IsNaN(r):
		return 0
	case math.IsInf(r, 1):
		return 1
	}
	return r / (1 + r)
}

// Greedy accepts a move iff R·exp(-Δ/T) >= 1.
type Greedy struct{}

// Probability implements Acceptance.
func (Greedy) Probability(ratio, delta, temperature float64) float64 {
	if boltzmann(ratio, delta, temperature) >= 1 {
		return 1
	}
	return 0
}
