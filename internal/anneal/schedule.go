package anneal

import "math"

// Schedule is a lazily evaluated temperature sequence. Temperature returns
// the current value and Advance moves to the next one. A schedule cannot be
// rewound; build a new one per run.
type Schedule interface {
	Temperature() float64
	Advance()
}

// Geometric is the schedule T(n) = T0·αⁿ.
type Geometric struct {
	t0    float64
	alpha float64
	n     int
}

// NewGeometric returns a geometric schedule starting at t0 and multiplied
// by alpha at every step.
func NewGeometric(t0, alpha float64) *Geometric {
	return &Geometric{t0: t0, alpha: alpha}
}

// Temperature returns T0·αⁿ. It is computed from n directly, so rounding
// does not accumulate over long runs.
func (g *Geometric) Temperature() float64 {
	return g.t0 * math.Pow(g.alpha, float64(g.n))
}

// Advance increments n.
func (g *Geometric) Advance() { g.n++ }

// Step returns the number of Advance calls so far.
func (g *Geometric) Step() int { return g.n }

// Constant is a fixed temperature.
type Constant float64

// Temperature returns c.
func (c Constant) Temperature() float64 { return float64(c) }

// Advance does nothing.
func (Constant) Advance() {}
