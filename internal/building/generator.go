package building

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/golang/geo/r2"

	"github.com/ironsheep/footprint-rjmcmc/internal/geometry"
)

// ErrRetriesExhausted is returned when no valid shape could be drawn within
// the retry budget.
var ErrRetriesExhausted = errors.New("generator retries exhausted")

// Generator draws random footprints inside a Region.
//
// Densities are reported relative to the uniform reference measure on the
// parameter support (center in the box, half-size in [MinSize/2, MaxSize/2]
// for rectangles or radius in [MinSize, MaxSize] for circles, angle, ratio),
// so only the log-uniform size draw contributes a non-unit factor.
type Generator struct {
	region     geometry.Region
	pRectangle float64
	retries    int
}

// NewGenerator returns a generator drawing rectangles with probability
// pRectangle and circles otherwise, retrying invalid draws up to retries
// times.
func NewGenerator(region geometry.Region, pRectangle float64, retries int) *Generator {
	return &Generator{region: region, pRectangle: pRectangle, retries: max(1, retries)}
}

// Generate draws one valid shape.
//
// Draws per attempt: kind (Float64), center x, center y, size (Float64
// each); rectangles then draw the angle and the ratio.
func (g *Generator) Generate(rng *rand.Rand) (geometry.Shape, float64, error) {
	for i := 0; i < g.retries; i++ {
		s := g.draw(rng)
		if g.region.Valid(s) {
			return s, g.Pdf(s), nil
		}
	}
	return nil, 0, fmt.Errorf("%d attempts: %w", g.retries, ErrRetriesExhausted)
}

func (g *Generator) draw(rng *rand.Rand) geometry.Shape {
	rect := rng.Float64() < g.pRectangle
	box := g.region.Box
	c := r2.Point{
		X: box.X.Lo + rng.Float64()*box.X.Length(),
		Y: box.Y.Lo + rng.Float64()*box.Y.Length(),
	}
	if !rect {
		return geometry.NewCircle(c, logUniform(rng, g.region.MinSize, g.region.MaxSize))
	}

	h := logUniform(rng, g.region.MinSize/2, g.region.MaxSize/2)
	theta := rng.Float64() * math.Pi
	lo, hi := 1/g.region.MaxRatio, g.region.MaxRatio
	ratio := lo + rng.Float64()*(hi-lo)
	n := r2.Point{X: math.Cos(theta), Y: math.Sin(theta)}.Mul(h)
	return geometry.NewRectangle(c, n, ratio)
}

// Pdf returns the density of s relative to the uniform reference measure:
// the log-uniform size factor (hi-lo)/(x ln(hi/lo)), or 0 outside the
// support.
func (g *Generator) Pdf(s geometry.Shape) float64 {
	switch s := s.(type) {
	case geometry.Rectangle:
		return logUniformRelative(s.Normal.Norm(), g.region.MinSize/2, g.region.MaxSize/2)
	case geometry.Circle:
		return logUniformRelative(s.Radius, g.region.MinSize, g.region.MaxSize)
	}
	return 0
}

func logUniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo * math.Exp(rng.Float64()*math.Log(hi/lo))
}

func logUniformRelative(x, lo, hi float64) float64 {
	if x < lo || x > hi || !(x > 0) {
		return 0
	}
	if hi == lo {
		return 1
	}
	return (hi - lo) / (x * math.Log(hi/lo))
}
