package energy

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"

	"github.com/ironsheep/footprint-rjmcmc/internal/geometry"
	"github.com/ironsheep/footprint-rjmcmc/internal/rjmcmc"
)

// radialField is a synthetic gradient pointing away from the origin with
// unit magnitude, so the outward flux through any closed curve around the
// origin equals its perimeter.
type radialField struct{}

func (radialField) SegmentFlux(a, b r2.Point) float64 {
	d := b.Sub(a)
	n := r2.Point{X: d.Y, Y: -d.X}.Normalize()
	const samples = 200
	var sum float64
	for k := 0; k < samples; k++ {
		p := a.Add(d.Mul((float64(k) + 0.5) / samples))
		sum += p.Normalize().Dot(n)
	}
	return sum / samples * d.Norm()
}

func (radialField) CircleFlux(c r2.Point, r float64) float64 {
	if c.Norm() > 0 {
		return 0
	}
	return 2 * math.Pi * r
}

func TestGradient_Rectangle(t *testing.T) {
	e := Gradient{Field: radialField{}, Default: 100}

	// sides are positive regardless of corner order
	for _, ratio := range []float64{1, -1} {
		r := geometry.NewRectangle(r2.Point{}, r2.Point{X: 2, Y: 0}, ratio)
		got := e.UnaryEnergy(r)
		assert.Less(t, got, 100.0)
		// each side of the 4×4 square contributes 4·asinh(1)
		assert.InDelta(t, 100-16*math.Asinh(1), got, 1e-3)
	}
}

func TestGradient_Circle(t *testing.T) {
	e := Gradient{Field: radialField{}, Default: 10}
	assert.InDelta(t, 10-2*math.Pi*3, e.UnaryEnergy(geometry.NewCircle(r2.Point{}, 3)), 1e-12)
	assert.Equal(t, 10.0, e.UnaryEnergy(geometry.NewCircle(r2.Point{X: 5, Y: 5}, 3)))
}

func TestSurface(t *testing.T) {
	r := geometry.RectangleFromSize(r2.Point{}, 4, 2, 0.3)
	assert.InDelta(t, -math.Log(9), Surface{}.UnaryEnergy(r), 1e-12)
}

func TestIntersection(t *testing.T) {
	a := geometry.RectangleFromSize(r2.Point{}, 2, 2, 0)
	b := geometry.RectangleFromSize(r2.Point{X: 1}, 2, 2, 0)
	c := geometry.RectangleFromSize(r2.Point{X: 5}, 2, 2, 0)

	assert.InDelta(t, 6, Intersection{Weight: 3}.BinaryEnergy(a, b), 1e-9)
	assert.True(t, Overlap{}.AreNeighbors(a, b))
	assert.False(t, Overlap{}.AreNeighbors(a, c))
}

func TestGraphWithShapeEnergies(t *testing.T) {
	g := rjmcmc.NewGraph[geometry.Shape](Surface{}, Intersection{Weight: 2}, Overlap{})

	a := geometry.RectangleFromSize(r2.Point{}, 2, 2, 0)
	b := geometry.NewCircle(r2.Point{X: 1}, 1)
	g.Insert(a)
	g.Insert(b)

	want := -math.Log1p(4) - math.Log1p(math.Pi) + 2*geometry.IntersectionArea(a, b)
	assert.InDelta(t, want, g.Energy(), 1e-9)
}
