// Package energy scores footprint configurations: unary terms tie each shape
// to the image evidence and the binary term penalises overlapping shapes.
package energy

import (
	"math"

	"github.com/golang/geo/r2"

	"github.com/ironsheep/footprint-rjmcmc/internal/geometry"
)

// FluxField integrates an image gradient across boundaries.
// *imaging.GradientField implements it.
type FluxField interface {
	SegmentFlux(a, b r2.Point) float64
	CircleFlux(center r2.Point, radius float64) float64
}

// Gradient is the image-gradient unary energy. A rectangle scores
// Default - Σ max(0, outward flux through side i) and a circle
// Default - outward flux, so shapes whose boundary sits on dark-to-bright
// transitions have low energy.
type Gradient struct {
	Field   FluxField
	Default float64
}

// UnaryEnergy implements rjmcmc.UnaryEnergy.
func (g Gradient) UnaryEnergy(s geometry.Shape) float64 {
	switch s := s.(type) {
	case geometry.Rectangle:
		e := g.Default
		for i := 0; i < 4; i++ {
			a, b := s.Segment(i)
			e -= math.Max(0, outwardFlux(g.Field, s.C, a, b))
		}
		return e
	case geometry.Circle:
		return g.Default - g.Field.CircleFlux(s.C, s.Radius)
	}
	return g.Default
}

// outwardFlux orients the flux through ab away from center.
func outwardFlux(f FluxField, center, a, b r2.Point) float64 {
	flux := f.SegmentFlux(a, b)
	d := b.Sub(a)
	n := r2.Point{X: d.Y, Y: -d.X}
	mid := a.Add(b).Mul(0.5)
	if n.Dot(mid.Sub(center)) < 0 {
		return -flux
	}
	return flux
}

// Surface is the unary energy -log(1 + area), which favours large shapes.
type Surface struct{}

// UnaryEnergy implements rjmcmc.UnaryEnergy.
func (Surface) UnaryEnergy(s geometry.Shape) float64 {
	return -math.Log1p(math.Abs(s.Area()))
}

// Intersection is the binary energy Weight × area(a ∩ b).
type Intersection struct {
	Weight float64
}

// BinaryEnergy implements rjmcmc.BinaryEnergy.
func (e Intersection) BinaryEnergy(a, b geometry.Shape) float64 {
	return e.Weight * geometry.IntersectionArea(a, b)
}

// Overlap makes two shapes neighbours when their bounding boxes overlap and
// the shapes intersect with positive area.
type Overlap struct{}

// AreNeighbors implements rjmcmc.Neighborhood.
func (Overlap) AreNeighbors(a, b geometry.Shape) bool {
	return geometry.BoundsOverlap(a, b) && geometry.Intersects(a, b)
}
