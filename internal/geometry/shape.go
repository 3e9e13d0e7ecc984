package geometry

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
)

// Shape is either a Rectangle or a Circle.
type Shape interface {
	// Center returns the centroid.
	Center() r2.Point
	// Area returns the enclosed area.
	Area() float64
	// Bound returns the axis-aligned bounding box.
	Bound() r2.Rect
	// Outline returns the boundary polygon in counter-clockwise order
	// (with respect to a y-up frame).
	Outline() []r2.Point
	// Valid reports whether all parameters are finite and non-degenerate.
	Valid() bool

	isShape()
}

// Rectangle is an oriented rectangle. Normal is the half-axis vector from
// the center to the middle of one side; the perpendicular half-axis is
// Ratio times Normal rotated by 90 degrees.
type Rectangle struct {
	C      r2.Point
	Normal r2.Point
	Ratio  float64
}

// NewRectangle returns the rectangle with the given center, half-axis and
// ratio.
func NewRectangle(center, normal r2.Point, ratio float64) Rectangle {
	return Rectangle{C: center, Normal: normal, Ratio: ratio}
}

// RectangleFromSize returns a rectangle of width w along angle theta and
// height h perpendicular to it.
func RectangleFromSize(center r2.Point, w, h, theta float64) Rectangle {
	n := r2.Point{X: math.Cos(theta), Y: math.Sin(theta)}.Mul(w / 2)
	return Rectangle{C: center, Normal: n, Ratio: h / w}
}

func (Rectangle) isShape() {}

// Center implements Shape.
func (r Rectangle) Center() r2.Point { return r.C }

// Ortho returns the second half-axis, Ratio·Normal rotated by 90 degrees.
func (r Rectangle) Ortho() r2.Point { return r.Normal.Ortho().Mul(r.Ratio) }

// Width returns the side length along Normal.
func (r Rectangle) Width() float64 { return 2 * r.Normal.Norm() }

// Height returns the side length along Ortho.
func (r Rectangle) Height() float64 { return 2 * math.Abs(r.Ratio) * r.Normal.Norm() }

// Angle returns the direction of Normal in radians.
func (r Rectangle) Angle() float64 { return math.Atan2(r.Normal.Y, r.Normal.X) }

// Area implements Shape.
func (r Rectangle) Area() float64 { return r.Width() * r.Height() }

// Corners returns the four corners, counter-clockwise for a positive ratio.
func (r Rectangle) Corners() [4]r2.Point {
	n, m := r.Normal, r.Ortho()
	return [4]r2.Point{
		r.C.Add(n).Sub(m),
		r.C.Add(n).Add(m),
		r.C.Sub(n).Add(m),
		r.C.Sub(n).Sub(m),
	}
}

// Segment returns side i (0..3) as a pair of corners.
func (r Rectangle) Segment(i int) (a, b r2.Point) {
	c := r.Corners()
	return c[i%4], c[(i+1)%4]
}

// Outline implements Shape.
func (r Rectangle) Outline() []r2.Point {
	c := r.Corners()
	if r.Ratio < 0 {
		return []r2.Point{c[3], c[2], c[1], c[0]}
	}
	return c[:]
}

// Bound implements Shape.
func (r Rectangle) Bound() r2.Rect {
	c := r.Corners()
	return r2.RectFromPoints(c[:]...)
}

// Valid implements Shape.
func (r Rectangle) Valid() bool {
	return finite(r.C.X, r.C.Y, r.Normal.X, r.Normal.Y, r.Ratio) &&
		r.Normal.Norm() > 0 && r.Ratio != 0
}

func (r Rectangle) String() string {
	return fmt.Sprintf("rectangle(c=(%.2f,%.2f) w=%.2f h=%.2f θ=%.3f)",
		r.C.X, r.C.Y, r.Width(), r.Height(), r.Angle())
}

// Circle is a disc.
type Circle struct {
	C      r2.Point
	Radius float64
}

// NewCircle returns the circle with the given center and radius.
func NewCircle(center r2.Point, radius float64) Circle {
	return Circle{C: center, Radius: radius}
}

func (Circle) isShape() {}

// Center implements Shape.
func (c Circle) Center() r2.Point { return c.C }

// Area implements Shape.
func (c Circle) Area() float64 { return math.Pi * c.Radius * c.Radius }

// Perimeter returns the circumference.
func (c Circle) Perimeter() float64 { return 2 * math.Pi * c.Radius }

// Bound implements Shape.
func (c Circle) Bound() r2.Rect {
	return r2.RectFromCenterSize(c.C, r2.Point{X: 2 * c.Radius, Y: 2 * c.Radius})
}

// CircleSegments is the number of sides used to polygonise circles.
const CircleSegments = 64

// Outline implements Shape with a regular CircleSegments-gon inscribed in
// the circle.
func (c Circle) Outline() []r2.Point {
	return c.Polygon(CircleSegments)
}

// Polygon returns a regular n-gon inscribed in the circle.
func (c Circle) Polygon(n int) []r2.Point {
	pts := make([]r2.Point, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = r2.Point{X: c.C.X + c.Radius*math.Cos(a), Y: c.C.Y + c.Radius*math.Sin(a)}
	}
	return pts
}

// Valid implements Shape.
func (c Circle) Valid() bool {
	return finite(c.C.X, c.C.Y, c.Radius) && c.Radius > 0
}

func (c Circle) String() string {
	return fmt.Sprintf("circle(c=(%.2f,%.2f) r=%.2f)", c.C.X, c.C.Y, c.Radius)
}

func finite(xs ...float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
