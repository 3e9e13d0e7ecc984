package geometry

import (
	"math"

	"github.com/golang/geo/r2"
)

// PolygonArea returns the signed shoelace area of p; positive when p is
// counter-clockwise in a y-up frame.
func PolygonArea(p []r2.Point) float64 {
	var a float64
	for i := range p {
		j := (i + 1) % len(p)
		a += p[i].Cross(p[j])
	}
	return a / 2
}

// ClipConvex clips subject against the convex, counter-clockwise polygon
// clip (Sutherland-Hodgman) and returns the intersection polygon, which is
// empty when the two do not overlap.
func ClipConvex(subject, clip []r2.Point) []r2.Point {
	out := append([]r2.Point(nil), subject...)
	for i := range clip {
		if len(out) == 0 {
			break
		}
		a, b := clip[i], clip[(i+1)%len(clip)]
		edge := b.Sub(a)
		inside := func(p r2.Point) bool { return edge.Cross(p.Sub(a)) >= 0 }

		in := out
		out = make([]r2.Point, 0, len(in)+1)
		for k := range in {
			cur, prev := in[k], in[(k+len(in)-1)%len(in)]
			curIn, prevIn := inside(cur), inside(prev)
			if curIn != prevIn {
				out = append(out, lineIntersection(prev, cur, a, b))
			}
			if curIn {
				out = append(out, cur)
			}
		}
	}
	return out
}

// lineIntersection returns the intersection of segment pq with the line ab.
func lineIntersection(p, q, a, b r2.Point) r2.Point {
	d := q.Sub(p)
	e := b.Sub(a)
	den := d.Cross(e)
	if den == 0 {
		return p
	}
	t := a.Sub(p).Cross(e) / den
	return p.Add(d.Mul(t))
}

// BoundsOverlap reports whether the bounding boxes of a and b overlap.
func BoundsOverlap(a, b Shape) bool {
	return a.Bound().Intersects(b.Bound())
}

// IntersectionArea returns the area of a ∩ b. Rectangle pairs are clipped
// exactly, circle pairs use the lens formula, and mixed pairs clip the
// rectangle against the polygonised circle.
func IntersectionArea(a, b Shape) float64 {
	if !BoundsOverlap(a, b) {
		return 0
	}
	switch a := a.(type) {
	case Circle:
		if b, ok := b.(Circle); ok {
			return lensArea(a, b)
		}
	}
	p := ccw(a.Outline())
	q := ccw(b.Outline())
	return math.Abs(PolygonArea(ClipConvex(p, q)))
}

// Intersects reports whether a and b overlap with positive area.
func Intersects(a, b Shape) bool {
	return IntersectionArea(a, b) > 0
}

func ccw(p []r2.Point) []r2.Point {
	if PolygonArea(p) >= 0 {
		return p
	}
	r := make([]r2.Point, len(p))
	for i, x := range p {
		r[len(p)-1-i] = x
	}
	return r
}

func lensArea(a, b Circle) float64 {
	d := a.C.Sub(b.C).Norm()
	r, s := a.Radius, b.Radius
	switch {
	case d >= r+s:
		return 0
	case d <= math.Abs(r-s):
		m := math.Min(r, s)
		return math.Pi * m * m
	}
	alpha := math.Acos(clamp((d*d+r*r-s*s)/(2*d*r), -1, 1))
	beta := math.Acos(clamp((d*d+s*s-r*r)/(2*d*s), -1, 1))
	return r*r*(alpha-math.Sin(2*alpha)/2) + s*s*(beta-math.Sin(2*beta)/2)
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
