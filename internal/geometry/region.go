package geometry

import (
	"math"

	"github.com/golang/geo/r2"
)

// Region is the validity domain of footprints: the running box and the
// admissible sizes and aspect ratios.
type Region struct {
	Box      r2.Rect
	MinSize  float64
	MaxSize  float64
	MaxRatio float64
}

// Inside reports whether s lies entirely within the box.
func (g Region) Inside(s Shape) bool {
	switch s := s.(type) {
	case Rectangle:
		for _, c := range s.Corners() {
			if !g.Box.ContainsPoint(c) {
				return false
			}
		}
		return true
	case Circle:
		return g.Box.Contains(s.Bound())
	}
	return false
}

// Valid reports whether s is inside the box, has every side (or its
// radius) within [MinSize, MaxSize] and, for rectangles, a ratio within
// [1/MaxRatio, MaxRatio].
func (g Region) Valid(s Shape) bool {
	if s == nil || !s.Valid() || !g.Inside(s) {
		return false
	}
	switch s := s.(type) {
	case Rectangle:
		w, h := s.Width(), s.Height()
		if !g.sizeOK(w) || !g.sizeOK(h) {
			return false
		}
		ratio := math.Abs(s.Ratio)
		return ratio <= g.MaxRatio && ratio*g.MaxRatio >= 1
	case Circle:
		return g.sizeOK(s.Radius)
	}
	return false
}

func (g Region) sizeOK(x float64) bool {
	return x >= g.MinSize && x <= g.MaxSize
}
