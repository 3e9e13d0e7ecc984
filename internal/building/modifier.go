package building

import (
	"math"
	"math/rand/v2"

	"github.com/golang/geo/r2"

	"github.com/ironsheep/footprint-rjmcmc/internal/geometry"
)

// Rectangle moves.
const (
	rectScaleNormal = iota
	rectScaleOrtho
	rectTranslate
	rectRotate
	rectToCircle
	rectSplit
	rectMoves
)

// Circle moves.
const (
	circleTranslate = iota
	circleScale
	circleToRectangle
	circleMoves
)

// Pair moves.
const (
	pairMerge = iota
	pairPerturb
	pairMoves
)

// maxRotation bounds a single rotation step.
const maxRotation = math.Pi / 8

// Modifier changes one or two footprints in place. The move is chosen by the
// shapes in the input:
//
//	rectangle        scale either side keeping the opposite side, translate,
//	                 rotate, convert to a circle, or split in two
//	circle           translate, scale the radius, or convert to a square
//	two rectangles   merge, or perturb both
//	mixed pair       perturb both
//
// Green ratios are exact for the perturbations (scaling contributes the
// scale factor where the reference measure requires it) and 1 for
// conversions, splits and merges, which are approximations.
//
// Draws: the move (IntN), then per move: scaling and translation draw one
// Float64 per parameter, rotation one, circle-to-square one (the angle);
// pair perturbation draws for the first shape and then the second.
type Modifier struct {
	region geometry.Region
}

// NewModifier returns a modifier whose outputs must be valid in region.
func NewModifier(region geometry.Region) *Modifier {
	return &Modifier{region: region}
}

// Modify implements rjmcmc.Modifier. Any output failing the region's
// validity test rejects the move.
func (m *Modifier) Modify(in []geometry.Shape, rng *rand.Rand) ([]geometry.Shape, float64) {
	var out []geometry.Shape
	var ratio float64

	switch len(in) {
	case 1:
		out, ratio = m.single(in[0], rng)
	case 2:
		out, ratio = m.pair(in[0], in[1], rng)
	default:
		return nil, 0
	}

	if ratio <= 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return nil, 0
	}
	for _, s := range out {
		if !m.region.Valid(s) {
			return nil, 0
		}
	}
	return out, ratio
}

func (m *Modifier) single(s geometry.Shape, rng *rand.Rand) ([]geometry.Shape, float64) {
	switch s := s.(type) {
	case geometry.Rectangle:
		switch rng.IntN(rectMoves) {
		case rectToCircle:
			return one(geometry.NewCircle(s.C, math.Sqrt(s.Area()/math.Pi))), 1
		case rectSplit:
			a, b := splitRectangle(s)
			return []geometry.Shape{a, b}, 1
		case rectScaleNormal:
			return one1(scaleNormal(s, rng))
		case rectScaleOrtho:
			return one1(scaleOrtho(s, rng))
		case rectTranslate:
			return one(translateRectangle(s, rng)), 1
		case rectRotate:
			return one(rotateRectangle(s, rng)), 1
		}
	case geometry.Circle:
		switch rng.IntN(circleMoves) {
		case circleTranslate:
			return one(translateCircle(s, rng)), 1
		case circleScale:
			return one1(scaleCircle(s, rng))
		case circleToRectangle:
			side := math.Sqrt(s.Area())
			return one(geometry.RectangleFromSize(s.C, side, side, rng.Float64()*math.Pi)), 1
		}
	}
	return nil, 0
}

func (m *Modifier) pair(a, b geometry.Shape, rng *rand.Rand) ([]geometry.Shape, float64) {
	ra, aRect := a.(geometry.Rectangle)
	rb, bRect := b.(geometry.Rectangle)
	if aRect && bRect && rng.IntN(pairMoves) == pairMerge {
		return one(mergeRectangles(ra, rb)), 1
	}

	pa, fa := perturb(a, rng)
	pb, fb := perturb(b, rng)
	if pa == nil || pb == nil {
		return nil, 0
	}
	return []geometry.Shape{pa, pb}, fa * fb
}

// perturb applies one dimension-preserving move to s.
func perturb(s geometry.Shape, rng *rand.Rand) (geometry.Shape, float64) {
	switch s := s.(type) {
	case geometry.Rectangle:
		switch rng.IntN(4) {
		case 0:
			return scaleNormal(s, rng)
		case 1:
			return scaleOrtho(s, rng)
		case 2:
			return translateRectangle(s, rng), 1
		default:
			return rotateRectangle(s, rng), 1
		}
	case geometry.Circle:
		if rng.IntN(2) == 0 {
			return translateCircle(s, rng), 1
		}
		return scaleCircle(s, rng)
	}
	return nil, 0
}

func one(s geometry.Shape) []geometry.Shape { return []geometry.Shape{s} }

func one1(s geometry.Shape, ratio float64) ([]geometry.Shape, float64) {
	return one(s), ratio
}

// scaleFactor draws f = exp(0.5-u); the reverse move draws 1-u and gets 1/f.
func scaleFactor(rng *rand.Rand) float64 {
	return math.Exp(0.5 - rng.Float64())
}

// scaleNormal scales the side along Normal by f keeping the opposite side
// in place. The perpendicular side is unchanged, so Ratio becomes Ratio/f;
// in (center, |Normal|, angle, Ratio) coordinates the Jacobian is 1.
func scaleNormal(r geometry.Rectangle, rng *rand.Rand) (geometry.Shape, float64) {
	f := scaleFactor(rng)
	return geometry.NewRectangle(r.C.Add(r.Normal.Mul(f-1)), r.Normal.Mul(f), r.Ratio/f), 1
}

// scaleOrtho scales the side along Ortho by f keeping the opposite side in
// place; the Jacobian is f.
func scaleOrtho(r geometry.Rectangle, rng *rand.Rand) (geometry.Shape, float64) {
	f := scaleFactor(rng)
	return geometry.NewRectangle(r.C.Add(r.Ortho().Mul(f-1)), r.Normal, r.Ratio*f), f
}

// translateRectangle moves the center by up to a quarter of the shorter
// side along each axis.
func translateRectangle(r geometry.Rectangle, rng *rand.Rand) geometry.Shape {
	d := math.Min(r.Width(), r.Height()) / 4
	return geometry.NewRectangle(r.C.Add(jitter(rng, d)), r.Normal, r.Ratio)
}

func rotateRectangle(r geometry.Rectangle, rng *rand.Rand) geometry.Shape {
	a := (2*rng.Float64() - 1) * maxRotation
	sin, cos := math.Sincos(a)
	n := r2.Point{X: r.Normal.X*cos - r.Normal.Y*sin, Y: r.Normal.X*sin + r.Normal.Y*cos}
	return geometry.NewRectangle(r.C, n, r.Ratio)
}

func translateCircle(c geometry.Circle, rng *rand.Rand) geometry.Shape {
	return geometry.NewCircle(c.C.Add(jitter(rng, c.Radius/2)), c.Radius)
}

// scaleCircle scales the radius by f about the center; the Jacobian is f.
func scaleCircle(c geometry.Circle, rng *rand.Rand) (geometry.Shape, float64) {
	f := scaleFactor(rng)
	return geometry.NewCircle(c.C, c.Radius*f), f
}

// jitter draws a uniform offset in [-d, d]².
func jitter(rng *rand.Rand, d float64) r2.Point {
	return r2.Point{X: (2*rng.Float64() - 1) * d, Y: (2*rng.Float64() - 1) * d}
}

// splitRectangle cuts r in half across Normal.
func splitRectangle(r geometry.Rectangle) (geometry.Rectangle, geometry.Rectangle) {
	half := r.Normal.Mul(0.5)
	return geometry.NewRectangle(r.C.Add(half), half, 2*r.Ratio),
		geometry.NewRectangle(r.C.Sub(half), half, 2*r.Ratio)
}

// mergeRectangles returns the smallest rectangle aligned with a that
// encloses both a and b.
func mergeRectangles(a, b geometry.Rectangle) geometry.Rectangle {
	u := a.Normal.Normalize()
	v := u.Ortho()
	if a.Ratio < 0 {
		v = v.Mul(-1)
	}

	loU, hiU := math.Inf(1), math.Inf(-1)
	loV, hiV := math.Inf(1), math.Inf(-1)
	for _, r := range []geometry.Rectangle{a, b} {
		for _, p := range r.Corners() {
			d := p.Sub(a.C)
			pu, pv := d.Dot(u), d.Dot(v)
			loU, hiU = math.Min(loU, pu), math.Max(hiU, pu)
			loV, hiV = math.Min(loV, pv), math.Max(hiV, pv)
		}
	}

	c := a.C.Add(u.Mul((loU + hiU) / 2)).Add(v.Mul((loV + hiV) / 2))
	w, h := hiU-loU, hiV-loV
	ratio := h / w
	if a.Ratio < 0 {
		ratio = -ratio
	}
	return geometry.NewRectangle(c, u.Mul(w/2), ratio)
}
