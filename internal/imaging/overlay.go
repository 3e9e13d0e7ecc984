package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"github.com/golang/geo/r2"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/vector"
)

// Outline is a closed polygon to draw over an image, in world coordinates.
type Outline struct {
	Points []r2.Point

	// Score in [0, 1] picks the stroke colour along the overlay ramp;
	// 0 is the Good end and 1 the Bad end.
	Score float64
}

// OverlayStyle controls outline rendering.
type OverlayStyle struct {
	// Good and Bad are the ends of the colour ramp, as "#RRGGBB" or
	// "#RRGGBBAA". Invalid values fall back to the defaults.
	Good, Bad string

	// LineWidth is the stroke width in output pixels.
	LineWidth float64
}

// DefaultOverlayStyle strokes 2-pixel outlines from green to red.
var DefaultOverlayStyle = OverlayStyle{Good: "#00C853", Bad: "#D50000", LineWidth: 2}

// Ramp maps scores to colours by blending two colours in CIE L*a*b*.
type Ramp struct {
	good, bad colorful.Color
	alpha     uint8
}

// NewRamp returns a ramp from good to bad.
func NewRamp(good, bad string) (Ramp, error) {
	g, ga, err := parseHexColor(good)
	if err != nil {
		return Ramp{}, fmt.Errorf("good colour: %w", err)
	}
	b, ba, err := parseHexColor(bad)
	if err != nil {
		return Ramp{}, fmt.Errorf("bad colour: %w", err)
	}
	return Ramp{good: g, bad: b, alpha: min(ga, ba)}, nil
}

// At returns the colour for score t, clamped to [0, 1].
func (r Ramp) At(t float64) color.NRGBA {
	if math.IsNaN(t) {
		t = 1
	}
	t = math.Max(0, math.Min(1, t))
	c := r.good.BlendLab(r.bad, t).Clamped()
	cr, cg, cb := c.RGB255()
	return color.NRGBA{R: cr, G: cg, B: cb, A: r.alpha}
}

// parseHexColor parses "#RRGGBB" or "#RRGGBBAA".
func parseHexColor(hex string) (colorful.Color, uint8, error) {
	if len(hex) == 0 {
		return colorful.Color{}, 0, fmt.Errorf("empty color string")
	}
	if hex[0] != '#' {
		hex = "#" + hex
	}
	alpha := uint8(255)
	switch len(hex) {
	case 7:
	case 9:
		var a uint8
		if _, err := fmt.Sscanf(hex[7:], "%02x", &a); err != nil {
			return colorful.Color{}, 0, fmt.Errorf("invalid alpha in %q: %w", hex, err)
		}
		alpha = a
		hex = hex[:7]
	default:
		return colorful.Color{}, 0, fmt.Errorf("invalid hex color length")
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return colorful.Color{}, 0, err
	}
	return c, alpha, nil
}

// DrawOverlay renders outlines on a copy of base. origin and step map world
// coordinates to base pixels: pixel = (world - origin) / step.
func DrawOverlay(base image.Image, origin r2.Point, step float64, outlines []Outline, style OverlayStyle) *image.NRGBA {
	ramp, err := NewRamp(style.Good, style.Bad)
	if err != nil {
		ramp, _ = NewRamp(DefaultOverlayStyle.Good, DefaultOverlayStyle.Bad)
	}
	width := style.LineWidth
	if width <= 0 {
		width = DefaultOverlayStyle.LineWidth
	}
	if step <= 0 {
		step = 1
	}

	b := base.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), base, b.Min, draw.Src)

	toPixel := func(p r2.Point) r2.Point { return p.Sub(origin).Mul(1 / step) }
	for _, o := range outlines {
		if len(o.Points) < 2 {
			continue
		}
		z := vector.NewRasterizer(b.Dx(), b.Dy())
		for i := range o.Points {
			strokeSegment(z, toPixel(o.Points[i]), toPixel(o.Points[(i+1)%len(o.Points)]), width)
		}
		z.Draw(dst, dst.Bounds(), image.NewUniform(ramp.At(o.Score)), image.Point{})
	}
	return dst
}

// strokeSegment adds the quad covering segment ab at the given width, with
// square caps so adjacent segments join without gaps.
func strokeSegment(z *vector.Rasterizer, a, b r2.Point, width float64) {
	d := b.Sub(a)
	l := d.Norm()
	if l == 0 {
		return
	}
	u := d.Mul(width / 2 / l)
	n := u.Ortho()
	a, b = a.Sub(u), b.Add(u)

	p := [4]r2.Point{a.Add(n), b.Add(n), b.Sub(n), a.Sub(n)}
	z.MoveTo(float32(p[0].X), float32(p[0].Y))
	for _, q := range p[1:] {
		z.LineTo(float32(q.X), float32(q.Y))
	}
	z.ClosePath()
}

// Canvas returns a white image covering the world rectangle box at one
// pixel per unit, for drawing overlays when there is no evidence image.
func Canvas(box r2.Rect) *image.NRGBA {
	w := max(1, int(math.Ceil(box.X.Length())))
	h := max(1, int(math.Ceil(box.Y.Length())))
	return imaging.New(w, h, color.White)
}
